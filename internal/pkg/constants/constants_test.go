package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedRole(t *testing.T) {
	assert.True(t, AllowedRole(ViewData, Staff))
	assert.True(t, AllowedRole(ManageRooms, Manager))
	assert.False(t, AllowedRole(ManageProperties, Manager))
	assert.False(t, AllowedRole(ManageAdmins, Admin))
	assert.True(t, AllowedRole(ManageAdmins, Owner))
	assert.False(t, AllowedRole("unknown_permission", Owner))
}

func TestEveryPermissionAllowsOwner(t *testing.T) {
	for perm := range PermissionRoles {
		assert.True(t, AllowedRole(perm, Owner), perm)
	}
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("staff"))
	assert.True(t, IsValidRole("owner"))
	assert.False(t, IsValidRole("superadmin"))
	assert.False(t, IsValidRole(""))
}

package policies

import (
	"testing"

	"buffr-host/internal/domain"
	"buffr-host/internal/infrastructure/database/databasetest"
	"buffr-host/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func addUser(t *testing.T, db *gorm.DB, tenant *uuid.UUID, role string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&domain.User{
		UserID: id, UserName: id.String()[:8], Email: id.String()[:8] + "@x.com",
		PasswordHash: "x", Fullname: "U", Role: role, TenantID: tenant,
	}).Error)
	return id
}

func TestValidateRoleAssignment_OnlyOwnersAssignAdmin(t *testing.T) {
	db := databasetest.Open(t)
	err := ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
		ActorRole: constants.Admin, TargetRole: constants.Admin, TenantID: uuid.New(),
	})
	assert.Equal(t, ErrOnlyOwnersCanAssignOwnerOrAdmin, err)
}

func TestValidateRoleAssignment_InvalidRole(t *testing.T) {
	db := databasetest.Open(t)
	err := ValidateRoleAssignment(db, ValidateRoleAssignmentParams{ActorRole: constants.Owner, TargetRole: "superadmin"})
	assert.Equal(t, ErrInvalidRole, err)
}

func TestValidateRoleAssignment_InvitationSkipsTargetChecks(t *testing.T) {
	db := databasetest.Open(t)
	err := ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
		ActorRole: constants.Admin, TargetRole: constants.Manager, TenantID: uuid.New(),
	})
	assert.NoError(t, err)
}

func TestValidateRoleAssignment_TargetChecks(t *testing.T) {
	db := databasetest.Open(t)
	tenant := uuid.New()
	other := uuid.New()
	owner := addUser(t, db, &tenant, constants.Owner)
	admin := addUser(t, db, &tenant, constants.Admin)
	staff := addUser(t, db, &tenant, constants.Staff)
	outsider := addUser(t, db, &other, constants.Staff)

	cases := []struct {
		name string
		p    ValidateRoleAssignmentParams
		want error
	}{
		{"not found", ValidateRoleAssignmentParams{ActorRole: constants.Owner, TargetRole: constants.Staff, ActorUserID: owner, TargetUserID: uuid.New(), TenantID: tenant}, ErrTargetUserNotFound},
		{"other tenant", ValidateRoleAssignmentParams{ActorRole: constants.Owner, TargetRole: constants.Manager, ActorUserID: owner, TargetUserID: outsider, TenantID: tenant}, ErrCannotModifyUsersOutsideYourTenant},
		{"self", ValidateRoleAssignmentParams{ActorRole: constants.Admin, TargetRole: constants.Manager, ActorUserID: admin, TargetUserID: admin, TenantID: tenant}, ErrUsersCannotModifyTheirOwnRole},
		{"last owner", ValidateRoleAssignmentParams{ActorRole: constants.Owner, TargetRole: constants.Admin, ActorUserID: owner, TargetUserID: owner, TenantID: tenant}, ErrTenantMustHaveAtLeastOneOwner},
		{"ok", ValidateRoleAssignmentParams{ActorRole: constants.Admin, TargetRole: constants.Manager, ActorUserID: admin, TargetUserID: staff, TenantID: tenant}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidateRoleAssignment(db, tc.p))
		})
	}
}

func TestValidateMembershipChange(t *testing.T) {
	db := databasetest.Open(t)
	tenant := uuid.New()
	owner := addUser(t, db, &tenant, constants.Owner)
	admin := addUser(t, db, &tenant, constants.Admin)
	admin2 := addUser(t, db, &tenant, constants.Admin)
	staff := addUser(t, db, &tenant, constants.Staff)
	loner := addUser(t, db, nil, constants.Staff)

	_, err := ValidateMembershipChange(db, ValidateMembershipChangeParams{ActorUserID: admin, TargetUserID: admin, ActorRole: constants.Admin, TenantID: tenant})
	assert.Equal(t, ErrYouCannotRemoveYourself, err)

	_, err = ValidateMembershipChange(db, ValidateMembershipChangeParams{ActorUserID: admin, TargetUserID: uuid.New(), ActorRole: constants.Admin, TenantID: tenant})
	assert.Equal(t, ErrUserNotFound, err)

	_, err = ValidateMembershipChange(db, ValidateMembershipChangeParams{ActorUserID: admin, TargetUserID: loner, ActorRole: constants.Admin, TenantID: tenant})
	assert.Equal(t, ErrUserDoesNotBelongToYourTenant, err)

	_, err = ValidateMembershipChange(db, ValidateMembershipChangeParams{ActorUserID: admin, TargetUserID: admin2, ActorRole: constants.Admin, TenantID: tenant})
	assert.Equal(t, ErrAdminsCannotRemoveAdminsOrOwners, err)

	_, err = ValidateMembershipChange(db, ValidateMembershipChangeParams{ActorUserID: admin, TargetUserID: owner, ActorRole: constants.Owner, TenantID: tenant})
	assert.Equal(t, ErrTenantMustHaveAtLeastOneOwner, err)

	target, err := ValidateMembershipChange(db, ValidateMembershipChangeParams{ActorUserID: owner, TargetUserID: staff, ActorRole: constants.Owner, TenantID: tenant})
	require.NoError(t, err)
	assert.Equal(t, staff, target.UserID)
}

func TestValidateRoleAssignment_AdminGrantFollowsManageAdmins(t *testing.T) {
	db := databasetest.Open(t)
	for _, role := range []string{constants.Owner, constants.Admin, constants.Manager, constants.Staff} {
		err := ValidateRoleAssignment(db, ValidateRoleAssignmentParams{
			ActorRole: role, TargetRole: constants.Admin, TenantID: uuid.New(),
		})
		if constants.AllowedRole(constants.ManageAdmins, role) {
			assert.NoError(t, err, role)
		} else {
			assert.Equal(t, ErrOnlyOwnersCanAssignOwnerOrAdmin, err, role)
		}
	}
}

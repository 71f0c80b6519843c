// Package policies holds the role and membership rules for tenant staff.
package policies

import (
	"errors"

	"buffr-host/internal/domain"
	"buffr-host/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidateRoleAssignmentParams describes who assigns which role to whom.
// TargetUserID is uuid.Nil for invitations.
type ValidateRoleAssignmentParams struct {
	ActorRole    string
	TargetRole   string
	ActorUserID  uuid.UUID
	TargetUserID uuid.UUID
	TenantID     uuid.UUID
}

func sameTenant(tenantID uuid.UUID, target *uuid.UUID) bool {
	return target != nil && *target == tenantID
}

// ValidateRoleAssignment returns nil when the assignment is allowed.
func ValidateRoleAssignment(db *gorm.DB, params ValidateRoleAssignmentParams) error {
	if !constants.IsValidRole(params.TargetRole) {
		return ErrInvalidRole
	}
	if (params.TargetRole == constants.Owner || params.TargetRole == constants.Admin) &&
		!constants.AllowedRole(constants.ManageAdmins, params.ActorRole) {
		return ErrOnlyOwnersCanAssignOwnerOrAdmin
	}
	if params.TargetUserID == uuid.Nil {
		return nil // invitations stop here
	}
	var target domain.User
	if err := db.Where("user_id = ?", params.TargetUserID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTargetUserNotFound
		}
		return err
	}
	if !sameTenant(params.TenantID, target.TenantID) {
		return ErrCannotModifyUsersOutsideYourTenant
	}
	if params.ActorUserID == params.TargetUserID && params.ActorRole != constants.Owner {
		return ErrUsersCannotModifyTheirOwnRole
	}
	if target.Role == constants.Owner && params.TargetRole != constants.Owner {
		if err := ensureAnotherOwner(db, params.TenantID); err != nil {
			return err
		}
	}
	return nil
}

func ensureAnotherOwner(db *gorm.DB, tenantID uuid.UUID) error {
	var count int64
	if err := db.Model(&domain.User{}).
		Where("tenant_id = ? AND role = ?", tenantID, constants.Owner).
		Count(&count).Error; err != nil {
		return err
	}
	if count <= 1 {
		return ErrTenantMustHaveAtLeastOneOwner
	}
	return nil
}

package policies

import (
	"errors"

	"buffr-host/internal/domain"
	"buffr-host/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ValidateMembershipChangeParams struct {
	ActorUserID  uuid.UUID
	ActorRole    string
	TargetUserID uuid.UUID
	TenantID     uuid.UUID
}

// ValidateMembershipChange checks that the actor may remove the target from the tenant
// and returns the target.
func ValidateMembershipChange(db *gorm.DB, params ValidateMembershipChangeParams) (*domain.User, error) {
	if params.ActorUserID == params.TargetUserID {
		return nil, ErrYouCannotRemoveYourself
	}
	var target domain.User
	if err := db.Where("user_id = ?", params.TargetUserID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !sameTenant(params.TenantID, target.TenantID) {
		return nil, ErrUserDoesNotBelongToYourTenant
	}
	if !constants.AllowedRole(constants.ManageAdmins, params.ActorRole) &&
		(target.Role == constants.Admin || target.Role == constants.Owner) {
		return nil, ErrAdminsCannotRemoveAdminsOrOwners
	}
	if target.Role == constants.Owner {
		if err := ensureAnotherOwner(db, params.TenantID); err != nil {
			return nil, err
		}
	}
	return &target, nil
}

package policies

import "errors"

var (
	ErrInvalidRole                        = errors.New("Invalid role")
	ErrOnlyOwnersCanAssignOwnerOrAdmin    = errors.New("Only owners can assign owner or admin roles")
	ErrTargetUserNotFound                 = errors.New("Target user not found")
	ErrCannotModifyUsersOutsideYourTenant = errors.New("Cannot modify users outside your tenant")
	ErrUsersCannotModifyTheirOwnRole      = errors.New("Users cannot modify their own role")
	ErrTenantMustHaveAtLeastOneOwner      = errors.New("Tenant must have at least one owner")

	ErrYouCannotRemoveYourself          = errors.New("You cannot remove yourself from the tenant")
	ErrUserNotFound                     = errors.New("User not found")
	ErrUserDoesNotBelongToYourTenant    = errors.New("User does not belong to your tenant")
	ErrAdminsCannotRemoveAdminsOrOwners = errors.New("Admins cannot remove admins or owners")
)

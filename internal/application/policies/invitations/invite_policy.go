// Package policies holds the rules for creating and accepting staff invitations.
package policies

import (
	"errors"
	"strings"
	"time"

	"buffr-host/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCannotInviteYourself   = errors.New("You cannot invite yourself")
	ErrAlreadyMember          = errors.New("User already belongs to this tenant")
	ErrPendingInviteExists    = errors.New("A pending invitation already exists for this email")
	ErrInviteEmailMismatch    = errors.New("Invitation email does not match logged-in user")
	ErrInviteNoLongerValid    = errors.New("Invitation is no longer valid")
	ErrInviteExpired          = errors.New("Invitation has expired")
	ErrAlreadyInAnotherTenant = errors.New("User already belongs to another tenant")
)

// ValidateInviteCreation checks the invitee is neither the actor, a member, nor already invited.
func ValidateInviteCreation(db *gorm.DB, email string, tenantID uuid.UUID, actorEmail string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))

	if normalized == strings.ToLower(actorEmail) {
		return ErrCannotInviteYourself
	}

	var user domain.User
	if err := db.Where("email = ?", normalized).First(&user).Error; err == nil {
		if user.TenantID != nil && *user.TenantID == tenantID {
			return ErrAlreadyMember
		}
	}

	var count int64
	if err := db.Model(&domain.Invitation{}).
		Where("tenant_id = ? AND email = ? AND status = ?", tenantID, normalized, domain.InvitePending).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrPendingInviteExists
	}
	return nil
}

// ValidateInviteAcceptance checks the invitation against the accepting user.
func ValidateInviteAcceptance(invitation *domain.Invitation, user *domain.User, now time.Time) error {
	if !strings.EqualFold(invitation.Email, user.Email) {
		return ErrInviteEmailMismatch
	}
	if invitation.Status != domain.InvitePending {
		return ErrInviteNoLongerValid
	}
	if invitation.ExpiresAt.Before(now) {
		return ErrInviteExpired
	}
	if user.TenantID != nil && *user.TenantID != invitation.TenantID {
		return ErrAlreadyInAnotherTenant
	}
	return nil
}

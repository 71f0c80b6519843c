// Package invitations lets tenant admins bring staff in by email.
package invitations

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"buffr-host/internal/application/emails"
	invitePolicies "buffr-host/internal/application/policies/invitations"
	userPolicies "buffr-host/internal/application/policies/user"
	"buffr-host/internal/domain"
	"buffr-host/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	inviteExpiry   = 7 * 24 * time.Hour
	resendCooldown = 24 * time.Hour
)

var (
	ErrInvalidInviteEmail    = errors.New("Invalid email format")
	ErrInvitationNotFound    = errors.New("Invitation not found")
	ErrPendingNotFound       = errors.New("Pending invitation not found")
	ErrResendTooSoon         = errors.New("Invite can only be resent once per day")
	ErrInvalidToken          = errors.New("Invalid invitation token")
	ErrTokenRequired         = errors.New("Invitation token is required")
	ErrAcceptingUserNotFound = errors.New("User not found")
)

// Service holds invitation dependencies. Emails may be nil.
type Service struct {
	DB            *gorm.DB
	Emails        emails.Sender
	InviteBaseURL string
	Now           func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type SendInviteInput struct {
	ActorUserID uuid.UUID
	ActorRole   string
	ActorEmail  string
	TenantID    uuid.UUID
	Email       string
	Role        string
}

// SendInvite creates or refreshes the invitation for email and mails the link.
func (s *Service) SendInvite(ctx context.Context, in SendInviteInput) (*domain.Invitation, error) {
	normalized := strings.ToLower(strings.TrimSpace(in.Email))
	if !validation.IsValidEmail(normalized) {
		return nil, ErrInvalidInviteEmail
	}
	db := s.DB.WithContext(ctx)
	if err := userPolicies.ValidateRoleAssignment(db, userPolicies.ValidateRoleAssignmentParams{
		ActorRole:   in.ActorRole,
		TargetRole:  in.Role,
		ActorUserID: in.ActorUserID,
		TenantID:    in.TenantID,
	}); err != nil {
		return nil, err
	}
	if err := invitePolicies.ValidateInviteCreation(db, normalized, in.TenantID, in.ActorEmail); err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(inviteExpiry)
	var inv domain.Invitation
	err := db.Where("tenant_id = ? AND email = ?", in.TenantID, normalized).First(&inv).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		inv = domain.Invitation{
			TenantID:    in.TenantID,
			Email:       normalized,
			Role:        in.Role,
			InviteToken: randomHex(32),
			Status:      domain.InvitePending,
			CreatedBy:   in.ActorUserID.String(),
			ExpiresAt:   expiresAt,
		}
		if err := db.Create(&inv).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		inv.InviteToken = randomHex(32)
		inv.Role = in.Role
		inv.Status = domain.InvitePending
		inv.CreatedBy = in.ActorUserID.String()
		inv.ExpiresAt = expiresAt
		if err := db.Save(&inv).Error; err != nil {
			return nil, err
		}
	}

	s.mail(ctx, &inv, "You're invited to join %s on Buffr Host")
	return &inv, nil
}

type ResendInviteInput struct {
	Email    string
	TenantID uuid.UUID
}

// ResendInvite issues a fresh token, at most once per day per invitation.
func (s *Service) ResendInvite(ctx context.Context, in ResendInviteInput) (*domain.Invitation, error) {
	db := s.DB.WithContext(ctx)
	var inv domain.Invitation
	if err := db.Where("email = ? AND tenant_id = ?", strings.ToLower(strings.TrimSpace(in.Email)), in.TenantID).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	if s.now().Sub(inv.UpdatedAt) < resendCooldown {
		return nil, ErrResendTooSoon
	}

	inv.InviteToken = randomHex(32)
	inv.Status = domain.InvitePending
	inv.ExpiresAt = s.now().Add(inviteExpiry)
	if err := db.Save(&inv).Error; err != nil {
		return nil, err
	}
	s.mail(ctx, &inv, "Reminder: your invitation to %s on Buffr Host")
	return &inv, nil
}

type RevokeInviteInput struct {
	Email    string
	TenantID uuid.UUID
}

func (s *Service) RevokeInvite(ctx context.Context, in RevokeInviteInput) (*domain.Invitation, error) {
	db := s.DB.WithContext(ctx)
	var inv domain.Invitation
	if err := db.Where("email = ? AND tenant_id = ? AND status = ?",
		strings.ToLower(strings.TrimSpace(in.Email)), in.TenantID, domain.InvitePending).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, err
	}
	inv.Status = domain.InviteRevoked
	if err := db.Save(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns the tenant's invitations, newest first.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, status string) ([]domain.Invitation, error) {
	q := s.DB.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	out := []domain.Invitation{}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type AcceptResult struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	Role       string    `json:"role"`
	TenantName string    `json:"tenant_name"`
}

// AcceptInvite joins userID to the inviting tenant with the invited role.
func (s *Service) AcceptInvite(ctx context.Context, token string, userID uuid.UUID) (*AcceptResult, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	var res AcceptResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := findByToken(tx, token)
		if err != nil {
			return err
		}
		var user domain.User
		if err := tx.Where("user_id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAcceptingUserNotFound
			}
			return err
		}
		if err := invitePolicies.ValidateInviteAcceptance(inv, &user, s.now()); err != nil {
			return err
		}

		if err := tx.Model(&user).Updates(map[string]interface{}{
			"tenant_id": inv.TenantID,
			"role":      inv.Role,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(inv).Update("status", domain.InviteAccepted).Error; err != nil {
			return err
		}

		var t domain.Tenant
		if err := tx.Where("tenant_id = ?", inv.TenantID).First(&t).Error; err == nil {
			res.TenantName = t.Name
		}
		res.TenantID = inv.TenantID
		res.Role = inv.Role
		return nil
	})
	if errors.Is(err, invitePolicies.ErrInviteExpired) {
		s.markExpired(ctx, token)
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

type CheckTokenResult struct {
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	TenantID   uuid.UUID `json:"tenant_id"`
	Valid      bool      `json:"valid"`
	TenantName string    `json:"tenant_name"`
	TenantCode string    `json:"tenant_code"`
}

// CheckToken tells the public sign-up page who an invitation is for.
func (s *Service) CheckToken(ctx context.Context, token string) (*CheckTokenResult, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	db := s.DB.WithContext(ctx)
	inv, err := findByToken(db, token)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvitePending {
		return nil, invitePolicies.ErrInviteNoLongerValid
	}
	if inv.ExpiresAt.Before(s.now()) {
		s.markExpired(ctx, token)
		return nil, invitePolicies.ErrInviteExpired
	}

	out := &CheckTokenResult{Email: inv.Email, Role: inv.Role, TenantID: inv.TenantID, Valid: true}
	var t domain.Tenant
	if err := db.Where("tenant_id = ?", inv.TenantID).First(&t).Error; err == nil {
		out.TenantName = t.Name
		out.TenantCode = t.TenantCode
	}
	return out, nil
}

func findByToken(db *gorm.DB, token string) (*domain.Invitation, error) {
	var inv domain.Invitation
	if err := db.Where("invite_token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Service) markExpired(ctx context.Context, token string) {
	if err := s.DB.WithContext(ctx).Model(&domain.Invitation{}).
		Where("invite_token = ? AND status = ?", token, domain.InvitePending).
		Update("status", domain.InviteExpired).Error; err != nil {
		log.Warn().Err(err).Msg("marking invitation expired failed")
	}
}

// InviteLink is the sign-up URL carried by the invitation email.
func (s *Service) InviteLink(token string) string {
	return strings.TrimRight(s.InviteBaseURL, "/") + "/invite?token=" + url.QueryEscape(token)
}

func (s *Service) mail(ctx context.Context, inv *domain.Invitation, subjectFormat string) {
	if s.Emails == nil {
		return
	}
	tenantName := "your team"
	var t domain.Tenant
	if err := s.DB.WithContext(ctx).Where("tenant_id = ?", inv.TenantID).First(&t).Error; err == nil {
		tenantName = t.Name
	}
	subject := fmt.Sprintf(subjectFormat, tenantName)
	if err := s.Emails.SendInvite(ctx, inv.Email, s.InviteLink(inv.InviteToken), tenantName, inv.Role, subject); err != nil {
		log.Warn().Err(err).Str("email", inv.Email).Msg("invitation email failed")
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

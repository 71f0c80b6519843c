package user

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"buffr-host/internal/application/emails"
	policies "buffr-host/internal/application/policies/user"
	"buffr-host/internal/domain"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/constants"
	"buffr-host/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// Service holds DB and Redis for user operations.
type Service struct {
	DB     *gorm.DB
	Rdb    *redis.Client
	Emails emails.Sender
}

type CreateUserInput struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
}

// CreateUser registers a staff account with no tenant. The welcome email is best effort.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if strings.TrimSpace(in.UserName) == "" {
		return nil, errors.New("Username is required and must be a non-empty string")
	}
	if !validation.IsValidEmail(in.Email) {
		return nil, errors.New("Invalid email format")
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, errors.New("Invalid password format")
	}
	trimmed := strings.TrimSpace(in.Fullname)
	if trimmed == "" {
		return nil, errors.New("Full name is required and must be a non-empty string")
	}
	if !validation.IsValidFullname(trimmed) {
		return nil, errors.New("Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
	}

	userName := strings.TrimSpace(in.UserName)
	email := strings.TrimSpace(strings.ToLower(in.Email))

	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("Email already registered")
	}
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).Where("user_name = ?", userName).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("Username already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: string(hash),
		Fullname:     titleCaseAndNormalize(trimmed),
		Role:         constants.Staff,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}

	if s.Emails != nil {
		first := strings.SplitN(u.Fullname, " ", 2)[0]
		if err := s.Emails.SendWelcome(ctx, u.Email, first); err != nil {
			log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("welcome email failed")
		}
	}
	return u, nil
}

// UpdateUser updates the caller's own profile. Allowed: user_name, email, password, fullname.
func (s *Service) UpdateUser(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (*domain.User, error) {
	if len(fields) == 0 {
		return nil, errors.New("Missing update fields")
	}

	allowed := map[string]bool{"user_name": true, "email": true, "password": true, "fullname": true}
	upd := make(map[string]interface{})
	for k, v := range fields {
		if allowed[k] {
			upd[k] = v
		}
	}
	if len(upd) == 0 {
		return nil, errors.New("No valid update fields provided")
	}

	if v, ok := upd["email"]; ok {
		e, _ := v.(string)
		if !validation.IsValidEmail(e) {
			return nil, errors.New("Invalid email format")
		}
		upd["email"] = strings.TrimSpace(strings.ToLower(e))
	}
	if v, ok := upd["password"]; ok {
		p, _ := v.(string)
		if !validation.IsValidPassword(p) {
			return nil, errors.New("Invalid password format")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(p), bcryptCost)
		if err != nil {
			return nil, err
		}
		upd["password_hash"] = string(hash)
		delete(upd, "password")
	}
	if v, ok := upd["fullname"]; ok {
		fn, _ := v.(string)
		fn = strings.TrimSpace(fn)
		if fn == "" {
			return nil, errors.New("Full name must be a non-empty string")
		}
		if !validation.IsValidFullname(fn) {
			return nil, errors.New("Full name contains invalid characters")
		}
		upd["fullname"] = titleCaseAndNormalize(fn)
	}
	if v, ok := upd["user_name"]; ok {
		un, _ := v.(string)
		un = strings.TrimSpace(un)
		if un == "" {
			return nil, errors.New("Username is required and must be a non-empty string")
		}
		upd["user_name"] = un
	}

	var count int64
	if e, ok := upd["email"].(string); ok {
		if err := s.DB.WithContext(ctx).Model(&domain.User{}).Where("email = ? AND user_id <> ?", e, userID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("Email already registered")
		}
	}
	if un, ok := upd["user_name"].(string); ok {
		if err := s.DB.WithContext(ctx).Model(&domain.User{}).Where("user_name = ? AND user_id <> ?", un, userID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("Username already registered")
		}
	}

	result := s.DB.WithContext(ctx).Model(&domain.User{}).Where("user_id = ?", userID).Updates(upd)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errors.New("User not found")
	}
	return s.ViewUser(ctx, userID)
}

// ViewUser returns the user by ID.
func (s *Service) ViewUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("User not found")
		}
		return nil, err
	}
	return &u, nil
}

type UpdateUserRoleInput struct {
	ActorUserID  uuid.UUID
	ActorRole    string
	TargetUserID uuid.UUID
	TargetRole   string
	TenantID     uuid.UUID
}

// UpdateUserRole applies the role policy, saves the role and logs the target out everywhere.
func (s *Service) UpdateUserRole(ctx context.Context, in UpdateUserRoleInput) (*domain.User, error) {
	if err := policies.ValidateRoleAssignment(s.DB.WithContext(ctx), policies.ValidateRoleAssignmentParams{
		ActorRole:    in.ActorRole,
		TargetRole:   in.TargetRole,
		ActorUserID:  in.ActorUserID,
		TargetUserID: in.TargetUserID,
		TenantID:     in.TenantID,
	}); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).
		Where("user_id = ?", in.TargetUserID).
		Update("role", in.TargetRole).Error; err != nil {
		return nil, err
	}
	s.revokeSessions(ctx, in.TargetUserID)
	return s.ViewUser(ctx, in.TargetUserID)
}

type RemoveMemberInput struct {
	ActorUserID  uuid.UUID
	ActorRole    string
	TargetUserID uuid.UUID
	TenantID     uuid.UUID
}

// RemoveMember detaches the target from the tenant and resets them to staff.
func (s *Service) RemoveMember(ctx context.Context, in RemoveMemberInput) error {
	target, err := policies.ValidateMembershipChange(s.DB.WithContext(ctx), policies.ValidateMembershipChangeParams{
		ActorUserID:  in.ActorUserID,
		ActorRole:    in.ActorRole,
		TargetUserID: in.TargetUserID,
		TenantID:     in.TenantID,
	})
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Model(target).Updates(map[string]interface{}{
		"tenant_id": nil,
		"role":      constants.Staff,
	}).Error; err != nil {
		return err
	}
	s.revokeSessions(ctx, in.TargetUserID)
	return nil
}

func (s *Service) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if err := middleware.DestroyUserSessions(ctx, s.Rdb, userID.String()); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("session revocation failed")
	}
}

func titleCaseAndNormalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	capitalize := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !capitalize {
				b.WriteRune(' ')
				capitalize = true
			}
			continue
		}
		if capitalize {
			b.WriteRune(unicode.ToUpper(r))
			capitalize = false
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

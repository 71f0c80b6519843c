package tenant

import (
	"context"
	"errors"
	"strings"
	"time"

	"buffr-host/internal/domain"
	"buffr-host/internal/infrastructure/database"
	"buffr-host/internal/pkg/constants"
	"buffr-host/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNameAndCountryRequired = errors.New("name and country_code are required")
	ErrInvalidCountryCode     = errors.New("country_code must be a 2-letter ISO code")
	ErrAlreadyInTenant        = errors.New("User already belongs to a tenant")
	ErrTenantNameTaken        = errors.New("Tenant name already taken")
	ErrTenantNotFound         = errors.New("Tenant not found")
	ErrNoUpdateFields         = errors.New("No update fields provided")
	ErrNoValidFields          = errors.New("No valid fields to update")
	ErrInvalidContactEmail    = errors.New("Invalid contact_email")
)

// Service encapsulates tenant operations.
type Service struct {
	DB *gorm.DB
}

type CreateTenantInput struct {
	Name         string  `json:"name"`
	CountryCode  string  `json:"country_code"`
	LogoURL      *string `json:"logo_url"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
}

// Member is a tenant user as listed on the tenant page.
type Member struct {
	UserID    uuid.UUID `json:"user_id"`
	Fullname  string    `json:"fullname"`
	Email     string    `json:"email"`
	UserName  string    `json:"user_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// TenantWithMembers is the GET /tenants/current payload.
type TenantWithMembers struct {
	domain.Tenant
	Members []Member `json:"members"`
}

// CreateTenant creates the tenant and makes the creator its owner.
func (s *Service) CreateTenant(ctx context.Context, in CreateTenantInput, userID uuid.UUID) (*domain.Tenant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.CountryCode == "" {
		return nil, ErrNameAndCountryRequired
	}
	if !validation.IsValidCountryCode(in.CountryCode) {
		return nil, ErrInvalidCountryCode
	}
	if in.ContactEmail != nil && !validation.IsValidEmail(*in.ContactEmail) {
		return nil, ErrInvalidContactEmail
	}

	id := uuid.New()
	t := &domain.Tenant{
		TenantID:     id,
		Name:         name,
		Slug:         validation.Slugify(name),
		TenantCode:   database.TenantCode(name, id),
		CountryCode:  strings.ToUpper(in.CountryCode),
		LogoURL:      in.LogoURL,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		if err := tx.Where("user_id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		if user.TenantID != nil {
			return ErrAlreadyInTenant
		}
		var count int64
		if err := tx.Model(&domain.Tenant{}).Where("name = ? OR slug = ?", t.Name, t.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTenantNameTaken
		}
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"tenant_id": t.TenantID,
			"role":      constants.Owner,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTenant returns the tenant with its members ordered by join date.
func (s *Service) GetTenant(ctx context.Context, tenantID uuid.UUID) (*TenantWithMembers, error) {
	var t domain.Tenant
	if err := s.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	var members []Member
	if err := s.DB.WithContext(ctx).
		Model(&domain.User{}).
		Select("user_id, fullname, email, user_name, role, created_at").
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Scan(&members).Error; err != nil {
		return nil, err
	}
	if members == nil {
		members = []Member{}
	}
	return &TenantWithMembers{Tenant: t, Members: members}, nil
}

// UpdateTenant updates name, country_code, logo_url, contact_email and contact_phone.
func (s *Service) UpdateTenant(ctx context.Context, tenantID uuid.UUID, fields map[string]interface{}) (*domain.Tenant, error) {
	if len(fields) == 0 {
		return nil, ErrNoUpdateFields
	}
	allowed := map[string]bool{
		"name": true, "country_code": true, "logo_url": true, "contact_email": true, "contact_phone": true,
	}
	valid := make(map[string]interface{})
	for k, v := range fields {
		if allowed[k] {
			valid[k] = v
		}
	}
	if len(valid) == 0 {
		return nil, ErrNoValidFields
	}
	if v, ok := valid["name"]; ok {
		name, _ := v.(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrNameAndCountryRequired
		}
		slug := validation.Slugify(name)
		var count int64
		if err := s.DB.WithContext(ctx).Model(&domain.Tenant{}).
			Where("(name = ? OR slug = ?) AND tenant_id <> ?", name, slug, tenantID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrTenantNameTaken
		}
		valid["name"] = name
		valid["slug"] = slug
	}
	if v, ok := valid["country_code"]; ok {
		cc, _ := v.(string)
		if !validation.IsValidCountryCode(cc) {
			return nil, ErrInvalidCountryCode
		}
		valid["country_code"] = strings.ToUpper(cc)
	}
	if v, ok := valid["contact_email"]; ok && v != nil {
		e, _ := v.(string)
		if !validation.IsValidEmail(e) {
			return nil, ErrInvalidContactEmail
		}
	}

	result := s.DB.WithContext(ctx).Model(&domain.Tenant{}).Where("tenant_id = ?", tenantID).Updates(valid)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTenantNotFound
	}
	var t domain.Tenant
	if err := s.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

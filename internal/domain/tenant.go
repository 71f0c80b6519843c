package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant is the customer boundary. Every business record hangs off a tenant.
type Tenant struct {
	TenantID     uuid.UUID      `gorm:"column:tenant_id;type:uuid;primaryKey" json:"tenant_id"`
	Name         string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Slug         string         `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	TenantCode   string         `gorm:"column:tenant_code;type:varchar(10);not null;uniqueIndex" json:"tenant_code"`
	CountryCode  string         `gorm:"column:country_code;type:char(2);not null" json:"country_code"`
	LogoURL      *string        `gorm:"column:logo_url" json:"logo_url"`
	ContactEmail *string        `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone *string        `gorm:"column:contact_phone" json:"contact_phone"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Tenant) TableName() string {
	return "Tenants"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.TenantID == uuid.Nil {
		t.TenantID = uuid.New()
	}
	return nil
}

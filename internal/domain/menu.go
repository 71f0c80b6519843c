package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuItem is a dish or drink served by a restaurant property.
type MenuItem struct {
	MenuItemID  uuid.UUID      `gorm:"column:menu_item_id;type:uuid;primaryKey" json:"menu_item_id"`
	TenantID    uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	PropertyID  uuid.UUID      `gorm:"column:property_id;type:uuid;not null;index" json:"property_id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Category    string         `gorm:"column:category;not null" json:"category"`
	Description *string        `gorm:"column:description" json:"description"`
	Price       float64        `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	Available   bool           `gorm:"column:available;not null;default:true" json:"available"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (MenuItem) TableName() string {
	return "MenuItems"
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.MenuItemID == uuid.Nil {
		m.MenuItemID = uuid.New()
	}
	return nil
}

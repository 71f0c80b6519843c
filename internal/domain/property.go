package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PropertyHotel      = "hotel"
	PropertyGuesthouse = "guesthouse"
	PropertyLodge      = "lodge"
	PropertyRestaurant = "restaurant"

	PropertyActive   = "active"
	PropertyInactive = "inactive"
)

// PropertyTypes lists the accepted values of Property.Type.
var PropertyTypes = []string{PropertyHotel, PropertyGuesthouse, PropertyLodge, PropertyRestaurant}

// Property is a hotel, guesthouse, lodge or restaurant owned by a tenant.
type Property struct {
	PropertyID   uuid.UUID      `gorm:"column:property_id;type:uuid;primaryKey" json:"property_id"`
	TenantID     uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index;uniqueIndex:idx_property_tenant_slug" json:"tenant_id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Slug         string         `gorm:"column:slug;not null;uniqueIndex:idx_property_tenant_slug" json:"slug"`
	Type         string         `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Status       string         `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	Description  *string        `gorm:"column:description" json:"description"`
	Address      *string        `gorm:"column:address" json:"address"`
	City         *string        `gorm:"column:city" json:"city"`
	Country      *string        `gorm:"column:country" json:"country"`
	Phone        *string        `gorm:"column:phone" json:"phone"`
	Email        *string        `gorm:"column:email" json:"email"`
	CheckInTime  string         `gorm:"column:check_in_time;type:varchar(5);not null;default:'14:00'" json:"check_in_time"`
	CheckOutTime string         `gorm:"column:check_out_time;type:varchar(5);not null;default:'10:00'" json:"check_out_time"`
	Currency     string         `gorm:"column:currency;type:char(3);not null;default:'NAD'" json:"currency"`
	Amenities    datatypes.JSON `gorm:"column:amenities" json:"amenities"`
	Images       datatypes.JSON `gorm:"column:images" json:"images"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Property) TableName() string {
	return "Properties"
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.PropertyID == uuid.Nil {
		p.PropertyID = uuid.New()
	}
	return nil
}

// IsLodging reports whether the property rents rooms.
func (p *Property) IsLodging() bool {
	return p.Type != PropertyRestaurant
}

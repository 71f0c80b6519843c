package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoomAvailable    = "available"
	RoomMaintenance  = "maintenance"
	RoomOutOfService = "out_of_service"
)

type Room struct {
	RoomID      uuid.UUID      `gorm:"column:room_id;type:uuid;primaryKey" json:"room_id"`
	TenantID    uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	PropertyID  uuid.UUID      `gorm:"column:property_id;type:uuid;not null;uniqueIndex:idx_room_property_number" json:"property_id"`
	RoomNumber  string         `gorm:"column:room_number;not null;uniqueIndex:idx_room_property_number" json:"room_number"`
	RoomType    string         `gorm:"column:room_type;not null" json:"room_type"`
	Capacity    int            `gorm:"column:capacity;not null" json:"capacity"`
	NightlyRate float64        `gorm:"column:nightly_rate;type:decimal(12,2);not null" json:"nightly_rate"`
	Status      string         `gorm:"column:status;type:varchar(20);not null;default:'available'" json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Room) TableName() string {
	return "Rooms"
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.RoomID == uuid.Nil {
		r.RoomID = uuid.New()
	}
	return nil
}

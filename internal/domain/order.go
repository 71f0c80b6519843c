package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderPending   = "pending"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderServed    = "served"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
)

// Order is a restaurant ticket for a table or a room charge.
type Order struct {
	OrderID     uuid.UUID      `gorm:"column:order_id;type:uuid;primaryKey" json:"order_id"`
	TenantID    uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	PropertyID  uuid.UUID      `gorm:"column:property_id;type:uuid;not null;index" json:"property_id"`
	TableNumber *string        `gorm:"column:table_number" json:"table_number"`
	RoomID      *uuid.UUID     `gorm:"column:room_id;type:uuid" json:"room_id"`
	Status      string         `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount float64        `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`
	Currency    string         `gorm:"column:currency;type:char(3);not null" json:"currency"`
	Notes       *string        `gorm:"column:notes" json:"notes"`
	CreatedBy   *uuid.UUID     `gorm:"column:created_by;type:uuid" json:"created_by"`
	Items       []OrderItem    `gorm:"foreignKey:OrderID;references:OrderID" json:"items,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Order) TableName() string {
	return "Orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderID == uuid.Nil {
		o.OrderID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	OrderItemID uuid.UUID `gorm:"column:order_item_id;type:uuid;primaryKey" json:"order_item_id"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	MenuItemID  uuid.UUID `gorm:"column:menu_item_id;type:uuid;not null" json:"menu_item_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Quantity    int       `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice   float64   `gorm:"column:unit_price;type:decimal(12,2);not null" json:"unit_price"`
	LineTotal   float64   `gorm:"column:line_total;type:decimal(12,2);not null" json:"line_total"`
	Notes       *string   `gorm:"column:notes" json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (OrderItem) TableName() string {
	return "OrderItems"
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.OrderItemID == uuid.Nil {
		i.OrderItemID = uuid.New()
	}
	return nil
}

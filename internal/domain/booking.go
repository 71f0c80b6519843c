package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingCheckedIn  = "checked_in"
	BookingCheckedOut = "checked_out"
	BookingCancelled  = "cancelled"
	BookingExpired    = "expired"

	PaymentUnpaid  = "unpaid"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"
)

// ActiveBookingStatuses hold a room for their stay interval.
var ActiveBookingStatuses = []string{BookingPending, BookingConfirmed, BookingCheckedIn}

// Booking reserves one room for the half-open stay [CheckIn, CheckOut).
type Booking struct {
	BookingID             uuid.UUID      `gorm:"column:booking_id;type:uuid;primaryKey" json:"booking_id"`
	TenantID              uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	PropertyID            uuid.UUID      `gorm:"column:property_id;type:uuid;not null;index" json:"property_id"`
	RoomID                uuid.UUID      `gorm:"column:room_id;type:uuid;not null;index:idx_booking_room_stay" json:"room_id"`
	Reference             string         `gorm:"column:reference;type:varchar(16);not null;uniqueIndex" json:"reference"`
	GuestName             string         `gorm:"column:guest_name;not null" json:"guest_name"`
	GuestEmail            string         `gorm:"column:guest_email;not null" json:"guest_email"`
	GuestPhone            *string        `gorm:"column:guest_phone" json:"guest_phone"`
	Guests                int            `gorm:"column:guests;not null" json:"guests"`
	CheckIn               time.Time      `gorm:"column:check_in;not null;index:idx_booking_room_stay" json:"check_in"`
	CheckOut              time.Time      `gorm:"column:check_out;not null;index:idx_booking_room_stay" json:"check_out"`
	Nights                int            `gorm:"column:nights;not null" json:"nights"`
	Status                string         `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount           float64        `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`
	AmountPaid            float64        `gorm:"column:amount_paid;type:decimal(12,2);not null;default:0" json:"amount_paid"`
	Currency              string         `gorm:"column:currency;type:char(3);not null" json:"currency"`
	PaymentStatus         string         `gorm:"column:payment_status;type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	StripePaymentIntentID *string        `gorm:"column:stripe_payment_intent_id" json:"stripe_payment_intent_id"`
	HoldExpiresAt         *time.Time     `gorm:"column:hold_expires_at;index" json:"hold_expires_at"`
	Notes                 *string        `gorm:"column:notes" json:"notes"`
	CreatedBy             *uuid.UUID     `gorm:"column:created_by;type:uuid" json:"created_by"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Booking) TableName() string {
	return "Bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.BookingID == uuid.Nil {
		b.BookingID = uuid.New()
	}
	return nil
}

// Outstanding is the amount still owed on the booking.
func (b *Booking) Outstanding() float64 {
	if b.AmountPaid >= b.TotalAmount {
		return 0
	}
	return b.TotalAmount - b.AmountPaid
}

// BookingEvent is the append-only audit trail of a booking.
type BookingEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	BookingID uuid.UUID      `gorm:"column:booking_id;type:uuid;not null;index" json:"booking_id"`
	TenantID  uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	EventType string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	EventData datatypes.JSON `gorm:"column:event_data;not null" json:"event_data"`
	ActorID   *uuid.UUID     `gorm:"column:actor_id;type:uuid" json:"actor_id"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (BookingEvent) TableName() string {
	return "BookingEvents"
}

func (e *BookingEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}

// Package booking takes room reservations and drives them through their lifecycle.
package booking

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"buffr-host/internal/application/emails"
	"buffr-host/internal/application/property"
	"buffr-host/internal/application/room"
	"buffr-host/internal/domain"
	"buffr-host/internal/infrastructure/events"
	"buffr-host/internal/infrastructure/metrics"
	"buffr-host/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// DefaultHold is how long an unpaid pending booking keeps its room.
const DefaultHold = 30 * time.Minute

const (
	EventCreated         = "CREATED"
	EventConfirmed       = "CONFIRMED"
	EventCheckedIn       = "CHECKED_IN"
	EventCheckedOut      = "CHECKED_OUT"
	EventCancelled       = "CANCELLED"
	EventExpired         = "EXPIRED"
	EventPaymentReceived = "PAYMENT_RECEIVED"
)

// Service holds booking dependencies. Events, Metrics, Emails and Payments may be nil.
type Service struct {
	DB       *gorm.DB
	Events   events.Publisher
	Metrics  *metrics.Metrics
	Emails   emails.Sender
	Payments PaymentIntentCreator
	Hold     time.Duration
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) hold() time.Duration {
	if s.Hold > 0 {
		return s.Hold
	}
	return DefaultHold
}

// CreateInput is a parsed booking request. Stay dates are UTC midnights.
type CreateInput struct {
	RoomID     uuid.UUID
	GuestName  string
	GuestEmail string
	GuestPhone *string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	Notes      *string
	ActorID    uuid.UUID
}

// Create reserves a room for [CheckIn, CheckOut). The overlap check and the insert
// share one transaction so two requests cannot both take the room.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in CreateInput) (*domain.Booking, error) {
	name := strings.TrimSpace(in.GuestName)
	email := strings.ToLower(strings.TrimSpace(in.GuestEmail))
	if name == "" || email == "" {
		return nil, ErrGuestRequired
	}
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidGuestEmail
	}
	checkIn, checkOut := dateOf(in.CheckIn), dateOf(in.CheckOut)
	if !checkOut.After(checkIn) {
		return nil, ErrInvalidStay
	}
	now := s.now()
	if checkIn.Before(dateOf(now)) {
		return nil, ErrCheckInInPast
	}
	if in.Guests < 1 {
		return nil, ErrInvalidGuests
	}

	ref, err := newReference()
	if err != nil {
		return nil, err
	}

	var (
		b    *domain.Booking
		prop *domain.Property
		rm   *domain.Room
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rm, err = room.Find(lockRows(tx, domain.Room{}), tenantID, in.RoomID)
		if err != nil {
			return err
		}
		if rm.Status != domain.RoomAvailable {
			return ErrRoomOutOfService
		}
		if in.Guests > rm.Capacity {
			return ErrInvalidGuests
		}
		prop, err = property.Find(tx, tenantID, rm.PropertyID)
		if err != nil {
			return err
		}
		busy, err := room.Overlaps(tx, rm.RoomID, checkIn, checkOut, uuid.Nil)
		if err != nil {
			return err
		}
		if busy {
			return ErrRoomNotAvailable
		}

		nights := int(checkOut.Sub(checkIn).Hours() / 24)
		holdUntil := now.Add(s.hold())
		b = &domain.Booking{
			TenantID:      tenantID,
			PropertyID:    rm.PropertyID,
			RoomID:        rm.RoomID,
			Reference:     ref,
			GuestName:     name,
			GuestEmail:    email,
			GuestPhone:    in.GuestPhone,
			Guests:        in.Guests,
			CheckIn:       checkIn,
			CheckOut:      checkOut,
			Nights:        nights,
			Status:        domain.BookingPending,
			TotalAmount:   roundCents(float64(nights) * rm.NightlyRate),
			Currency:      prop.Currency,
			PaymentStatus: domain.PaymentUnpaid,
			HoldExpiresAt: &holdUntil,
			Notes:         in.Notes,
		}
		if in.ActorID != uuid.Nil {
			b.CreatedBy = &in.ActorID
		}
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		return writeEvent(tx, b, EventCreated, in.ActorID, map[string]interface{}{
			"reference":    b.Reference,
			"nights":       b.Nights,
			"total_amount": b.TotalAmount,
		})
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, events.Subject(tenantID.String(), "booking", "created"), b)
	s.Metrics.BookingCreated(prop.Type)
	if s.Emails != nil {
		notice := emails.BookingNotice{
			GuestName:    b.GuestName,
			GuestEmail:   b.GuestEmail,
			PropertyName: prop.Name,
			Reference:    b.Reference,
			RoomNumber:   rm.RoomNumber,
			CheckIn:      b.CheckIn,
			CheckOut:     b.CheckOut,
			Nights:       b.Nights,
			Total:        b.TotalAmount,
			Currency:     b.Currency,
			HoldExpires:  b.HoldExpiresAt,
		}
		if err := s.Emails.SendBookingConfirmation(ctx, notice); err != nil {
			log.Warn().Err(err).Str("reference", b.Reference).Msg("booking confirmation email failed")
		}
	}
	return b, nil
}

// ListFilter narrows List. From and To select stays overlapping [From, To).
type ListFilter struct {
	PropertyID *uuid.UUID
	Status     string
	From       *time.Time
	To         *time.Time
}

// List returns the tenant's bookings ordered by check-in.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, f ListFilter) ([]domain.Booking, error) {
	q := s.DB.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if f.PropertyID != nil {
		q = q.Where("property_id = ?", *f.PropertyID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("check_out > ?", dateOf(*f.From))
	}
	if f.To != nil {
		q = q.Where("check_in < ?", dateOf(*f.To))
	}
	out := []domain.Booking{}
	if err := q.Order("check_in ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// WithEvents is a booking and its audit trail.
type WithEvents struct {
	domain.Booking
	Events []domain.BookingEvent `json:"events"`
}

// Get returns a tenant booking with its events, oldest first.
func (s *Service) Get(ctx context.Context, tenantID, bookingID uuid.UUID) (*WithEvents, error) {
	db := s.DB.WithContext(ctx)
	b, err := find(db, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	out := &WithEvents{Booking: *b, Events: []domain.BookingEvent{}}
	if err := db.Where("booking_id = ?", b.BookingID).Order("created_at ASC").Find(&out.Events).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func find(db *gorm.DB, tenantID, bookingID uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	if err := db.Where("tenant_id = ? AND booking_id = ?", tenantID, bookingID).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func writeEvent(tx *gorm.DB, b *domain.Booking, eventType string, actorID uuid.UUID, data map[string]interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	ev := &domain.BookingEvent{
		BookingID: b.BookingID,
		TenantID:  b.TenantID,
		EventType: eventType,
		EventData: datatypes.JSON(raw),
	}
	if actorID != uuid.Nil {
		ev.ActorID = &actorID
	}
	return tx.Create(ev).Error
}

// lockRows locks the rows read from table until the transaction ends.
// SQLite has a single writer, so its transactions already serialize.
func lockRows(tx *gorm.DB, table schema.Tabler) *gorm.DB {
	switch tx.Dialector.Name() {
	case "sqlite":
		return tx
	case "sqlserver":
		return tx.Table(table.TableName() + " WITH (UPDLOCK, HOLDLOCK)")
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newReference returns a guest-facing code such as BH-7KQ2M9XA.
func newReference() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return "BH-" + string(out), nil
}

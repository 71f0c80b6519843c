package booking

import (
	"context"
	"slices"

	"buffr-host/internal/domain"
	"buffr-host/internal/infrastructure/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actions accepted by Transition.
const (
	ActionConfirm  = "confirm"
	ActionCheckIn  = "check-in"
	ActionCheckOut = "check-out"
	ActionCancel   = "cancel"
)

type transition struct {
	verb  string
	from  []string
	to    string
	event string
}

var transitions = map[string]transition{
	ActionConfirm: {
		verb:  "confirm",
		from:  []string{domain.BookingPending},
		to:    domain.BookingConfirmed,
		event: EventConfirmed,
	},
	ActionCheckIn: {
		verb:  "check in",
		from:  []string{domain.BookingConfirmed},
		to:    domain.BookingCheckedIn,
		event: EventCheckedIn,
	},
	ActionCheckOut: {
		verb:  "check out",
		from:  []string{domain.BookingCheckedIn},
		to:    domain.BookingCheckedOut,
		event: EventCheckedOut,
	},
	ActionCancel: {
		verb:  "cancel",
		from:  []string{domain.BookingPending, domain.BookingConfirmed},
		to:    domain.BookingCancelled,
		event: EventCancelled,
	},
}

// IsAction reports whether action names a booking transition.
func IsAction(action string) bool {
	_, ok := transitions[action]
	return ok
}

// Transition moves a booking along its lifecycle and records the event.
// reason is stored on the event when not empty.
func (s *Service) Transition(ctx context.Context, tenantID, bookingID uuid.UUID, action string, actorID uuid.UUID, reason string) (*domain.Booking, error) {
	tr, ok := transitions[action]
	if !ok {
		return nil, &TransitionError{Action: action, Status: "unknown"}
	}
	now := s.now()

	var b *domain.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		b, err = find(lockRows(tx, domain.Booking{}), tenantID, bookingID)
		if err != nil {
			return err
		}
		if !slices.Contains(tr.from, b.Status) {
			return &TransitionError{Action: tr.verb, Status: b.Status}
		}
		if action == ActionCheckIn && dateOf(now).Before(b.CheckIn) {
			return ErrTooEarlyToCheckIn
		}

		from := b.Status
		upd := map[string]interface{}{"status": tr.to}
		if from == domain.BookingPending {
			upd["hold_expires_at"] = nil
		}
		res := tx.Model(&domain.Booking{}).
			Where("booking_id = ? AND status = ?", b.BookingID, from).
			Updates(upd)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &TransitionError{Action: tr.verb, Status: b.Status}
		}
		b.Status = tr.to
		if from == domain.BookingPending {
			b.HoldExpiresAt = nil
		}

		data := map[string]interface{}{"from": from, "to": tr.to}
		if reason != "" {
			data["reason"] = reason
		}
		return writeEvent(tx, b, tr.event, actorID, data)
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, events.Subject(tenantID.String(), "booking", b.Status), b)
	s.Metrics.BookingTransition(b.Status)
	return b, nil
}

func (s *Service) Confirm(ctx context.Context, tenantID, bookingID, actorID uuid.UUID) (*domain.Booking, error) {
	return s.Transition(ctx, tenantID, bookingID, ActionConfirm, actorID, "")
}

func (s *Service) CheckIn(ctx context.Context, tenantID, bookingID, actorID uuid.UUID) (*domain.Booking, error) {
	return s.Transition(ctx, tenantID, bookingID, ActionCheckIn, actorID, "")
}

func (s *Service) CheckOut(ctx context.Context, tenantID, bookingID, actorID uuid.UUID) (*domain.Booking, error) {
	return s.Transition(ctx, tenantID, bookingID, ActionCheckOut, actorID, "")
}

func (s *Service) Cancel(ctx context.Context, tenantID, bookingID, actorID uuid.UUID, reason string) (*domain.Booking, error) {
	return s.Transition(ctx, tenantID, bookingID, ActionCancel, actorID, reason)
}

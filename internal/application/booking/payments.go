package booking

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"buffr-host/internal/domain"
	"buffr-host/internal/infrastructure/events"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentIntentCreator abstracts Stripe PaymentIntent creation for testability.
type PaymentIntentCreator interface {
	Create(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*PaymentIntent, error)
}

type PaymentIntent struct {
	ID           string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
}

// StripeCreator uses the Stripe Go SDK to create PaymentIntents.
type StripeCreator struct {
	SecretKey string
}

func (r *StripeCreator) Create(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	if r.SecretKey == "" {
		return nil, ErrPaymentsNotConfigured
	}
	stripe.Key = r.SecretKey
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// CreatePaymentIntent asks Stripe to collect the outstanding amount of a booking.
func (s *Service) CreatePaymentIntent(ctx context.Context, tenantID, bookingID uuid.UUID) (*PaymentIntent, error) {
	if s.Payments == nil {
		return nil, ErrPaymentsNotConfigured
	}
	b, err := find(s.DB.WithContext(ctx), tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingCheckedIn:
	default:
		return nil, ErrNotPayable
	}
	cents := int64(math.Round(b.Outstanding() * 100))
	if cents <= 0 {
		return nil, ErrNothingOutstanding
	}

	pi, err := s.Payments.Create(ctx, cents, strings.ToLower(b.Currency), map[string]string{
		"booking_id": b.BookingID.String(),
		"tenant_id":  b.TenantID.String(),
		"reference":  b.Reference,
	})
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&domain.Booking{}).
		Where("booking_id = ?", b.BookingID).
		Update("stripe_payment_intent_id", pi.ID).Error; err != nil {
		return nil, err
	}
	return pi, nil
}

// PaymentRecord is a settled PaymentIntent as reported by the webhook.
// EventID is empty when the payment did not arrive through a Stripe event.
type PaymentRecord struct {
	IntentID    string
	EventID     string
	BookingID   uuid.UUID
	AmountCents int64
	Currency    string
	Status      string
	Raw         []byte
}

// RecordPayment applies a settled payment to its booking exactly once per intent.
// A pending booking is confirmed by any payment. It returns false when the intent
// was already recorded.
func (s *Service) RecordPayment(ctx context.Context, p PaymentRecord) (bool, error) {
	if p.IntentID == "" || p.BookingID == uuid.Nil || p.AmountCents <= 0 {
		return false, errors.New("incomplete payment record")
	}
	var (
		b         domain.Booking
		confirmed bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Payment{}).Where("stripe_payment_intent_id = ?", p.IntentID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyRecorded
		}
		if err := lockRows(tx, domain.Booking{}).Where("booking_id = ?", p.BookingID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		raw := p.Raw
		if !json.Valid(raw) {
			raw = []byte("{}")
		}
		var eventID *string
		if p.EventID != "" {
			eventID = &p.EventID
		}
		if err := tx.Create(&domain.Payment{
			StripePaymentIntentID: p.IntentID,
			StripeEventID:         eventID,
			TenantID:              b.TenantID,
			BookingID:             b.BookingID,
			AmountPaidCents:       p.AmountCents,
			Currency:              strings.ToUpper(p.Currency),
			Status:                p.Status,
			RawPaymentIntent:      datatypes.JSON(raw),
		}).Error; err != nil {
			return err
		}

		b.AmountPaid = roundCents(b.AmountPaid + float64(p.AmountCents)/100)
		b.PaymentStatus = domain.PaymentPartial
		if b.Outstanding() == 0 {
			b.PaymentStatus = domain.PaymentPaid
		}
		upd := map[string]interface{}{
			"amount_paid":    b.AmountPaid,
			"payment_status": b.PaymentStatus,
		}
		if b.Status == domain.BookingPending {
			upd["status"] = domain.BookingConfirmed
			upd["hold_expires_at"] = nil
			b.Status = domain.BookingConfirmed
			b.HoldExpiresAt = nil
			confirmed = true
		}
		if err := tx.Model(&domain.Booking{}).Where("booking_id = ?", b.BookingID).Updates(upd).Error; err != nil {
			return err
		}
		if err := writeEvent(tx, &b, EventPaymentReceived, uuid.Nil, map[string]interface{}{
			"payment_intent_id": p.IntentID,
			"amount_cents":      p.AmountCents,
			"payment_status":    b.PaymentStatus,
		}); err != nil {
			return err
		}
		if confirmed {
			return writeEvent(tx, &b, EventConfirmed, uuid.Nil, map[string]interface{}{
				"from": domain.BookingPending, "to": domain.BookingConfirmed, "reason": "payment",
			})
		}
		return nil
	})
	if errors.Is(err, errAlreadyRecorded) {
		log.Info().Str("payment_intent", p.IntentID).Msg("payment already recorded")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	tenant := b.TenantID.String()
	events.Emit(ctx, s.Events, events.Subject(tenant, "booking", "paid"), &b)
	s.Metrics.PaymentReceived(strings.ToUpper(p.Currency), p.AmountCents)
	if confirmed {
		events.Emit(ctx, s.Events, events.Subject(tenant, "booking", domain.BookingConfirmed), &b)
		s.Metrics.BookingTransition(domain.BookingConfirmed)
	}
	return true, nil
}

var errAlreadyRecorded = errors.New("payment already recorded")

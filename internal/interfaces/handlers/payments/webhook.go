package payments

import (
	"encoding/json"
	"fmt"
	"time"

	bookingsvc "buffr-host/internal/application/booking"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// signatureTolerance bounds the age of a signed webhook.
const signatureTolerance = 5 * time.Minute

type WebhookHandler struct {
	Bookings      *bookingsvc.Service
	WebhookSecret string
}

// HandleWebhook POST /api/v1/stripe/webhook. The raw body must reach this
// handler untouched so the signature can be checked.
func (wh *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	rawBody := c.BodyRaw()
	sig := c.Get("Stripe-Signature")

	if len(rawBody) == 0 {
		log.Warn().Msg("Stripe webhook received empty body")
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: empty body")
	}

	event, err := webhook.ConstructEventWithOptions(rawBody, sig, wh.WebhookSecret, webhook.ConstructEventOptions{
		Tolerance:                signatureTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Warn().Err(err).Bool("has_sig", sig != "").Bool("has_secret", wh.WebhookSecret != "").Msg("Stripe webhook verification failed")
		return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if event.Data == nil || json.Unmarshal(event.Data.Raw, &pi) != nil {
			log.Warn().Str("event_id", event.ID).Msg("payment intent payload unreadable")
			break
		}
		// Domain failures still answer 200 so Stripe stops retrying.
		if err := wh.handlePaymentIntentSucceeded(c, &pi, event.ID, event.Data.Raw); err != nil {
			log.Error().Err(err).Str("event_id", event.ID).Str("payment_intent", pi.ID).Msg("payment not applied")
		}
	case "payment_intent.payment_failed":
		log.Info().Str("event_id", event.ID).Msg("payment intent failed")
	}

	return c.Status(fiber.StatusOK).SendString("ok")
}

func (wh *WebhookHandler) handlePaymentIntentSucceeded(c *fiber.Ctx, pi *stripe.PaymentIntent, eventID string, raw []byte) error {
	bookingID, err := uuid.Parse(pi.Metadata["booking_id"])
	if err != nil {
		// Not one of ours.
		return nil
	}
	applied, err := wh.Bookings.RecordPayment(c.UserContext(), bookingsvc.PaymentRecord{
		IntentID:    pi.ID,
		EventID:     eventID,
		BookingID:   bookingID,
		AmountCents: pi.AmountReceived,
		Currency:    string(pi.Currency),
		Status:      string(pi.Status),
		Raw:         raw,
	})
	if err != nil {
		return err
	}
	if !applied {
		log.Info().Str("payment_intent", pi.ID).Msg("payment already recorded")
	}
	return nil
}

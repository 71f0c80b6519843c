// Package emails sends transactional email through the Brevo (Sendinblue) API.
package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest is the Brevo v3 transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoContact   `json:"sender"`
	To          []BrevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	ReplyTo     *BrevoContact  `json:"replyTo,omitempty"`
}

type BrevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// BookingNotice carries what the guest sees in a booking confirmation.
type BookingNotice struct {
	GuestName    string
	GuestEmail   string
	PropertyName string
	Reference    string
	RoomNumber   string
	CheckIn      time.Time
	CheckOut     time.Time
	Nights       int
	Total        float64
	Currency     string
	HoldExpires  *time.Time
}

// Sender sends transactional emails. A nil Sender means email is disabled.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, firstName string) error
	SendInvite(ctx context.Context, toEmail, inviteLink, tenantName, role, subject string) error
	SendBookingConfirmation(ctx context.Context, n BookingNotice) error
}

// BrevoClient sends via the Brevo API. Without an API key every send is a no-op.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	// BaseURL overrides the Brevo endpoint (tests).
	BaseURL string
	Client  *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@buffr.ai"
}

func (c *BrevoClient) endpoint() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return brevoAPI
}

func (c *BrevoClient) send(ctx context.Context, to BrevoContact, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoContact{Email: c.from(), Name: "Buffr Host"},
		To:          []BrevoContact{to},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoContact{Email: "support@buffr.ai", Name: "Buffr Host Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome is sent after registration.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, firstName string) error {
	if firstName == "" {
		firstName = "there"
	}
	return c.send(ctx, BrevoContact{Email: toEmail}, "Welcome to Buffr Host", EmailLayout(welcomeContent(firstName)))
}

// SendInvite sends a staff invitation. The subject differs for first send and reminder.
func (c *BrevoClient) SendInvite(ctx context.Context, toEmail, inviteLink, tenantName, role, subject string) error {
	return c.send(ctx, BrevoContact{Email: toEmail}, subject, EmailLayout(invitationContent(inviteLink, tenantName, role)))
}

// SendBookingConfirmation tells the guest their booking is received.
func (c *BrevoClient) SendBookingConfirmation(ctx context.Context, n BookingNotice) error {
	subject := fmt.Sprintf("Your booking at %s (%s)", n.PropertyName, n.Reference)
	return c.send(ctx, BrevoContact{Email: n.GuestEmail, Name: n.GuestName}, subject, EmailLayout(bookingContent(n)))
}

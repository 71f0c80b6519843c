package booking

import (
	"errors"
	"time"

	bookingsvc "buffr-host/internal/application/booking"
	propertysvc "buffr-host/internal/application/property"
	roomsvc "buffr-host/internal/application/room"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/response"
	"buffr-host/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles booking handlers with dependencies.
type Handlers struct {
	Service *bookingsvc.Service
}

var statuses = response.StatusMap{
	bookingsvc.ErrBookingNotFound.Error():       fiber.StatusNotFound,
	roomsvc.ErrRoomNotFound.Error():             fiber.StatusNotFound,
	propertysvc.ErrPropertyNotFound.Error():     fiber.StatusNotFound,
	bookingsvc.ErrGuestRequired.Error():         fiber.StatusBadRequest,
	bookingsvc.ErrInvalidGuestEmail.Error():     fiber.StatusBadRequest,
	bookingsvc.ErrInvalidStay.Error():           fiber.StatusBadRequest,
	bookingsvc.ErrCheckInInPast.Error():         fiber.StatusBadRequest,
	bookingsvc.ErrInvalidGuests.Error():         fiber.StatusBadRequest,
	bookingsvc.ErrRoomOutOfService.Error():      fiber.StatusConflict,
	bookingsvc.ErrRoomNotAvailable.Error():      fiber.StatusConflict,
	bookingsvc.ErrTooEarlyToCheckIn.Error():     fiber.StatusConflict,
	bookingsvc.ErrNotPayable.Error():            fiber.StatusConflict,
	bookingsvc.ErrNothingOutstanding.Error():    fiber.StatusConflict,
	bookingsvc.ErrPaymentsNotConfigured.Error(): fiber.StatusNotImplemented,
}

func fail(c *fiber.Ctx, err error) error {
	var te *bookingsvc.TransitionError
	if errors.As(err, &te) {
		return response.Error(c, te.Error(), fiber.StatusConflict, nil)
	}
	return response.FromError(c, err, statuses)
}

type createBody struct {
	RoomID     string  `json:"room_id"`
	GuestName  string  `json:"guest_name"`
	GuestEmail string  `json:"guest_email"`
	GuestPhone *string `json:"guest_phone"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Guests     int     `json:"guests"`
	Notes      *string `json:"notes"`
}

// Create POST /api/v1/bookings and POST /api/bookings (manage_bookings).
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body createBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	roomID, err := uuid.Parse(body.RoomID)
	if err != nil {
		return response.Error(c, "Invalid room ID", fiber.StatusBadRequest, nil)
	}
	checkIn, ok1 := validation.ParseDate(body.CheckIn)
	checkOut, ok2 := validation.ParseDate(body.CheckOut)
	if !ok1 || !ok2 {
		return response.Error(c, "check_in and check_out must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}
	if body.Guests == 0 {
		body.Guests = 1
	}

	actor := middleware.CurrentActor(c)
	b, err := h.Service.Create(c.UserContext(), *actor.TenantID, bookingsvc.CreateInput{
		RoomID:     roomID,
		GuestName:  body.GuestName,
		GuestEmail: body.GuestEmail,
		GuestPhone: body.GuestPhone,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     body.Guests,
		Notes:      body.Notes,
		ActorID:    actor.UserID,
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Booking created successfully", b, nil)
}

// List GET /api/v1/bookings?property_id=&status=&from=&to=.
func (h *Handlers) List(c *fiber.Ctx) error {
	var f bookingsvc.ListFilter
	if v := c.Query("property_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid property ID", fiber.StatusBadRequest, nil)
		}
		f.PropertyID = &id
	}
	f.Status = c.Query("status")
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := c.Query(q.name)
		if v == "" {
			continue
		}
		d, ok := validation.ParseDate(v)
		if !ok {
			return response.Error(c, q.name+" must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
		}
		*q.dst = &d
	}

	actor := middleware.CurrentActor(c)
	out, err := h.Service.List(c.UserContext(), *actor.TenantID, f)
	if err != nil {
		return fail(c, err)
	}
	return response.List(c, "Bookings fetched successfully", out)
}

// Get GET /api/v1/bookings/:id.
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid booking ID", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	b, err := h.Service.Get(c.UserContext(), *actor.TenantID, id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Booking fetched successfully", b, nil)
}

// Transition returns the handler for POST /api/v1/bookings/:id/<action>.
func (h *Handlers) Transition(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return response.Error(c, "Invalid booking ID", fiber.StatusBadRequest, nil)
		}
		var body struct {
			Reason string `json:"reason"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
			}
		}
		actor := middleware.CurrentActor(c)
		b, err := h.Service.Transition(c.UserContext(), *actor.TenantID, id, action, actor.UserID, body.Reason)
		if err != nil {
			return fail(c, err)
		}
		return response.Success(c, "Booking "+b.Status, b, nil)
	}
}

// PaymentIntent POST /api/v1/bookings/:id/payment-intent (take_payment).
func (h *Handlers) PaymentIntent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid booking ID", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	pi, err := h.Service.CreatePaymentIntent(c.UserContext(), *actor.TenantID, id)
	if err != nil {
		if errors.Is(err, bookingsvc.ErrPaymentsNotConfigured) {
			return response.Error(c, err.Error(), fiber.StatusNotImplemented, nil)
		}
		if _, known := statuses[err.Error()]; !known {
			return response.Error(c, "Payment provider error", fiber.StatusBadGateway, nil)
		}
		return fail(c, err)
	}
	return response.Success(c, "Payment intent created", pi, nil)
}

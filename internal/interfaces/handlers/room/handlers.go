package room

import (
	"strconv"

	propertysvc "buffr-host/internal/application/property"
	roomsvc "buffr-host/internal/application/room"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/response"
	"buffr-host/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles room and availability handlers.
type Handlers struct {
	Service *roomsvc.Service
}

var statuses = response.StatusMap{
	propertysvc.ErrPropertyNotFound.Error(): fiber.StatusNotFound,
	roomsvc.ErrRoomNotFound.Error():         fiber.StatusNotFound,
	roomsvc.ErrRoomFieldsRequired.Error():   fiber.StatusBadRequest,
	roomsvc.ErrInvalidCapacity.Error():      fiber.StatusBadRequest,
	roomsvc.ErrInvalidRate.Error():          fiber.StatusBadRequest,
	roomsvc.ErrInvalidRoomStatus.Error():    fiber.StatusBadRequest,
	roomsvc.ErrNotLodging.Error():           fiber.StatusBadRequest,
	roomsvc.ErrInvalidStayDates.Error():     fiber.StatusBadRequest,
	roomsvc.ErrInvalidGuests.Error():        fiber.StatusBadRequest,
	roomsvc.ErrNoRoomUpdateFields.Error():   fiber.StatusBadRequest,
	roomsvc.ErrRoomNumberTaken.Error():      fiber.StatusConflict,
}

// Create POST /api/v1/properties/:id/rooms (manage_rooms).
func (h *Handlers) Create(c *fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid property ID", fiber.StatusBadRequest, nil)
	}
	var in roomsvc.CreateRoomInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, roomsvc.ErrRoomFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	r, err := h.Service.Create(c.UserContext(), *actor.TenantID, propertyID, in)
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.SuccessCreated(c, "Room created successfully", r, nil)
}

// List GET /api/v1/properties/:id/rooms?status=.
func (h *Handlers) List(c *fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid property ID", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	out, err := h.Service.List(c.UserContext(), *actor.TenantID, propertyID, c.Query("status"))
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.List(c, "Rooms fetched successfully", out)
}

// Update PATCH /api/v1/rooms/:id (manage_rooms).
func (h *Handlers) Update(c *fiber.Ctx) error {
	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid room ID", fiber.StatusBadRequest, nil)
	}
	var in roomsvc.UpdateRoomInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, roomsvc.ErrNoRoomUpdateFields.Error(), fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	r, err := h.Service.Update(c.UserContext(), *actor.TenantID, roomID, in)
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.Success(c, "Room updated successfully", r, nil)
}

// Availability GET /api/v1/properties/:id/availability?check_in=&check_out=&guests=.
func (h *Handlers) Availability(c *fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid property ID", fiber.StatusBadRequest, nil)
	}
	checkIn, ok1 := validation.ParseDate(c.Query("check_in"))
	checkOut, ok2 := validation.ParseDate(c.Query("check_out"))
	if !ok1 || !ok2 {
		return response.Error(c, "check_in and check_out must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}
	guests := 1
	if g := c.Query("guests"); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil {
			return response.Error(c, roomsvc.ErrInvalidGuests.Error(), fiber.StatusBadRequest, nil)
		}
		guests = n
	}

	actor := middleware.CurrentActor(c)
	rooms, err := h.Service.Available(c.UserContext(), *actor.TenantID, propertyID, roomsvc.AvailabilityQuery{
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   guests,
	})
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	meta := fiber.Map{
		"count":     len(rooms),
		"check_in":  checkIn.Format(validation.DateLayout),
		"check_out": checkOut.Format(validation.DateLayout),
		"nights":    int(checkOut.Sub(checkIn).Hours() / 24),
		"guests":    guests,
	}
	return response.Success(c, "Availability fetched successfully", rooms, meta)
}

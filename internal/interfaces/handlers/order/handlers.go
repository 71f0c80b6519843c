package order

import (
	"errors"

	menusvc "buffr-host/internal/application/menu"
	ordersvc "buffr-host/internal/application/order"
	propertysvc "buffr-host/internal/application/property"
	roomsvc "buffr-host/internal/application/room"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *ordersvc.Service
}

var statuses = response.StatusMap{
	ordersvc.ErrOrderNotFound.Error():       fiber.StatusNotFound,
	propertysvc.ErrPropertyNotFound.Error(): fiber.StatusNotFound,
	roomsvc.ErrRoomNotFound.Error():         fiber.StatusNotFound,
	menusvc.ErrMenuItemNotFound.Error():     fiber.StatusBadRequest,
	ordersvc.ErrNotRestaurant.Error():       fiber.StatusBadRequest,
	ordersvc.ErrDestinationMissing.Error():  fiber.StatusBadRequest,
	ordersvc.ErrNoItems.Error():             fiber.StatusBadRequest,
	ordersvc.ErrInvalidQuantity.Error():     fiber.StatusBadRequest,
	ordersvc.ErrItemUnavailable.Error():     fiber.StatusBadRequest,
	ordersvc.ErrInvalidOrderStatus.Error():  fiber.StatusBadRequest,
}

func fail(c *fiber.Ctx, err error) error {
	var te *ordersvc.TransitionError
	if errors.As(err, &te) {
		return response.Error(c, te.Error(), fiber.StatusConflict, nil)
	}
	return response.FromError(c, err, statuses)
}

type createBody struct {
	PropertyID  string               `json:"property_id"`
	TableNumber *string              `json:"table_number"`
	RoomID      *string              `json:"room_id"`
	Items       []ordersvc.ItemInput `json:"items"`
	Notes       *string              `json:"notes"`
}

// Create POST /api/v1/orders (manage_orders).
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body createBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	propertyID, err := uuid.Parse(body.PropertyID)
	if err != nil {
		return response.Error(c, "Invalid property ID", fiber.StatusBadRequest, nil)
	}
	in := ordersvc.CreateInput{
		PropertyID:  propertyID,
		TableNumber: body.TableNumber,
		Items:       body.Items,
		Notes:       body.Notes,
	}
	if body.RoomID != nil && *body.RoomID != "" {
		roomID, err := uuid.Parse(*body.RoomID)
		if err != nil {
			return response.Error(c, "Invalid room ID", fiber.StatusBadRequest, nil)
		}
		in.RoomID = &roomID
	}

	actor := middleware.CurrentActor(c)
	in.ActorID = actor.UserID
	o, err := h.Service.Create(c.UserContext(), *actor.TenantID, in)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Order created successfully", o, nil)
}

// List GET /api/v1/orders?property_id=&status=.
func (h *Handlers) List(c *fiber.Ctx) error {
	var f ordersvc.ListFilter
	if v := c.Query("property_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid property ID", fiber.StatusBadRequest, nil)
		}
		f.PropertyID = &id
	}
	f.Status = c.Query("status")
	actor := middleware.CurrentActor(c)
	out, err := h.Service.List(c.UserContext(), *actor.TenantID, f)
	if err != nil {
		return fail(c, err)
	}
	return response.List(c, "Orders fetched successfully", out)
}

// Get GET /api/v1/orders/:id.
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid order ID", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	o, err := h.Service.Get(c.UserContext(), *actor.TenantID, id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Order fetched successfully", o, nil)
}

// UpdateStatus PATCH /api/v1/orders/:id/status (manage_orders).
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid order ID", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return response.Error(c, "status is required", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	o, err := h.Service.UpdateStatus(c.UserContext(), *actor.TenantID, id, body.Status)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Order status updated", o, nil)
}

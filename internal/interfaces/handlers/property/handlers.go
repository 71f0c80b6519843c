package property

import (
	propertysvc "buffr-host/internal/application/property"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles property handlers with dependencies.
type Handlers struct {
	Service *propertysvc.Service
}

var statuses = response.StatusMap{
	propertysvc.ErrPropertyNotFound.Error():       fiber.StatusNotFound,
	propertysvc.ErrNameAndTypeRequired.Error():    fiber.StatusBadRequest,
	propertysvc.ErrInvalidPropertyType.Error():    fiber.StatusBadRequest,
	propertysvc.ErrInvalidPropertyStatus.Error():  fiber.StatusBadRequest,
	propertysvc.ErrInvalidClock.Error():           fiber.StatusBadRequest,
	propertysvc.ErrInvalidCurrency.Error():        fiber.StatusBadRequest,
	propertysvc.ErrInvalidPropertyEmail.Error():   fiber.StatusBadRequest,
	propertysvc.ErrNoUpdateFields.Error():         fiber.StatusBadRequest,
	propertysvc.ErrPropertyNameTaken.Error():      fiber.StatusConflict,
	propertysvc.ErrPropertyHasActiveStays.Error(): fiber.StatusConflict,
}

// Create POST /api/v1/properties (manage_properties).
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in propertysvc.CreatePropertyInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, propertysvc.ErrNameAndTypeRequired.Error(), fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	p, err := h.Service.Create(c.UserContext(), *actor.TenantID, in)
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.SuccessCreated(c, "Property created successfully", p, nil)
}

// List GET /api/v1/properties?type=&status=.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	out, err := h.Service.List(c.UserContext(), *actor.TenantID, propertysvc.ListFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
	})
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.List(c, "Properties fetched successfully", out)
}

// Get GET /api/v1/properties/:id and GET /api/hotels/:id.
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid property ID", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	p, err := h.Service.Get(c.UserContext(), *actor.TenantID, id)
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.Success(c, "Property fetched successfully", p, nil)
}

// Update PUT /api/v1/properties/:id and POST /api/hotels/:id (manage_properties).
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid property ID", fiber.StatusBadRequest, nil)
	}
	var in propertysvc.UpdatePropertyInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, propertysvc.ErrNoUpdateFields.Error(), fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	p, err := h.Service.Update(c.UserContext(), *actor.TenantID, id, in)
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.Success(c, "Property updated successfully", p, nil)
}

// Delete DELETE /api/v1/properties/:id (manage_properties).
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid property ID", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	if err := h.Service.Delete(c.UserContext(), *actor.TenantID, id); err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.Success(c, "Property deleted successfully", fiber.Map{"property_id": id}, nil)
}

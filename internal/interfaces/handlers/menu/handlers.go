package menu

import (
	menusvc "buffr-host/internal/application/menu"
	propertysvc "buffr-host/internal/application/property"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *menusvc.Service
}

var statuses = response.StatusMap{
	propertysvc.ErrPropertyNotFound.Error(): fiber.StatusNotFound,
	menusvc.ErrMenuItemNotFound.Error():     fiber.StatusNotFound,
	menusvc.ErrMenuFieldsRequired.Error():   fiber.StatusBadRequest,
	menusvc.ErrInvalidPrice.Error():         fiber.StatusBadRequest,
	menusvc.ErrNotRestaurant.Error():        fiber.StatusBadRequest,
	menusvc.ErrNoMenuUpdateFields.Error():   fiber.StatusBadRequest,
}

// Create POST /api/v1/properties/:id/menu (manage_menu).
func (h *Handlers) Create(c *fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid property ID", fiber.StatusBadRequest, nil)
	}
	var in menusvc.CreateItemInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, menusvc.ErrMenuFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	m, err := h.Service.Create(c.UserContext(), *actor.TenantID, propertyID, in)
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.SuccessCreated(c, "Menu item created successfully", m, nil)
}

// List GET /api/v1/properties/:id/menu?available=true.
func (h *Handlers) List(c *fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid property ID", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	out, err := h.Service.List(c.UserContext(), *actor.TenantID, propertyID, c.QueryBool("available"))
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.List(c, "Menu fetched successfully", out)
}

// Update PATCH /api/v1/menu/:id (manage_menu).
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid menu item ID", fiber.StatusBadRequest, nil)
	}
	var in menusvc.UpdateItemInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, menusvc.ErrNoMenuUpdateFields.Error(), fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	m, err := h.Service.Update(c.UserContext(), *actor.TenantID, id, in)
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.Success(c, "Menu item updated successfully", m, nil)
}

// Delete DELETE /api/v1/menu/:id (manage_menu).
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid menu item ID", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	if err := h.Service.Delete(c.UserContext(), *actor.TenantID, id); err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.Success(c, "Menu item deleted successfully", fiber.Map{"menu_item_id": id}, nil)
}

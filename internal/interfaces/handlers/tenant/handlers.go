package tenant

import (
	tenantsvc "buffr-host/internal/application/tenant"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/constants"
	"buffr-host/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers bundles tenant handlers with dependencies.
type Handlers struct {
	Service *tenantsvc.Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

var statuses = response.StatusMap{
	tenantsvc.ErrNameAndCountryRequired.Error(): fiber.StatusBadRequest,
	tenantsvc.ErrInvalidCountryCode.Error():     fiber.StatusBadRequest,
	tenantsvc.ErrAlreadyInTenant.Error():        fiber.StatusBadRequest,
	tenantsvc.ErrInvalidContactEmail.Error():    fiber.StatusBadRequest,
	tenantsvc.ErrNoUpdateFields.Error():         fiber.StatusBadRequest,
	tenantsvc.ErrNoValidFields.Error():          fiber.StatusBadRequest,
	tenantsvc.ErrTenantNameTaken.Error():        fiber.StatusConflict,
	tenantsvc.ErrTenantNotFound.Error():         fiber.StatusNotFound,
}

// CreateTenant POST /api/v1/tenants. The creator becomes owner, so the session is regenerated.
func (h *Handlers) CreateTenant(c *fiber.Ctx) error {
	var in tenantsvc.CreateTenantInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, tenantsvc.ErrNameAndCountryRequired.Error(), fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	t, err := h.Service.CreateTenant(c.UserContext(), in, actor.UserID)
	if err != nil {
		return response.FromError(c, err, statuses)
	}

	actor.TenantID = &t.TenantID
	actor.Role = constants.Owner
	middleware.StartSession(c, h.Rdb, h.Config, actor.ToSessionUser())

	return response.SuccessCreated(c, "Tenant created successfully", t, nil)
}

// ViewTenant GET /api/v1/tenants/current.
func (h *Handlers) ViewTenant(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	t, err := h.Service.GetTenant(c.UserContext(), *actor.TenantID)
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.Success(c, "Tenant fetched successfully", t, nil)
}

// UpdateTenant PATCH /api/v1/tenants/current (update_tenant).
func (h *Handlers) UpdateTenant(c *fiber.Ctx) error {
	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, tenantsvc.ErrNoUpdateFields.Error(), fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	t, err := h.Service.UpdateTenant(c.UserContext(), *actor.TenantID, body)
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.Success(c, "Tenant updated successfully", t, nil)
}

package property

import (
	"testing"

	propertysvc "buffr-host/internal/application/property"
	"buffr-host/internal/infrastructure/database/databasetest"
	"buffr-host/internal/interfaces/handlers/handlertest"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T, role string, tenantID uuid.UUID) *fiber.App {
	db := databasetest.Open(t)
	h := &Handlers{Service: &propertysvc.Service{DB: db}}
	app := fiber.New()
	app.Use(handlertest.AsUser(uuid.New(), role, &tenantID))
	v1 := app.Group("/api/v1/properties", middleware.RequireTenant())
	v1.Post("/", middleware.AuthorizePermission(constants.ManageProperties), h.Create)
	v1.Get("/", middleware.AuthorizePermission(constants.ViewData), h.List)
	v1.Get("/:id", middleware.AuthorizePermission(constants.ViewData), h.Get)
	v1.Put("/:id", middleware.AuthorizePermission(constants.ManageProperties), h.Update)
	v1.Delete("/:id", middleware.AuthorizePermission(constants.ManageProperties), h.Delete)
	hotels := app.Group("/api/hotels", middleware.RequireTenant())
	hotels.Get("/:id", middleware.AuthorizePermission(constants.ViewData), h.Get)
	hotels.Post("/:id", middleware.AuthorizePermission(constants.ManageProperties), h.Update)
	return app
}

func TestPropertyCRUD(t *testing.T) {
	app := setupApp(t, constants.Owner, uuid.New())

	code, out := handlertest.Call(t, app, "POST", "/api/v1/properties/", map[string]interface{}{
		"name": "Etuna Guesthouse", "type": "guesthouse", "city": "Ongwediva",
	})
	require.Equal(t, fiber.StatusCreated, code, out)
	p := handlertest.Data(out)
	assert.Equal(t, "etuna-guesthouse", p["slug"])
	assert.Equal(t, "NAD", p["currency"])
	id := p["property_id"].(string)

	code, out = handlertest.Call(t, app, "POST", "/api/v1/properties/", map[string]interface{}{
		"name": "Etuna Guesthouse", "type": "hotel",
	})
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, propertysvc.ErrPropertyNameTaken.Error(), handlertest.Message(out))

	code, _ = handlertest.Call(t, app, "POST", "/api/v1/properties/", map[string]interface{}{
		"name": "Campsite", "type": "campsite",
	})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, out = handlertest.Call(t, app, "GET", "/api/v1/properties/?type=guesthouse", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"], 1)

	code, out = handlertest.Call(t, app, "GET", "/api/hotels/"+id, nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Etuna Guesthouse", handlertest.Data(out)["name"])

	code, out = handlertest.Call(t, app, "POST", "/api/hotels/"+id, map[string]interface{}{"check_in_time": "15:00"})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "15:00", handlertest.Data(out)["check_in_time"])

	code, _ = handlertest.Call(t, app, "PUT", "/api/v1/properties/"+id, map[string]interface{}{"check_out_time": "25:00"})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = handlertest.Call(t, app, "DELETE", "/api/v1/properties/"+id, nil)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = handlertest.Call(t, app, "GET", "/api/v1/properties/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestPropertyInvalidID(t *testing.T) {
	app := setupApp(t, constants.Owner, uuid.New())
	code, out := handlertest.Call(t, app, "GET", "/api/v1/properties/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Invalid property ID", handlertest.Message(out))
}

func TestPropertyCreateForbiddenForStaff(t *testing.T) {
	app := setupApp(t, constants.Staff, uuid.New())
	code, _ := handlertest.Call(t, app, "POST", "/api/v1/properties/", map[string]interface{}{
		"name": "Etuna", "type": "hotel",
	})
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = handlertest.Call(t, app, "GET", "/api/v1/properties/", nil)
	assert.Equal(t, fiber.StatusOK, code)
}

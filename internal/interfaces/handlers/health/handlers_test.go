package health

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	healthsvc "buffr-host/internal/application/health"
	"buffr-host/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHealthHandlers(t *testing.T) *Handlers {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return &Handlers{
		Collector:      &healthsvc.Collector{Rdb: rdb},
		Rdb:            rdb,
		HealthAdminKey: "test-admin-key",
	}
}

func get(t *testing.T, app *fiber.App, path string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestReset_Unauthorized(t *testing.T) {
	h := setupHealthHandlers(t)
	app := fiber.New()
	app.Get("/reset", h.Reset)

	code, body := get(t, app, "/reset")
	assert.Equal(t, fiber.StatusForbidden, code)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "Unauthorized", out["error"].(map[string]interface{})["message"])

	code, _ = get(t, app, "/reset?key=wrong")
	assert.Equal(t, fiber.StatusForbidden, code)

	h.HealthAdminKey = ""
	code, _ = get(t, app, "/reset?key=")
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestReset_Success(t *testing.T) {
	h := setupHealthHandlers(t)
	app := fiber.New()
	app.Get("/reset", h.Reset)

	ctx := context.Background()
	require.NoError(t, h.Rdb.Set(ctx, middleware.KeyReqTotal, "5", 0).Err())
	require.NoError(t, h.Rdb.LPush(ctx, middleware.KeyErrorLog, `{"message":"boom"}`).Err())

	code, body := get(t, app, "/reset?key=test-admin-key")
	require.Equal(t, fiber.StatusOK, code)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Stats reset successfully", out["message"])

	_, err := h.Rdb.Get(ctx, middleware.KeyReqTotal).Result()
	assert.ErrorIs(t, err, redis.Nil)
	n, err := h.Rdb.LLen(ctx, middleware.KeyErrorLog).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = h.Rdb.Get(ctx, middleware.KeyStartTime).Result()
	assert.NoError(t, err)
}

func TestJSON_ReturnsStructure(t *testing.T) {
	h := setupHealthHandlers(t)
	app := fiber.New()
	app.Get("/health/json", h.JSON)

	code, body := get(t, app, "/health/json")
	require.Equal(t, fiber.StatusOK, code)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "buffr-host-api", out["service"])
	assert.Equal(t, healthsvc.StatusIssue, out["status"])
	deps := out["dependencies"].(map[string]interface{})
	assert.Equal(t, "connected", deps["redis"].(map[string]interface{})["status"])
	assert.Equal(t, "disconnected", deps["database"].(map[string]interface{})["status"])
	assert.Contains(t, out, "runtime")
	assert.Contains(t, out, "traffic")
}

func TestErrors_ReturnsArray(t *testing.T) {
	h := setupHealthHandlers(t)
	app := fiber.New()
	app.Get("/health/errors", h.Errors)

	code, body := get(t, app, "/health/errors")
	require.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body))

	ctx := context.Background()
	h.Rdb.LPush(ctx, middleware.KeyErrorLog, `{"time":"2026-10-01T12:00:00Z","path":"/api/v1/bookings","method":"POST","message":"older"}`)
	h.Rdb.LPush(ctx, middleware.KeyErrorLog, `not json`)
	h.Rdb.LPush(ctx, middleware.KeyErrorLog, `{"time":"2026-10-01T12:05:00Z","path":"/api/v1/orders","method":"GET","message":"newer"}`)

	_, body = get(t, app, "/health/errors")
	var arr []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &arr))
	require.Len(t, arr, 2)
	assert.Equal(t, "newer", arr[0]["message"])
	assert.Equal(t, "older", arr[1]["message"])
}

func TestDashboard_ReturnsHTML(t *testing.T) {
	h := setupHealthHandlers(t)
	app := fiber.New()
	app.Get("/", h.Dashboard)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	assert.Contains(t, html, "Buffr Host")
	assert.Contains(t, html, "System Issues Detected")
	assert.Contains(t, html, "/health/json")
	assert.Contains(t, html, "/health/errors")
}

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"buffr-host/internal/config"
	"buffr-host/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	a, err := CreateApp(&config.Config{
		Env:            "test",
		RedisURL:       "redis://" + mr.Addr(),
		DatabaseURL:    ":memory:",
		DBMaxConns:     1,
		AutoMigrate:    true,
		HealthAdminKey: "admin",
		InviteBaseURL:  "https://host.buffr.ai",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// client carries the session cookie between requests.
type client struct {
	t      *testing.T
	app    *App
	cookie string
}

func (c *client) do(method, path string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	resp, err := c.app.Fiber.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.SessionCookieName {
			c.cookie = ck.Name + "=" + ck.Value
		}
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	out := map[string]interface{}{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func data(out map[string]interface{}) map[string]interface{} {
	d, _ := out["data"].(map[string]interface{})
	return d
}

func TestBookingFlow(t *testing.T) {
	a := newTestApp(t)
	c := &client{t: t, app: a}

	code, _ := c.do("GET", "/api/v1/properties", nil)
	assert.Equal(t, 401, code)

	code, out := c.do("POST", "/api/v1/users/register", map[string]string{
		"user_name": "ndapewa", "email": "ndapewa@etuna.example", "password": "Etuna#2026", "fullname": "Ndapewa Shikongo",
	})
	require.Equal(t, 201, code, out)

	code, _ = c.do("GET", "/api/v1/properties", nil)
	assert.Equal(t, 403, code)

	code, out = c.do("POST", "/api/v1/tenants", map[string]string{"name": "Etuna Group", "country_code": "NA"})
	require.Equal(t, 201, code, out)

	code, out = c.do("POST", "/api/v1/properties", map[string]interface{}{"name": "Etuna Guesthouse", "type": "guesthouse", "city": "Ongwediva"})
	require.Equal(t, 201, code, out)
	propertyID := data(out)["property_id"].(string)

	code, out = c.do("GET", "/api/hotels/"+propertyID, nil)
	require.Equal(t, 200, code, out)
	assert.Equal(t, "Etuna Guesthouse", data(out)["name"])

	code, out = c.do("POST", "/api/v1/properties/"+propertyID+"/rooms", map[string]interface{}{
		"room_number": "1", "room_type": "double", "capacity": 2, "nightly_rate": 750,
	})
	require.Equal(t, 201, code, out)
	roomID := data(out)["room_id"].(string)

	code, out = c.do("GET", "/api/v1/properties/"+propertyID+"/availability?check_in=2030-01-10&check_out=2030-01-12&guests=2", nil)
	require.Equal(t, 200, code, out)
	assert.Len(t, out["data"], 1)

	booking := map[string]interface{}{
		"room_id": roomID, "guest_name": "Tangeni Amupolo", "guest_email": "tangeni@example.com",
		"check_in": "2030-01-10", "check_out": "2030-01-12", "guests": 2,
	}
	code, out = c.do("POST", "/api/bookings", booking)
	require.Equal(t, 201, code, out)
	bookingID := data(out)["booking_id"].(string)
	assert.Equal(t, 1500.0, data(out)["total_amount"])

	code, out = c.do("POST", "/api/v1/bookings", booking)
	assert.Equal(t, 409, code)
	assert.Equal(t, "Room is not available for the selected dates", out["error"].(map[string]interface{})["message"])

	code, out = c.do("GET", "/api/v1/properties/"+propertyID+"/availability?check_in=2030-01-11&check_out=2030-01-13", nil)
	require.Equal(t, 200, code)
	assert.Len(t, out["data"], 0)

	code, out = c.do("POST", "/api/v1/bookings/"+bookingID+"/confirm", nil)
	require.Equal(t, 200, code, out)
	assert.Equal(t, "confirmed", data(out)["status"])

	code, _ = c.do("POST", "/api/v1/bookings/"+bookingID+"/check-out", nil)
	assert.Equal(t, 409, code)

	code, out = c.do("POST", "/api/v1/bookings/"+bookingID+"/payment-intent", nil)
	assert.Equal(t, 501, code, out)

	code, out = c.do("GET", "/api/bookings?status=confirmed", nil)
	require.Equal(t, 200, code)
	assert.Len(t, out["data"], 1)

	resp, err := a.Fiber.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `buffr_bookings_created_total{property_type="guesthouse"} 1`)
	assert.Contains(t, string(body), `buffr_booking_transitions_total{status="confirmed"} 1`)
}

func TestPublicRoutes(t *testing.T) {
	a := newTestApp(t)
	c := &client{t: t, app: a}

	code, out := c.do("GET", "/health/json", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, "ok", out["status"])

	code, _ = c.do("POST", "/api/v1/invitations/public/check-token", map[string]string{"token": "missing"})
	assert.Equal(t, 400, code)

	code, _ = c.do("POST", "/api/v1/invitations/accept", map[string]string{"token": "missing"})
	assert.Equal(t, 401, code)

	code, _ = c.do("POST", "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": "x"})
	assert.Equal(t, 401, code)

	code, _ = c.do("GET", "/reset?key=nope", nil)
	assert.Equal(t, 403, code)

	code, _ = c.do("GET", "/no/such/route", nil)
	assert.Equal(t, 404, code)

	code, _ = c.do("POST", "/api/v1/stripe/webhook", map[string]string{})
	assert.Equal(t, 400, code)

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := a.Fiber.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "Buffr Host"))
}

func TestCreateApp_RequiresBackends(t *testing.T) {
	_, err := CreateApp(&config.Config{DatabaseURL: ":memory:"})
	assert.ErrorIs(t, err, ErrRedisRequired)
	_, err = CreateApp(&config.Config{RedisURL: "redis://localhost:6379"})
	assert.ErrorIs(t, err, ErrDatabaseRequired)
}

func TestUnknownAPIRoutesAre404(t *testing.T) {
	a := newTestApp(t)
	c := &client{t: t, app: a}

	for _, path := range []string{"/api/unknown", "/api/v1/nope", "/api/v2/bookings"} {
		code, out := c.do("GET", path, nil)
		assert.Equal(t, 404, code, path)
		assert.Equal(t, "error", out["status"], path)
	}

	code, _ := c.do("GET", "/api/v1/bookings", nil)
	assert.Equal(t, 401, code)
}

func TestWebhookCountedByHealthMarker(t *testing.T) {
	a := newTestApp(t)
	c := &client{t: t, app: a}
	ctx := context.Background()

	code, _ := c.do("POST", "/api/v1/stripe/webhook", map[string]string{"type": "payment_intent.succeeded"})
	require.Equal(t, 400, code)

	total, err := a.Rdb.Get(ctx, middleware.KeyReqTotal).Int()
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

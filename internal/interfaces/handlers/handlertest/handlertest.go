// Package handlertest holds helpers shared by handler tests.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// AsUser puts a session user into Locals the way the session middleware does.
// A nil tenantID leaves the user tenantless.
func AsUser(userID uuid.UUID, role string, tenantID *uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := map[string]interface{}{
			"user_id":   userID.String(),
			"fullname":  "Test User",
			"email":     "test@buffr.na",
			"role":      role,
			"tenant_id": nil,
		}
		if tenantID != nil {
			u["tenant_id"] = tenantID.String()
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// Call sends a JSON request to app and decodes the JSON envelope.
func Call(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// Data returns the data object of a success envelope.
func Data(out map[string]interface{}) map[string]interface{} {
	d, _ := out["data"].(map[string]interface{})
	return d
}

// Message returns the error message of an error envelope.
func Message(out map[string]interface{}) string {
	e, _ := out["error"].(map[string]interface{})
	m, _ := e["message"].(string)
	return m
}

package middleware

import (
	"buffr-host/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// Actor is the typed view of the session user.
type Actor struct {
	UserID   uuid.UUID
	Fullname string
	Email    string
	Role     string
	TenantID *uuid.UUID
}

// RequireAuth returns 401 unless a user is in the session.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentActor(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireTenant returns 403 when the session user has not joined a tenant yet.
func RequireTenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		a := CurrentActor(c)
		if a == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if a.TenantID == nil {
			return response.Forbidden(c, "User is not associated with any tenant")
		}
		return c.Next()
	}
}

// GetUser returns the raw session user (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentActor parses the session user. Nil when absent or malformed.
func CurrentActor(c *fiber.Ctx) *Actor {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return nil
	}
	idStr, _ := m["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil
	}
	a := &Actor{UserID: id}
	a.Fullname, _ = m["fullname"].(string)
	a.Email, _ = m["email"].(string)
	a.Role, _ = m["role"].(string)
	if t, ok := m["tenant_id"].(string); ok && t != "" {
		if tid, err := uuid.Parse(t); err == nil {
			a.TenantID = &tid
		}
	}
	return a
}

// ToSessionUser converts back to the stored shape.
func (a *Actor) ToSessionUser() SessionUser {
	u := SessionUser{UserID: a.UserID.String(), Fullname: a.Fullname, Email: a.Email, Role: a.Role}
	if a.TenantID != nil {
		s := a.TenantID.String()
		u.TenantID = &s
	}
	return u
}

package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionConfig for the Redis-backed session.
type SessionConfig struct {
	Secret            string
	RedisURL          string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "buffr.sid"
	SessionRedisPrefix = "session:"
	// UserSessionsPrefix indexes session ids per user so they can be revoked together.
	UserSessionsPrefix = "user_sessions:"
	sessionMaxAge      = 24 * time.Hour
)

// SessionUser is the shape stored in the session under "user".
type SessionUser struct {
	UserID   string  `json:"user_id"`
	Fullname string  `json:"fullname"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	TenantID *string `json:"tenant_id"`
}

// NewRedis parses a redis:// URL into a client.
func NewRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// Session loads session data from Redis into Locals and saves it back after the handler runs.
// Cookie value is "s:<id>"; a trailing ".signature" is ignored.
func Session(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		if strings.HasPrefix(sessionID, "s:") {
			parts := strings.SplitN(sessionID[2:], ".", 2)
			sessionID = parts[0]
		}

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals("session_data", data)
		if u, ok := data["user"]; ok {
			c.Locals(userLocal, u)
		} else {
			c.Locals(userLocal, nil)
		}
		c.Locals("session_id", sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		if sid, _ := c.Locals("session_id").(string); sid != "" {
			updated, _ := c.Locals("session_data").(map[string]interface{})
			if u, hasUser := updated["user"].(map[string]interface{}); hasUser {
				saveSession(context.Background(), rdb, sessionID, sid, u, updated)
			}
		}
		return nil
	}
}

// saveSession writes the session back with a fresh TTL. A regenerated id is
// created outright and replaces the old key. An existing id is only
// rewritten while its key still exists, so a session revoked mid-request
// stays revoked. The user's session index slides with the session.
func saveSession(ctx context.Context, rdb *redis.Client, loadedID, sid string, user, data map[string]interface{}) {
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	if sid != loadedID {
		if err := rdb.Set(ctx, SessionRedisPrefix+sid, b, sessionMaxAge).Err(); err != nil {
			return
		}
		if loadedID != "" {
			rdb.Del(ctx, SessionRedisPrefix+loadedID)
		}
	} else {
		saved, err := rdb.SetXX(ctx, SessionRedisPrefix+sid, b, sessionMaxAge).Result()
		if err != nil || !saved {
			return
		}
	}
	if userID, _ := user["user_id"].(string); userID != "" {
		key := UserSessionsPrefix + userID
		rdb.SAdd(ctx, key, sid)
		rdb.Expire(ctx, key, sessionMaxAge)
	}
}

// GetSessionID returns the current session ID.
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("session_id").(string)
	return sid
}

// SetSessionUser sets the user in the session. Call RegenerateSessionID first on login.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals("session_data").(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	var tenant interface{}
	if user.TenantID != nil {
		tenant = *user.TenantID
	}
	data["user"] = map[string]interface{}{
		"user_id":   user.UserID,
		"fullname":  user.Fullname,
		"email":     user.Email,
		"role":      user.Role,
		"tenant_id": tenant,
	}
	c.Locals("session_data", data)
	c.Locals(userLocal, data["user"])
}

// RegenerateSessionID creates a new session ID. The cookie value is "s:"+id.
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals("session_id", newID)
	return newID
}

// DestroySession clears session data from Locals; the caller clears the cookie and Redis key.
func DestroySession(c *fiber.Ctx) {
	c.Locals("session_data", make(map[string]interface{}))
	c.Locals(userLocal, nil)
}

// StartSession regenerates the session id, stores the user, indexes the session
// under the user and sets the cookie.
func StartSession(c *fiber.Ctx, rdb *redis.Client, cfg SessionConfig, user SessionUser) string {
	sid := RegenerateSessionID(c)
	SetSessionUser(c, user)
	if rdb != nil {
		ctx := c.UserContext()
		key := UserSessionsPrefix + user.UserID
		rdb.SAdd(ctx, key, sid)
		rdb.Expire(ctx, key, sessionMaxAge)
	}
	cookie := SessionCookieConfig(cfg)
	cookie.Value = "s:" + sid
	c.Cookie(&cookie)
	return sid
}

// DestroyUserSessions deletes every session indexed under userID.
func DestroyUserSessions(ctx context.Context, rdb *redis.Client, userID string) error {
	if rdb == nil {
		return nil
	}
	key := UserSessionsPrefix + userID
	ids, err := rdb.SMembers(ctx, key).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, SessionRedisPrefix+id)
	}
	keys = append(keys, key)
	return rdb.Del(ctx, keys...).Err()
}

// SessionCookieConfig returns the cookie options used for SetCookie/ClearCookie.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	secure := cfg.IsProduction || cfg.AllowCrossSiteDev
	return fiber.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}

package user

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	usersvc "buffr-host/internal/application/user"
	"buffr-host/internal/domain"
	"buffr-host/internal/infrastructure/database/databasetest"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*Handlers, *redis.Client, *gorm.DB) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	db := databasetest.Open(t)
	h := &Handlers{Service: &usersvc.Service{DB: db, Rdb: rdb}, Config: middleware.SessionConfig{}}
	return h, rdb, db
}

func asUser(u domain.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		su := middleware.SessionUser{UserID: u.UserID.String(), Fullname: u.Fullname, Email: u.Email, Role: u.Role}
		if u.TenantID != nil {
			s := u.TenantID.String()
			su.TenantID = &s
		}
		middleware.SetSessionUser(c, su)
		return c.Next()
	}
}

func send(t *testing.T, app *fiber.App, method, path string, body interface{}) int {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRegister(t *testing.T) {
	h, rdb, _ := setupUserTest(t)
	app := fiber.New()
	app.Use(middleware.Session(rdb))
	app.Post("/register", h.Register)

	body := map[string]string{"user_name": "u1", "email": "u1@test.com", "password": "Pass1!word", "fullname": "User One"}
	assert.Equal(t, fiber.StatusCreated, send(t, app, "POST", "/register", body))
	assert.Equal(t, fiber.StatusConflict, send(t, app, "POST", "/register", body))
	assert.Equal(t, fiber.StatusBadRequest, send(t, app, "POST", "/register", map[string]string{"email": "x@test.com"}))
}

func TestUpdateRole_ForbiddenForStaff(t *testing.T) {
	h, _, db := setupUserTest(t)
	tenant := uuid.New()
	staff := domain.User{UserName: "s", Email: "s@test.com", PasswordHash: "x", Fullname: "S", Role: constants.Staff, TenantID: &tenant}
	target := domain.User{UserName: "m", Email: "m@test.com", PasswordHash: "x", Fullname: "M", Role: constants.Manager, TenantID: &tenant}
	require.NoError(t, db.Create(&staff).Error)
	require.NoError(t, db.Create(&target).Error)

	app := fiber.New()
	app.Patch("/role", asUser(staff), middleware.RequireTenant(), middleware.AuthorizePermission(constants.AssignRole), h.UpdateRole)

	status := send(t, app, "PATCH", "/role", map[string]string{"user_id": target.UserID.String(), "role": constants.Staff})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestUpdateRole_AdminCannotPromoteToOwner(t *testing.T) {
	h, _, db := setupUserTest(t)
	tenant := uuid.New()
	admin := domain.User{UserName: "a", Email: "a@test.com", PasswordHash: "x", Fullname: "A", Role: constants.Admin, TenantID: &tenant}
	target := domain.User{UserName: "m", Email: "m@test.com", PasswordHash: "x", Fullname: "M", Role: constants.Manager, TenantID: &tenant}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&target).Error)

	app := fiber.New()
	app.Patch("/role", asUser(admin), middleware.RequireTenant(), middleware.AuthorizePermission(constants.AssignRole), h.UpdateRole)

	assert.Equal(t, fiber.StatusForbidden, send(t, app, "PATCH", "/role", map[string]string{"user_id": target.UserID.String(), "role": constants.Owner}))
	assert.Equal(t, fiber.StatusOK, send(t, app, "PATCH", "/role", map[string]string{"user_id": target.UserID.String(), "role": constants.Staff}))
	assert.Equal(t, fiber.StatusBadRequest, send(t, app, "PATCH", "/role", map[string]string{"user_id": "nope", "role": constants.Staff}))

	var got domain.User
	require.NoError(t, db.First(&got, "user_id = ?", target.UserID).Error)
	assert.Equal(t, constants.Staff, got.Role)
}

func TestRemoveMember(t *testing.T) {
	h, _, db := setupUserTest(t)
	tenant := uuid.New()
	owner := domain.User{UserName: "o", Email: "o@test.com", PasswordHash: "x", Fullname: "O", Role: constants.Owner, TenantID: &tenant}
	staff := domain.User{UserName: "s", Email: "s@test.com", PasswordHash: "x", Fullname: "S", Role: constants.Staff, TenantID: &tenant}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&staff).Error)

	app := fiber.New()
	app.Delete("/member", asUser(owner), middleware.RequireTenant(), middleware.AuthorizePermission(constants.RemoveUser), h.RemoveMember)

	assert.Equal(t, fiber.StatusBadRequest, send(t, app, "DELETE", "/member", map[string]string{"user_id": owner.UserID.String()}))
	assert.Equal(t, fiber.StatusOK, send(t, app, "DELETE", "/member", map[string]string{"user_id": staff.UserID.String()}))
	assert.Equal(t, fiber.StatusForbidden, send(t, app, "DELETE", "/member", map[string]string{"user_id": staff.UserID.String()}))
}

func TestViewAndUpdateMe(t *testing.T) {
	h, _, db := setupUserTest(t)
	me := domain.User{UserName: "me", Email: "me@test.com", PasswordHash: "x", Fullname: "Me", Role: constants.Staff}
	require.NoError(t, db.Create(&me).Error)

	app := fiber.New()
	app.Get("/me", asUser(me), h.ViewMe)
	app.Put("/me", asUser(me), h.UpdateMe)
	app.Get("/anon", h.ViewMe)

	assert.Equal(t, fiber.StatusOK, send(t, app, "GET", "/me", nil))
	assert.Equal(t, fiber.StatusUnauthorized, send(t, app, "GET", "/anon", nil))
	assert.Equal(t, fiber.StatusOK, send(t, app, "PUT", "/me", map[string]string{"fullname": "new name"}))
	assert.Equal(t, fiber.StatusBadRequest, send(t, app, "PUT", "/me", map[string]string{"email": "bad"}))
}

package user

import (
	policies "buffr-host/internal/application/policies/user"
	usersvc "buffr-host/internal/application/user"
	"buffr-host/internal/domain"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds the user service and session config for register (session + cookie).
type Handlers struct {
	Service *usersvc.Service
	Config  middleware.SessionConfig
}

var createStatus = response.StatusMap{
	"Invalid email format":                                                                           fiber.StatusBadRequest,
	"Invalid password format":                                                                        fiber.StatusBadRequest,
	"Full name is required and must be a non-empty string":                                           fiber.StatusBadRequest,
	"Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)": fiber.StatusBadRequest,
	"Username is required and must be a non-empty string":                                            fiber.StatusBadRequest,
	"Email already registered":                                                                       fiber.StatusConflict,
	"Username already registered":                                                                    fiber.StatusConflict,
}

var updateStatus = response.StatusMap{
	"Missing update fields":                               fiber.StatusBadRequest,
	"No valid update fields provided":                     fiber.StatusBadRequest,
	"Invalid email format":                                fiber.StatusBadRequest,
	"Invalid password format":                             fiber.StatusBadRequest,
	"Full name must be a non-empty string":                fiber.StatusBadRequest,
	"Full name contains invalid characters":               fiber.StatusBadRequest,
	"Username is required and must be a non-empty string": fiber.StatusBadRequest,
	"Email already registered":                            fiber.StatusConflict,
	"Username already registered":                         fiber.StatusConflict,
	"User not found":                                      fiber.StatusNotFound,
}

var governanceStatus = response.StatusMap{
	policies.ErrInvalidRole.Error():                        fiber.StatusBadRequest,
	policies.ErrOnlyOwnersCanAssignOwnerOrAdmin.Error():    fiber.StatusForbidden,
	policies.ErrTargetUserNotFound.Error():                 fiber.StatusNotFound,
	policies.ErrCannotModifyUsersOutsideYourTenant.Error(): fiber.StatusForbidden,
	policies.ErrUsersCannotModifyTheirOwnRole.Error():      fiber.StatusForbidden,
	policies.ErrTenantMustHaveAtLeastOneOwner.Error():      fiber.StatusConflict,
	policies.ErrYouCannotRemoveYourself.Error():            fiber.StatusBadRequest,
	policies.ErrUserNotFound.Error():                       fiber.StatusNotFound,
	policies.ErrUserDoesNotBelongToYourTenant.Error():      fiber.StatusForbidden,
	policies.ErrAdminsCannotRemoveAdminsOrOwners.Error():   fiber.StatusForbidden,
}

type RegisterRequest struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
}

// Register POST /api/v1/users/register creates the account and logs it in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil ||
		req.UserName == "" || req.Email == "" || req.Password == "" || req.Fullname == "" {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}

	u, err := h.Service.CreateUser(c.UserContext(), usersvc.CreateUserInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
		Fullname: req.Fullname,
	})
	if err != nil {
		return response.FromError(c, err, createStatus)
	}

	middleware.StartSession(c, h.Service.Rdb, h.Config, sessionUserOf(u))
	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": safeUser(u)}, nil)
}

// ViewMe GET /api/v1/users/me.
func (h *Handlers) ViewMe(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	u, err := h.Service.ViewUser(c.UserContext(), actor.UserID)
	if err != nil {
		return response.FromError(c, err, updateStatus)
	}
	return response.Success(c, "User found", fiber.Map{"user": safeUser(u)}, nil)
}

// UpdateMe PUT /api/v1/users/me.
func (h *Handlers) UpdateMe(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil || len(body) == 0 {
		return response.Error(c, "Missing update fields", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.UpdateUser(c.UserContext(), actor.UserID, body)
	if err != nil {
		return response.FromError(c, err, updateStatus)
	}
	// keep the session's fullname/email in step with the profile
	middleware.SetSessionUser(c, sessionUserOf(u))
	return response.Success(c, "User updated successfully", fiber.Map{"user": safeUser(u)}, nil)
}

type UpdateRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// UpdateRole PATCH /api/v1/users/role (assign_role).
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == "" || req.Role == "" {
		return response.Error(c, "user_id and role are required", fiber.StatusBadRequest, nil)
	}
	target, err := uuid.Parse(req.UserID)
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)

	u, err := h.Service.UpdateUserRole(c.UserContext(), usersvc.UpdateUserRoleInput{
		ActorUserID:  actor.UserID,
		ActorRole:    actor.Role,
		TargetUserID: target,
		TargetRole:   req.Role,
		TenantID:     *actor.TenantID,
	})
	if err != nil {
		return response.FromError(c, err, governanceStatus)
	}
	return response.Success(c, "User role updated successfully", fiber.Map{"user": safeUser(u)}, nil)
}

type RemoveMemberRequest struct {
	UserID string `json:"user_id"`
}

// RemoveMember DELETE /api/v1/users/member (remove_user).
func (h *Handlers) RemoveMember(c *fiber.Ctx) error {
	var req RemoveMemberRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return response.Error(c, "user_id is required", fiber.StatusBadRequest, nil)
	}
	target, err := uuid.Parse(req.UserID)
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)

	if err := h.Service.RemoveMember(c.UserContext(), usersvc.RemoveMemberInput{
		ActorUserID:  actor.UserID,
		ActorRole:    actor.Role,
		TargetUserID: target,
		TenantID:     *actor.TenantID,
	}); err != nil {
		return response.FromError(c, err, governanceStatus)
	}
	return response.Success(c, "User removed from tenant", nil, nil)
}

func sessionUserOf(u *domain.User) middleware.SessionUser {
	su := middleware.SessionUser{
		UserID:   u.UserID.String(),
		Fullname: u.Fullname,
		Email:    u.Email,
		Role:     u.Role,
	}
	if u.TenantID != nil {
		t := u.TenantID.String()
		su.TenantID = &t
	}
	return su
}

func safeUser(u *domain.User) fiber.Map {
	var tenantID interface{}
	if u.TenantID != nil {
		tenantID = u.TenantID.String()
	}
	return fiber.Map{
		"user_id":   u.UserID.String(),
		"fullname":  u.Fullname,
		"user_name": u.UserName,
		"email":     u.Email,
		"tenant_id": tenantID,
		"role":      u.Role,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
}

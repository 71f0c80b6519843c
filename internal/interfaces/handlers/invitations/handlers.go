package invitations

import (
	invsvc "buffr-host/internal/application/invitations"
	invitePolicies "buffr-host/internal/application/policies/invitations"
	userPolicies "buffr-host/internal/application/policies/user"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Service *invsvc.Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

var statuses = response.StatusMap{
	invsvc.ErrInvalidInviteEmail.Error():                    fiber.StatusBadRequest,
	invsvc.ErrInvitationNotFound.Error():                    fiber.StatusNotFound,
	invsvc.ErrPendingNotFound.Error():                       fiber.StatusNotFound,
	invsvc.ErrResendTooSoon.Error():                         fiber.StatusTooManyRequests,
	invsvc.ErrInvalidToken.Error():                          fiber.StatusBadRequest,
	invsvc.ErrTokenRequired.Error():                         fiber.StatusBadRequest,
	invsvc.ErrAcceptingUserNotFound.Error():                 fiber.StatusNotFound,
	invitePolicies.ErrCannotInviteYourself.Error():          fiber.StatusBadRequest,
	invitePolicies.ErrAlreadyMember.Error():                 fiber.StatusConflict,
	invitePolicies.ErrPendingInviteExists.Error():           fiber.StatusConflict,
	invitePolicies.ErrInviteEmailMismatch.Error():           fiber.StatusForbidden,
	invitePolicies.ErrInviteNoLongerValid.Error():           fiber.StatusGone,
	invitePolicies.ErrInviteExpired.Error():                 fiber.StatusGone,
	invitePolicies.ErrAlreadyInAnotherTenant.Error():        fiber.StatusConflict,
	userPolicies.ErrInvalidRole.Error():                     fiber.StatusBadRequest,
	userPolicies.ErrOnlyOwnersCanAssignOwnerOrAdmin.Error(): fiber.StatusForbidden,
}

// SendInvite POST /api/v1/invitations (invite_user).
func (h *Handlers) SendInvite(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" || body.Role == "" {
		return response.Error(c, "Email and role are required", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	inv, err := h.Service.SendInvite(c.UserContext(), invsvc.SendInviteInput{
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		ActorEmail:  actor.Email,
		TenantID:    *actor.TenantID,
		Email:       body.Email,
		Role:        body.Role,
	})
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.SuccessCreated(c, "Invitation sent successfully", inv, nil)
}

// ResendInvite POST /api/v1/invitations/resend (invite_user).
func (h *Handlers) ResendInvite(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return response.Error(c, "Email is required", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	inv, err := h.Service.ResendInvite(c.UserContext(), invsvc.ResendInviteInput{
		Email:    body.Email,
		TenantID: *actor.TenantID,
	})
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.Success(c, "Invitation resent successfully", inv, nil)
}

// RevokeInvite PATCH /api/v1/invitations/revoke (invite_user).
func (h *Handlers) RevokeInvite(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return response.Error(c, "Email is required", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	inv, err := h.Service.RevokeInvite(c.UserContext(), invsvc.RevokeInviteInput{
		Email:    body.Email,
		TenantID: *actor.TenantID,
	})
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.Success(c, "Invitation revoked successfully", inv, nil)
}

// List GET /api/v1/invitations?status= (view_data).
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	out, err := h.Service.List(c.UserContext(), *actor.TenantID, c.Query("status"))
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.List(c, "Invitations fetched successfully", out)
}

// AcceptInvite POST /api/v1/invitations/accept (auth only). The session is
// regenerated so the new tenant and role apply at once.
func (h *Handlers) AcceptInvite(c *fiber.Ctx) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&body); err != nil || body.Token == "" {
		return response.Error(c, invsvc.ErrTokenRequired.Error(), fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	res, err := h.Service.AcceptInvite(c.UserContext(), body.Token, actor.UserID)
	if err != nil {
		return response.FromError(c, err, statuses)
	}

	actor.TenantID = &res.TenantID
	actor.Role = res.Role
	middleware.StartSession(c, h.Rdb, h.Config, actor.ToSessionUser())
	return response.Success(c, "Invitation accepted successfully", res, nil)
}

// CheckToken POST /api/v1/invitations/public/check-token (no auth).
func (h *Handlers) CheckToken(c *fiber.Ctx) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&body); err != nil || body.Token == "" {
		return response.Error(c, "token is required", fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.CheckToken(c.UserContext(), body.Token)
	if err != nil {
		return response.FromError(c, err, statuses)
	}
	return response.Success(c, "Invitation token verified", res, nil)
}

package uploads

import (
	"errors"

	uploadsvc "buffr-host/internal/application/uploads"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *uploadsvc.Service
}

type uploadRequest struct {
	FileName string `json:"file_name"`
}

// UploadPropertyImage POST /api/v1/uploads/property-image
func (h *Handlers) UploadPropertyImage(c *fiber.Ctx) error {
	return h.sign(c, uploadsvc.PropertyImagesBucket)
}

// UploadTenantLogo POST /api/v1/uploads/tenant-logo
func (h *Handlers) UploadTenantLogo(c *fiber.Ctx) error {
	return h.sign(c, uploadsvc.TenantLogosBucket)
}

func (h *Handlers) sign(c *fiber.Ctx, bucket string) error {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.Error(c, "file_name is required", fiber.StatusBadRequest, nil)
	}
	actor := middleware.CurrentActor(c)

	res, err := h.Service.GetSignedUploadURL(c.UserContext(), *actor.TenantID, bucket, req.FileName)
	if errors.Is(err, uploadsvc.ErrInvalidFileName) {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	if err != nil {
		log.Error().Err(err).Str("bucket", bucket).Msg("upload: failed to generate signed URL")
		return response.Error(c, "Failed to generate upload URL", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}

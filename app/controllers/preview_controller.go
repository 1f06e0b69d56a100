package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/linkmint/linkmint/internal/pkg/security"
	"gorm.io/gorm"
)

const previewTokenTTL = time.Hour

// HandlePreviewToken serves GET /api/preview-token/:slug, issuing a signed
// token that allows viewing an unpublished product page for one hour.
func HandlePreviewToken(c *fiber.Ctx) error {
	slug := c.Params("slug")

	if _, err := repos.Product.GetBySlug(slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "product lookup failed"})
	}

	token, err := security.GeneratePreviewToken(slug, previewTokenTTL, cfg.PreviewTokenSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "token generation failed"})
	}
	return c.JSON(fiber.Map{"preview": token})
}

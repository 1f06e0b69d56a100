package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/linkmint/linkmint/app/models"
	"github.com/linkmint/linkmint/internal/pkg/cache"
	"github.com/linkmint/linkmint/internal/pkg/database"
	"github.com/linkmint/linkmint/internal/pkg/metrics"
	"github.com/linkmint/linkmint/internal/pkg/security"
	"gorm.io/gorm"
)

const productCacheTTL = 60 * time.Second

func HandleHealthz(c *fiber.Ctx) error {
	if err := database.Ping(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("database unreachable")
	}
	return c.SendString("ok")
}

// HandleProductPage serves GET /p/:slug. Unpublished products return 404
// unless the request carries a valid preview token.
func HandleProductPage(c *fiber.Ctx) error {
	slug := c.Params("slug")

	product, err := lookupProduct(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Product lookup failed")
	}

	if !product.Published {
		// A missing or bad preview token answers 404 either way so the
		// response does not reveal that an unpublished product exists.
		preview := c.Query("preview")
		if preview == "" {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		if _, err := security.VerifyPreviewToken(preview, slug, cfg.PreviewTokenSecret); err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
	}

	if !themes.ThemeExists(product.Theme) {
		return fiber.NewError(fiber.StatusInternalServerError, "Theme template missing")
	}

	metrics.ProductPageViews.Inc()

	md := product.Metadata()
	return c.Render("themes/"+product.Theme+"/product", fiber.Map{
		"Product":       product,
		"Title":         product.Title,
		"OGTitle":       md["og_title"],
		"OGDescription": md["og_description"],
		"OGImage":       md["og_image"],
		"Price":         fmt.Sprintf("%.2f", float64(product.PriceCents)/100),
		"Currency":      product.Currency,
		"Success":       c.Query("success") != "",
		"Cancel":        c.Query("cancel") != "",
	})
}

// lookupProduct reads through the redis cache; cache errors degrade to a
// plain DB read.
func lookupProduct(slug string) (*models.Product, error) {
	key := "product:" + slug
	if raw, err := cache.Get(key); err == nil && raw != "" {
		var product models.Product
		if err := json.Unmarshal([]byte(raw), &product); err == nil {
			return &product, nil
		}
	}

	product, err := repos.Product.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(product); err == nil {
		_ = cache.Set(key, string(raw), productCacheTTL)
	}
	return product, nil
}

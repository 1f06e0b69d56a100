package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/linkmint/linkmint/internal/pkg/payments"
	"gorm.io/gorm"
)

// HandleCreateCheckoutSession serves POST /api/checkout/session. It creates
// a processor checkout session for a published product and redirects the
// customer to the processor's payment page.
func HandleCreateCheckoutSession(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.FormValue("slug"))
	email := strings.TrimSpace(c.FormValue("email"))
	if slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "slug is required"})
	}

	product, err := repos.Product.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "product lookup failed"})
	}
	if !product.Published {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product not published"})
	}
	if product.PriceCents <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no price configured"})
	}

	orderPublicID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := payClient.CreateCheckoutSession(ctx, payments.CheckoutSessionInput{
		ProductTitle:  product.Title,
		PriceCents:    product.PriceCents,
		Currency:      product.Currency,
		ProductSlug:   product.Slug,
		OrderPublicID: orderPublicID,
		CustomerEmail: email,
		SuccessURL:    cfg.BaseURL + "/p/" + product.Slug + "?success=1&op=" + orderPublicID,
		CancelURL:     cfg.BaseURL + "/p/" + product.Slug + "?cancel=1",
	})
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "checkout session creation failed"})
	}

	return c.Redirect(session.URL, fiber.StatusSeeOther)
}

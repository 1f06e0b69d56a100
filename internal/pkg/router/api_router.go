package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/linkmint/linkmint/app/controllers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api")

	// Payment processor webhook: no rate limiting, signature-verified in
	// the controller; a throttled delivery would only be redelivered.
	api.Post("/payment/webhook", controllers.HandlePaymentWebhook)

	// Customer-facing endpoints get the rate limiter.
	limited := api.Group("", limiter.New())
	limited.Post("/checkout/session", controllers.HandleCreateCheckoutSession)
	limited.Get("/preview-token/:slug", controllers.HandlePreviewToken)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/linkmint/linkmint/app/controllers"
	"github.com/linkmint/linkmint/internal/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HttpRouter struct {
	cfg      *config.Config
	viewsDir string
}

func NewHttpRouter(cfg *config.Config, viewsDir string) *HttpRouter {
	return &HttpRouter{cfg: cfg, viewsDir: viewsDir}
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	controllers.InitializeControllers(h.cfg, h.viewsDir)

	app.Get("/healthz", controllers.HandleHealthz)

	// Public product pages
	app.Get("/p/:slug", controllers.HandleProductPage)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

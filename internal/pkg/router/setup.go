package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/linkmint/linkmint/internal/pkg/config"
)

// Router installs a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, cfg *config.Config, viewsDir string) {
	// Install HttpRouter first: it initializes the shared controller
	// dependencies the API routes rely on.
	setup(app, NewHttpRouter(cfg, viewsDir), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

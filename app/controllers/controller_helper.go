package controllers

import (
	"github.com/linkmint/linkmint/app/repository"
	"github.com/linkmint/linkmint/internal/pkg/catalog"
	"github.com/linkmint/linkmint/internal/pkg/config"
	"github.com/linkmint/linkmint/internal/pkg/database"
	"github.com/linkmint/linkmint/internal/pkg/dispatch"
	"github.com/linkmint/linkmint/internal/pkg/fulfillment"
	"github.com/linkmint/linkmint/internal/pkg/mail"
	"github.com/linkmint/linkmint/internal/pkg/payments"
)

var (
	cfg        *config.Config
	repos      *repository.Repositories
	payClient  *payments.Client
	dispatcher *dispatch.Service
	themes     catalog.ThemeResolver
)

// InitializeControllers wires the shared dependencies for all handlers.
// Called once from the router during app construction.
func InitializeControllers(c *config.Config, viewsDir string) {
	cfg = c
	repos = repository.NewRepositories(database.GetDB())
	payClient = payments.NewClient(cfg)
	mailer := mail.New(cfg)
	dispatcher = dispatch.NewService(repos.Order, repos.Product, fulfillment.NewClient(cfg), mailer)
	themes = catalog.FSThemeResolver{ViewsDir: viewsDir}
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/linkmint/linkmint/app/repository"
	"github.com/linkmint/linkmint/internal/pkg/cache"
	"github.com/linkmint/linkmint/internal/pkg/config"
	"github.com/linkmint/linkmint/internal/pkg/database"
	"github.com/linkmint/linkmint/internal/pkg/env"
	"github.com/linkmint/linkmint/internal/pkg/router"
)

func main() {
	app, cfg := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *config.Config) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	cfg := config.Load()
	// CLI-stored credentials override the environment.
	creds := repository.NewCredentialRepository(database.GetDB())
	if err := cfg.ApplyCredentials(creds); err != nil {
		log.Printf("Warning: could not load stored credentials: %v", err)
	}

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/linkmint to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		Views: html.New(basePath+"views", ".html"),
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// static files
	app.Static("/static", basePath+"public/assets")

	// ROUTER
	router.InstallRouter(app, cfg, basePath+"views")

	return app, cfg
}

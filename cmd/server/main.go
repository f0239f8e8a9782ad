package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/bettashop/internal/config"
	"github.com/example/bettashop/internal/database"
	"github.com/example/bettashop/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	if err := os.MkdirAll(cfg.MediaUploadDir, 0o755); err != nil {
		log.Fatalf("creating upload dir: %v", err)
	}

	if err := database.EnsureDefaultAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("default admin setup failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "Bettashop Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

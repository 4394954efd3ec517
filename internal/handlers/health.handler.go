package handlers

import (
	"vitalsky/internal/app"

	"github.com/gofiber/fiber/v2"
)

func HealthHandler(router fiber.Router, app *app.App) {
	router.Get("/health", func(c *fiber.Ctx) error {
		if err := app.Database.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"error":  "database unreachable",
			})
		}

		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": app.Config.GeneralVersion,
			"service": "vitalsky_api",
		})
	})
}

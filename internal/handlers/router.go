package handlers

import (
	"vitalsky/internal/app"
	"vitalsky/internal/handlers/middleware"
	"vitalsky/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	api := router.Group("/api")
	HealthHandler(api, app)
	NewJobsHandler(app, api).Register()
	NewWeatherHandler(app, api).Register()

	return nil
}

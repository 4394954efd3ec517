package handlers

import (
	"time"
	"vitalsky/internal/app"
	"vitalsky/internal/logger"
	"vitalsky/internal/repositories"
	"vitalsky/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WeatherHandler struct {
	Handler
	userWeather repositories.UserWeatherRepository
}

func NewWeatherHandler(app *app.App, router fiber.Router) *WeatherHandler {
	return &WeatherHandler{
		userWeather: app.Repos.UserWeather,
		Handler: Handler{
			log:        logger.New("handlers").File("weather_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *WeatherHandler) Register() {
	h.router.Get("/users/:id/weather", h.getUserWeather)
}

// getUserWeather returns a user's daily weather rows for a date range. When
// from/to are omitted the range defaults to the stored window around today.
func (h *WeatherHandler) getUserWeather(c *fiber.Ctx) error {
	log := h.log.Function("getUserWeather")

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	today := utils.DateOnly(time.Now().UTC())
	from := utils.AddDays(today, -13)
	to := utils.AddDays(today, 6)

	if raw := c.Query("from"); raw != "" {
		from, err = utils.ParseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid from date, expected YYYY-MM-DD",
			})
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = utils.ParseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid to date, expected YYYY-MM-DD",
			})
		}
	}

	if to.Before(from) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "to date precedes from date",
		})
	}

	records, err := h.userWeather.GetRange(c.UserContext(), userID, from, to)
	if err != nil {
		log.Er("failed to load user weather", err, "userID", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load weather data",
		})
	}

	return c.JSON(fiber.Map{
		"userId":  userID,
		"from":    utils.FormatDate(from),
		"to":      utils.FormatDate(to),
		"weather": records,
	})
}

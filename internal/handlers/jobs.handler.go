package handlers

import (
	"vitalsky/internal/app"
	"vitalsky/internal/logger"
	"vitalsky/internal/services"

	"github.com/gofiber/fiber/v2"
)

// JobsHandler exposes manual triggers for the weather pipeline. All routes
// require a cron bearer token; these exist for the platform scheduler and for
// operators, not for end users.
type JobsHandler struct {
	Handler
	dispatch *services.DispatchService
	worker   *services.WorkerService
}

func NewJobsHandler(app *app.App, router fiber.Router) *JobsHandler {
	return &JobsHandler{
		dispatch: app.Services.Dispatch,
		worker:   app.Services.Worker,
		Handler: Handler{
			log:        logger.New("handlers").File("jobs_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *JobsHandler) Register() {
	jobs := h.router.Group("/jobs", h.middleware.RequireCronAuth())
	jobs.Post("/dispatch", h.triggerDispatch)
	jobs.Post("/work", h.triggerWork)
	jobs.Post("/sweep", h.triggerSweep)
}

func (h *JobsHandler) triggerDispatch(c *fiber.Ctx) error {
	log := h.log.Function("triggerDispatch")

	report, err := h.dispatch.DispatchAll(c.UserContext())
	if err != nil {
		log.Er("dispatch trigger failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"summary": report.Summary,
		"results": report.Results,
	})
}

func (h *JobsHandler) triggerWork(c *fiber.Ctx) error {
	log := h.log.Function("triggerWork")

	report, err := h.worker.ProcessQueue(c.UserContext())
	if err != nil {
		log.Er("worker trigger failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"summary": report.Summary,
		"results": report.Results,
	})
}

func (h *JobsHandler) triggerSweep(c *fiber.Ctx) error {
	log := h.log.Function("triggerSweep")

	summary, err := h.worker.SweepStale(c.UserContext())
	if err != nil {
		log.Er("sweep trigger failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"summary": summary,
	})
}

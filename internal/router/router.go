package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/modelarena/arena-api/internal/config"
	"github.com/modelarena/arena-api/internal/handler"
	"github.com/modelarena/arena-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ModelHandler     *handler.ModelHandler
	CriterionHandler *handler.CriterionHandler
	RunHandler       *handler.RunHandler
	ScoringHandler   *handler.ScoringHandler
	ResultsHandler   *handler.ResultsHandler
	ImportHandler    *handler.ImportHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.ModelHandler != nil {
		deps.ModelHandler.Register(api.Group("/models"))
	}
	if deps.CriterionHandler != nil {
		deps.CriterionHandler.Register(api.Group("/criteria"))
	}

	if deps.RunHandler != nil {
		runs := api.Group("/runs")
		deps.RunHandler.Register(runs)

		if deps.ScoringHandler != nil {
			deps.ScoringHandler.RegisterRunRoutes(runs)
			deps.ScoringHandler.RegisterSessionRoutes(api.Group("/sessions"))
		}
		if deps.ResultsHandler != nil {
			deps.ResultsHandler.Register(runs)
		}
	}

	if deps.ImportHandler != nil {
		deps.ImportHandler.Register(api.Group("/import"))
	}
}

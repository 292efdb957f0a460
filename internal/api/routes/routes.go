package routes

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"talentloop/internal/api/handlers"
	"talentloop/internal/api/middleware"
	"talentloop/internal/background"
	"talentloop/internal/config"
	"talentloop/internal/lifecycle"
	"talentloop/internal/llm"
	"talentloop/internal/store"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, st store.Store, controller *lifecycle.Controller, llmManager *llm.Manager, taskManager background.TaskManager) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	// Evaluation waits on the text-generation collaborator, so it gets a
	// longer timeout than the rest of the surface
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.ReadTimeout, 2*time.Minute))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(st, llmManager, taskManager))
		health.GET("/live", handlers.LivenessHandler)
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		v1.POST("/scoring/run", handlers.ScoringRunHandler(controller, taskManager))
		v1.GET("/jobs/:reference/candidates", handlers.JobCandidatesHandler(st))

		candidates := v1.Group("/candidates")
		{
			candidates.GET("/:id", handlers.GetCandidateHandler(st))
			candidates.POST("/:id/invite", handlers.InviteHandler(controller))
			candidates.POST("/:id/schedule", handlers.ScheduleHandler(controller, taskManager))
			candidates.POST("/:id/complete", handlers.CompleteHandler(controller, st))
			candidates.POST("/:id/decide", handlers.DecideHandler(controller))
			candidates.GET("/:id/rematch", handlers.RematchHandler(controller))
		}

		interviews := v1.Group("/interviews")
		{
			interviews.GET("/:id", handlers.GetInterviewHandler(st))
			interviews.POST("/:id/poll", handlers.PollInterviewHandler(controller))
			interviews.GET("/:id/transcript", handlers.TranscriptHandler(controller))
			interviews.POST("/:id/evaluate", handlers.EvaluateHandler(controller, st))
		}

		v1.GET("/tasks/:id", handlers.TaskStatusHandler(taskManager))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"service": "Talentloop Recruiter",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}

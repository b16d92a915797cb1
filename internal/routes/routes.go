package routes

import (
	"github.com/gminsights/roadmap-api/internal/handlers"
	"github.com/gminsights/roadmap-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(app *fiber.App, h *handlers.Handler, tokens middleware.TokenParser) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/logout", middleware.Protected(tokens), h.Logout)

	protected := api.Group("/", middleware.Protected(tokens))

	protected.Get("/me", h.GetMe)
	protected.Post("/device-token", h.RegisterDeviceToken)
	protected.Get("/goals", h.GetGoals)

	projects := protected.Group("/projects")
	projects.Get("/", h.GetProjects)
	projects.Post("/", h.CreateProject)
	projects.Post("/active", h.SwitchProject)
	projects.Put("/:id/summary", h.UpdateProjectSummary)
	projects.Get("/:id/status-buckets", h.GetStatusBuckets)
	projects.Get("/:id/export", h.ExportProject)
	projects.Get("/:id/activity", h.GetProjectActivity)
	projects.Post("/:id/milestones", h.CreateMilestone)
	projects.Post("/:id/status-updates", h.CreateStatusUpdate)

	milestones := protected.Group("/milestones")
	milestones.Put("/:id", h.UpdateMilestone)
	milestones.Delete("/:id", h.DeleteMilestone)
	milestones.Post("/:id/notes", h.CreateNote)
	milestones.Delete("/:id/notes/:noteId", h.DeleteNote)

	statusUpdates := protected.Group("/status-updates")
	statusUpdates.Put("/:id", h.UpdateStatusUpdate)
	statusUpdates.Delete("/:id", h.DeleteStatusUpdate)

	protected.Post("/maintenance/migrate-notes", h.MigrateLegacyNotes)

	// WebSocket for live project updates
	app.Use("/ws", handlers.WebSocketUpgrade(), middleware.WebSocketAuth(tokens))
	app.Get("/ws/projects/:id", websocket.New(h.HandleWebSocket))
}

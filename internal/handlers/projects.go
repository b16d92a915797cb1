package handlers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/gminsights/roadmap-api/internal/export"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/reconciler"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/gofiber/fiber/v2"
)

// GetProjects reloads the caller's workspace and returns the whole tree.
func (h *Handler) GetProjects(c *fiber.Ctx) error {
	rec, err := h.reconcilerFor(c)
	if err != nil {
		return h.fail(c, err)
	}
	projects, err := rec.LoadAll(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"projects":    projects,
		"activeIndex": rec.Session().ActiveIndex,
	})
}

func (h *Handler) CreateProject(c *fiber.Ctx) error {
	var req models.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	project, err := rec.CreateProject(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *Handler) UpdateProjectSummary(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req models.UpdateSummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	project, err := retryStale(c.UserContext(), rec, func() (models.Project, error) {
		return rec.UpdateProjectSummary(c.UserContext(), id, req.Summary)
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(project)
}

func (h *Handler) SwitchProject(c *fiber.Ctx) error {
	var req models.SwitchProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	project, err := rec.SwitchProject(c.UserContext(), req.Index)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"project":     project,
		"activeIndex": rec.Session().ActiveIndex,
	})
}

func (h *Handler) GetStatusBuckets(c *fiber.Ctx) error {
	project, err := h.loadProject(c)
	if err != nil {
		return h.fail(c, err)
	}
	updates, err := h.statusUpdates(c.UserContext(), project)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(reconciler.GroupByStatus(updates))
}

func (h *Handler) ExportProject(c *fiber.Ctx) error {
	project, err := h.loadProject(c)
	if err != nil {
		return h.fail(c, err)
	}
	updates, err := h.statusUpdates(c.UserContext(), project)
	if err != nil {
		return h.fail(c, err)
	}

	var buf bytes.Buffer
	err = export.Render(&buf, export.Report{
		Project:       project,
		StatusUpdates: updates,
		Goals:         h.goals,
		GeneratedAt:   time.Now(),
	})
	if err != nil {
		return h.fail(c, fmt.Errorf("render pdf: %w", err))
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, export.Filename(project.Name)))
	return c.Send(buf.Bytes())
}

func (h *Handler) loadProject(c *fiber.Ctx) (models.Project, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return models.Project{}, err
	}
	rec, err := h.workspace(c)
	if err != nil {
		return models.Project{}, err
	}
	return retryStale(c.UserContext(), rec, func() (models.Project, error) {
		p, ok := rec.Project(id)
		if !ok {
			return models.Project{}, reconciler.ErrNotFound
		}
		return p, nil
	})
}

// statusUpdates returns the loaded list for the active project and reads
// the store for any other.
func (h *Handler) statusUpdates(ctx context.Context, p models.Project) ([]models.StatusUpdate, error) {
	if p.StatusUpdates != nil {
		return p.StatusUpdates, nil
	}
	return h.store.StatusUpdates.Select(ctx, store.Query{
		Filter: store.Filter{"project_id": p.ID},
		Order:  "created_at DESC",
	})
}


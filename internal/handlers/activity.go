package handlers

import (
	"strconv"

	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/gofiber/fiber/v2"
)

// GetProjectActivity returns paginated activity for a project
func (h *Handler) GetProjectActivity(c *fiber.Ctx) error {
	project, err := h.loadProject(c)
	if err != nil {
		return h.fail(c, err)
	}

	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	filter := store.Filter{"project_id": project.ID}
	activities, err := h.store.Activities.Select(c.UserContext(), store.Query{
		Filter: filter,
		Order:  "created_at DESC",
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return h.fail(c, err)
	}
	total, err := h.store.Activities.Count(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	if activities == nil {
		activities = []models.Activity{}
	}

	return c.JSON(fiber.Map{
		"activities": activities,
		"total":      total,
		"page":       page,
		"limit":      limit,
	})
}

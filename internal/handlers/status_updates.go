package handlers

import (
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/reconciler"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateStatusUpdate(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req models.CreateStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	update, err := retryStale(c.UserContext(), rec, func() (models.StatusUpdate, error) {
		return rec.AddStatusUpdate(c.UserContext(), projectID, req)
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(update)
}

func (h *Handler) UpdateStatusUpdate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req models.UpdateStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	update, err := retryStale(c.UserContext(), rec, func() (models.StatusUpdate, error) {
		current, ok := rec.StatusUpdate(id)
		if !ok {
			return models.StatusUpdate{}, reconciler.ErrNotFound
		}
		return rec.EditStatusUpdate(c.UserContext(), req.Apply(current))
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(update)
}

func (h *Handler) DeleteStatusUpdate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	_, err = retryStale(c.UserContext(), rec, func() (struct{}, error) {
		return struct{}{}, rec.DeleteStatusUpdate(c.UserContext(), id)
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Status update deleted"})
}

func (h *Handler) MigrateLegacyNotes(c *fiber.Ctx) error {
	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	report, err := rec.MigrateLegacyNotes(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

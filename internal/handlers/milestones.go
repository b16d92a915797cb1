package handlers

import (
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/reconciler"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateMilestone(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req models.CreateMilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	milestone, err := retryStale(c.UserContext(), rec, func() (models.Milestone, error) {
		return rec.AddMilestone(c.UserContext(), projectID, req)
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(milestone)
}

func (h *Handler) UpdateMilestone(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req models.UpdateMilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	milestone, err := retryStale(c.UserContext(), rec, func() (models.Milestone, error) {
		current, ok := rec.Milestone(id)
		if !ok {
			return models.Milestone{}, reconciler.ErrNotFound
		}
		return rec.EditMilestone(c.UserContext(), req.Apply(current))
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(milestone)
}

func (h *Handler) DeleteMilestone(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	_, err = retryStale(c.UserContext(), rec, func() (struct{}, error) {
		return struct{}{}, rec.DeleteMilestone(c.UserContext(), id)
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Milestone deleted"})
}

func (h *Handler) CreateNote(c *fiber.Ctx) error {
	milestoneID, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req models.CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	note, err := retryStale(c.UserContext(), rec, func() (models.Note, error) {
		return rec.AddNote(c.UserContext(), milestoneID, req)
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (h *Handler) DeleteNote(c *fiber.Ctx) error {
	milestoneID, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	noteID, err := paramID(c, "noteId")
	if err != nil {
		return h.fail(c, err)
	}

	rec, err := h.workspace(c)
	if err != nil {
		return h.fail(c, err)
	}
	_, err = retryStale(c.UserContext(), rec, func() (struct{}, error) {
		return struct{}{}, rec.DeleteNote(c.UserContext(), noteID, milestoneID)
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Note deleted"})
}

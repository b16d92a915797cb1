package handlers

import (
	"strings"

	"github.com/gminsights/roadmap-api/internal/middleware"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	// Self-registered accounts start as viewers; editors are promoted with the CLI.
	profile, err := h.auth.SignUp(c.UserContext(), req.Email, req.Password, req.Name, models.RoleViewer)
	if err != nil {
		return h.fail(c, err)
	}

	token, err := h.auth.GenerateToken(profile.ID, profile.Email)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Token:   token,
		Profile: *profile,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	token, profile, err := h.auth.SignInWithPassword(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(models.AuthResponse{
		Token:   token,
		Profile: *profile,
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.auth.SignOut(c.UserContext(), middleware.GetToken(c)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	profile, err := h.auth.GetCurrentUser(c.UserContext(), middleware.GetToken(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(profile)
}

func (h *Handler) RegisterDeviceToken(c *fiber.Ctx) error {
	var req models.DeviceTokenRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return badRequest(c, "Token is required")
	}

	err := h.store.Profiles.Update(c.UserContext(),
		map[string]any{"fcm_token": req.Token},
		store.Filter{"id": middleware.GetUserID(c)},
	)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) GetGoals(c *fiber.Ctx) error {
	return c.JSON(h.goals.All())
}

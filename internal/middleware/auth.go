package middleware

import (
	"strings"

	"github.com/gminsights/roadmap-api/internal/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TokenParser validates bearer tokens.
type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

func Protected(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization format",
			})
		}

		return authenticate(c, tokens, tokenString)
	}
}

// WebSocketAuth authenticates an upgrade request. Browsers cannot set headers
// on websocket requests, so the token may also come as ?token=<jwt>.
func WebSocketAuth(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Query("token")
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}
		return authenticate(c, tokens, tokenString)
	}
}

func authenticate(c *fiber.Ctx, tokens TokenParser, tokenString string) error {
	claims, err := tokens.ParseToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	// Store user info in context
	c.Locals("userId", claims.UserID)
	c.Locals("email", claims.Email)
	c.Locals("token", tokenString)

	return c.Next()
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) uuid.UUID {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

func GetEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("email").(string)
	return email
}

func GetToken(c *fiber.Ctx) string {
	token, _ := c.Locals("token").(string)
	return token
}

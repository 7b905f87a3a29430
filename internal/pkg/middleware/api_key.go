package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sharkfunded/platform/internal/pkg/env"
)

// AdminAPIKeyMiddleware guards the admin recovery endpoints with the static
// key from ADMIN_API_KEY. An empty configured key locks the surface shut
// rather than leaving it open.
func AdminAPIKeyMiddleware() fiber.Handler {
	configured := strings.TrimSpace(env.GetEnv("ADMIN_API_KEY", ""))
	if configured == "" {
		log.Print("admin api key middleware: ADMIN_API_KEY not set, admin endpoints disabled")
	}

	return func(c *fiber.Ctx) error {
		if configured == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service_unavailable", "message": "Admin API not configured"})
		}

		apiKey := extractAPIKeyFromHeader(c)
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing API key"})
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(configured)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid API key"})
		}
		return c.Next()
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

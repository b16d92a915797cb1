package middleware

import (
	"strconv"
	"time"

	"github.com/gminsights/roadmap-api/internal/logger"
	"github.com/gminsights/roadmap-api/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Observe records request duration by route pattern and logs each request.
func Observe(log *zap.Logger) fiber.Handler {
	log = logger.OrNop(log)
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let the app's error handler pick the status before we read it.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		path := c.Route().Path
		metrics.RecordHTTPRequestDuration(c.Method(), path, strconv.Itoa(status), elapsed)
		log.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		)
		return nil
	}
}

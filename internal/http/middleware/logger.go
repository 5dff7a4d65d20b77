package middleware

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"docingest/internal/logger"
)

// Logger writes one JSON access log line per request to stdout.
func Logger(loc *time.Location) fiber.Handler {
	return LoggerWithWriter(os.Stdout, loc)
}

// LoggerWithWriter logs request_id, method, path, status and latency (milliseconds) to w.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	log := logger.New(w, loc)

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", float64(time.Since(start).Microseconds())/1000).
			Msg("http_request")

		return err
	}
}

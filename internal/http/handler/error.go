package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docingest/internal/http/middleware"
	"docingest/internal/scanner"
	"docingest/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return v
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details any) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError translates service and pipeline errors into the error envelope.
func writeServiceError(c *fiber.Ctx, err error) error {
	var rejection *scanner.RejectionError
	switch {
	case errors.As(err, &rejection):
		return writeErrorDetails(c, fiber.StatusUnprocessableEntity, "SECURITY_REJECTED",
			"file rejected by security scan", rejection.Threats)
	case errors.Is(err, scanner.ErrUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "SCANNER_UNAVAILABLE", "security scan unavailable")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrPayloadRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrGranteeRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "grantee is required")
	case errors.Is(err, service.ErrOwnerRequired):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

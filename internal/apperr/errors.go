package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/loomchat/loomchat-be/internal/shared/utils"
)

// AppError is the operational error type surfaced to clients. Anything that is
// not an AppError degrades to a generic 500 so internals never leak.
type AppError struct {
	Message    string
	StatusCode int
	Code       string
	cause      error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.cause }

func (e *AppError) WithCause(err error) *AppError {
	return &AppError{Message: e.Message, StatusCode: e.StatusCode, Code: e.Code, cause: err}
}

func New(message string, statusCode int, code string) *AppError {
	return &AppError{Message: message, StatusCode: statusCode, Code: code}
}

func Validation(message string) *AppError {
	return New(message, fiber.StatusBadRequest, "validation_error")
}

func Authentication(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return New(message, fiber.StatusUnauthorized, "authentication_error")
}

// Authorization covers ownership mismatches. The chat surfaces report these as
// 401 (matching the conversation API contract); profile data uses Forbidden.
func Authorization(message string) *AppError {
	if message == "" {
		message = "Insufficient permissions"
	}
	return New(message, fiber.StatusUnauthorized, "authorization_error")
}

func Forbidden(message string) *AppError {
	if message == "" {
		message = "Forbidden"
	}
	return New(message, fiber.StatusForbidden, "authorization_error")
}

func NotFound(message string) *AppError {
	if message == "" {
		message = "Resource not found"
	}
	return New(message, fiber.StatusNotFound, "not_found")
}

func RateLimited(message string) *AppError {
	if message == "" {
		message = "Rate limit exceeded"
	}
	return New(message, fiber.StatusTooManyRequests, "rate_limit")
}

func Internal(message string) *AppError {
	if message == "" {
		message = "An error occurred while processing your request"
	}
	return New(message, fiber.StatusInternalServerError, "internal_error")
}

// Respond maps an error to a JSON Fiber response. Unknown errors are logged
// with their cause and answered with a generic message.
func Respond(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.StatusCode).JSON(fiber.Map{"error": appErr.Message, "code": appErr.Code})
	}

	utils.LogError("unhandled error", err, map[string]interface{}{"path": c.Path()})
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "An error occurred while processing your request",
		"code":  "internal_error",
	})
}

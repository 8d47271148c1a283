package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ai-interviewer/internal/services"
)

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	var (
		fe *fiber.Error
		ve *services.ValidationError
		ie *services.InvalidStateError
		ue *services.UpstreamError
	)
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &ie), errors.Is(err, services.ErrConcurrentUpdate):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrEmptyContext):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &ue):
		if ue.Timeout() {
			return fiber.StatusGatewayTimeout
		}
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a handler as
// {"error": ..., "code": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	if code >= fiber.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

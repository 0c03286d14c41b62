package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Sentinel kinds returned by the booking and message rule methods. Handlers
// match them with errors.Is and map them to an HTTP status; everything else
// is treated as an internal error.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrTooEarly     = errors.New("too early")
	ErrTooLate      = errors.New("too late")
	ErrValidation   = errors.New("validation failed")
)

func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, ErrTooEarly), errors.Is(err, ErrTooLate):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

package serverutils

import (
	"errors"

	"rickshaw-client/pkg/state"
	"rickshaw-client/pkg/store"

	"github.com/gofiber/fiber/v2"
)

// RequestError is a client mistake with an explicit status code.
type RequestError struct {
	Code    int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	var reqErr *RequestError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &reqErr):
		return reqErr.Code
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, store.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrSubmissionInFlight):
		return fiber.StatusConflict
	case errors.Is(err, store.ErrUnknownInputMode), errors.Is(err, state.ErrInputModeMismatch):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

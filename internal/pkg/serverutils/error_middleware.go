package serverutils

import (
	"errors"

	"qa-paper-be/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// JSON envelope. Sentinel errors from apperr carry their own status mapping;
// fiber errors keep theirs; anything else is a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		status := apperr.StatusCode(err)
		message := err.Error()
		if status == fiber.StatusInternalServerError {
			// Internal detail stays in the logs.
			message = "internal server error"
		}
		return ctx.Status(status).JSON(ErrorResponse(message))
	}
}

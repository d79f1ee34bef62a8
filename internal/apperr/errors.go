package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors shared across the session store, pipeline and orchestrator.
// Services wrap these with fmt.Errorf("...: %w", err) to add context; the HTTP
// layer unwraps them with errors.Is to pick a status code.
var (
	// ErrNotFound is returned when a session has expired or never existed.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidTransition is returned when a status change does not follow
	// PENDING -> PROCESSING -> {COMPLETE | ERROR}.
	ErrInvalidTransition = errors.New("invalid session status transition")

	// ErrAlreadyRunning is returned when a job start hits a session that is
	// already PROCESSING.
	ErrAlreadyRunning = errors.New("session is already being processed")

	// ErrAlreadyTerminal is returned when a job start hits a session that has
	// already reached COMPLETE or ERROR.
	ErrAlreadyTerminal = errors.New("session already finished")

	// ErrNotReady is returned when the result is requested before the session
	// reached COMPLETE.
	ErrNotReady = errors.New("result not ready")

	// ErrResultExists guards the single-write result slot.
	ErrResultExists = errors.New("result already stored")

	// ErrAllProvidersExhausted is returned by the provider client when every
	// configured provider's retry budget is spent.
	ErrAllProvidersExhausted = errors.New("all providers exhausted")

	// Parser failure modes.
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrNoQuestionsFound  = errors.New("no questions found in input")

	// ErrLanguageNotSupported is returned for answer languages outside the
	// supported set.
	ErrLanguageNotSupported = errors.New("language not supported")
)

// StatusCode maps an error to the HTTP status the front door should answer with.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrNotReady):
		return fiber.StatusConflict
	case errors.Is(err, ErrAlreadyRunning), errors.Is(err, ErrAlreadyTerminal),
		errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrResultExists):
		return fiber.StatusConflict
	case errors.Is(err, ErrUnsupportedFormat):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNoQuestionsFound):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrLanguageNotSupported):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrAllProvidersExhausted):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

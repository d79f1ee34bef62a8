package session

import (
	"context"

	"qa-paper-be/internal/entity"
)

// Store owns all persisted session state: the session record, the append-only
// progress log, the per-question answer previews and the single-write result
// slot. Every key shares one TTL clock anchored at session creation; once the
// clock runs out the whole session becomes unobservable, whatever its status.
//
// Implementations must serialize appends per session and make status
// transitions atomic check-and-set operations.
type Store interface {
	// Create allocates a new pending session and returns its id.
	Create(ctx context.Context, language string, metadata map[string]string) (string, error)

	// Get returns the session record, or apperr.ErrNotFound.
	Get(ctx context.Context, id string) (*entity.Session, error)

	// SetStatus atomically transitions the session status. It returns
	// apperr.ErrInvalidTransition when the requested status does not follow
	// the allowed order, and apperr.ErrNotFound when the session is gone.
	SetStatus(ctx context.Context, id string, status entity.SessionStatus) error

	// Claim is the at-most-one-run guard: an atomic pending -> processing
	// swap. It returns apperr.ErrAlreadyRunning when the session is already
	// processing, apperr.ErrAlreadyTerminal when it has finished, and
	// apperr.ErrNotFound when it expired.
	Claim(ctx context.Context, id string) error

	// AppendProgress appends to the session's progress log and updates the
	// latest-progress snapshot. The snapshot never regresses even if a stale
	// event arrives late.
	AppendProgress(ctx context.Context, ev entity.ProgressEvent) error

	// ProgressLog returns the full append-only event sequence, oldest first.
	ProgressLog(ctx context.Context, id string) ([]entity.ProgressEvent, error)

	// LatestProgress returns the most recent event merged with the current
	// status.
	LatestProgress(ctx context.Context, id string) (*entity.ProgressSnapshot, error)

	// StoreAnswer appends a per-question preview row.
	StoreAnswer(ctx context.Context, id string, preview entity.AnswerPreview) error

	// Answers returns the preview rows stored so far, in append order.
	Answers(ctx context.Context, id string) ([]entity.AnswerPreview, error)

	// StoreResult writes the result slot. A second write returns
	// apperr.ErrResultExists.
	StoreResult(ctx context.Context, id string, result *entity.Result) error

	// GetResult reads the result slot, or apperr.ErrNotFound when absent.
	GetResult(ctx context.Context, id string) (*entity.Result, error)

	// Delete removes the session and everything keyed by it.
	Delete(ctx context.Context, id string) error
}

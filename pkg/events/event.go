package events

import "time"

// Event is the contract for everything published on the NATS bus.
type Event interface {
	// EventType returns the unique code for this event (e.g. "SESSION_PROGRESS").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used for publishing and for
// reconstructing events on the subscriber side.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// SessionProgress mirrors one progress-log append to external observers.
// The session store stays the source of truth; this stream is advisory.
func SessionProgress(sessionID, stage string, progress int, message string) Event {
	now := time.Now()
	return BaseEvent{
		Type: "SESSION_PROGRESS",
		Data: map[string]interface{}{
			"session_id": sessionID,
			"stage":      stage,
			"progress":   progress,
			"message":    message,
			"emitted_at": now.UTC().Format(time.RFC3339),
		},
		OccurredAt: now,
	}
}

// SessionFinished announces a session reaching a terminal status.
func SessionFinished(sessionID, status string, failedQuestions int) Event {
	now := time.Now()
	return BaseEvent{
		Type: "SESSION_FINISHED",
		Data: map[string]interface{}{
			"session_id":       sessionID,
			"status":           status,
			"failed_questions": failedQuestions,
			"emitted_at":       now.UTC().Format(time.RFC3339),
		},
		OccurredAt: now,
	}
}

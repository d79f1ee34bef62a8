package entity

import (
	"time"
)

type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusProcessing SessionStatus = "processing"
	StatusComplete   SessionStatus = "complete"
	StatusError      SessionStatus = "error"
)

// CanTransitionTo enforces the one-way lifecycle:
// pending -> processing -> {complete | error}.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusComplete || next == StatusError
	default:
		return false
	}
}

func (s SessionStatus) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// Session is one user-initiated answer-generation job and its tracked state.
// All persisted session state shares a single TTL clock anchored at CreatedAt.
type Session struct {
	ID        string            `json:"id"`
	Status    SessionStatus     `json:"status"`
	Language  string            `json:"language"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	TTL       time.Duration     `json:"ttl"`
}

// ProgressEvent is an immutable, append-only progress record.
type ProgressEvent struct {
	SessionID string    `json:"session_id"`
	Stage     string    `json:"stage"`
	Progress  int       `json:"progress"` // 0-100, non-decreasing per session
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressSnapshot is the latest event merged with the current status,
// the shape the status poller observes.
type ProgressSnapshot struct {
	Stage    string        `json:"stage"`
	Progress int           `json:"progress"`
	Status   SessionStatus `json:"status"`
	Message  string        `json:"message"`
}

// AnswerPreview is a per-question row stored as soon as that question's
// pipeline finishes, so the poller can render answers before the job is done.
type AnswerPreview struct {
	Index       int       `json:"index"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	VisualCount int       `json:"visual_count"`
	Timestamp   time.Time `json:"timestamp"`
}

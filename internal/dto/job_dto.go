package dto

import (
	"time"

	"qa-paper-be/internal/entity"
)

// CreateJobRequest starts an answer-generation job. Either Text carries the
// questions directly or the request arrives as a multipart upload; Format
// names how the payload should be parsed.
type CreateJobRequest struct {
	Text     string            `json:"text"`
	Format   string            `json:"format" validate:"omitempty,oneof=text txt"`
	Language string            `json:"language" validate:"omitempty,len=2"`
	Provider string            `json:"provider" validate:"omitempty,oneof=openai anthropic gemini perplexity"`
	Metadata map[string]string `json:"metadata"`
}

type CreateJobResponse struct {
	SessionID string `json:"session_id"`
	Questions int    `json:"questions"`
	Language  string `json:"language"`
}

// StatusResponse merges the latest progress snapshot with the answer previews
// stored so far.
type StatusResponse struct {
	SessionID string          `json:"session_id"`
	Status    string          `json:"status"`
	Stage     string          `json:"stage"`
	Progress  int             `json:"progress"`
	Message   string          `json:"message"`
	Answers   []AnswerPreview `json:"answers"`
}

type AnswerPreview struct {
	Index       int       `json:"index"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	VisualCount int       `json:"visual_count"`
	Timestamp   time.Time `json:"timestamp"`
}

type ProgressLogResponse struct {
	SessionID string                 `json:"session_id"`
	Events    []entity.ProgressEvent `json:"events"`
}

type ResultResponse struct {
	SessionID   string                  `json:"session_id"`
	Success     bool                    `json:"success"`
	Language    string                  `json:"language"`
	ArtifactID  string                  `json:"artifact_id,omitempty"`
	ArtifactURL string                  `json:"artifact_url,omitempty"`
	Items       []entity.QuestionResult `json:"items"`
	Error       string                  `json:"error,omitempty"`
}

type DeleteSessionResponse struct {
	SessionID string `json:"session_id"`
}

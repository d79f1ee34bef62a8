package service

import (
	"context"
	"fmt"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/artifact"
	"qa-paper-be/internal/dto"
	"qa-paper-be/internal/language"
	"qa-paper-be/internal/orchestrator"
	"qa-paper-be/internal/parser"
	"qa-paper-be/internal/pkg/logger"
	"qa-paper-be/internal/queue"
	"qa-paper-be/internal/session"
)

type IJobService interface {
	CreateJob(ctx context.Context, data []byte, format, lang, provider string, metadata map[string]string) (*dto.CreateJobResponse, error)
	Status(ctx context.Context, sessionID string) (*dto.StatusResponse, error)
	ProgressLog(ctx context.Context, sessionID string) (*dto.ProgressLogResponse, error)
	Result(ctx context.Context, sessionID string) (*dto.ResultResponse, error)
	Artifact(ctx context.Context, artifactID string) ([]byte, error)
	Delete(ctx context.Context, sessionID string) (*dto.DeleteSessionResponse, error)
}

type jobService struct {
	store     session.Store
	parser    parser.IInputParser
	publisher queue.IJobPublisher
	artifacts artifact.Store
	log       logger.ILogger
}

func NewJobService(
	store session.Store,
	inputParser parser.IInputParser,
	publisher queue.IJobPublisher,
	artifacts artifact.Store,
	log logger.ILogger,
) IJobService {
	return &jobService{
		store:     store,
		parser:    inputParser,
		publisher: publisher,
		artifacts: artifacts,
		log:       log,
	}
}

// CreateJob parses the upload, creates a pending session and hands the job to
// the queue. The session id returns immediately; generation happens on the
// worker side.
func (s *jobService) CreateJob(ctx context.Context, data []byte, format, lang, provider string, metadata map[string]string) (*dto.CreateJobResponse, error) {
	if format == "" {
		format = "text"
	}
	if lang == "" {
		lang = "en"
	}
	if !language.IsSupported(lang) {
		return nil, fmt.Errorf("%w: %q", apperr.ErrLanguageNotSupported, lang)
	}

	questions, err := s.parser.Parse(data, format)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.store.Create(ctx, lang, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	job := orchestrator.Job{
		SessionID: sessionID,
		Questions: questions,
		Language:  lang,
		Provider:  provider,
	}
	if err := s.publisher.PublishJob(ctx, job); err != nil {
		// The session would sit pending forever; remove it so the client
		// retries cleanly.
		_ = s.store.Delete(ctx, sessionID)
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.log.Info("job_service", "job created", map[string]interface{}{
		"session_id": sessionID,
		"questions":  len(questions),
		"language":   lang,
	})

	return &dto.CreateJobResponse{
		SessionID: sessionID,
		Questions: len(questions),
		Language:  lang,
	}, nil
}

func (s *jobService) Status(ctx context.Context, sessionID string) (*dto.StatusResponse, error) {
	snapshot, err := s.store.LatestProgress(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	previews, err := s.store.Answers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answers := make([]dto.AnswerPreview, len(previews))
	for i, p := range previews {
		answers[i] = dto.AnswerPreview{
			Index:       p.Index,
			Question:    p.Question,
			Answer:      p.Answer,
			VisualCount: p.VisualCount,
			Timestamp:   p.Timestamp,
		}
	}

	return &dto.StatusResponse{
		SessionID: sessionID,
		Status:    string(snapshot.Status),
		Stage:     snapshot.Stage,
		Progress:  snapshot.Progress,
		Message:   snapshot.Message,
		Answers:   answers,
	}, nil
}

func (s *jobService) ProgressLog(ctx context.Context, sessionID string) (*dto.ProgressLogResponse, error) {
	events, err := s.store.ProgressLog(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.ProgressLogResponse{SessionID: sessionID, Events: events}, nil
}

// Result returns the stored result once the session is terminal. Polling
// before that answers ErrNotReady so clients keep waiting instead of caching
// an empty body.
func (s *jobService) Result(ctx context.Context, sessionID string) (*dto.ResultResponse, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Status.Terminal() {
		return nil, fmt.Errorf("session %s is %s: %w", sessionID, sess.Status, apperr.ErrNotReady)
	}

	result, err := s.store.GetResult(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res := &dto.ResultResponse{
		SessionID:  sessionID,
		Success:    result.Success,
		Language:   result.Language,
		ArtifactID: result.ArtifactID,
		Items:      result.Items,
		Error:      result.Error,
	}
	if result.ArtifactID != "" {
		res.ArtifactURL = "/api/job/v1/artifact/" + result.ArtifactID
	}
	return res, nil
}

func (s *jobService) Artifact(_ context.Context, artifactID string) ([]byte, error) {
	return s.artifacts.Open(artifactID)
}

func (s *jobService) Delete(ctx context.Context, sessionID string) (*dto.DeleteSessionResponse, error) {
	if _, err := s.store.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return &dto.DeleteSessionResponse{SessionID: sessionID}, nil
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/artifact"
	"qa-paper-be/internal/config"
	"qa-paper-be/internal/entity"
	"qa-paper-be/internal/language"
	"qa-paper-be/internal/pkg/logger"
	"qa-paper-be/internal/session"
	"qa-paper-be/pkg/events"
	"qa-paper-be/pkg/pipeline"
)

// Job is the unit of work published to the queue: one claimed session plus
// the questions extracted from its upload.
type Job struct {
	SessionID string            `json:"session_id"`
	Questions []entity.Question `json:"questions"`
	Language  string            `json:"language"`
	// Provider optionally promotes one provider to the head of the
	// fallback order for this job.
	Provider string `json:"provider,omitempty"`
}

// PipelineFactory builds a question pipeline honoring a per-job provider
// preference. Implemented in bootstrap where the provider credentials live.
type PipelineFactory interface {
	Pipeline(preferredProvider string) (*pipeline.QuestionPipeline, error)
}

// EventPublisher mirrors progress to external observers. Satisfied by
// nats.Publisher; a nil publisher disables mirroring.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Orchestrator runs one job end to end: claims the session, fans questions
// out across a bounded worker pool, aggregates their progress, and finishes
// the session with a single result write.
//
// One failed question degrades the result; only job-level failures (store
// unreachable, rendering broken, timeout) make the session an error.
type Orchestrator struct {
	store     session.Store
	pipelines PipelineFactory
	renderer  artifact.Renderer
	events    EventPublisher
	cfg       config.PipelineConfig
	log       logger.ILogger

	// globalSem bounds questions across all jobs when ConcurrencyScope is
	// "global"; nil means each job gets its own semaphore.
	globalSem chan struct{}
}

func NewOrchestrator(
	store session.Store,
	pipelines PipelineFactory,
	renderer artifact.Renderer,
	eventPub EventPublisher,
	cfg config.PipelineConfig,
	log logger.ILogger,
) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		pipelines: pipelines,
		renderer:  renderer,
		events:    eventPub,
		cfg:       cfg,
		log:       log,
	}
	if cfg.ConcurrencyScope == "global" {
		o.globalSem = make(chan struct{}, workerLimit(cfg.WorkerLimit))
	}
	return o
}

func workerLimit(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Run executes a job. Returning apperr.ErrAlreadyRunning or
// apperr.ErrAlreadyTerminal means the delivery was a duplicate and must not
// be retried.
func (o *Orchestrator) Run(ctx context.Context, job Job) error {
	if err := o.store.Claim(ctx, job.SessionID); err != nil {
		return fmt.Errorf("failed to claim session %s: %w", job.SessionID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.JobTimeout)
	defer cancel()

	lang, err := language.Lookup(job.Language)
	if err != nil {
		return o.failJob(job, err.Error())
	}
	if len(job.Questions) == 0 {
		return o.failJob(job, "job carries no questions")
	}

	pipe, err := o.pipelines.Pipeline(job.Provider)
	if err != nil {
		return o.failJob(job, fmt.Sprintf("failed to build pipeline: %v", err))
	}

	o.log.Info("orchestrator", "job started", map[string]interface{}{
		"session_id": job.SessionID,
		"questions":  len(job.Questions),
		"language":   lang.Code,
	})

	sem := o.globalSem
	if sem == nil {
		sem = make(chan struct{}, workerLimit(o.cfg.WorkerLimit))
	}

	tracker := newProgressTracker(len(job.Questions))
	outcomes := make([]pipeline.Outcome, len(job.Questions))

	var wg sync.WaitGroup
	for i, q := range job.Questions {
		wg.Add(1)
		go func(pos int, q entity.Question) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[pos] = pipeline.Outcome{
					Question:       q,
					Failed:         true,
					FailureMessage: ctx.Err().Error(),
				}
				return
			}

			sink := o.questionSink(job.SessionID, tracker, pos)
			outcomes[pos] = pipe.Run(ctx, q, lang, sink)

			if !outcomes[pos].Failed {
				o.storePreview(ctx, job.SessionID, outcomes[pos])
			}
		}(i, q)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return o.failJob(job, fmt.Sprintf("job aborted: %v", err))
	}

	return o.finishJob(ctx, job, lang, outcomes)
}

// questionSink builds the per-question progress sink: every stage transition
// updates the aggregate tracker, lands in the session's progress log, and is
// mirrored to the event bus.
func (o *Orchestrator) questionSink(sessionID string, tracker *progressTracker, slot int) pipeline.ProgressSink {
	return pipeline.SinkFunc(func(ctx context.Context, stage pipeline.Stage, weight int, message string) {
		overall := tracker.set(slot, weight)
		o.publishProgress(ctx, sessionID, string(stage), overall, message)
	})
}

func (o *Orchestrator) publishProgress(ctx context.Context, sessionID, stage string, overall int, message string) {
	ev := entity.ProgressEvent{
		SessionID: sessionID,
		Stage:     stage,
		Progress:  overall,
		Message:   message,
		Timestamp: time.Now(),
	}
	if err := o.store.AppendProgress(ctx, ev); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		o.log.Warn("orchestrator", "failed to append progress", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	if o.events != nil {
		if err := o.events.Publish(ctx, events.SessionProgress(sessionID, stage, overall, message)); err != nil {
			o.log.Warn("orchestrator", "failed to mirror progress event", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}
}

func (o *Orchestrator) storePreview(ctx context.Context, sessionID string, out pipeline.Outcome) {
	preview := entity.AnswerPreview{
		Index:       out.Question.Index,
		Question:    out.Question.Text,
		Answer:      out.Answer,
		VisualCount: len(out.Visuals),
		Timestamp:   time.Now(),
	}
	if err := o.store.StoreAnswer(ctx, sessionID, preview); err != nil {
		o.log.Warn("orchestrator", "failed to store answer preview", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func (o *Orchestrator) finishJob(ctx context.Context, job Job, lang language.Config, outcomes []pipeline.Outcome) error {
	result := &entity.Result{
		Items:    make([]entity.QuestionResult, len(outcomes)),
		Language: lang.Code,
	}
	for i, out := range outcomes {
		item := entity.QuestionResult{
			Index:     out.Question.Index,
			Question:  out.Question.Text,
			Citations: out.Citations,
		}
		if out.Failed {
			item.Error = out.FailureMessage
		} else {
			answer := out.Answer
			item.Answer = &answer
			item.VisualCount = len(out.Visuals)
		}
		result.Items[i] = item
	}
	result.Success = result.FailedCount() == 0

	if o.renderer != nil {
		id, err := o.renderer.Render(job.SessionID, result, lang)
		if err != nil {
			return o.failJob(job, fmt.Sprintf("failed to render document: %v", err))
		}
		result.ArtifactID = id
	}

	if err := o.store.StoreResult(ctx, job.SessionID, result); err != nil {
		return o.failJob(job, fmt.Sprintf("failed to store result: %v", err))
	}

	// The 100% event lands before the status flip, so a session observed as
	// complete always reads progress 100.
	o.publishProgress(ctx, job.SessionID, string(pipeline.StageComplete), 100,
		fmt.Sprintf("Generated answers for %d of %d questions", len(outcomes)-result.FailedCount(), len(outcomes)))

	if err := o.store.SetStatus(ctx, job.SessionID, entity.StatusComplete); err != nil {
		return fmt.Errorf("failed to complete session %s: %w", job.SessionID, err)
	}
	o.publishFinished(ctx, job.SessionID, entity.StatusComplete, result.FailedCount())

	o.log.Info("orchestrator", "job finished", map[string]interface{}{
		"session_id": job.SessionID,
		"questions":  len(outcomes),
		"failed":     result.FailedCount(),
	})
	return nil
}

// failJob marks the session as a job-level failure. It runs on a fresh
// context because the job context may already be dead.
func (o *Orchestrator) failJob(job Job, message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	o.log.Error("orchestrator", "job failed", map[string]interface{}{
		"session_id": job.SessionID,
		"error":      message,
	})

	result := &entity.Result{Success: false, Language: job.Language, Error: message}
	if err := o.store.StoreResult(ctx, job.SessionID, result); err != nil && !errors.Is(err, apperr.ErrResultExists) {
		o.log.Error("orchestrator", "failed to store error result", map[string]interface{}{
			"session_id": job.SessionID,
			"error":      err.Error(),
		})
	}
	if err := o.store.SetStatus(ctx, job.SessionID, entity.StatusError); err != nil {
		return fmt.Errorf("failed to mark session %s as error: %w", job.SessionID, err)
	}
	o.publishFinished(ctx, job.SessionID, entity.StatusError, 0)
	return fmt.Errorf("job %s failed: %s", job.SessionID, message)
}

func (o *Orchestrator) publishFinished(ctx context.Context, sessionID string, status entity.SessionStatus, failed int) {
	if o.events == nil {
		return
	}
	if err := o.events.Publish(ctx, events.SessionFinished(sessionID, string(status), failed)); err != nil {
		o.log.Warn("orchestrator", "failed to publish finished event", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

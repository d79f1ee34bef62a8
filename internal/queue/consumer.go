package queue

import (
	"context"
	"encoding/json"
	"errors"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/orchestrator"
	"qa-paper-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

// JobRunner is the orchestrator seam the consumer drives.
type JobRunner interface {
	Run(ctx context.Context, job orchestrator.Job) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService pulls jobs off the bus and runs them. Delivery is
// at-least-once, so acknowledgment follows the error class: malformed
// payloads and duplicate claims are acked to stop redelivery, everything
// else is nacked for retry.
type consumerService struct {
	subscriber message.Subscriber
	topic      string
	runner     JobRunner
	log        logger.ILogger
}

func NewConsumerService(subscriber message.Subscriber, topic string, runner JobRunner, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topic:      topic,
		runner:     runner,
		log:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var job orchestrator.Job
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		cs.log.Error("queue", "failed to unmarshal job, dropping", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.log.Info("queue", "job received", map[string]interface{}{
		"session_id": job.SessionID,
		"questions":  len(job.Questions),
	})

	err := cs.runner.Run(ctx, job)
	switch {
	case err == nil:
		msg.Ack()
	case errors.Is(err, apperr.ErrAlreadyRunning), errors.Is(err, apperr.ErrAlreadyTerminal):
		// Duplicate delivery of an already-claimed session. Running it
		// again would violate the single-run guarantee.
		cs.log.Warn("queue", "duplicate job delivery, dropping", map[string]interface{}{
			"session_id": job.SessionID,
			"error":      err.Error(),
		})
		msg.Ack()
	case errors.Is(err, apperr.ErrNotFound):
		// Session expired before the job ran; nothing left to do.
		cs.log.Warn("queue", "session gone, dropping job", map[string]interface{}{
			"session_id": job.SessionID,
		})
		msg.Ack()
	default:
		cs.log.Error("queue", "job failed, requeueing", map[string]interface{}{
			"session_id": job.SessionID,
			"error":      err.Error(),
		})
		msg.Nack()
	}
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"qa-paper-be/internal/orchestrator"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IJobPublisher hands a claimed session's work to the worker side of the bus.
type IJobPublisher interface {
	PublishJob(ctx context.Context, job orchestrator.Job) error
}

type jobPublisher struct {
	publisher message.Publisher
	topic     string
}

func NewJobPublisher(publisher message.Publisher, topic string) IJobPublisher {
	return &jobPublisher{publisher: publisher, topic: topic}
}

func (p *jobPublisher) PublishJob(_ context.Context, job orchestrator.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job for session %s: %w", job.SessionID, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("session_id", job.SessionID)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish job for session %s: %w", job.SessionID, err)
	}
	return nil
}

// NewPubSub builds the in-process event bus both ends share.
func NewPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
}

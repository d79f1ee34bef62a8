package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/orchestrator"
	"qa-paper-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	mu   sync.Mutex
	jobs []orchestrator.Job
	err  error
	done chan struct{}
}

func newRecordingRunner(err error) *recordingRunner {
	return &recordingRunner{err: err, done: make(chan struct{}, 16)}
}

func (r *recordingRunner) Run(_ context.Context, job orchestrator.Job) error {
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()
	r.done <- struct{}{}
	return r.err
}

func (r *recordingRunner) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner was not invoked")
	}
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func TestConsumeRunsPublishedJob(t *testing.T) {
	pubsub := NewPubSub()
	defer pubsub.Close()

	runner := newRecordingRunner(nil)
	consumer := NewConsumerService(pubsub, "jobs", runner, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	job := orchestrator.Job{SessionID: "sess-1", Language: "en"}
	require.NoError(t, NewJobPublisher(pubsub, "jobs").PublishJob(ctx, job))

	runner.wait(t)
	assert.Equal(t, 1, runner.count())
	assert.Equal(t, "sess-1", runner.jobs[0].SessionID)
}

func TestProcessMessageAckPolicy(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		runErr  error
		wantAck bool
	}{
		{"success", []byte(`{"session_id":"s1","language":"en"}`), nil, true},
		{"malformed payload", []byte(`{not json`), nil, true},
		{"duplicate running", []byte(`{"session_id":"s1"}`), apperr.ErrAlreadyRunning, true},
		{"duplicate terminal", []byte(`{"session_id":"s1"}`), apperr.ErrAlreadyTerminal, true},
		{"session expired", []byte(`{"session_id":"s1"}`), apperr.ErrNotFound, true},
		{"transient failure", []byte(`{"session_id":"s1"}`), errors.New("store unreachable"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newRecordingRunner(tt.runErr)
			cs := &consumerService{
				topic:  "jobs",
				runner: runner,
				log:    logger.NewNopLogger(),
			}

			msg := message.NewMessage(watermill.NewUUID(), tt.payload)
			cs.processMessage(context.Background(), msg)

			select {
			case <-msg.Acked():
				assert.True(t, tt.wantAck, "message was acked")
			case <-msg.Nacked():
				assert.False(t, tt.wantAck, "message was nacked")
			case <-time.After(time.Second):
				t.Fatal("message neither acked nor nacked")
			}
		})
	}
}

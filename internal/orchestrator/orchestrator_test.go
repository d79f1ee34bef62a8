package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/config"
	"qa-paper-be/internal/entity"
	"qa-paper-be/internal/knowledge"
	"qa-paper-be/internal/language"
	"qa-paper-be/internal/pkg/logger"
	"qa-paper-be/internal/session"
	"qa-paper-be/pkg/events"
	"qa-paper-be/pkg/llm"
	"qa-paper-be/pkg/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failMarker in a question's text makes the stub generator reject it, so a
// single job can mix succeeding and failing questions.
const failMarker = "TRIGGER-FAILURE"

type emptyRetriever struct{}

func (emptyRetriever) Search(context.Context, string, string, int) []*entity.ScoredKnowledgeEntry {
	return nil
}

var _ knowledge.Retriever = emptyRetriever{}

type markerGenerator struct{}

func (markerGenerator) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	if strings.Contains(prompt, failMarker) {
		return "", errors.New("all providers exhausted")
	}
	return "Stub answer describing the workflow in steps.", nil
}

type stubFactory struct {
	err error
}

func (f *stubFactory) Pipeline(string) (*pipeline.QuestionPipeline, error) {
	if f.err != nil {
		return nil, f.err
	}
	return pipeline.NewQuestionPipeline(emptyRetriever{}, markerGenerator{}, 0, 5, logger.NewNopLogger()), nil
}

type stubRenderer struct {
	err   error
	calls int
}

func (r *stubRenderer) Render(string, *entity.Result, language.Config) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return "artifact-123.md", nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) byType(eventType string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, ev := range p.events {
		if ev.EventType() == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{
		WorkerLimit:      2,
		ConcurrencyScope: "job",
		JobTimeout:       5 * time.Second,
	}
}

type fixture struct {
	store     *session.MemoryStore
	renderer  *stubRenderer
	publisher *recordingPublisher
	orch      *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     session.NewMemoryStore(time.Minute),
		renderer:  &stubRenderer{},
		publisher: &recordingPublisher{},
	}
	f.orch = NewOrchestrator(f.store, &stubFactory{}, f.renderer, f.publisher, testConfig(), logger.NewNopLogger())
	return f
}

func (f *fixture) newJob(t *testing.T, texts ...string) Job {
	t.Helper()
	id, err := f.store.Create(context.Background(), "en", nil)
	require.NoError(t, err)

	questions := make([]entity.Question, len(texts))
	for i, text := range texts {
		questions[i] = entity.Question{Index: i + 1, Text: text}
	}
	return Job{SessionID: id, Questions: questions, Language: "en"}
}

func TestRunCompletesSession(t *testing.T) {
	f := newFixture(t)
	job := f.newJob(t, "What is gravity?", "Explain photosynthesis")

	require.NoError(t, f.orch.Run(context.Background(), job))

	sess, err := f.store.Get(context.Background(), job.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusComplete, sess.Status)

	result, err := f.store.GetResult(context.Background(), job.SessionID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "artifact-123.md", result.ArtifactID)
	require.Len(t, result.Items, 2)
	// Items keep the upload order regardless of completion order.
	assert.Equal(t, 1, result.Items[0].Index)
	assert.Equal(t, 2, result.Items[1].Index)
	for _, item := range result.Items {
		require.NotNil(t, item.Answer)
		assert.NotEmpty(t, *item.Answer)
	}

	answers, err := f.store.Answers(context.Background(), job.SessionID)
	require.NoError(t, err)
	assert.Len(t, answers, 2)

	log, err := f.store.ProgressLog(context.Background(), job.SessionID)
	require.NoError(t, err)
	require.NotEmpty(t, log)
	final := log[len(log)-1]
	assert.Equal(t, string(pipeline.StageComplete), final.Stage)
	assert.Equal(t, 100, final.Progress)

	finished := f.publisher.byType("SESSION_FINISHED")
	assert.Len(t, finished, 1)
}

func TestRunProgressIsMonotonic(t *testing.T) {
	f := newFixture(t)
	job := f.newJob(t, "Q one", "Q two", "Q three")

	require.NoError(t, f.orch.Run(context.Background(), job))

	log, err := f.store.ProgressLog(context.Background(), job.SessionID)
	require.NoError(t, err)
	prev := 0
	for _, ev := range log {
		assert.GreaterOrEqual(t, ev.Progress, prev)
		prev = ev.Progress
	}
	assert.Equal(t, 100, prev)
}

// completionOrderStore records the progress the snapshot holds at the moment
// each status transition lands.
type completionOrderStore struct {
	*session.MemoryStore
	progressAtTransition map[entity.SessionStatus]int
}

func (s *completionOrderStore) SetStatus(ctx context.Context, id string, status entity.SessionStatus) error {
	if snapshot, err := s.MemoryStore.LatestProgress(ctx, id); err == nil {
		s.progressAtTransition[status] = snapshot.Progress
	}
	return s.MemoryStore.SetStatus(ctx, id, status)
}

func TestRunCompleteNeverObservedBelowFullProgress(t *testing.T) {
	f := newFixture(t)
	store := &completionOrderStore{
		MemoryStore:          f.store,
		progressAtTransition: map[entity.SessionStatus]int{},
	}
	f.orch = NewOrchestrator(store, &stubFactory{}, f.renderer, f.publisher, testConfig(), logger.NewNopLogger())
	job := f.newJob(t, "What is gravity?", "Explain photosynthesis")

	require.NoError(t, f.orch.Run(context.Background(), job))

	// The 100% event must land before the flip to complete, so any poller
	// that reads complete also reads progress 100.
	assert.Equal(t, 100, store.progressAtTransition[entity.StatusComplete])
}

func TestRunToleratesFailedQuestion(t *testing.T) {
	f := newFixture(t)
	job := f.newJob(t, "What is gravity?", "Please "+failMarker+" now")

	require.NoError(t, f.orch.Run(context.Background(), job))

	sess, err := f.store.Get(context.Background(), job.SessionID)
	require.NoError(t, err)
	// One lost question degrades the result; it does not fail the session.
	assert.Equal(t, entity.StatusComplete, sess.Status)

	result, err := f.store.GetResult(context.Background(), job.SessionID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.FailedCount())
	require.Len(t, result.Items, 2)
	assert.NotNil(t, result.Items[0].Answer)
	assert.Nil(t, result.Items[1].Answer)
	assert.Contains(t, result.Items[1].Error, "exhausted")

	// Only the succeeding question leaves a preview.
	answers, err := f.store.Answers(context.Background(), job.SessionID)
	require.NoError(t, err)
	assert.Len(t, answers, 1)
}

func TestRunDuplicateDelivery(t *testing.T) {
	f := newFixture(t)
	job := f.newJob(t, "What is gravity?")

	require.NoError(t, f.orch.Run(context.Background(), job))

	err := f.orch.Run(context.Background(), job)
	assert.ErrorIs(t, err, apperr.ErrAlreadyTerminal)
}

func TestRunConcurrentClaim(t *testing.T) {
	f := newFixture(t)
	job := f.newJob(t, "What is gravity?")
	require.NoError(t, f.store.Claim(context.Background(), job.SessionID))

	err := f.orch.Run(context.Background(), job)
	assert.ErrorIs(t, err, apperr.ErrAlreadyRunning)
}

func TestRunUnsupportedLanguage(t *testing.T) {
	f := newFixture(t)
	job := f.newJob(t, "What is gravity?")
	job.Language = "xx"

	err := f.orch.Run(context.Background(), job)
	require.Error(t, err)

	sess, gerr := f.store.Get(context.Background(), job.SessionID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.StatusError, sess.Status)

	result, rerr := f.store.GetResult(context.Background(), job.SessionID)
	require.NoError(t, rerr)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestRunNoQuestions(t *testing.T) {
	f := newFixture(t)
	job := f.newJob(t)

	err := f.orch.Run(context.Background(), job)
	require.Error(t, err)

	sess, gerr := f.store.Get(context.Background(), job.SessionID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.StatusError, sess.Status)
}

func TestRunPipelineFactoryFailure(t *testing.T) {
	f := newFixture(t)
	f.orch = NewOrchestrator(f.store, &stubFactory{err: errors.New("no provider credentials configured")},
		f.renderer, f.publisher, testConfig(), logger.NewNopLogger())
	job := f.newJob(t, "What is gravity?")

	err := f.orch.Run(context.Background(), job)
	require.Error(t, err)

	sess, gerr := f.store.Get(context.Background(), job.SessionID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.StatusError, sess.Status)
}

func TestRunRendererFailure(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = errors.New("disk full")
	job := f.newJob(t, "What is gravity?")

	err := f.orch.Run(context.Background(), job)
	require.Error(t, err)

	sess, gerr := f.store.Get(context.Background(), job.SessionID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.StatusError, sess.Status)
	assert.Equal(t, 1, f.renderer.calls)
}

func TestRunWithoutEventPublisher(t *testing.T) {
	f := newFixture(t)
	f.orch = NewOrchestrator(f.store, &stubFactory{}, f.renderer, nil, testConfig(), logger.NewNopLogger())
	job := f.newJob(t, "What is gravity?")

	require.NoError(t, f.orch.Run(context.Background(), job))
}

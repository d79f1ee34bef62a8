package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryStore is the in-process Store used by tests and single-node
// deployments without Redis. go-cache gives the absolute TTL for free: the
// record is Set once at creation and never re-Set, so mutations do not slide
// the expiry.
type MemoryStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

type memoryRecord struct {
	mu       sync.Mutex
	session  entity.Session
	events   []entity.ProgressEvent
	answers  []entity.AnswerPreview
	result   *entity.Result
	snapshot entity.ProgressSnapshot
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Create(_ context.Context, language string, metadata map[string]string) (string, error) {
	id := uuid.NewString()
	rec := &memoryRecord{
		session: entity.Session{
			ID:        id,
			Status:    entity.StatusPending,
			Language:  language,
			Metadata:  metadata,
			CreatedAt: time.Now().UTC(),
			TTL:       s.ttl,
		},
	}
	s.cache.Set(id, rec, cache.DefaultExpiration)
	return id, nil
}

func (s *MemoryStore) record(id string) (*memoryRecord, error) {
	if x, found := s.cache.Get(id); found {
		return x.(*memoryRecord), nil
	}
	return nil, apperr.ErrNotFound
}

func (s *MemoryStore) Get(_ context.Context, id string) (*entity.Session, error) {
	rec, err := s.record(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	sess := rec.session
	return &sess, nil
}

func (s *MemoryStore) SetStatus(_ context.Context, id string, status entity.SessionStatus) error {
	rec, err := s.record(id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if !rec.session.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s may not move to %s", apperr.ErrInvalidTransition, rec.session.Status, status)
	}
	rec.session.Status = status
	return nil
}

func (s *MemoryStore) Claim(_ context.Context, id string) error {
	rec, err := s.record(id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	switch {
	case rec.session.Status == entity.StatusPending:
		rec.session.Status = entity.StatusProcessing
		return nil
	case rec.session.Status.Terminal():
		return apperr.ErrAlreadyTerminal
	default:
		return apperr.ErrAlreadyRunning
	}
}

func (s *MemoryStore) AppendProgress(_ context.Context, ev entity.ProgressEvent) error {
	rec, err := s.record(ev.SessionID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events = append(rec.events, ev)
	if ev.Progress >= rec.snapshot.Progress {
		rec.snapshot.Progress = ev.Progress
		rec.snapshot.Stage = ev.Stage
		rec.snapshot.Message = ev.Message
	}
	return nil
}

func (s *MemoryStore) ProgressLog(_ context.Context, id string) ([]entity.ProgressEvent, error) {
	rec, err := s.record(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]entity.ProgressEvent, len(rec.events))
	copy(out, rec.events)
	return out, nil
}

func (s *MemoryStore) LatestProgress(_ context.Context, id string) (*entity.ProgressSnapshot, error) {
	rec, err := s.record(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	snapshot := rec.snapshot
	snapshot.Status = rec.session.Status
	return &snapshot, nil
}

func (s *MemoryStore) StoreAnswer(_ context.Context, id string, preview entity.AnswerPreview) error {
	rec, err := s.record(id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.answers = append(rec.answers, preview)
	return nil
}

func (s *MemoryStore) Answers(_ context.Context, id string) ([]entity.AnswerPreview, error) {
	rec, err := s.record(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]entity.AnswerPreview, len(rec.answers))
	copy(out, rec.answers)
	return out, nil
}

func (s *MemoryStore) StoreResult(_ context.Context, id string, result *entity.Result) error {
	rec, err := s.record(id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.result != nil {
		return apperr.ErrResultExists
	}
	copied := *result
	rec.result = &copied
	return nil
}

func (s *MemoryStore) GetResult(_ context.Context, id string) (*entity.Result, error) {
	rec, err := s.record(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.result == nil {
		return nil, apperr.ErrNotFound
	}
	copied := *rec.result
	return &copied, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

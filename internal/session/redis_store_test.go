package session

import (
	"context"
	"testing"
	"time"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTestStore(t *testing.T) (*miniredis.Miniredis, *RedisStore, string) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(rdb, time.Hour)
	id, err := store.Create(context.Background(), "en", map[string]string{"source": "test"})
	require.NoError(t, err)
	return mr, store, id
}

func TestRedisCreateAndGet(t *testing.T) {
	_, store, id := newRedisTestStore(t)

	sess, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, sess.Status)
	assert.Equal(t, "en", sess.Language)
	assert.Equal(t, "test", sess.Metadata["source"])
	assert.Equal(t, time.Hour, sess.TTL)
}

func TestRedisGetUnknownSession(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	_, err := NewRedisStore(rdb, time.Hour).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRedisStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []entity.SessionStatus
		wantErr bool
	}{
		{name: "pending to processing to complete", path: []entity.SessionStatus{entity.StatusProcessing, entity.StatusComplete}},
		{name: "pending to processing to error", path: []entity.SessionStatus{entity.StatusProcessing, entity.StatusError}},
		{name: "pending straight to complete", path: []entity.SessionStatus{entity.StatusComplete}, wantErr: true},
		{name: "pending straight to error", path: []entity.SessionStatus{entity.StatusError}, wantErr: true},
		{name: "complete is terminal", path: []entity.SessionStatus{entity.StatusProcessing, entity.StatusComplete, entity.StatusProcessing}, wantErr: true},
		{name: "error is terminal", path: []entity.SessionStatus{entity.StatusProcessing, entity.StatusError, entity.StatusComplete}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, store, id := newRedisTestStore(t)
			var err error
			for _, status := range tt.path {
				err = store.SetStatus(context.Background(), id, status)
				if err != nil {
					break
				}
			}
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRedisSetStatusUnknownSession(t *testing.T) {
	_, store, _ := newRedisTestStore(t)

	err := store.SetStatus(context.Background(), "nope", entity.StatusProcessing)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRedisClaim(t *testing.T) {
	_, store, id := newRedisTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Claim(ctx, id))

	sess, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusProcessing, sess.Status)

	// A second claim must not win.
	assert.ErrorIs(t, store.Claim(ctx, id), apperr.ErrAlreadyRunning)

	require.NoError(t, store.SetStatus(ctx, id, entity.StatusComplete))
	assert.ErrorIs(t, store.Claim(ctx, id), apperr.ErrAlreadyTerminal)
}

func TestRedisClaimUnknownSession(t *testing.T) {
	_, store, _ := newRedisTestStore(t)
	assert.ErrorIs(t, store.Claim(context.Background(), "nope"), apperr.ErrNotFound)
}

func TestRedisProgressLogAppendsInOrder(t *testing.T) {
	_, store, id := newRedisTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Claim(ctx, id))

	stages := []struct {
		stage    string
		progress int
	}{
		{"knowledge_search", 10},
		{"context_building", 20},
		{"answer_generation", 40},
	}
	for _, s := range stages {
		require.NoError(t, store.AppendProgress(ctx, entity.ProgressEvent{
			SessionID: id,
			Stage:     s.stage,
			Progress:  s.progress,
			Message:   s.stage,
			Timestamp: time.Now(),
		}))
	}

	log, err := store.ProgressLog(ctx, id)
	require.NoError(t, err)
	require.Len(t, log, 3)
	for i, s := range stages {
		assert.Equal(t, s.stage, log[i].Stage)
		assert.Equal(t, s.progress, log[i].Progress)
	}
}

func TestRedisSnapshotNeverRegresses(t *testing.T) {
	_, store, id := newRedisTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Claim(ctx, id))

	require.NoError(t, store.AppendProgress(ctx, entity.ProgressEvent{
		SessionID: id, Stage: "answer_generation", Progress: 40, Message: "generating",
	}))
	// A stale lower event still lands in the log but must not pull the
	// snapshot back.
	require.NoError(t, store.AppendProgress(ctx, entity.ProgressEvent{
		SessionID: id, Stage: "knowledge_search", Progress: 10, Message: "late",
	}))

	snapshot, err := store.LatestProgress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 40, snapshot.Progress)
	assert.Equal(t, "answer_generation", snapshot.Stage)

	log, err := store.ProgressLog(ctx, id)
	require.NoError(t, err)
	assert.Len(t, log, 2)
}

func TestRedisLatestProgressCarriesStatus(t *testing.T) {
	_, store, id := newRedisTestStore(t)
	ctx := context.Background()

	snapshot, err := store.LatestProgress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, snapshot.Status)
	assert.Zero(t, snapshot.Progress)

	require.NoError(t, store.Claim(ctx, id))
	snapshot, err = store.LatestProgress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusProcessing, snapshot.Status)
}

func TestRedisAppendProgressUnknownSession(t *testing.T) {
	_, store, _ := newRedisTestStore(t)

	err := store.AppendProgress(context.Background(), entity.ProgressEvent{
		SessionID: "nope", Stage: "knowledge_search", Progress: 10,
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRedisStoreResultSingleWrite(t *testing.T) {
	_, store, id := newRedisTestStore(t)
	ctx := context.Background()

	answer := "An answer."
	require.NoError(t, store.StoreResult(ctx, id, &entity.Result{
		Success:  true,
		Language: "en",
		Items:    []entity.QuestionResult{{Index: 1, Question: "Q?", Answer: &answer}},
	}))

	err := store.StoreResult(ctx, id, &entity.Result{Success: false, Language: "en"})
	assert.ErrorIs(t, err, apperr.ErrResultExists)

	result, err := store.GetResult(ctx, id)
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Items, 1)
	require.NotNil(t, result.Items[0].Answer)
	assert.Equal(t, answer, *result.Items[0].Answer)
}

func TestRedisGetResultBeforeWrite(t *testing.T) {
	_, store, id := newRedisTestStore(t)

	_, err := store.GetResult(context.Background(), id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRedisAnswersKeepAppendOrder(t *testing.T) {
	_, store, id := newRedisTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.StoreAnswer(ctx, id, entity.AnswerPreview{
			Index: i, Question: "Q?", Answer: "A", Timestamp: time.Now(),
		}))
	}

	answers, err := store.Answers(ctx, id)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	for i, a := range answers {
		assert.Equal(t, i+1, a.Index)
	}
}

func TestRedisDelete(t *testing.T) {
	_, store, id := newRedisTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Claim(ctx, id))
	require.NoError(t, store.AppendProgress(ctx, entity.ProgressEvent{
		SessionID: id, Stage: "knowledge_search", Progress: 10,
	}))

	require.NoError(t, store.Delete(ctx, id))

	_, err := store.Get(ctx, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	log, err := store.ProgressLog(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestRedisTTLExpiresEverything(t *testing.T) {
	mr, store, id := newRedisTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Claim(ctx, id))
	require.NoError(t, store.AppendProgress(ctx, entity.ProgressEvent{
		SessionID: id, Stage: "knowledge_search", Progress: 10,
	}))
	require.NoError(t, store.StoreResult(ctx, id, &entity.Result{Success: true, Language: "en"}))

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, store.Claim(ctx, id), apperr.ErrNotFound)
	_, err = store.GetResult(ctx, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	log, err := store.ProgressLog(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, log)
}

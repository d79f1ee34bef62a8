package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session state in Redis:
//
//	session:{id}  hash   record + latest-progress snapshot
//	progress:{id} list   append-only progress log (JSON per element)
//	answers:{id}  list   per-question preview rows
//	result:{id}   string the single-write result slot
//
// TTL is absolute from creation: every key gets EXPIREAT created_at + ttl the
// moment it first exists, and no mutation ever extends it.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

var _ Store = (*RedisStore)(nil)

// casScript swaps the status field only when the current value is one of the
// allowed predecessors. Returns "OK", "NF", or "IT:<current>" so the caller
// can map the failure without a second round trip.
var casScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'status')
if not cur then return 'NF' end
for i = 2, #ARGV do
  if cur == ARGV[i] then
    redis.call('HSET', KEYS[1], 'status', ARGV[1])
    return 'OK'
  end
end
return 'IT:' .. cur
`)

// appendScript pushes the event and updates the latest-progress snapshot in
// one atomic step, clamping the snapshot so it never regresses.
var appendScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 'NF' end
redis.call('RPUSH', KEYS[2], ARGV[1])
redis.call('PEXPIREAT', KEYS[2], ARGV[5])
local cur = tonumber(redis.call('HGET', KEYS[1], 'progress') or '0')
local new = tonumber(ARGV[2])
if new >= cur then
  redis.call('HSET', KEYS[1], 'progress', ARGV[2], 'current_stage', ARGV[3], 'progress_message', ARGV[4])
end
return 'OK'
`)

func (s *RedisStore) Create(ctx context.Context, language string, metadata map[string]string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	expireAt := now.Add(s.ttl)

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshal session metadata: %w", err)
	}

	key := sessionKey(id)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"id":          id,
		"status":      string(entity.StatusPending),
		"language":    language,
		"metadata":    metaJSON,
		"created_at":  now.Format(time.RFC3339Nano),
		"ttl_seconds": int64(s.ttl.Seconds()),
		"expire_at":   expireAt.UnixMilli(),
		"progress":    0,
	})
	pipe.PExpireAt(ctx, key, expireAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(data) == 0 {
		return nil, apperr.ErrNotFound
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, data["created_at"])
	ttlSeconds, _ := strconv.ParseInt(data["ttl_seconds"], 10, 64)

	metadata := map[string]string{}
	if raw, ok := data["metadata"]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			return nil, fmt.Errorf("decode session metadata: %w", err)
		}
	}

	return &entity.Session{
		ID:        data["id"],
		Status:    entity.SessionStatus(data["status"]),
		Language:  data["language"],
		Metadata:  metadata,
		CreatedAt: createdAt,
		TTL:       time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func (s *RedisStore) SetStatus(ctx context.Context, id string, status entity.SessionStatus) error {
	allowed := allowedPredecessors(status)
	if len(allowed) == 0 {
		return fmt.Errorf("%w: no status may move to %q", apperr.ErrInvalidTransition, status)
	}

	args := make([]interface{}, 0, len(allowed)+1)
	args = append(args, string(status))
	for _, p := range allowed {
		args = append(args, string(p))
	}

	res, err := casScript.Run(ctx, s.rdb, []string{sessionKey(id)}, args...).Text()
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return mapCASResult(res, status)
}

func (s *RedisStore) Claim(ctx context.Context, id string) error {
	res, err := casScript.Run(ctx, s.rdb, []string{sessionKey(id)},
		string(entity.StatusProcessing), string(entity.StatusPending)).Text()
	if err != nil {
		return fmt.Errorf("claim session: %w", err)
	}
	switch {
	case res == "OK":
		return nil
	case res == "NF":
		return apperr.ErrNotFound
	case strings.HasPrefix(res, "IT:"):
		current := entity.SessionStatus(strings.TrimPrefix(res, "IT:"))
		if current.Terminal() {
			return apperr.ErrAlreadyTerminal
		}
		return apperr.ErrAlreadyRunning
	default:
		return fmt.Errorf("claim session: unexpected script result %q", res)
	}
}

func (s *RedisStore) AppendProgress(ctx context.Context, ev entity.ProgressEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal progress event: %w", err)
	}

	expireAt, err := s.expireAt(ctx, ev.SessionID)
	if err != nil {
		return err
	}

	res, err := appendScript.Run(ctx, s.rdb,
		[]string{sessionKey(ev.SessionID), progressKey(ev.SessionID)},
		payload, ev.Progress, ev.Stage, ev.Message, expireAt.UnixMilli(),
	).Text()
	if err != nil {
		return fmt.Errorf("append progress: %w", err)
	}
	if res == "NF" {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *RedisStore) ProgressLog(ctx context.Context, id string) ([]entity.ProgressEvent, error) {
	raw, err := s.rdb.LRange(ctx, progressKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read progress log: %w", err)
	}
	events := make([]entity.ProgressEvent, 0, len(raw))
	for _, item := range raw {
		var ev entity.ProgressEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("decode progress event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *RedisStore) LatestProgress(ctx context.Context, id string) (*entity.ProgressSnapshot, error) {
	data, err := s.rdb.HMGet(ctx, sessionKey(id), "status", "progress", "current_stage", "progress_message").Result()
	if err != nil {
		return nil, fmt.Errorf("latest progress: %w", err)
	}
	if data[0] == nil {
		return nil, apperr.ErrNotFound
	}

	snapshot := &entity.ProgressSnapshot{
		Status: entity.SessionStatus(asString(data[0])),
		Stage:  asString(data[2]),
	}
	if p, err := strconv.Atoi(asString(data[1])); err == nil {
		snapshot.Progress = p
	}
	snapshot.Message = asString(data[3])
	return snapshot, nil
}

func (s *RedisStore) StoreAnswer(ctx context.Context, id string, preview entity.AnswerPreview) error {
	payload, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("marshal answer preview: %w", err)
	}
	expireAt, err := s.expireAt(ctx, id)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, answersKey(id), payload)
	pipe.PExpireAt(ctx, answersKey(id), expireAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store answer preview: %w", err)
	}
	return nil
}

func (s *RedisStore) Answers(ctx context.Context, id string) ([]entity.AnswerPreview, error) {
	raw, err := s.rdb.LRange(ctx, answersKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read answer previews: %w", err)
	}
	answers := make([]entity.AnswerPreview, 0, len(raw))
	for _, item := range raw {
		var a entity.AnswerPreview
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			return nil, fmt.Errorf("decode answer preview: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, nil
}

func (s *RedisStore) StoreResult(ctx context.Context, id string, result *entity.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	expireAt, err := s.expireAt(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.rdb.SetNX(ctx, resultKey(id), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	if !ok {
		return apperr.ErrResultExists
	}
	if err := s.rdb.PExpireAt(ctx, resultKey(id), expireAt).Err(); err != nil {
		return fmt.Errorf("expire result: %w", err)
	}
	return nil
}

func (s *RedisStore) GetResult(ctx context.Context, id string) (*entity.Result, error) {
	raw, err := s.rdb.Get(ctx, resultKey(id)).Result()
	if err == redis.Nil {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	var result entity.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &result, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id), progressKey(id), answersKey(id), resultKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// expireAt reads the TTL anchor written at creation, so newly materialized
// keys (progress, answers, result) expire together with the session record.
func (s *RedisStore) expireAt(ctx context.Context, id string) (time.Time, error) {
	millis, err := s.rdb.HGet(ctx, sessionKey(id), "expire_at").Int64()
	if err == redis.Nil {
		return time.Time{}, apperr.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read session expiry: %w", err)
	}
	return time.UnixMilli(millis), nil
}

func allowedPredecessors(next entity.SessionStatus) []entity.SessionStatus {
	switch next {
	case entity.StatusProcessing:
		return []entity.SessionStatus{entity.StatusPending}
	case entity.StatusComplete, entity.StatusError:
		return []entity.SessionStatus{entity.StatusProcessing}
	default:
		return nil
	}
}

func mapCASResult(res string, next entity.SessionStatus) error {
	switch {
	case res == "OK":
		return nil
	case res == "NF":
		return apperr.ErrNotFound
	case strings.HasPrefix(res, "IT:"):
		return fmt.Errorf("%w: %s may not move to %s",
			apperr.ErrInvalidTransition, strings.TrimPrefix(res, "IT:"), next)
	default:
		return fmt.Errorf("set status: unexpected script result %q", res)
	}
}

func asString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func sessionKey(id string) string  { return "session:" + id }
func progressKey(id string) string { return "progress:" + id }
func answersKey(id string) string  { return "answers:" + id }
func resultKey(id string) string   { return "result:" + id }

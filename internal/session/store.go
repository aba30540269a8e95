package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/quiz"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session is being updated")
)

const (
	defaultSessionTTL = 24 * time.Hour
	defaultLockTTL    = 10 * time.Second
)

// unlockScript only deletes the lock when we still own it.
var unlockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Record is a stored session.
type Record struct {
	ID          uuid.UUID  `json:"id"`
	QuizID      uuid.UUID  `json:"quiz_id"`
	Snapshot    Snapshot   `json:"snapshot"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RedisStore keeps session records and the quiz each session was started
// with in Redis. The quiz copy makes the graph immutable for the session
// even if an author edits the catalog entry meanwhile.
type RedisStore struct {
	redis   *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
	logger  zerolog.Logger
}

// NewRedisStore creates a session store backed by Redis.
func NewRedisStore(client *redis.Client, ttl, lockTTL time.Duration, logger zerolog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &RedisStore{
		redis:   client,
		ttl:     ttl,
		lockTTL: lockTTL,
		logger:  logger.With().Str("component", "session_store").Logger(),
	}
}

func recordKey(id uuid.UUID) string { return fmt.Sprintf("session:state:%s", id) }

func quizKey(id uuid.UUID) string { return fmt.Sprintf("session:quiz:%s", id) }

func lockKey(id uuid.UUID) string { return fmt.Sprintf("session:lock:%s", id) }

// Lock acquires the single-writer lock for a session.
func (s *RedisStore) Lock(ctx context.Context, id uuid.UUID) (func() error, error) {
	key := lockKey(id)
	lockValue := uuid.New().String()

	acquired, err := s.redis.SetNX(ctx, key, lockValue, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, ErrSessionBusy
	}

	unlock := func() error {
		return unlockScript.Run(context.WithoutCancel(ctx), s.redis, []string{key}, lockValue).Err()
	}
	return unlock, nil
}

// Create stores a new session together with its quiz.
func (s *RedisStore) Create(ctx context.Context, rec Record, q *quiz.Quiz) error {
	doc, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, quizKey(rec.ID), doc, s.ttl)
	pipe.Set(ctx, recordKey(rec.ID), data, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Save overwrites the record and refreshes both TTLs.
func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, recordKey(rec.ID), data, s.ttl)
	pipe.Expire(ctx, quizKey(rec.ID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the record and its quiz, or ErrSessionNotFound.
func (s *RedisStore) Load(ctx context.Context, id uuid.UUID) (*Record, *quiz.Quiz, error) {
	values, err := s.redis.MGet(ctx, recordKey(id), quizKey(id)).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}
	rawRecord, ok1 := values[0].(string)
	rawQuiz, ok2 := values[1].(string)
	if !ok1 || !ok2 {
		return nil, nil, ErrSessionNotFound
	}

	var rec Record
	if err := json.Unmarshal([]byte(rawRecord), &rec); err != nil {
		return nil, nil, fmt.Errorf("unmarshal session: %w", err)
	}
	var q quiz.Quiz
	if err := json.Unmarshal([]byte(rawQuiz), &q); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("corrupted session quiz")
		return nil, nil, fmt.Errorf("unmarshal session quiz: %w", err)
	}
	return &rec, &q, nil
}

package stats

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	fieldStarted   = "started"
	fieldCompleted = "completed"
	endingPrefix   = "end:"
)

// Counter stores per-quiz counters. RedisCounter is the production
// implementation.
type Counter interface {
	Incr(ctx context.Context, quizID uuid.UUID, fields ...string) error
	Read(ctx context.Context, quizID uuid.UUID) (map[string]string, error)
}

// RedisCounter keeps one hash per quiz.
type RedisCounter struct {
	redis  *redis.Client
	prefix string
}

// NewRedisCounter builds a counter over client. prefix defaults to "quizstats".
func NewRedisCounter(client *redis.Client, prefix string) *RedisCounter {
	if prefix == "" {
		prefix = "quizstats"
	}
	return &RedisCounter{redis: client, prefix: prefix}
}

func (c *RedisCounter) key(quizID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", c.prefix, quizID.String())
}

// Incr bumps every field by one in a single transaction.
func (c *RedisCounter) Incr(ctx context.Context, quizID uuid.UUID, fields ...string) error {
	key := c.key(quizID)
	pipe := c.redis.TxPipeline()
	for _, f := range fields {
		pipe.HIncrBy(ctx, key, f, 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("increment stats %s: %w", key, err)
	}
	return nil
}

func (c *RedisCounter) Read(ctx context.Context, quizID uuid.UUID) (map[string]string, error) {
	values, err := c.redis.HGetAll(ctx, c.key(quizID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}
	return values, nil
}

// Summary aggregates how players moved through a quiz.
type Summary struct {
	QuizID         uuid.UUID        `json:"quiz_id"`
	Started        int64            `json:"started"`
	Completed      int64            `json:"completed"`
	CompletionRate float64          `json:"completion_rate"`
	Endings        map[string]int64 `json:"endings"`
}

// Service records session lifecycle counts. It satisfies session.Recorder.
type Service struct {
	counter Counter
	logger  zerolog.Logger
}

// NewService constructs a stats service.
func NewService(counter Counter, logger zerolog.Logger) *Service {
	return &Service{
		counter: counter,
		logger:  logger.With().Str("component", "stats").Logger(),
	}
}

// SessionStarted counts a new player session.
func (s *Service) SessionStarted(ctx context.Context, quizID uuid.UUID) {
	if err := s.counter.Incr(ctx, quizID, fieldStarted); err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("failed to record session start")
	}
}

// SessionCompleted counts a finished session and the question it ended on.
func (s *Service) SessionCompleted(ctx context.Context, quizID uuid.UUID, lastQuestionID string) {
	fields := []string{fieldCompleted}
	if lastQuestionID != "" {
		fields = append(fields, endingPrefix+lastQuestionID)
	}
	if err := s.counter.Incr(ctx, quizID, fields...); err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("failed to record session completion")
	}
}

// Summary reads the live counters for a quiz. Unknown quizzes read as zero.
func (s *Service) Summary(ctx context.Context, quizID uuid.UUID) (Summary, error) {
	values, err := s.counter.Read(ctx, quizID)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{QuizID: quizID, Endings: map[string]int64{}}
	for field, raw := range values {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.logger.Warn().Str("field", field).Str("value", raw).Msg("ignoring malformed stats counter")
			continue
		}
		switch {
		case field == fieldStarted:
			sum.Started = n
		case field == fieldCompleted:
			sum.Completed = n
		case strings.HasPrefix(field, endingPrefix):
			sum.Endings[strings.TrimPrefix(field, endingPrefix)] = n
		}
	}
	if sum.Started > 0 {
		sum.CompletionRate = float64(sum.Completed) / float64(sum.Started)
	}
	return sum, nil
}

package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/db/repository"
)

// QuizLister enumerates the quizzes to snapshot.
type QuizLister interface {
	IDs(ctx context.Context) ([]uuid.UUID, error)
}

// SnapshotWorker periodically persists Redis counters into Postgres.
type SnapshotWorker struct {
	svc      *Service
	quizzes  QuizLister
	repo     *repository.StatsRepository
	logger   zerolog.Logger
	interval time.Duration
}

func NewSnapshotWorker(svc *Service, quizzes QuizLister, repo *repository.StatsRepository, interval time.Duration, logger zerolog.Logger) *SnapshotWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SnapshotWorker{
		svc:      svc,
		quizzes:  quizzes,
		repo:     repo,
		logger:   logger.With().Str("component", "stats_snapshot_worker").Logger(),
		interval: interval,
	}
}

// Run blocks until context cancellation.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	if w.svc == nil || w.repo == nil || w.quizzes == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SnapshotWorker) tick(ctx context.Context) {
	ids, err := w.quizzes.IDs(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("listing quizzes failed")
		return
	}

	persisted := 0
	for _, id := range ids {
		ok, err := w.snapshotQuiz(ctx, id)
		if err != nil {
			w.logger.Warn().Err(err).Str("quiz_id", id.String()).Msg("snapshot failed")
			continue
		}
		if ok {
			persisted++
		}
	}

	if persisted > 0 {
		w.logger.Info().Int("quizzes", persisted).Msg("stats snapshots persisted")
	}
}

func (w *SnapshotWorker) snapshotQuiz(ctx context.Context, id uuid.UUID) (bool, error) {
	sum, err := w.svc.Summary(ctx, id)
	if err != nil {
		return false, err
	}
	if sum.Started == 0 {
		return false, nil
	}

	endings, err := json.Marshal(sum.Endings)
	if err != nil {
		return false, err
	}
	if _, err := w.repo.InsertSnapshot(ctx, id, sum.Started, sum.Completed, endings); err != nil {
		return false, err
	}
	return true, nil
}

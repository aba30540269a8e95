package repository

import (
	"context"

	"github.com/google/uuid"

	sqlcgen "github.com/gokatarajesh/quizflow/internal/db/sqlc"
)

type statsStore interface {
	InsertStatsSnapshot(ctx context.Context, arg sqlcgen.InsertStatsSnapshotParams) (sqlcgen.QuizStatsSnapshot, error)
	ListStatsSnapshots(ctx context.Context, arg sqlcgen.ListStatsSnapshotsParams) ([]sqlcgen.QuizStatsSnapshot, error)
}

// StatsRepository persists periodic completion snapshots.
type StatsRepository struct {
	store statsStore
}

func NewStatsRepository(store statsStore) *StatsRepository {
	return &StatsRepository{store: store}
}

// InsertSnapshot records one snapshot row. endings is a JSON object.
func (r *StatsRepository) InsertSnapshot(ctx context.Context, quizID uuid.UUID, started, completed int64, endings []byte) (sqlcgen.QuizStatsSnapshot, error) {
	return r.store.InsertStatsSnapshot(ctx, sqlcgen.InsertStatsSnapshotParams{
		QuizID:    pgUUID(quizID),
		Started:   started,
		Completed: completed,
		Endings:   endings,
	})
}

// ListSnapshots returns the latest snapshots for a quiz.
func (r *StatsRepository) ListSnapshots(ctx context.Context, quizID uuid.UUID, limit int32) ([]sqlcgen.QuizStatsSnapshot, error) {
	return r.store.ListStatsSnapshots(ctx, sqlcgen.ListStatsSnapshotsParams{QuizID: pgUUID(quizID), Limit: limit})
}

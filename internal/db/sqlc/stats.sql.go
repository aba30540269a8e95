// source: stats.sql

package sqlcgen

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertStatsSnapshot = `-- name: InsertStatsSnapshot :one
INSERT INTO quiz_stats_snapshots (quiz_id, started, completed, endings)
VALUES ($1, $2, $3, $4)
RETURNING id, quiz_id, started, completed, endings, generated_at
`

type InsertStatsSnapshotParams struct {
	QuizID    pgtype.UUID `json:"quiz_id"`
	Started   int64       `json:"started"`
	Completed int64       `json:"completed"`
	Endings   []byte      `json:"endings"`
}

func (q *Queries) InsertStatsSnapshot(ctx context.Context, arg InsertStatsSnapshotParams) (QuizStatsSnapshot, error) {
	row := q.db.QueryRow(ctx, insertStatsSnapshot,
		arg.QuizID,
		arg.Started,
		arg.Completed,
		arg.Endings,
	)
	var i QuizStatsSnapshot
	err := row.Scan(
		&i.ID,
		&i.QuizID,
		&i.Started,
		&i.Completed,
		&i.Endings,
		&i.GeneratedAt,
	)
	return i, err
}

const listStatsSnapshots = `-- name: ListStatsSnapshots :many
SELECT id, quiz_id, started, completed, endings, generated_at
FROM quiz_stats_snapshots
WHERE quiz_id = $1
ORDER BY generated_at DESC
LIMIT $2
`

type ListStatsSnapshotsParams struct {
	QuizID pgtype.UUID `json:"quiz_id"`
	Limit  int32       `json:"limit"`
}

func (q *Queries) ListStatsSnapshots(ctx context.Context, arg ListStatsSnapshotsParams) ([]QuizStatsSnapshot, error) {
	rows, err := q.db.Query(ctx, listStatsSnapshots, arg.QuizID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []QuizStatsSnapshot
	for rows.Next() {
		var i QuizStatsSnapshot
		if err := rows.Scan(
			&i.ID,
			&i.QuizID,
			&i.Started,
			&i.Completed,
			&i.Endings,
			&i.GeneratedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

package sqlcgen

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Quiz struct {
	ID        pgtype.UUID        `json:"id"`
	AuthorID  string             `json:"author_id"`
	Title     string             `json:"title"`
	Document  []byte             `json:"document"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type QuizStatsSnapshot struct {
	ID          int64              `json:"id"`
	QuizID      pgtype.UUID        `json:"quiz_id"`
	Started     int64              `json:"started"`
	Completed   int64              `json:"completed"`
	Endings     []byte             `json:"endings"`
	GeneratedAt pgtype.Timestamptz `json:"generated_at"`
}

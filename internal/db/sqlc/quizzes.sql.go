// source: quizzes.sql

package sqlcgen

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createQuiz = `-- name: CreateQuiz :one
INSERT INTO quizzes (id, author_id, title, document)
VALUES ($1, $2, $3, $4)
RETURNING id, author_id, title, document, created_at, updated_at
`

type CreateQuizParams struct {
	ID       pgtype.UUID `json:"id"`
	AuthorID string      `json:"author_id"`
	Title    string      `json:"title"`
	Document []byte      `json:"document"`
}

func (q *Queries) CreateQuiz(ctx context.Context, arg CreateQuizParams) (Quiz, error) {
	row := q.db.QueryRow(ctx, createQuiz,
		arg.ID,
		arg.AuthorID,
		arg.Title,
		arg.Document,
	)
	var i Quiz
	err := row.Scan(
		&i.ID,
		&i.AuthorID,
		&i.Title,
		&i.Document,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteQuiz = `-- name: DeleteQuiz :execrows
DELETE FROM quizzes WHERE id = $1
`

func (q *Queries) DeleteQuiz(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteQuiz, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getQuiz = `-- name: GetQuiz :one
SELECT id, author_id, title, document, created_at, updated_at
FROM quizzes
WHERE id = $1
`

func (q *Queries) GetQuiz(ctx context.Context, id pgtype.UUID) (Quiz, error) {
	row := q.db.QueryRow(ctx, getQuiz, id)
	var i Quiz
	err := row.Scan(
		&i.ID,
		&i.AuthorID,
		&i.Title,
		&i.Document,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listQuizIDs = `-- name: ListQuizIDs :many
SELECT id FROM quizzes ORDER BY created_at
`

func (q *Queries) ListQuizIDs(ctx context.Context) ([]pgtype.UUID, error) {
	rows, err := q.db.Query(ctx, listQuizIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []pgtype.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listQuizzes = `-- name: ListQuizzes :many
SELECT id, author_id, title, document, created_at, updated_at
FROM quizzes
ORDER BY updated_at DESC
LIMIT $1 OFFSET $2
`

type ListQuizzesParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListQuizzes(ctx context.Context, arg ListQuizzesParams) ([]Quiz, error) {
	rows, err := q.db.Query(ctx, listQuizzes, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Quiz
	for rows.Next() {
		var i Quiz
		if err := rows.Scan(
			&i.ID,
			&i.AuthorID,
			&i.Title,
			&i.Document,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updateQuiz = `-- name: UpdateQuiz :one
UPDATE quizzes
SET title = $2, document = $3, updated_at = NOW()
WHERE id = $1
RETURNING id, author_id, title, document, created_at, updated_at
`

type UpdateQuizParams struct {
	ID       pgtype.UUID `json:"id"`
	Title    string      `json:"title"`
	Document []byte      `json:"document"`
}

func (q *Queries) UpdateQuiz(ctx context.Context, arg UpdateQuizParams) (Quiz, error) {
	row := q.db.QueryRow(ctx, updateQuiz, arg.ID, arg.Title, arg.Document)
	var i Quiz
	err := row.Scan(
		&i.ID,
		&i.AuthorID,
		&i.Title,
		&i.Document,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

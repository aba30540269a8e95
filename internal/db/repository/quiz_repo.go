package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	sqlcgen "github.com/gokatarajesh/quizflow/internal/db/sqlc"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("record not found")

type quizStore interface {
	CreateQuiz(ctx context.Context, arg sqlcgen.CreateQuizParams) (sqlcgen.Quiz, error)
	GetQuiz(ctx context.Context, id pgtype.UUID) (sqlcgen.Quiz, error)
	ListQuizzes(ctx context.Context, arg sqlcgen.ListQuizzesParams) ([]sqlcgen.Quiz, error)
	ListQuizIDs(ctx context.Context) ([]pgtype.UUID, error)
	UpdateQuiz(ctx context.Context, arg sqlcgen.UpdateQuizParams) (sqlcgen.Quiz, error)
	DeleteQuiz(ctx context.Context, id pgtype.UUID) (int64, error)
}

// QuizRepository stores quiz documents as JSONB rows.
type QuizRepository struct {
	store quizStore
}

// NewQuizRepository wraps Queries for quiz documents.
func NewQuizRepository(store quizStore) *QuizRepository {
	return &QuizRepository{store: store}
}

// Create inserts a new quiz document.
func (r *QuizRepository) Create(ctx context.Context, id uuid.UUID, authorID, title string, document []byte) (sqlcgen.Quiz, error) {
	return r.store.CreateQuiz(ctx, sqlcgen.CreateQuizParams{
		ID:       pgUUID(id),
		AuthorID: authorID,
		Title:    title,
		Document: document,
	})
}

// Get fetches one quiz by id.
func (r *QuizRepository) Get(ctx context.Context, id uuid.UUID) (sqlcgen.Quiz, error) {
	row, err := r.store.GetQuiz(ctx, pgUUID(id))
	if errors.Is(err, pgx.ErrNoRows) {
		return sqlcgen.Quiz{}, ErrNotFound
	}
	return row, err
}

// List returns quizzes, most recently updated first.
func (r *QuizRepository) List(ctx context.Context, limit, offset int32) ([]sqlcgen.Quiz, error) {
	return r.store.ListQuizzes(ctx, sqlcgen.ListQuizzesParams{Limit: limit, Offset: offset})
}

// IDs returns every stored quiz id.
func (r *QuizRepository) IDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.store.ListQuizIDs(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, id := range rows {
		if id.Valid {
			ids = append(ids, uuid.UUID(id.Bytes))
		}
	}
	return ids, nil
}

// Update replaces a quiz document.
func (r *QuizRepository) Update(ctx context.Context, id uuid.UUID, title string, document []byte) (sqlcgen.Quiz, error) {
	row, err := r.store.UpdateQuiz(ctx, sqlcgen.UpdateQuizParams{
		ID:       pgUUID(id),
		Title:    title,
		Document: document,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return sqlcgen.Quiz{}, ErrNotFound
	}
	return row, err
}

// Delete removes a quiz; ErrNotFound when nothing was deleted.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.store.DeleteQuiz(ctx, pgUUID(id))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

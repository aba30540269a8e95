package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/quizflow/internal/db/sqlc"
	"github.com/gokatarajesh/quizflow/internal/quiz"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ReportObserver is told about every validation report the catalog produces.
type ReportObserver interface {
	ObserveReport(report quiz.Report)
}

// ServiceOptions tunes the catalog.
type ServiceOptions struct {
	MaxDocumentBytes int64
	Observer         ReportObserver
}

// Service stores, edits and serves quiz documents.
type Service struct {
	repo     *repository.QuizRepository
	cache    DocumentCache
	maxBytes int64
	observer ReportObserver
	logger   zerolog.Logger
}

// NewService wires the catalog. cache may be nil.
func NewService(repo *repository.QuizRepository, cache DocumentCache, opts ServiceOptions, logger zerolog.Logger) *Service {
	maxBytes := opts.MaxDocumentBytes
	if maxBytes <= 0 {
		maxBytes = quiz.DefaultMaxBytes
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		maxBytes: maxBytes,
		observer: opts.Observer,
		logger:   logger.With().Str("component", "catalog_service").Logger(),
	}
}

// Create stores a new quiz. A nil quiz starts an empty one.
func (s *Service) Create(ctx context.Context, authorID string, q *quiz.Quiz) (*SaveResult, error) {
	if q == nil {
		q = quiz.NewQuiz("")
	}
	doc, err := quiz.Marshal(q)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.Create(ctx, uuid.New(), authorID, q.Title, doc)
	if err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	rec, err := decodeRow(row)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, rec)

	report := s.validate(rec.Quiz)
	s.logger.Info().
		Str("quiz_id", rec.ID.String()).
		Str("author_id", authorID).
		Int("errors", len(report.Errors)).
		Int("warnings", len(report.Warnings)).
		Msg("quiz created")
	return &SaveResult{Record: rec, Report: report}, nil
}

// Import decodes an untrusted JSON or YAML document and stores it.
func (s *Service) Import(ctx context.Context, authorID string, format quiz.Format, r io.Reader) (*SaveResult, error) {
	q, err := quiz.LoadReader(r, format, s.maxBytes)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, authorID, q)
}

// Get returns a stored quiz, consulting the cache first.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("quiz_id", id.String()).Msg("quiz cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	rec, err := decodeRow(row)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, rec)
	return rec, nil
}

// Quiz returns a private copy of a stored quiz for a new player session.
func (s *Service) Quiz(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.Quiz.Clone(), nil
}

// List returns quiz summaries, most recently updated first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Summary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.repo.List(ctx, int32(limit), int32(offset))
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeRow(row)
		if err != nil {
			s.logger.Warn().Err(err).Msg("skipping undecodable quiz")
			continue
		}
		out = append(out, summarize(rec))
	}
	return out, nil
}

// IDs lists every stored quiz id.
func (s *Service) IDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.IDs(ctx)
}

// Update replaces the whole quiz document.
func (s *Service) Update(ctx context.Context, id uuid.UUID, q *quiz.Quiz) (*SaveResult, error) {
	if q == nil {
		return nil, quiz.ErrNilQuiz
	}
	doc, err := quiz.Marshal(q)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.Update(ctx, id, q.Title, doc)
	if err != nil {
		return nil, mapRepoError(err)
	}
	rec, err := decodeRow(row)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, rec)

	report := s.validate(rec.Quiz)
	s.logger.Info().
		Str("quiz_id", id.String()).
		Int("errors", len(report.Errors)).
		Msg("quiz updated")
	return &SaveResult{Record: rec, Report: report}, nil
}

// UpdateFrom replaces a quiz with an untrusted JSON or YAML document.
func (s *Service) UpdateFrom(ctx context.Context, id uuid.UUID, format quiz.Format, r io.Reader) (*SaveResult, error) {
	q, err := quiz.LoadReader(r, format, s.maxBytes)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, id, q)
}

// Apply runs one editor command against the stored quiz.
func (s *Service) Apply(ctx context.Context, id uuid.UUID, edit quiz.Edit) (*SaveResult, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	edited, err := quiz.ApplyEdit(rec.Quiz, edit)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, id, edited)
}

// Delete removes a quiz. Running sessions keep their own copy.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	s.forget(ctx, id)
	s.logger.Info().Str("quiz_id", id.String()).Msg("quiz deleted")
	return nil
}

// Validate reports on a stored quiz without changing it.
func (s *Service) Validate(ctx context.Context, id uuid.UUID) (quiz.Report, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return quiz.Report{}, err
	}
	return s.validate(rec.Quiz), nil
}

// Export returns the download filename and canonical JSON of a quiz.
func (s *Service) Export(ctx context.Context, id uuid.UUID) (string, []byte, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	data, err := quiz.Marshal(rec.Quiz)
	if err != nil {
		return "", nil, err
	}
	return quiz.ExportFilename(rec.Quiz.Title), data, nil
}

func (s *Service) validate(q *quiz.Quiz) quiz.Report {
	report := quiz.Validate(q)
	if s.observer != nil {
		s.observer.ObserveReport(report)
	}
	return report
}

func (s *Service) remember(ctx context.Context, rec *Record) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", rec.ID.String()).Msg("quiz cache write failed")
	}
}

func (s *Service) forget(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", id.String()).Msg("quiz cache delete failed")
	}
}

func decodeRow(row sqlcgen.Quiz) (*Record, error) {
	q, err := quiz.Load(row.Document, quiz.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("decode stored quiz: %w", err)
	}
	return &Record{
		ID:        uuid.UUID(row.ID.Bytes),
		AuthorID:  row.AuthorID,
		Quiz:      q,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}

func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return quiz.ErrNotFound
	}
	return err
}

package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/quiz"
)

// QuizSource loads the quiz a session is started from.
type QuizSource interface {
	Quiz(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error)
}

// Store persists sessions. RedisStore is the production implementation.
type Store interface {
	Lock(ctx context.Context, id uuid.UUID) (func() error, error)
	Create(ctx context.Context, rec Record, q *quiz.Quiz) error
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, id uuid.UUID) (*Record, *quiz.Quiz, error)
}

// Recorder is notified about session lifecycle events.
type Recorder interface {
	SessionStarted(ctx context.Context, quizID uuid.UUID)
	SessionCompleted(ctx context.Context, quizID uuid.UUID, lastQuestionID string)
}

// Recorders fans lifecycle events out to several recorders.
type Recorders []Recorder

func (rs Recorders) SessionStarted(ctx context.Context, quizID uuid.UUID) {
	for _, r := range rs {
		r.SessionStarted(ctx, quizID)
	}
}

func (rs Recorders) SessionCompleted(ctx context.Context, quizID uuid.UUID, lastQuestionID string) {
	for _, r := range rs {
		r.SessionCompleted(ctx, quizID, lastQuestionID)
	}
}

// StartError is returned when a quiz fails validation and cannot be played.
type StartError struct {
	Report quiz.Report
}

func (e *StartError) Error() string {
	return "quiz failed validation: " + strings.Join(e.Report.Errors, "; ")
}

// Unwrap exposes quiz.ErrNoQuestions for quizzes that cannot be navigated at all.
func (e *StartError) Unwrap() error {
	if e.Report.Fatal {
		return quiz.ErrNoQuestions
	}
	return nil
}

// ServiceOptions configures the session service.
type ServiceOptions struct {
	Recorder Recorder
	Now      func() time.Time
}

// Service runs player sessions. Every transition takes the session lock,
// loads the snapshot, applies one State operation and stores the result.
type Service struct {
	source   QuizSource
	store    Store
	nav      *quiz.Navigator
	recorder Recorder
	now      func() time.Time
	logger   zerolog.Logger
}

// NewService wires the session service.
func NewService(source QuizSource, store Store, nav *quiz.Navigator, opts ServiceOptions, logger zerolog.Logger) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		source:   source,
		store:    store,
		nav:      nav,
		recorder: opts.Recorder,
		now:      now,
		logger:   logger.With().Str("component", "session_service").Logger(),
	}
}

// Start validates the quiz and opens a new session on its first question.
func (s *Service) Start(ctx context.Context, quizID uuid.UUID) (*View, error) {
	q, err := s.source.Quiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}

	report := quiz.Validate(q)
	if !report.Valid() {
		s.logger.Info().
			Str("quiz_id", quizID.String()).
			Int("errors", len(report.Errors)).
			Msg("refusing to start invalid quiz")
		return nil, &StartError{Report: report}
	}

	state, err := NewState(q, s.nav)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	now := s.now().UTC()
	rec := Record{
		ID:        uuid.New(),
		QuizID:    quizID,
		Snapshot:  state.Snapshot(),
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, rec, q); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.SessionStarted(ctx, quizID)
	}

	s.logger.Info().
		Str("session_id", rec.ID.String()).
		Str("quiz_id", quizID.String()).
		Msg("session started")
	return newView(&rec, state), nil
}

// Get returns the current view of a session.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	rec, state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return newView(rec, state), nil
}

// RecordAnswer stores an answer for any question of the session's quiz.
func (s *Service) RecordAnswer(ctx context.Context, id uuid.UUID, questionID string, a quiz.Answer) (*View, error) {
	return s.mutate(ctx, id, func(st *State) error {
		return st.RecordAnswer(questionID, a)
	})
}

// Advance moves to the next question or completes the session.
func (s *Service) Advance(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(st *State) error {
		_, err := st.Advance()
		return err
	})
}

// Retreat moves back one question in declaration order if possible.
func (s *Service) Retreat(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(st *State) error {
		_, err := st.Retreat()
		return err
	})
}

// Reset clears the session back to its initial state.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(st *State) error {
		st.Reset()
		return nil
	})
}

// Result summarizes the answers recorded so far.
func (s *Service) Result(ctx context.Context, id uuid.UUID) (quiz.Result, error) {
	_, state, err := s.load(ctx, id)
	if err != nil {
		return quiz.Result{}, err
	}
	res := quiz.BuildResult(state.Quiz(), state.Answers())
	res.Path = state.Path()
	return res, nil
}

// Markdown renders the session's answers as a markdown profile.
func (s *Service) Markdown(ctx context.Context, id uuid.UUID) (string, error) {
	_, state, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	return quiz.RenderMarkdown(state.Quiz(), state.Answers()), nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*Record, *State, error) {
	rec, q, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	state, err := Restore(q, s.nav, rec.Snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("restore session: %w", err)
	}
	return rec, state, nil
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, apply func(*State) error) (*View, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("release session lock failed")
		}
	}()

	rec, state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	wasCompleted := state.Completed()
	if err := apply(state); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec.Snapshot = state.Snapshot()
	rec.UpdatedAt = now
	justCompleted := !wasCompleted && state.Completed()
	switch {
	case justCompleted:
		rec.CompletedAt = &now
	case !state.Completed():
		rec.CompletedAt = nil
	}

	if err := s.store.Save(ctx, *rec); err != nil {
		return nil, err
	}

	if justCompleted {
		last := state.CurrentQuestion().ID
		if s.recorder != nil {
			s.recorder.SessionCompleted(ctx, rec.QuizID, last)
		}
		s.logger.Info().
			Str("session_id", id.String()).
			Str("quiz_id", rec.QuizID.String()).
			Str("last_question", last).
			Msg("session completed")
	}
	return newView(rec, state), nil
}

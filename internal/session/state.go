package session

import (
	"errors"
	"fmt"

	"github.com/gokatarajesh/quizflow/internal/quiz"
)

var (
	ErrSessionCompleted = errors.New("session already completed")
	ErrAnswerRequired   = errors.New("current question needs an answer before advancing")
	ErrUnknownQuestion  = errors.New("question does not belong to this quiz")
	ErrStaleSession     = errors.New("session position no longer fits the quiz")
)

// Snapshot is the persisted form of a State.
type Snapshot struct {
	Position  quiz.Position `json:"position"`
	Answers   quiz.Answers  `json:"answers"`
	Completed bool          `json:"completed"`
}

// Progress counts answered questions against the quiz size.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// State is one participant's run through a quiz. It is single-writer: the
// caller serializes transitions.
type State struct {
	quiz      *quiz.Quiz
	nav       *quiz.Navigator
	position  quiz.Position
	answers   quiz.Answers
	completed bool
}

// NewState starts a run at the first navigable question.
func NewState(q *quiz.Quiz, nav *quiz.Navigator) (*State, error) {
	first, err := nav.First(q)
	if err != nil {
		return nil, err
	}
	return &State{
		quiz:     q,
		nav:      nav,
		position: first,
		answers:  quiz.Answers{},
	}, nil
}

// Restore rebuilds a State from a snapshot taken against the same quiz.
func Restore(q *quiz.Quiz, nav *quiz.Navigator, snap Snapshot) (*State, error) {
	s, err := NewState(q, nav)
	if err != nil {
		return nil, err
	}
	if _, ok := q.QuestionAt(snap.Position); !ok {
		return nil, fmt.Errorf("%w: %s", ErrStaleSession, snap.Position)
	}
	s.position = snap.Position
	s.completed = snap.Completed
	for id, a := range snap.Answers {
		s.answers[id] = a
	}
	return s, nil
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{Position: s.position, Answers: s.Answers(), Completed: s.completed}
}

func (s *State) Quiz() *quiz.Quiz { return s.quiz }

func (s *State) Position() quiz.Position { return s.position }

func (s *State) Completed() bool { return s.completed }

// Answers returns a copy of the recorded answers.
func (s *State) Answers() quiz.Answers {
	out := make(quiz.Answers, len(s.answers))
	for id, a := range s.answers {
		out[id] = a
	}
	return out
}

// CurrentQuestion is the question under the cursor. After completion it is
// the question that ended the run.
func (s *State) CurrentQuestion() *quiz.Question {
	q, _ := s.quiz.QuestionAt(s.position)
	return q
}

// Answer returns the recorded answer for the current question.
func (s *State) Answer() (quiz.Answer, bool) {
	a, ok := s.answers[s.CurrentQuestion().ID]
	return a, ok
}

func (s *State) Progress() Progress {
	p := Progress{Total: s.quiz.QuestionCount()}
	for id := range s.answers {
		if _, ok := s.quiz.FindQuestion(id); ok {
			p.Answered++
		}
	}
	return p
}

// Path replays the recorded answers and returns the positions the run went
// through. An unfinished run is cut at the current question; a cursor the
// replay never reaches, e.g. after stepping back off the routed path, is
// appended.
func (s *State) Path() []quiz.Position {
	path, _, err := s.nav.Walk(s.quiz, s.answers)
	if err != nil {
		return []quiz.Position{s.position}
	}
	if s.completed {
		return path
	}
	for i, pos := range path {
		if pos == s.position {
			return path[:i+1]
		}
	}
	return append(path, s.position)
}

// CanRetreat reports whether a previous question exists.
func (s *State) CanRetreat() bool {
	if s.completed {
		return false
	}
	_, ok := s.nav.Previous(s.quiz, s.position)
	return ok
}

// RecordAnswer stores a for questionID, replacing any earlier answer.
func (s *State) RecordAnswer(questionID string, a quiz.Answer) error {
	if s.completed {
		return ErrSessionCompleted
	}
	pos, ok := s.quiz.FindQuestion(questionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	question, _ := s.quiz.QuestionAt(pos)
	if err := quiz.CheckAnswer(question, a); err != nil {
		return err
	}
	s.answers[questionID] = a
	return nil
}

// Advance moves forward from the current question. Choice questions must be
// answered first; text questions may be skipped.
func (s *State) Advance() (quiz.NavResult, error) {
	if s.completed {
		return quiz.NavResult{}, ErrSessionCompleted
	}
	question := s.CurrentQuestion()
	answer, ok := s.answers[question.ID]
	if question.Type.IsChoice() && (!ok || answer.IsZero()) {
		return quiz.NavResult{}, ErrAnswerRequired
	}

	res := s.nav.Next(s.quiz, s.position, answer, nil)
	switch res.Kind {
	case quiz.NavEnd:
		s.completed = true
	case quiz.NavGoto:
		s.position = res.Position
	}
	return res, nil
}

// Retreat steps back in declaration order. It reports false at the first question.
func (s *State) Retreat() (bool, error) {
	if s.completed {
		return false, ErrSessionCompleted
	}
	prev, ok := s.nav.Previous(s.quiz, s.position)
	if !ok {
		return false, nil
	}
	s.position = prev
	return true, nil
}

// Reset clears answers and completion and returns to the first question.
func (s *State) Reset() {
	first, _ := s.nav.First(s.quiz)
	s.position = first
	s.answers = quiz.Answers{}
	s.completed = false
}

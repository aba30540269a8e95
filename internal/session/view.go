package session

import (
	"github.com/google/uuid"

	"github.com/gokatarajesh/quizflow/internal/quiz"
)

// View is what a participant sees. Routing rules are never exposed.
type View struct {
	SessionID  uuid.UUID       `json:"session_id"`
	QuizID     uuid.UUID       `json:"quiz_id"`
	QuizTitle  string          `json:"quiz_title"`
	Section    SectionView     `json:"section"`
	Question   QuestionView    `json:"question"`
	Answer     *quiz.Answer    `json:"answer,omitempty"`
	Position   quiz.Position   `json:"position"`
	Path       []quiz.Position `json:"path"`
	Progress   Progress        `json:"progress"`
	CanRetreat bool            `json:"can_retreat"`
	Completed  bool            `json:"completed"`
}

type SectionView struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type QuestionView struct {
	ID          string            `json:"id"`
	Text        string            `json:"text"`
	Type        quiz.QuestionType `json:"type"`
	Placeholder string            `json:"placeholder,omitempty"`
	Options     []OptionView      `json:"options,omitempty"`
}

type OptionView struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

func newView(rec *Record, st *State) *View {
	q := st.Quiz()
	pos := st.Position()
	section := q.Sections[pos.Section]
	question := st.CurrentQuestion()

	v := &View{
		SessionID: rec.ID,
		QuizID:    rec.QuizID,
		QuizTitle: q.Title,
		Section: SectionView{
			ID:    section.ID,
			Slug:  section.Slug,
			Title: section.Title,
		},
		Question: QuestionView{
			ID:          question.ID,
			Text:        question.Text,
			Type:        question.Type,
			Placeholder: question.Placeholder,
		},
		Position:   pos,
		Path:       st.Path(),
		Progress:   st.Progress(),
		CanRetreat: st.CanRetreat(),
		Completed:  st.Completed(),
	}
	for _, opt := range question.Options {
		v.Question.Options = append(v.Question.Options, OptionView{ID: opt.ID, Text: opt.Text, Value: opt.Value})
	}
	if a, ok := st.Answer(); ok {
		v.Answer = &a
	}
	return v
}

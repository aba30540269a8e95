package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrNilQuiz     = errors.New("quiz is nil")
	ErrNoQuestions = errors.New("quiz has no navigable questions")
	ErrNotFound    = errors.New("quiz not found")
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	SingleChoice   QuestionType = "singleChoice"
	MultipleChoice QuestionType = "multipleChoice"
	TextInput      QuestionType = "textInput"
)

var questionTypes = []QuestionType{SingleChoice, MultipleChoice, TextInput}

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	for _, known := range questionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsChoice is true for question types that carry options.
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultipleChoice
}

// RouteType discriminates Route.
type RouteType string

const (
	RouteSection  RouteType = "section"
	RouteQuestion RouteType = "question"
	RouteEnd      RouteType = "end"
)

var routeTypes = []RouteType{RouteSection, RouteQuestion, RouteEnd}

func (t RouteType) Valid() bool {
	for _, known := range routeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Route redirects navigation once an option is chosen. Target holds a section
// slug for RouteSection, a question id for RouteQuestion and is unused for RouteEnd.
type Route struct {
	Type   RouteType `json:"type" yaml:"type"`
	Target string    `json:"target,omitempty" yaml:"target,omitempty"`
}

type Option struct {
	ID    string `json:"id" yaml:"id"`
	Text  string `json:"text" yaml:"text"`
	Value string `json:"value" yaml:"value"`
}

type Question struct {
	ID          string           `json:"id" yaml:"id"`
	Text        string           `json:"text" yaml:"text"`
	Type        QuestionType     `json:"type" yaml:"type"`
	Placeholder string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []Option         `json:"options,omitempty" yaml:"options,omitempty"`
	Routing     map[string]Route `json:"routing,omitempty" yaml:"routing,omitempty"`
}

// OptionByValue returns the option whose value equals v exactly.
func (q *Question) OptionByValue(v string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.Value == v {
			return opt, true
		}
	}
	return Option{}, false
}

// OptionByID returns the option with the given id.
func (q *Question) OptionByID(id string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// RouteForValue resolves an answer value to the route attached to its option.
func (q *Question) RouteForValue(v string) (Route, bool) {
	opt, ok := q.OptionByValue(v)
	if !ok {
		return Route{}, false
	}
	route, ok := q.Routing[opt.ID]
	return route, ok
}

type Section struct {
	ID        string     `json:"id" yaml:"id"`
	Slug      string     `json:"slug" yaml:"slug"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Quiz is the full question graph. Treat it as immutable while a session
// is running; editing operations return a modified copy.
type Quiz struct {
	Title          string         `json:"quizTitle" yaml:"quizTitle"`
	Sections       []Section      `json:"sections" yaml:"sections"`
	ResultMessages map[string]any `json:"resultMessages" yaml:"resultMessages"`
}

// Position is a (section, question) cursor into a Quiz.
type Position struct {
	Section  int `json:"section"`
	Question int `json:"question"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d-%d", p.Section, p.Question)
}

// QuestionAt returns the question under pos.
func (q *Quiz) QuestionAt(pos Position) (*Question, bool) {
	if q == nil || pos.Section < 0 || pos.Section >= len(q.Sections) {
		return nil, false
	}
	questions := q.Sections[pos.Section].Questions
	if pos.Question < 0 || pos.Question >= len(questions) {
		return nil, false
	}
	return &questions[pos.Question], true
}

// SectionIndex looks a section up by slug, returning -1 when absent.
func (q *Quiz) SectionIndex(slug string) int {
	for i := range q.Sections {
		if q.Sections[i].Slug == slug {
			return i
		}
	}
	return -1
}

// FindQuestion searches every section for a question id.
func (q *Quiz) FindQuestion(id string) (Position, bool) {
	for s := range q.Sections {
		for i := range q.Sections[s].Questions {
			if q.Sections[s].Questions[i].ID == id {
				return Position{Section: s, Question: i}, true
			}
		}
	}
	return Position{}, false
}

// QuestionCount is the number of questions over all sections.
func (q *Quiz) QuestionCount() int {
	total := 0
	for _, s := range q.Sections {
		total += len(s.Questions)
	}
	return total
}

// Clone returns a deep copy so edits never alias a quiz held by a session.
func (q *Quiz) Clone() *Quiz {
	if q == nil {
		return nil
	}
	out := &Quiz{
		Title:          q.Title,
		Sections:       make([]Section, len(q.Sections)),
		ResultMessages: make(map[string]any, len(q.ResultMessages)),
	}
	for k, v := range q.ResultMessages {
		out.ResultMessages[k] = v
	}
	for i, s := range q.Sections {
		out.Sections[i] = s.clone()
	}
	return out
}

func (s Section) clone() Section {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, question := range s.Questions {
		out.Questions[i] = question.clone()
	}
	return out
}

func (q Question) clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append([]Option(nil), q.Options...)
	}
	if q.Routing != nil {
		out.Routing = make(map[string]Route, len(q.Routing))
		for k, v := range q.Routing {
			out.Routing[k] = v
		}
	}
	return out
}

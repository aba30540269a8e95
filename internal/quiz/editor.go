package quiz

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrSectionNotFound  = errors.New("section not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrOptionNotFound   = errors.New("option not found")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrTooFewOptions    = errors.New("a choice question needs at least 2 options")
	ErrUnknownEdit      = errors.New("unknown edit operation")
	ErrInvalidEdit      = errors.New("invalid edit")
)

const defaultPlaceholder = "Type your answer here..."

// DefaultResultMessages are the headings used by a freshly created quiz.
func DefaultResultMessages() map[string]any {
	return map[string]any{
		"defaultIntro":          "Here is your personal profile:",
		"knowledgeProfileTitle": "1. Profile",
		"recommendationsTitle":  "2. Next steps",
		"explanationsTitle":     "3. Background",
		"practicalTipsTitle":    "4. Recommendations",
	}
}

// NewQuiz returns an empty quiz ready for authoring.
func NewQuiz(title string) *Quiz {
	if strings.TrimSpace(title) == "" {
		title = "New Quiz"
	}
	return &Quiz{
		Title:          strings.TrimSpace(title),
		Sections:       []Section{},
		ResultMessages: DefaultResultMessages(),
	}
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// ExportFilename derives the download name for a quiz title.
func ExportFilename(title string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(title), "_") + ".json"
}

// SectionPatch holds optional section updates.
type SectionPatch struct {
	Title *string `json:"title,omitempty"`
	Slug  *string `json:"slug,omitempty"`
}

// QuestionPatch holds optional question updates. Changing Type reshapes the
// question: textInput drops options and routing, choice types gain default
// options when they have none.
type QuestionPatch struct {
	Text        *string       `json:"text,omitempty"`
	Type        *QuestionType `json:"type,omitempty"`
	Placeholder *string       `json:"placeholder,omitempty"`
}

// OptionPatch holds optional option updates.
type OptionPatch struct {
	Text  *string `json:"text,omitempty"`
	Value *string `json:"value,omitempty"`
}

func (q *Quiz) sectionIndexByID(id string) (int, error) {
	for i := range q.Sections {
		if q.Sections[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
}

func (q *Quiz) questionByID(id string) (*Question, error) {
	pos, ok := q.FindQuestion(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	return &q.Sections[pos.Section].Questions[pos.Question], nil
}

func uniqueSlug(q *Quiz, base string) string {
	slug := base
	for n := 2; q.SectionIndex(slug) >= 0; n++ {
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	return slug
}

// Slugify lowercases a title and joins words with dashes.
func Slugify(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "-")
}

// AddSection appends a new empty section and returns the edited copy.
func AddSection(q *Quiz, title string) (*Quiz, Section) {
	out := q.Clone()
	n := len(out.Sections) + 1
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("New Section %d", n)
	}
	s := Section{
		ID:        uuid.NewString(),
		Slug:      uniqueSlug(out, fmt.Sprintf("section-%d", n)),
		Title:     strings.TrimSpace(title),
		Questions: []Question{},
	}
	out.Sections = append(out.Sections, s)
	return out, s
}

// UpdateSection applies patch to the section with id.
func UpdateSection(q *Quiz, id string, patch SectionPatch) (*Quiz, error) {
	out := q.Clone()
	idx, err := out.sectionIndexByID(id)
	if err != nil {
		return nil, err
	}
	s := &out.Sections[idx]
	if patch.Title != nil {
		s.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Slug != nil {
		slug := Slugify(*patch.Slug)
		if slug == "" {
			return nil, fmt.Errorf("%w: slug must not be empty", ErrInvalidEdit)
		}
		s.Slug = slug
	}
	return out, nil
}

// DeleteSection removes a section and its questions. Routes that pointed at
// it are left in place for the validator to report.
func DeleteSection(q *Quiz, id string) (*Quiz, error) {
	out := q.Clone()
	idx, err := out.sectionIndexByID(id)
	if err != nil {
		return nil, err
	}
	out.Sections = append(out.Sections[:idx], out.Sections[idx+1:]...)
	return out, nil
}

// MoveSection reorders a section to position to.
func MoveSection(q *Quiz, id string, to int) (*Quiz, error) {
	out := q.Clone()
	idx, err := out.sectionIndexByID(id)
	if err != nil {
		return nil, err
	}
	if to < 0 || to >= len(out.Sections) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, to)
	}
	out.Sections = move(out.Sections, idx, to)
	return out, nil
}

// AddQuestion appends a question of type t with placeholder defaults.
func AddQuestion(q *Quiz, sectionID string, t QuestionType) (*Quiz, Question, error) {
	if !t.Valid() {
		return nil, Question{}, fmt.Errorf("%w: question type %q", ErrInvalidEdit, t)
	}
	out := q.Clone()
	idx, err := out.sectionIndexByID(sectionID)
	if err != nil {
		return nil, Question{}, err
	}
	question := Question{
		ID:   uuid.NewString(),
		Text: "New question",
		Type: t,
	}
	if t == TextInput {
		question.Placeholder = defaultPlaceholder
	} else {
		question.Options = defaultOptions()
	}
	out.Sections[idx].Questions = append(out.Sections[idx].Questions, question)
	return out, question, nil
}

func defaultOptions() []Option {
	return []Option{
		{ID: uuid.NewString(), Text: "Option 1", Value: "option_1"},
		{ID: uuid.NewString(), Text: "Option 2", Value: "option_2"},
	}
}

// UpdateQuestion applies patch to a question.
func UpdateQuestion(q *Quiz, questionID string, patch QuestionPatch) (*Quiz, error) {
	out := q.Clone()
	question, err := out.questionByID(questionID)
	if err != nil {
		return nil, err
	}
	if patch.Text != nil {
		question.Text = strings.TrimSpace(*patch.Text)
	}
	if patch.Type != nil && *patch.Type != question.Type {
		t := *patch.Type
		if !t.Valid() {
			return nil, fmt.Errorf("%w: question type %q", ErrInvalidEdit, t)
		}
		question.Type = t
		if t == TextInput {
			question.Options = nil
			question.Routing = nil
			question.Placeholder = defaultPlaceholder
		} else {
			question.Placeholder = ""
			if len(question.Options) == 0 {
				question.Options = defaultOptions()
			}
		}
	}
	if patch.Placeholder != nil && question.Type == TextInput {
		question.Placeholder = strings.TrimSpace(*patch.Placeholder)
	}
	return out, nil
}

// DeleteQuestion removes a question from whichever section holds it.
func DeleteQuestion(q *Quiz, questionID string) (*Quiz, error) {
	out := q.Clone()
	pos, ok := out.FindQuestion(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}
	s := &out.Sections[pos.Section]
	s.Questions = append(s.Questions[:pos.Question], s.Questions[pos.Question+1:]...)
	return out, nil
}

// MoveQuestion reorders a question within its own section.
func MoveQuestion(q *Quiz, questionID string, to int) (*Quiz, error) {
	out := q.Clone()
	pos, ok := out.FindQuestion(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}
	s := &out.Sections[pos.Section]
	if to < 0 || to >= len(s.Questions) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, to)
	}
	s.Questions = move(s.Questions, pos.Question, to)
	return out, nil
}

// AddOption appends a numbered option to a choice question. Numbering starts
// after the last option and skips values already in use.
func AddOption(q *Quiz, questionID string) (*Quiz, Option, error) {
	out := q.Clone()
	question, err := out.questionByID(questionID)
	if err != nil {
		return nil, Option{}, err
	}
	if !question.Type.IsChoice() {
		return nil, Option{}, fmt.Errorf("%w: textInput questions have no options", ErrInvalidEdit)
	}
	used := make(map[string]struct{}, len(question.Options))
	for _, o := range question.Options {
		used[o.Value] = struct{}{}
	}
	n := len(question.Options) + 1
	for {
		if _, taken := used[fmt.Sprintf("option_%d", n)]; !taken {
			break
		}
		n++
	}
	opt := Option{
		ID:    uuid.NewString(),
		Text:  fmt.Sprintf("Option %d", n),
		Value: fmt.Sprintf("option_%d", n),
	}
	question.Options = append(question.Options, opt)
	return out, opt, nil
}

// UpdateOption applies patch to one option.
func UpdateOption(q *Quiz, questionID, optionID string, patch OptionPatch) (*Quiz, error) {
	out := q.Clone()
	question, err := out.questionByID(questionID)
	if err != nil {
		return nil, err
	}
	for i := range question.Options {
		if question.Options[i].ID != optionID {
			continue
		}
		if patch.Text != nil {
			question.Options[i].Text = strings.TrimSpace(*patch.Text)
		}
		if patch.Value != nil {
			question.Options[i].Value = *patch.Value
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrOptionNotFound, optionID)
}

// DeleteOption removes an option and its route. A question keeps at least two.
func DeleteOption(q *Quiz, questionID, optionID string) (*Quiz, error) {
	out := q.Clone()
	question, err := out.questionByID(questionID)
	if err != nil {
		return nil, err
	}
	if len(question.Options) <= 2 {
		return nil, ErrTooFewOptions
	}
	for i := range question.Options {
		if question.Options[i].ID == optionID {
			question.Options = append(question.Options[:i], question.Options[i+1:]...)
			delete(question.Routing, optionID)
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOptionNotFound, optionID)
}

// SetRoute attaches route to an option of a choice question. Targets are not
// resolved here; the validator reports dangling ones.
func SetRoute(q *Quiz, questionID, optionID string, route Route) (*Quiz, error) {
	if !route.Type.Valid() {
		return nil, fmt.Errorf("%w: route type %q", ErrInvalidEdit, route.Type)
	}
	out := q.Clone()
	question, err := out.questionByID(questionID)
	if err != nil {
		return nil, err
	}
	if !question.Type.IsChoice() {
		return nil, fmt.Errorf("%w: textInput questions cannot route", ErrInvalidEdit)
	}
	if _, ok := question.OptionByID(optionID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrOptionNotFound, optionID)
	}
	if route.Type == RouteEnd {
		route.Target = ""
	}
	if question.Routing == nil {
		question.Routing = map[string]Route{}
	}
	question.Routing[optionID] = route
	return out, nil
}

// ClearRoute removes the route of one option.
func ClearRoute(q *Quiz, questionID, optionID string) (*Quiz, error) {
	out := q.Clone()
	question, err := out.questionByID(questionID)
	if err != nil {
		return nil, err
	}
	delete(question.Routing, optionID)
	if len(question.Routing) == 0 {
		question.Routing = nil
	}
	return out, nil
}

func move[T any](items []T, from, to int) []T {
	item := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items[:to], append([]T{item}, items[to:]...)...)
	return items
}

// EditOp names an authoring operation.
type EditOp string

const (
	OpSetTitle       EditOp = "set_title"
	OpAddSection     EditOp = "add_section"
	OpUpdateSection  EditOp = "update_section"
	OpDeleteSection  EditOp = "delete_section"
	OpMoveSection    EditOp = "move_section"
	OpAddQuestion    EditOp = "add_question"
	OpUpdateQuestion EditOp = "update_question"
	OpDeleteQuestion EditOp = "delete_question"
	OpMoveQuestion   EditOp = "move_question"
	OpAddOption      EditOp = "add_option"
	OpUpdateOption   EditOp = "update_option"
	OpDeleteOption   EditOp = "delete_option"
	OpSetRoute       EditOp = "set_route"
	OpClearRoute     EditOp = "clear_route"
)

// Edit is a serializable authoring command.
type Edit struct {
	Op         EditOp        `json:"op"`
	Title      string        `json:"title,omitempty"`
	SectionID  string        `json:"sectionId,omitempty"`
	QuestionID string        `json:"questionId,omitempty"`
	OptionID   string        `json:"optionId,omitempty"`
	Type       QuestionType  `json:"type,omitempty"`
	Index      int           `json:"index,omitempty"`
	Route      *Route        `json:"route,omitempty"`
	Section    SectionPatch  `json:"section,omitempty"`
	Question   QuestionPatch `json:"question,omitempty"`
	Option     OptionPatch   `json:"option,omitempty"`
}

// ApplyEdit dispatches e and returns the edited copy of q.
func ApplyEdit(q *Quiz, e Edit) (*Quiz, error) {
	if q == nil {
		return nil, ErrNilQuiz
	}
	switch e.Op {
	case OpSetTitle:
		out := q.Clone()
		out.Title = strings.TrimSpace(e.Title)
		return out, nil
	case OpAddSection:
		out, _ := AddSection(q, e.Title)
		return out, nil
	case OpUpdateSection:
		return UpdateSection(q, e.SectionID, e.Section)
	case OpDeleteSection:
		return DeleteSection(q, e.SectionID)
	case OpMoveSection:
		return MoveSection(q, e.SectionID, e.Index)
	case OpAddQuestion:
		out, _, err := AddQuestion(q, e.SectionID, e.Type)
		return out, err
	case OpUpdateQuestion:
		return UpdateQuestion(q, e.QuestionID, e.Question)
	case OpDeleteQuestion:
		return DeleteQuestion(q, e.QuestionID)
	case OpMoveQuestion:
		return MoveQuestion(q, e.QuestionID, e.Index)
	case OpAddOption:
		out, _, err := AddOption(q, e.QuestionID)
		return out, err
	case OpUpdateOption:
		return UpdateOption(q, e.QuestionID, e.OptionID, e.Option)
	case OpDeleteOption:
		return DeleteOption(q, e.QuestionID, e.OptionID)
	case OpSetRoute:
		if e.Route == nil {
			return nil, fmt.Errorf("%w: route is required", ErrInvalidEdit)
		}
		return SetRoute(q, e.QuestionID, e.OptionID, *e.Route)
	case OpClearRoute:
		return ClearRoute(q, e.QuestionID, e.OptionID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEdit, e.Op)
	}
}

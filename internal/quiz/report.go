package quiz

import (
	"fmt"
	"strings"
)

// ResultEntry is one answered question in a result summary.
type ResultEntry struct {
	QuestionID    string   `json:"questionId"`
	Section       string   `json:"section"`
	Question      string   `json:"question"`
	Answer        Answer   `json:"answer"`
	DisplayAnswer []string `json:"displayAnswer"`
}

// Result summarizes a participant's answers against a quiz. Path is the
// replayed route when the caller knows it.
type Result struct {
	Title    string        `json:"title"`
	Answered int           `json:"answered"`
	Total    int           `json:"total"`
	Percent  int           `json:"percent"`
	Answers  []ResultEntry `json:"answers"`
	Path     []Position    `json:"path,omitempty"`
}

// DisplayAnswer maps recorded values to option text. Text answers are
// returned as-is; values without a matching option are dropped.
func DisplayAnswer(q *Question, a Answer) []string {
	switch q.Type {
	case TextInput:
		if a.Value() == "" {
			return []string{}
		}
		return []string{a.Value()}
	case SingleChoice:
		if opt, ok := q.OptionByValue(a.Value()); ok && !a.IsMulti() {
			return []string{opt.Text}
		}
		return []string{}
	default:
		out := []string{}
		for _, v := range a.Values() {
			if opt, ok := q.OptionByValue(v); ok {
				out = append(out, opt.Text)
			}
		}
		return out
	}
}

// BuildResult lists answers in quiz order. Answers to ids no longer in the
// quiz are ignored.
func BuildResult(q *Quiz, answers Answers) Result {
	res := Result{Title: q.Title, Total: q.QuestionCount(), Answers: []ResultEntry{}}
	for _, s := range q.Sections {
		for i := range s.Questions {
			question := &s.Questions[i]
			a, ok := answers[question.ID]
			if !ok {
				continue
			}
			res.Answered++
			res.Answers = append(res.Answers, ResultEntry{
				QuestionID:    question.ID,
				Section:       s.Title,
				Question:      question.Text,
				Answer:        a,
				DisplayAnswer: DisplayAnswer(question, a),
			})
		}
	}
	if res.Total > 0 {
		res.Percent = res.Answered * 100 / res.Total
	}
	return res
}

func message(q *Quiz, key string) string {
	if v, ok := q.ResultMessages[key].(string); ok && v != "" {
		return v
	}
	if v, ok := DefaultResultMessages()[key].(string); ok {
		return v
	}
	return key
}

// RenderMarkdown renders the participant profile as markdown.
func RenderMarkdown(q *Quiz, answers Answers) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", message(q, "defaultIntro"))
	fmt.Fprintf(&b, "## %s\n\n", message(q, "knowledgeProfileTitle"))

	for _, s := range q.Sections {
		fmt.Fprintf(&b, "### %s\n\n", s.Title)
		for i := range s.Questions {
			question := &s.Questions[i]
			fmt.Fprintf(&b, "**%s**\n\n", question.Text)

			a, ok := answers[question.ID]
			display := []string{}
			if ok {
				display = DisplayAnswer(question, a)
			}
			if len(display) == 0 {
				b.WriteString("_No answer_\n\n")
				continue
			}
			if question.Type == TextInput {
				fmt.Fprintf(&b, "%s\n\n", display[0])
				continue
			}
			for _, text := range display {
				fmt.Fprintf(&b, "- %s\n", text)
			}
			b.WriteString("\n")
		}
	}

	for _, key := range []string{"recommendationsTitle", "explanationsTitle", "practicalTipsTitle"} {
		fmt.Fprintf(&b, "## %s\n\n", message(q, key))
	}
	return b.String()
}

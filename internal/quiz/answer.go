package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrAnswerShape      = errors.New("answer does not match question type")
	ErrDuplicateValue   = errors.New("answer contains duplicate selections")
	ErrUnknownSelection = errors.New("answer references unknown option value")
)

// Answer is either a single string (singleChoice, textInput) or an ordered
// list of selections (multipleChoice) kept in the order they were picked.
type Answer struct {
	text    string
	values  []string
	isMulti bool
}

// Text builds a single-value answer.
func Text(v string) Answer {
	return Answer{text: v}
}

// Selections builds a multi-value answer preserving selection order.
func Selections(values ...string) Answer {
	return Answer{values: append([]string{}, values...), isMulti: true}
}

func (a Answer) IsMulti() bool { return a.isMulti }

// Value returns the single value; empty for multi-value answers.
func (a Answer) Value() string {
	if a.isMulti {
		return ""
	}
	return a.text
}

// Values returns the selections in pick order; nil for single-value answers.
func (a Answer) Values() []string {
	if !a.isMulti {
		return nil
	}
	return append([]string(nil), a.values...)
}

// IsZero reports an empty answer: blank text or no selections.
func (a Answer) IsZero() bool {
	if a.isMulti {
		return len(a.values) == 0
	}
	return a.text == ""
}

// Equal compares kind, values and selection order.
func (a Answer) Equal(b Answer) bool {
	if a.isMulti != b.isMulti || a.text != b.text || len(a.values) != len(b.values) {
		return false
	}
	for i := range a.values {
		if a.values[i] != b.values[i] {
			return false
		}
	}
	return true
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.isMulti {
		values := a.values
		if values == nil {
			values = []string{}
		}
		return json.Marshal(values)
	}
	return json.Marshal(a.text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("decode selections: %w", err)
		}
		*a = Selections(values...)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	*a = Text(text)
	return nil
}

// Answers maps question id to the recorded answer.
type Answers map[string]Answer

// CheckAnswer verifies a fits question q: multi-select answers need distinct
// values drawn from the options, single choice needs a known option value.
func CheckAnswer(q *Question, a Answer) error {
	switch q.Type {
	case MultipleChoice:
		if !a.IsMulti() {
			return fmt.Errorf("%w: %s expects a list of selections", ErrAnswerShape, q.ID)
		}
		seen := make(map[string]struct{}, len(a.values))
		for _, v := range a.values {
			if _, dup := seen[v]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateValue, v)
			}
			seen[v] = struct{}{}
			if _, ok := q.OptionByValue(v); !ok {
				return fmt.Errorf("%w: %q", ErrUnknownSelection, v)
			}
		}
	case SingleChoice:
		if a.IsMulti() {
			return fmt.Errorf("%w: %s expects a single value", ErrAnswerShape, q.ID)
		}
		if _, ok := q.OptionByValue(a.text); !ok && a.text != "" {
			return fmt.Errorf("%w: %q", ErrUnknownSelection, a.text)
		}
	case TextInput:
		if a.IsMulti() {
			return fmt.Errorf("%w: %s expects text", ErrAnswerShape, q.ID)
		}
	default:
		return fmt.Errorf("%w: unknown question type %q", ErrAnswerShape, q.Type)
	}
	return nil
}

package quiz

import (
	"fmt"
	"sort"
	"strings"
)

// Report collects structural problems. Errors block a player from starting;
// warnings are informational. Fatal marks a quiz that cannot be navigated at all.
type Report struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Fatal    bool     `json:"fatal"`
}

// Valid is true when the report holds no errors.
func (r Report) Valid() bool { return len(r.Errors) == 0 }

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks q for structural soundness. It never fails: every finding
// is returned as data in the report.
func Validate(q *Quiz) Report {
	r := Report{Errors: []string{}, Warnings: []string{}}
	if q == nil {
		r.errorf("Quiz data is missing")
		r.Fatal = true
		return r
	}

	if strings.TrimSpace(q.Title) == "" {
		r.errorf("Quiz title is required")
	}
	if len(q.Sections) == 0 {
		r.errorf("Quiz must have at least one section")
		r.Fatal = true
		return r
	}

	sectionIDs := map[string]int{}
	slugs := map[string]int{}
	questionIDs := map[string]string{}
	for si := range q.Sections {
		validateSection(&r, &q.Sections[si], si, sectionIDs, slugs, questionIDs)
	}

	crossReference(&r, q)
	reachability(&r, q)

	if q.QuestionCount() == 0 {
		r.errorf("Quiz has no questions in any section")
		r.Fatal = true
	}
	return r
}

func validateSection(r *Report, s *Section, si int, ids, slugs map[string]int, questionIDs map[string]string) {
	ref := fmt.Sprintf("Section %d", si+1)
	if s.ID == "" {
		r.errorf("%s: ID is required", ref)
	} else if prev, dup := ids[s.ID]; dup {
		r.errorf("%s: duplicate section ID %q (also used by Section %d)", ref, s.ID, prev+1)
	} else {
		ids[s.ID] = si
	}
	if s.Slug == "" {
		r.errorf("%s: Slug is required", ref)
	} else if prev, dup := slugs[s.Slug]; dup {
		r.errorf("%s: duplicate slug %q (also used by Section %d)", ref, s.Slug, prev+1)
	} else {
		slugs[s.Slug] = si
	}
	if strings.TrimSpace(s.Title) == "" {
		r.errorf("%s: Title is required", ref)
	}
	if len(s.Questions) == 0 {
		r.warnf("Section %d (%s) has no questions", si+1, s.Title)
		return
	}
	for qi := range s.Questions {
		validateQuestion(r, &s.Questions[qi], si, qi, questionIDs)
	}
}

func questionRef(si, qi int) string {
	return fmt.Sprintf("Section %d, Question %d", si+1, qi+1)
}

func validateQuestion(r *Report, q *Question, si, qi int, seen map[string]string) {
	ref := questionRef(si, qi)
	if q.ID == "" {
		r.errorf("%s: ID is required", ref)
	} else if prev, dup := seen[q.ID]; dup {
		r.errorf("%s: duplicate question ID %q (also used by %s)", ref, q.ID, prev)
	} else {
		seen[q.ID] = ref
	}
	if strings.TrimSpace(q.Text) == "" {
		r.errorf("%s: Text is required", ref)
	}
	if !q.Type.Valid() {
		r.errorf("%s: Type must be one of: singleChoice, multipleChoice, textInput", ref)
		return
	}

	if q.Type == TextInput {
		if len(q.Routing) > 0 {
			r.warnf("%s: routing is ignored on textInput questions", ref)
		}
		return
	}

	if q.Placeholder != "" {
		r.warnf("%s: placeholder is ignored on choice questions", ref)
	}
	if len(q.Options) < 2 {
		r.errorf("%s: Must have at least 2 options", ref)
	}
	optionIDs := map[string]struct{}{}
	optionValues := map[string]int{}
	for oi, opt := range q.Options {
		optRef := fmt.Sprintf("%s, Option %d", ref, oi+1)
		if opt.ID == "" {
			r.errorf("%s: ID is required", optRef)
		} else if _, dup := optionIDs[opt.ID]; dup {
			r.errorf("%s: duplicate option ID %q", optRef, opt.ID)
		} else {
			optionIDs[opt.ID] = struct{}{}
		}
		if strings.TrimSpace(opt.Text) == "" {
			r.errorf("%s: Text is required", optRef)
		}
		if opt.Value == "" {
			r.errorf("%s: Value is required", optRef)
		} else if prev, dup := optionValues[opt.Value]; dup {
			r.errorf("%s: duplicate value %q (also used by Option %d)", optRef, opt.Value, prev+1)
		} else {
			optionValues[opt.Value] = oi
		}
	}

	for _, optionID := range routingKeys(q) {
		route := q.Routing[optionID]
		if !route.Type.Valid() {
			r.errorf("%s: Route type for option %s must be one of: section, question, end", ref, optionID)
		} else if route.Type != RouteEnd && route.Target == "" {
			r.errorf("%s: Route target for option %s is required", ref, optionID)
		}
		if _, exists := q.OptionByID(optionID); !exists {
			r.errorf("%s: Route references non-existent option ID: %s", ref, optionID)
		}
	}
}

// routingKeys orders routing entries by option declaration, then any
// dangling keys alphabetically, so reports are stable.
func routingKeys(q *Question) []string {
	keys := make([]string, 0, len(q.Routing))
	seen := map[string]struct{}{}
	for _, opt := range q.Options {
		if _, ok := q.Routing[opt.ID]; ok {
			if _, dup := seen[opt.ID]; !dup {
				keys = append(keys, opt.ID)
				seen[opt.ID] = struct{}{}
			}
		}
	}
	var rest []string
	for id := range q.Routing {
		if _, ok := seen[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func crossReference(r *Report, q *Quiz) {
	for si := range q.Sections {
		for qi := range q.Sections[si].Questions {
			question := &q.Sections[si].Questions[qi]
			if !question.Type.IsChoice() {
				continue
			}
			ref := questionRef(si, qi)
			for _, optionID := range routingKeys(question) {
				route := question.Routing[optionID]
				if route.Target == "" {
					continue
				}
				switch route.Type {
				case RouteSection:
					idx := q.SectionIndex(route.Target)
					if idx < 0 {
						r.errorf("%s: Route references non-existent section %q", ref, route.Target)
					} else if len(q.Sections[idx].Questions) == 0 {
						r.warnf("%s: Route targets section %q which has no questions", ref, route.Target)
					}
				case RouteQuestion:
					if _, ok := q.FindQuestion(route.Target); !ok {
						r.errorf("%s: Route references non-existent question %q", ref, route.Target)
					}
				case RouteEnd:
				}
			}
		}
	}
}

// reachability warns about non-empty sections no participant can reach from
// the first question. A question falls through to its sequential successor
// unless every option carries a route that resolves.
func reachability(r *Report, q *Quiz) {
	start := -1
	for si := range q.Sections {
		if len(q.Sections[si].Questions) > 0 {
			start = si
			break
		}
	}
	if start < 0 {
		return
	}

	seen := Visited{}
	queue := []Position{{Section: start}}
	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		if seen.Has(pos) {
			continue
		}
		seen.Add(pos)

		question, _ := q.QuestionAt(pos)
		fallsThrough := !question.Type.IsChoice() || len(question.Options) == 0
		if question.Type.IsChoice() {
			for _, opt := range question.Options {
				target, resolved := routeTarget(q, question.Routing[opt.ID], opt.ID, question)
				if !resolved {
					fallsThrough = true
					continue
				}
				if target != nil {
					queue = append(queue, *target)
				}
			}
		}
		if fallsThrough {
			if next, ok := sequentialNext(q, pos); ok {
				queue = append(queue, next)
			}
		}
	}

	reached := map[int]bool{}
	for pos := range seen {
		reached[pos.Section] = true
	}
	for si, s := range q.Sections {
		if len(s.Questions) > 0 && !reached[si] {
			r.warnf("Section %d (%s) is unreachable from the first question", si+1, s.Title)
		}
	}
}

// routeTarget resolves the route for one option the way the navigator would.
// resolved is false when the option falls back to sequential order; a nil
// target with resolved true means the route ends the quiz.
func routeTarget(q *Quiz, route Route, optionID string, question *Question) (*Position, bool) {
	if _, routed := question.Routing[optionID]; !routed {
		return nil, false
	}
	switch route.Type {
	case RouteEnd:
		return nil, true
	case RouteSection:
		idx := q.SectionIndex(route.Target)
		if route.Target == "" || idx < 0 || len(q.Sections[idx].Questions) == 0 {
			return nil, false
		}
		return &Position{Section: idx}, true
	case RouteQuestion:
		if route.Target == "" {
			return nil, false
		}
		pos, ok := q.FindQuestion(route.Target)
		if !ok {
			return nil, false
		}
		return &pos, true
	default:
		return nil, false
	}
}

package quiz

import (
	"github.com/rs/zerolog"
)

// NavKind tags NavResult.
type NavKind string

const (
	NavEnd  NavKind = "end"
	NavGoto NavKind = "goto"
)

// NavResult is either the end of the quiz or a jump to Position.
type NavResult struct {
	Kind     NavKind  `json:"type"`
	Position Position `json:"position"`
}

func endResult() NavResult { return NavResult{Kind: NavEnd} }

func gotoResult(pos Position) NavResult { return NavResult{Kind: NavGoto, Position: pos} }

// Visited is the cycle-guard set for one forward-resolution chain.
type Visited map[Position]struct{}

func (v Visited) Has(pos Position) bool {
	_, ok := v[pos]
	return ok
}

func (v Visited) Add(pos Position) { v[pos] = struct{}{} }

// Decision describes how a forward step was decided.
type Decision string

const (
	DecisionRoute      Decision = "route"
	DecisionSequential Decision = "sequential"
	DecisionEnd        Decision = "end"
)

// DiagnosticCode classifies a routing resolution failure.
type DiagnosticCode string

const (
	DiagCycleDetected    DiagnosticCode = "cycle_detected"
	DiagSectionNotFound  DiagnosticCode = "section_not_found"
	DiagSectionEmpty     DiagnosticCode = "section_empty"
	DiagQuestionNotFound DiagnosticCode = "question_not_found"
	DiagInvalidRoute     DiagnosticCode = "invalid_route"
	DiagOutOfRange       DiagnosticCode = "position_out_of_range"
)

// Diagnostic is emitted whenever routing degrades to sequential navigation.
type Diagnostic struct {
	Code     DiagnosticCode
	Message  string
	Position Position
}

// Observer receives navigation decisions and diagnostics, e.g. for metrics.
type Observer interface {
	ObserveDecision(d Decision)
	ObserveDiagnostic(d Diagnostic)
}

// NavigatorOptions configures a Navigator.
type NavigatorOptions struct {
	Observer Observer
}

// Navigator computes forward and backward moves over a Quiz. It keeps no
// per-session state and is safe for concurrent use.
type Navigator struct {
	observer Observer
	logger   zerolog.Logger
}

// NewNavigator builds a navigator that logs diagnostics through logger.
func NewNavigator(opts NavigatorOptions, logger zerolog.Logger) *Navigator {
	return &Navigator{
		observer: opts.Observer,
		logger:   logger.With().Str("component", "quiz_navigator").Logger(),
	}
}

// First returns the first question of the first non-empty section.
func (n *Navigator) First(q *Quiz) (Position, error) {
	if q == nil {
		return Position{}, ErrNilQuiz
	}
	for s := range q.Sections {
		if len(q.Sections[s].Questions) > 0 {
			return Position{Section: s}, nil
		}
	}
	return Position{}, ErrNoQuestions
}

// Next decides where to go after the question at pos was answered with answer.
// visited guards against routing loops when a caller chains several steps;
// pass nil for a single step. Next always returns a result: any routing that
// cannot be resolved falls back to sequential order.
func (n *Navigator) Next(q *Quiz, pos Position, answer Answer, visited Visited) NavResult {
	question, ok := q.QuestionAt(pos)
	if !ok {
		n.diagnose(DiagOutOfRange, pos, "current position is outside the quiz")
		n.decided(DecisionEnd)
		return endResult()
	}
	if visited == nil {
		visited = Visited{}
	}

	if visited.Has(pos) {
		n.diagnose(DiagCycleDetected, pos, "question "+question.ID+" already visited while resolving this step")
		return n.sequential(q, pos)
	}
	visited.Add(pos)

	if len(question.Routing) > 0 {
		switch question.Type {
		case SingleChoice:
			if !answer.IsMulti() {
				if route, ok := question.RouteForValue(answer.Value()); ok {
					if res, ok := n.resolve(q, pos, route); ok {
						return res
					}
				}
			}
		case MultipleChoice:
			// selection order wins over declaration order
			for _, v := range answer.Values() {
				route, ok := question.RouteForValue(v)
				if !ok {
					continue
				}
				if res, ok := n.resolve(q, pos, route); ok {
					return res
				}
			}
		case TextInput:
		}
	}

	return n.sequential(q, pos)
}

// Previous steps back in declaration order. Routing is never consulted.
func (n *Navigator) Previous(q *Quiz, pos Position) (Position, bool) {
	if _, ok := q.QuestionAt(pos); !ok {
		n.diagnose(DiagOutOfRange, pos, "current position is outside the quiz")
		return Position{}, false
	}
	if pos.Question > 0 {
		return Position{Section: pos.Section, Question: pos.Question - 1}, true
	}
	for s := pos.Section - 1; s >= 0; s-- {
		if count := len(q.Sections[s].Questions); count > 0 {
			return Position{Section: s, Question: count - 1}, true
		}
	}
	return Position{}, false
}

// sequentialNext is the declaration-order successor of pos, if any.
func sequentialNext(q *Quiz, pos Position) (Position, bool) {
	if pos.Question+1 < len(q.Sections[pos.Section].Questions) {
		return Position{Section: pos.Section, Question: pos.Question + 1}, true
	}
	for s := pos.Section + 1; s < len(q.Sections); s++ {
		if len(q.Sections[s].Questions) > 0 {
			return Position{Section: s}, true
		}
	}
	return Position{}, false
}

func (n *Navigator) sequential(q *Quiz, pos Position) NavResult {
	if next, ok := sequentialNext(q, pos); ok {
		n.decided(DecisionSequential)
		return gotoResult(next)
	}
	n.decided(DecisionEnd)
	return endResult()
}

func (n *Navigator) resolve(q *Quiz, from Position, route Route) (NavResult, bool) {
	switch route.Type {
	case RouteEnd:
		n.decided(DecisionEnd)
		return endResult(), true
	case RouteSection:
		if route.Target == "" {
			n.diagnose(DiagInvalidRoute, from, "section route without target")
			return NavResult{}, false
		}
		idx := q.SectionIndex(route.Target)
		if idx < 0 {
			n.diagnose(DiagSectionNotFound, from, "section "+route.Target+" not found")
			return NavResult{}, false
		}
		if len(q.Sections[idx].Questions) == 0 {
			n.diagnose(DiagSectionEmpty, from, "section "+route.Target+" has no questions")
			return NavResult{}, false
		}
		n.decided(DecisionRoute)
		return gotoResult(Position{Section: idx}), true
	case RouteQuestion:
		if route.Target == "" {
			n.diagnose(DiagInvalidRoute, from, "question route without target")
			return NavResult{}, false
		}
		target, ok := q.FindQuestion(route.Target)
		if !ok {
			n.diagnose(DiagQuestionNotFound, from, "question "+route.Target+" not found")
			return NavResult{}, false
		}
		n.decided(DecisionRoute)
		return gotoResult(target), true
	default:
		n.diagnose(DiagInvalidRoute, from, "unknown route type "+string(route.Type))
		return NavResult{}, false
	}
}

func (n *Navigator) decided(d Decision) {
	if n.observer != nil {
		n.observer.ObserveDecision(d)
	}
}

func (n *Navigator) diagnose(code DiagnosticCode, pos Position, msg string) {
	n.logger.Warn().
		Str("code", string(code)).
		Str("position", pos.String()).
		Msg(msg)
	if n.observer != nil {
		n.observer.ObserveDiagnostic(Diagnostic{Code: code, Message: msg, Position: pos})
	}
}

// Walk replays recorded answers from the first question and returns the
// positions visited. It stops at the first unanswered choice question or at
// the end; unanswered text questions count as skipped. The visited set spans
// the whole replay, so routing loops fall back to sequential order and the
// walk always terminates.
func (n *Navigator) Walk(q *Quiz, answers Answers) (path []Position, completed bool, err error) {
	pos, err := n.First(q)
	if err != nil {
		return nil, false, err
	}
	visited := Visited{}
	for {
		path = append(path, pos)
		question, _ := q.QuestionAt(pos)
		answer, ok := answers[question.ID]
		if question.Type.IsChoice() && (!ok || answer.IsZero()) {
			return path, false, nil
		}
		res := n.Next(q, pos, answer, visited)
		if res.Kind == NavEnd {
			return path, true, nil
		}
		if visited.Has(res.Position) && !progresses(pos, res.Position) {
			// a revisited target would replay the same loop
			next, ok := sequentialNext(q, pos)
			if !ok {
				return path, true, nil
			}
			res.Position = next
		}
		pos = res.Position
	}
}

func progresses(from, to Position) bool {
	if to.Section != from.Section {
		return to.Section > from.Section
	}
	return to.Question > from.Question
}

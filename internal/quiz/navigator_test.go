package quiz

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	decisions   []Decision
	diagnostics []Diagnostic
}

func (r *recordingObserver) ObserveDecision(d Decision) { r.decisions = append(r.decisions, d) }

func (r *recordingObserver) ObserveDiagnostic(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}

func (r *recordingObserver) codes() []DiagnosticCode {
	out := make([]DiagnosticCode, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		out = append(out, d.Code)
	}
	return out
}

func newTestNavigator() (*Navigator, *recordingObserver) {
	obs := &recordingObserver{}
	return NewNavigator(NavigatorOptions{Observer: obs}, zerolog.Nop()), obs
}

func TestNavigator_NextSingleChoiceRouting(t *testing.T) {
	nav, obs := newTestNavigator()
	q := validQuiz()

	cases := []struct {
		name   string
		answer Answer
		want   NavResult
	}{
		{"question route", Text("red"), gotoResult(Position{Section: 0, Question: 2})},
		{"section route", Text("blue"), gotoResult(Position{Section: 1, Question: 0})},
		{"end route", Text("green"), endResult()},
		{"unknown value falls back", Text("purple"), gotoResult(Position{Section: 0, Question: 1})},
		{"multi answer on single choice falls back", Selections("red"), gotoResult(Position{Section: 0, Question: 1})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, nav.Next(q, Position{}, tc.answer, nil))
		})
	}
	assert.Empty(t, obs.diagnostics)
}

func TestNavigator_NextSequentialFallback(t *testing.T) {
	nav, _ := newTestNavigator()
	q := validQuiz()

	// unrouted multi-select at the end of section 1 moves to section 2
	res := nav.Next(q, Position{Section: 0, Question: 2}, Selections("js"), nil)
	assert.Equal(t, gotoResult(Position{Section: 1, Question: 0}), res)

	// text input ignores routing entirely
	res = nav.Next(q, Position{Section: 0, Question: 1}, Text("Ada"), nil)
	assert.Equal(t, gotoResult(Position{Section: 0, Question: 2}), res)

	// last question of the last section ends
	res = nav.Next(q, Position{Section: 1, Question: 0}, Text("expert"), nil)
	assert.Equal(t, endResult(), res)
}

func TestNavigator_MultiSelectSelectionOrderWins(t *testing.T) {
	nav, _ := newTestNavigator()
	q := validQuiz()
	q3 := &q.Sections[0].Questions[2]
	q3.Routing = map[string]Route{
		"opt4": {Type: RouteSection, Target: "advanced"},
		"opt5": {Type: RouteEnd},
	}
	pos := Position{Section: 0, Question: 2}

	assert.Equal(t, endResult(), nav.Next(q, pos, Selections("python", "js"), nil))
	assert.Equal(t, gotoResult(Position{Section: 1}), nav.Next(q, pos, Selections("js", "python"), nil))
	// unrouted selections are skipped
	assert.Equal(t, endResult(), nav.Next(q, pos, Selections("java", "python"), nil))
	// empty selection falls back
	assert.Equal(t, gotoResult(Position{Section: 1}), nav.Next(q, pos, Selections(), nil))
}

func TestNavigator_MultiSelectSkipsUnresolvableRoute(t *testing.T) {
	nav, obs := newTestNavigator()
	q := validQuiz()
	q.Sections[0].Questions[2].Routing = map[string]Route{
		"opt4": {Type: RouteSection, Target: "missing"},
		"opt5": {Type: RouteQuestion, Target: "q1"},
	}

	res := nav.Next(q, Position{Section: 0, Question: 2}, Selections("js", "python"), nil)
	assert.Equal(t, gotoResult(Position{}), res)
	assert.Equal(t, []DiagnosticCode{DiagSectionNotFound}, obs.codes())
}

func TestNavigator_UnresolvedRoutesFallBack(t *testing.T) {
	q := validQuiz()
	q.Sections = append(q.Sections, Section{ID: "s3", Slug: "empty", Title: "Empty", Questions: []Question{}})
	pos := Position{}

	cases := []struct {
		name  string
		route Route
		code  DiagnosticCode
	}{
		{"missing section", Route{Type: RouteSection, Target: "nowhere"}, DiagSectionNotFound},
		{"empty section", Route{Type: RouteSection, Target: "empty"}, DiagSectionEmpty},
		{"missing question", Route{Type: RouteQuestion, Target: "does-not-exist"}, DiagQuestionNotFound},
		{"missing target", Route{Type: RouteQuestion}, DiagInvalidRoute},
		{"unknown type", Route{Type: "teleport", Target: "q4"}, DiagInvalidRoute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			nav, obs := newTestNavigator()
			q.Sections[0].Questions[0].Routing["opt1"] = tc.route

			res := nav.Next(q, pos, Text("red"), nil)
			assert.Equal(t, gotoResult(Position{Section: 0, Question: 1}), res)
			assert.Equal(t, []DiagnosticCode{tc.code}, obs.codes())
			assert.Equal(t, []Decision{DecisionSequential}, obs.decisions)
		})
	}
}

func TestNavigator_CycleGuardFallsBack(t *testing.T) {
	nav, obs := newTestNavigator()
	q := cyclicQuiz()
	visited := Visited{}
	visited.Add(Position{})

	res := nav.Next(q, Position{}, Text("q2"), visited)
	assert.Equal(t, gotoResult(Position{Section: 0, Question: 1}), res)
	assert.Equal(t, []DiagnosticCode{DiagCycleDetected}, obs.codes())
}

func TestNavigator_CyclicQuizTerminatesEachStep(t *testing.T) {
	nav, _ := newTestNavigator()
	q := cyclicQuiz()

	pos := Position{}
	answers := map[string]Answer{"q1": Text("q2"), "q2": Text("q1"), "q3": Text("q1")}
	for i := 0; i < 50; i++ {
		question, ok := q.QuestionAt(pos)
		require.True(t, ok)
		res := nav.Next(q, pos, answers[question.ID], nil)
		require.Equal(t, NavGoto, res.Kind)
		pos = res.Position
	}
	// the loop bounces between q1 and q2 one step at a time
	assert.Contains(t, []Position{{}, {Section: 0, Question: 1}}, pos)
}

func TestNavigator_WalkCyclicQuiz(t *testing.T) {
	nav, _ := newTestNavigator()
	q := cyclicQuiz()

	path, completed, err := nav.Walk(q, Answers{"q1": Text("q2"), "q2": Text("q1")})
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, []Position{{}, {Section: 0, Question: 1}, {Section: 0, Question: 2}}, path)

	path, completed, err = nav.Walk(q, Answers{"q1": Text("q2"), "q2": Text("q1"), "q3": Text("q1")})
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Len(t, path, 3)
}

func TestNavigator_SequentialRoundTrip(t *testing.T) {
	nav, _ := newTestNavigator()
	q := sequentialQuiz()

	pos, err := nav.First(q)
	require.NoError(t, err)

	var seen []string
	for i := 0; i < 10; i++ {
		question, ok := q.QuestionAt(pos)
		require.True(t, ok)
		seen = append(seen, question.ID)
		res := nav.Next(q, pos, Text("x"), nil)
		if res.Kind == NavEnd {
			break
		}
		pos = res.Position
	}
	assert.Equal(t, []string{"a1", "a2", "c1", "c2"}, seen)
}

func TestNavigator_PreviousIsSequentialNotHistory(t *testing.T) {
	nav, _ := newTestNavigator()
	q := jumpQuiz()

	res := nav.Next(q, Position{Section: 0, Question: 1}, Text("skip"), nil)
	require.Equal(t, gotoResult(Position{Section: 2, Question: 0}), res)

	prev, ok := nav.Previous(q, res.Position)
	require.True(t, ok)
	assert.Equal(t, Position{Section: 1, Question: 1}, prev)
}

func TestNavigator_Previous(t *testing.T) {
	nav, obs := newTestNavigator()
	q := sequentialQuiz()

	prev, ok := nav.Previous(q, Position{Section: 0, Question: 1})
	assert.True(t, ok)
	assert.Equal(t, Position{}, prev)

	// skips the empty section
	prev, ok = nav.Previous(q, Position{Section: 2, Question: 0})
	assert.True(t, ok)
	assert.Equal(t, Position{Section: 0, Question: 1}, prev)

	_, ok = nav.Previous(q, Position{})
	assert.False(t, ok)

	_, ok = nav.Previous(q, Position{Section: 9})
	assert.False(t, ok)
	assert.Equal(t, []DiagnosticCode{DiagOutOfRange}, obs.codes())
}

func TestNavigator_OutOfRangeEnds(t *testing.T) {
	nav, obs := newTestNavigator()
	q := validQuiz()

	assert.Equal(t, endResult(), nav.Next(q, Position{Section: 7}, Text("x"), nil))
	assert.Equal(t, endResult(), nav.Next(q, Position{Section: 0, Question: -1}, Text("x"), nil))
	assert.Equal(t, endResult(), nav.Next(nil, Position{}, Text("x"), nil))
	assert.Len(t, obs.diagnostics, 3)
}

func TestNavigator_First(t *testing.T) {
	nav, _ := newTestNavigator()

	_, err := nav.First(nil)
	assert.ErrorIs(t, err, ErrNilQuiz)

	_, err = nav.First(&Quiz{Title: "Empty Quiz"})
	assert.ErrorIs(t, err, ErrNoQuestions)

	_, err = nav.First(&Quiz{Sections: []Section{{ID: "a"}, {ID: "b"}}})
	assert.ErrorIs(t, err, ErrNoQuestions)

	q := sequentialQuiz()
	q.Sections = append([]Section{{ID: "z", Slug: "z"}}, q.Sections...)
	pos, err := nav.First(q)
	require.NoError(t, err)
	assert.Equal(t, Position{Section: 1}, pos)
}

func TestNavigator_Deterministic(t *testing.T) {
	nav, _ := newTestNavigator()
	q := validQuiz()
	for _, a := range []Answer{Text("red"), Text("blue"), Text("green"), Text("??")} {
		first := nav.Next(q, Position{}, a, nil)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, nav.Next(q, Position{}, a, nil))
		}
	}
}

func TestNavigator_FallbackTotality(t *testing.T) {
	nav, _ := newTestNavigator()
	q := validQuiz()
	// break every route
	q.Sections[0].Questions[0].Routing = map[string]Route{
		"opt1": {Type: RouteQuestion, Target: "ghost"},
		"opt2": {Type: RouteSection, Target: "ghost"},
		"opt3": {Type: "bogus"},
		"nope": {Type: RouteEnd},
	}
	answers := []Answer{Text(""), Text("red"), Text("blue"), Text("green"), Selections("red", "blue"), Selections()}

	total := q.QuestionCount()
	ends := 0
	for s := range q.Sections {
		for i := range q.Sections[s].Questions {
			pos := Position{Section: s, Question: i}
			for _, a := range answers {
				res := nav.Next(q, pos, a, nil)
				if res.Kind == NavEnd {
					ends++
					assert.Equal(t, Position{Section: 1, Question: 0}, pos, "only the last question may end")
					continue
				}
				_, ok := q.QuestionAt(res.Position)
				assert.True(t, ok)
			}
		}
	}
	assert.Equal(t, 4, total)
	assert.Equal(t, len(answers), ends)
}

func TestNavigator_LargeQuizTraversal(t *testing.T) {
	nav, _ := newTestNavigator()
	q := largeQuiz(100, 50)

	pos, err := nav.First(q)
	require.NoError(t, err)
	steps := 1
	for {
		res := nav.Next(q, pos, Text("a"), nil)
		if res.Kind == NavEnd {
			break
		}
		pos = res.Position
		steps++
	}
	assert.Equal(t, 5000, steps)
}

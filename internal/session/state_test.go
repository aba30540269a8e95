package session

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quizflow/internal/quiz"
)

// branchingQuiz: q1 routes "blue" to the advanced section and "red" to q3;
// everything else is sequential.
func branchingQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		Title: "Branching",
		Sections: []quiz.Section{
			{
				ID: "s1", Slug: "basic", Title: "Basic",
				Questions: []quiz.Question{
					{
						ID: "q1", Text: "Favorite color?", Type: quiz.SingleChoice,
						Options: []quiz.Option{
							{ID: "o1", Text: "Red", Value: "red"},
							{ID: "o2", Text: "Blue", Value: "blue"},
							{ID: "o3", Text: "Green", Value: "green"},
						},
						Routing: map[string]quiz.Route{
							"o1": {Type: quiz.RouteQuestion, Target: "q3"},
							"o2": {Type: quiz.RouteSection, Target: "advanced"},
							"o3": {Type: quiz.RouteEnd},
						},
					},
					{ID: "q2", Text: "Name?", Type: quiz.TextInput},
					{
						ID: "q3", Text: "Languages?", Type: quiz.MultipleChoice,
						Options: []quiz.Option{
							{ID: "o4", Text: "Go", Value: "go"},
							{ID: "o5", Text: "Rust", Value: "rust"},
						},
					},
				},
			},
			{
				ID: "s2", Slug: "advanced", Title: "Advanced",
				Questions: []quiz.Question{
					{ID: "q4", Text: "Anything else?", Type: quiz.TextInput},
				},
			},
		},
		ResultMessages: map[string]any{},
	}
}

func newTestState(t *testing.T) *State {
	t.Helper()
	st, err := NewState(branchingQuiz(), quiz.NewNavigator(quiz.NavigatorOptions{}, zerolog.Nop()))
	require.NoError(t, err)
	return st
}

func TestNewStateStartsAtFirstQuestion(t *testing.T) {
	st := newTestState(t)

	assert.Equal(t, quiz.Position{Section: 0, Question: 0}, st.Position())
	assert.Equal(t, "q1", st.CurrentQuestion().ID)
	assert.False(t, st.Completed())
	assert.False(t, st.CanRetreat())
	assert.Equal(t, Progress{Answered: 0, Total: 4}, st.Progress())
}

func TestNewStateRejectsEmptyQuiz(t *testing.T) {
	nav := quiz.NewNavigator(quiz.NavigatorOptions{}, zerolog.Nop())
	_, err := NewState(&quiz.Quiz{Title: "Empty", Sections: []quiz.Section{{ID: "s", Slug: "s"}}}, nav)
	assert.ErrorIs(t, err, quiz.ErrNoQuestions)
}

func TestAdvanceFollowsRouting(t *testing.T) {
	cases := []struct {
		name      string
		value     string
		wantID    string
		completed bool
	}{
		{name: "question route", value: "red", wantID: "q3"},
		{name: "section route", value: "blue", wantID: "q4"},
		{name: "end route", value: "green", wantID: "q1", completed: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newTestState(t)
			require.NoError(t, st.RecordAnswer("q1", quiz.Text(tc.value)))

			_, err := st.Advance()
			require.NoError(t, err)

			assert.Equal(t, tc.wantID, st.CurrentQuestion().ID)
			assert.Equal(t, tc.completed, st.Completed())
		})
	}
}

func TestAdvanceRequiresChoiceAnswer(t *testing.T) {
	st := newTestState(t)

	_, err := st.Advance()
	assert.ErrorIs(t, err, ErrAnswerRequired)
	assert.Equal(t, "q1", st.CurrentQuestion().ID)
}

func TestAdvanceSkipsUnansweredText(t *testing.T) {
	st := newTestState(t)
	require.NoError(t, st.RecordAnswer("q1", quiz.Text("blue")))
	_, err := st.Advance()
	require.NoError(t, err)
	require.Equal(t, "q4", st.CurrentQuestion().ID)

	res, err := st.Advance()
	require.NoError(t, err)
	assert.Equal(t, quiz.NavEnd, res.Kind)
	assert.True(t, st.Completed())
}

func TestCompletedSessionRejectsTransitions(t *testing.T) {
	st := newTestState(t)
	require.NoError(t, st.RecordAnswer("q1", quiz.Text("green")))
	_, err := st.Advance()
	require.NoError(t, err)
	require.True(t, st.Completed())

	_, err = st.Advance()
	assert.ErrorIs(t, err, ErrSessionCompleted)
	_, err = st.Retreat()
	assert.ErrorIs(t, err, ErrSessionCompleted)
	assert.ErrorIs(t, st.RecordAnswer("q2", quiz.Text("x")), ErrSessionCompleted)
	assert.False(t, st.CanRetreat())
}

func TestRetreatUsesDeclarationOrder(t *testing.T) {
	st := newTestState(t)
	require.NoError(t, st.RecordAnswer("q1", quiz.Text("blue")))
	_, err := st.Advance()
	require.NoError(t, err)
	require.Equal(t, "q4", st.CurrentQuestion().ID)

	// q4 was reached by a jump from q1, but back goes to the last question
	// of the previous section.
	moved, err := st.Retreat()
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, "q3", st.CurrentQuestion().ID)
}

func TestRetreatAtFirstQuestion(t *testing.T) {
	st := newTestState(t)

	moved, err := st.Retreat()
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, "q1", st.CurrentQuestion().ID)
}

func TestRecordAnswerValidatesShape(t *testing.T) {
	st := newTestState(t)

	assert.ErrorIs(t, st.RecordAnswer("q1", quiz.Selections("red")), quiz.ErrAnswerShape)
	assert.ErrorIs(t, st.RecordAnswer("q1", quiz.Text("purple")), quiz.ErrUnknownSelection)
	assert.ErrorIs(t, st.RecordAnswer("q3", quiz.Selections("go", "go")), quiz.ErrDuplicateValue)
	assert.ErrorIs(t, st.RecordAnswer("q2", quiz.Selections("x")), quiz.ErrAnswerShape)
	assert.ErrorIs(t, st.RecordAnswer("nope", quiz.Text("x")), ErrUnknownQuestion)

	require.NoError(t, st.RecordAnswer("q3", quiz.Selections("rust", "go")))
	assert.Equal(t, 1, st.Progress().Answered)
}

func TestRecordAnswerReplaces(t *testing.T) {
	st := newTestState(t)
	require.NoError(t, st.RecordAnswer("q1", quiz.Text("red")))
	require.NoError(t, st.RecordAnswer("q1", quiz.Text("blue")))

	a, ok := st.Answer()
	require.True(t, ok)
	assert.Equal(t, "blue", a.Value())
	assert.Equal(t, 1, st.Progress().Answered)
}

func TestResetClearsEverything(t *testing.T) {
	st := newTestState(t)
	require.NoError(t, st.RecordAnswer("q1", quiz.Text("green")))
	_, err := st.Advance()
	require.NoError(t, err)

	st.Reset()

	assert.False(t, st.Completed())
	assert.Equal(t, "q1", st.CurrentQuestion().ID)
	assert.Empty(t, st.Answers())
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := newTestState(t)
	require.NoError(t, st.RecordAnswer("q1", quiz.Text("red")))
	_, err := st.Advance()
	require.NoError(t, err)

	nav := quiz.NewNavigator(quiz.NavigatorOptions{}, zerolog.Nop())
	restored, err := Restore(branchingQuiz(), nav, st.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, st.Position(), restored.Position())
	assert.Equal(t, st.Answers(), restored.Answers())
	assert.Equal(t, "q3", restored.CurrentQuestion().ID)
}

func TestRestoreRejectsStalePosition(t *testing.T) {
	nav := quiz.NewNavigator(quiz.NavigatorOptions{}, zerolog.Nop())
	_, err := Restore(branchingQuiz(), nav, Snapshot{Position: quiz.Position{Section: 5, Question: 0}})
	assert.ErrorIs(t, err, ErrStaleSession)
}

func TestAnswersReturnsCopy(t *testing.T) {
	st := newTestState(t)
	require.NoError(t, st.RecordAnswer("q2", quiz.Text("Ada")))

	answers := st.Answers()
	answers["q2"] = quiz.Text("changed")

	stored := st.Answers()["q2"]
	assert.Equal(t, "Ada", stored.Value())
}

func TestPathFollowsRecordedRoute(t *testing.T) {
	st := newTestState(t)
	assert.Equal(t, []quiz.Position{{}}, st.Path())

	require.NoError(t, st.RecordAnswer("q1", quiz.Text("red")))
	_, err := st.Advance()
	require.NoError(t, err)
	assert.Equal(t, []quiz.Position{{}, {Section: 0, Question: 2}}, st.Path())

	// stepping back lands on q2, which the routed replay skipped
	ok, err := st.Retreat()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []quiz.Position{{}, {Section: 0, Question: 2}, {Section: 0, Question: 1}}, st.Path())
}

func TestPathOfCompletedRun(t *testing.T) {
	st := newTestState(t)
	require.NoError(t, st.RecordAnswer("q1", quiz.Text("blue")))
	_, err := st.Advance()
	require.NoError(t, err)
	_, err = st.Advance()
	require.NoError(t, err)
	require.True(t, st.Completed())

	assert.Equal(t, []quiz.Position{{}, {Section: 1, Question: 0}}, st.Path())
}

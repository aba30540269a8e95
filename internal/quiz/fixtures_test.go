package quiz

import "fmt"

func validQuiz() *Quiz {
	return &Quiz{
		Title: "Test Quiz",
		Sections: []Section{
			{
				ID: "section1", Title: "Basic Questions", Slug: "basic",
				Questions: []Question{
					{
						ID: "q1", Text: "What is your favorite color?", Type: SingleChoice,
						Options: []Option{
							{ID: "opt1", Text: "Red", Value: "red"},
							{ID: "opt2", Text: "Blue", Value: "blue"},
							{ID: "opt3", Text: "Green", Value: "green"},
						},
						Routing: map[string]Route{
							"opt1": {Type: RouteQuestion, Target: "q3"},
							"opt2": {Type: RouteSection, Target: "advanced"},
							"opt3": {Type: RouteEnd},
						},
					},
					{ID: "q2", Text: "Enter your name:", Type: TextInput},
					{
						ID: "q3", Text: "Which programming languages do you know?", Type: MultipleChoice,
						Options: []Option{
							{ID: "opt4", Text: "JavaScript", Value: "js"},
							{ID: "opt5", Text: "Python", Value: "python"},
							{ID: "opt6", Text: "Java", Value: "java"},
						},
					},
				},
			},
			{
				ID: "section2", Title: "Advanced Questions", Slug: "advanced",
				Questions: []Question{
					{
						ID: "q4", Text: "Rate your experience level:", Type: SingleChoice,
						Options: []Option{
							{ID: "opt7", Text: "Beginner", Value: "beginner"},
							{ID: "opt8", Text: "Intermediate", Value: "intermediate"},
							{ID: "opt9", Text: "Expert", Value: "expert"},
						},
					},
				},
			},
		},
		ResultMessages: map[string]any{},
	}
}

// cyclicQuiz routes q1 to q2 or q3, and both straight back to q1.
func cyclicQuiz() *Quiz {
	return &Quiz{
		Title: "Cyclic Test Quiz",
		Sections: []Section{{
			ID: "section1", Title: "Cyclic Questions", Slug: "cyclic",
			Questions: []Question{
				{
					ID: "q1", Text: "Question 1", Type: SingleChoice,
					Options: []Option{
						{ID: "opt1", Text: "Go to Q2", Value: "q2"},
						{ID: "opt2", Text: "Go to Q3", Value: "q3"},
					},
					Routing: map[string]Route{
						"opt1": {Type: RouteQuestion, Target: "q2"},
						"opt2": {Type: RouteQuestion, Target: "q3"},
					},
				},
				{
					ID: "q2", Text: "Question 2", Type: SingleChoice,
					Options: []Option{{ID: "opt3", Text: "Back to Q1", Value: "q1"}},
					Routing: map[string]Route{"opt3": {Type: RouteQuestion, Target: "q1"}},
				},
				{
					ID: "q3", Text: "Question 3", Type: SingleChoice,
					Options: []Option{{ID: "opt4", Text: "Back to Q1", Value: "q1"}},
					Routing: map[string]Route{"opt4": {Type: RouteQuestion, Target: "q1"}},
				},
			},
		}},
	}
}

// sequentialQuiz has no routing; sections[1] is empty.
func sequentialQuiz() *Quiz {
	return &Quiz{
		Title: "Plain",
		Sections: []Section{
			{ID: "a", Slug: "a", Title: "A", Questions: []Question{
				choice("a1", "x", "y"), choice("a2", "x", "y"),
			}},
			{ID: "b", Slug: "b", Title: "B", Questions: []Question{}},
			{ID: "c", Slug: "c", Title: "C", Questions: []Question{
				{ID: "c1", Text: "Name?", Type: TextInput},
				choice("c2", "x", "y"),
			}},
		},
	}
}

// jumpQuiz has A (2 questions), B (2 questions) and C (1 question); A.q2
// routes "skip" to section C.
func jumpQuiz() *Quiz {
	a2 := choice("a2", "skip", "stay")
	a2.Routing = map[string]Route{"a2-skip": {Type: RouteSection, Target: "c"}}
	return &Quiz{
		Title: "Jump",
		Sections: []Section{
			{ID: "a", Slug: "a", Title: "A", Questions: []Question{choice("a1", "x", "y"), a2}},
			{ID: "b", Slug: "b", Title: "B", Questions: []Question{choice("b1", "x", "y"), choice("b2", "x", "y")}},
			{ID: "c", Slug: "c", Title: "C", Questions: []Question{choice("c1", "x", "y")}},
		},
	}
}

func choice(id string, values ...string) Question {
	q := Question{ID: id, Text: "Question " + id, Type: SingleChoice}
	for _, v := range values {
		q.Options = append(q.Options, Option{ID: id + "-" + v, Text: v, Value: v})
	}
	return q
}

func largeQuiz(sections, perSection int) *Quiz {
	q := &Quiz{Title: "Large Quiz Test"}
	for s := 0; s < sections; s++ {
		sec := Section{
			ID:    fmt.Sprintf("section%d", s+1),
			Slug:  fmt.Sprintf("section-%d", s+1),
			Title: fmt.Sprintf("Section %d", s+1),
		}
		for i := 0; i < perSection; i++ {
			sec.Questions = append(sec.Questions, choice(fmt.Sprintf("q%d_%d", s+1, i+1), "a", "b"))
		}
		q.Sections = append(q.Sections, sec)
	}
	return q
}

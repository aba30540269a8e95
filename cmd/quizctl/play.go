package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gokatarajesh/quizflow/internal/quiz"
	"github.com/gokatarajesh/quizflow/internal/session"
)

var errQuit = errors.New("quit")

// play runs a line-based session. ":back" retreats, ":quit" stops.
func play(q *quiz.Quiz, nav *quiz.Navigator, in io.Reader, out io.Writer) error {
	if report := quiz.Validate(q); !report.Valid() {
		return fmt.Errorf("quiz cannot be played: %s", strings.Join(report.Errors, "; "))
	}
	state, err := session.NewState(q, nav)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for !state.Completed() {
		question := state.CurrentQuestion()
		printQuestion(out, state, question)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return errQuit
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case ":quit":
			return errQuit
		case ":back":
			if ok, err := state.Retreat(); err != nil {
				return err
			} else if !ok {
				fmt.Fprintln(out, "already at the first question")
			}
			continue
		}

		// a blank line on a text question records an empty answer, clearing any earlier one
		answer, err := parseAnswer(question, line)
		if err == nil {
			err = state.RecordAnswer(question.ID, answer)
		}
		if err != nil {
			fmt.Fprintf(out, "invalid answer: %v\n", err)
			continue
		}

		if _, err := state.Advance(); err != nil {
			fmt.Fprintf(out, "%v\n", err)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, quiz.RenderMarkdown(q, state.Answers()))
	return nil
}

func printQuestion(out io.Writer, state *session.State, question *quiz.Question) {
	p := state.Progress()
	section := state.Quiz().Sections[state.Position().Section]
	fmt.Fprintf(out, "\n[%s] (%d/%d answered)\n%s\n", section.Title, p.Answered, p.Total, question.Text)
	for i, opt := range question.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt.Text)
	}
	switch question.Type {
	case quiz.MultipleChoice:
		fmt.Fprint(out, "choose one or more (e.g. 1,3): ")
	case quiz.SingleChoice:
		fmt.Fprint(out, "choose one: ")
	default:
		if question.Placeholder != "" {
			fmt.Fprintf(out, "(%s) ", question.Placeholder)
		}
		fmt.Fprint(out, "> ")
	}
}

// parseAnswer accepts 1-based option numbers or option values.
func parseAnswer(question *quiz.Question, line string) (quiz.Answer, error) {
	if !question.Type.IsChoice() {
		return quiz.Text(line), nil
	}
	if line == "" {
		return quiz.Answer{}, errors.New("an option is required")
	}

	var values []string
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n < 1 || n > len(question.Options) {
				return quiz.Answer{}, fmt.Errorf("no option %d", n)
			}
			part = question.Options[n-1].Value
		}
		values = append(values, part)
	}

	if question.Type == quiz.SingleChoice {
		if len(values) != 1 {
			return quiz.Answer{}, errors.New("pick exactly one option")
		}
		return quiz.Text(values[0]), nil
	}
	return quiz.Selections(values...), nil
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quizflow/internal/auth"
)

const surveyJSON = `{
  "quizTitle": "Team survey",
  "sections": [
    {
      "id": "s1", "slug": "intro", "title": "Intro",
      "questions": [
        {
          "id": "q1", "text": "Role?", "type": "singleChoice",
          "options": [
            {"id": "o1", "text": "Engineer", "value": "eng"},
            {"id": "o2", "text": "Manager", "value": "mgr"}
          ],
          "routing": {"o2": {"type": "section", "target": "people"}}
        },
        {
          "id": "q2", "text": "Languages?", "type": "multipleChoice",
          "options": [
            {"id": "o3", "text": "Go", "value": "go"},
            {"id": "o4", "text": "Rust", "value": "rust"}
          ]
        }
      ]
    },
    {
      "id": "s2", "slug": "people", "title": "People",
      "questions": [{"id": "q3", "text": "Team size?", "type": "textInput"}]
    }
  ],
  "resultMessages": {}
}`

func writeQuiz(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runCLI(stdin string, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestValidate(t *testing.T) {
	code, out, _ := runCLI("", "validate", writeQuiz(t, surveyJSON))
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "ok: 2 sections, 3 questions")

	broken := strings.Replace(surveyJSON, `"target": "people"`, `"target": "nowhere"`, 1)
	code, out, _ = runCLI("", "validate", writeQuiz(t, broken))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "error:")
}

func TestExportIsCanonicalJSON(t *testing.T) {
	code, out, _ := runCLI("", "export", writeQuiz(t, surveyJSON))
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"quizTitle": "Team survey"`)
}

func TestPlayFollowsRouting(t *testing.T) {
	// manager jumps straight to the people section
	code, out, _ := runCLI("2\n12\n", "play", writeQuiz(t, surveyJSON))
	require.Equal(t, 0, code)
	assert.NotContains(t, out, "choose one or more")
	assert.Contains(t, out, "Team size?")
	assert.Contains(t, out, "- Manager")
	assert.Contains(t, out, "12")
}

func TestPlayRejectsBadInputAndGoesBack(t *testing.T) {
	input := strings.Join([]string{
		"9",     // no such option
		"1",     // engineer
		":back", // back to q1
		"eng",   // by value
		"2,1",   // rust, go
		"",      // skip text
	}, "\n") + "\n"

	code, out, _ := runCLI(input, "play", writeQuiz(t, surveyJSON))
	require.Equal(t, 0, code)
	assert.Contains(t, out, "invalid answer: no option 9")
	assert.Contains(t, out, "- Rust")
	assert.Contains(t, out, "_No answer_")
}

const notesJSON = `{
  "quizTitle": "Notes",
  "sections": [{
    "id": "s1", "slug": "main", "title": "Main",
    "questions": [
      {"id": "q1", "text": "Comments?", "type": "textInput"},
      {
        "id": "q2", "text": "Done?", "type": "singleChoice",
        "options": [
          {"id": "o1", "text": "Yes", "value": "yes"},
          {"id": "o2", "text": "No", "value": "no"}
        ]
      }
    ]
  }],
  "resultMessages": {}
}`

func TestPlayBlankLineClearsTextAnswer(t *testing.T) {
	input := strings.Join([]string{
		"first draft",
		":back",
		"", // clear q1
		"1",
	}, "\n") + "\n"

	code, out, _ := runCLI(input, "play", writeQuiz(t, notesJSON))
	require.Equal(t, 0, code)
	report := out[strings.Index(out, "**Comments?**"):]
	assert.NotContains(t, report, "first draft")
	assert.Contains(t, report, "_No answer_")
	assert.Contains(t, report, "- Yes")
}

func TestPlayQuitAndUsage(t *testing.T) {
	code, _, _ := runCLI(":quit\n", "play", writeQuiz(t, surveyJSON))
	assert.Equal(t, 0, code)

	code, _, stderr := runCLI("", "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: quizctl")

	code, _, stderr = runCLI("", "validate", filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "quizctl:")
}

func TestHashPassword(t *testing.T) {
	code, stdout, _ := runCLI("correct horse battery\n", "hash-password")
	require.Equal(t, 0, code)
	assert.NoError(t, auth.VerifyPassword(strings.TrimSpace(stdout), "correct horse battery"))

	code, _, stderr := runCLI("short\n", "hash-password")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "at least 8")
}

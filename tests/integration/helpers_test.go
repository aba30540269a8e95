//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
)

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type sessionView struct {
	SessionID string `json:"session_id"`
	Question  struct {
		ID string `json:"id"`
	} `json:"question"`
	Completed bool `json:"completed"`
}

const branchingQuiz = `{
  "quizTitle": "Integration survey",
  "sections": [
    {
      "id": "s1", "slug": "start", "title": "Start",
      "questions": [
        {
          "id": "q1", "text": "Pick a path", "type": "singleChoice",
          "options": [
            {"id": "o1", "text": "Short", "value": "short"},
            {"id": "o2", "text": "Long", "value": "long"}
          ],
          "routing": {"o1": {"type": "end"}}
        },
        {"id": "q2", "text": "Tell us more", "type": "textInput"}
      ]
    }
  ],
  "resultMessages": {}
}`

func baseURL() string {
	return envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// doRequest sends body (a string, or a value encoded as JSON) and decodes a
// JSON response into out when out is non-nil.
func doRequest(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	contentType := "application/json"
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL()+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// loginAuthor skips the test unless author credentials are provided.
func loginAuthor(t *testing.T) tokenPair {
	t.Helper()

	email := os.Getenv("INTEGRATION_AUTHOR_EMAIL")
	password := os.Getenv("INTEGRATION_AUTHOR_PASSWORD")
	if email == "" || password == "" {
		t.Skip("INTEGRATION_AUTHOR_EMAIL / INTEGRATION_AUTHOR_PASSWORD not set")
	}

	var tokens tokenPair
	status := doRequest(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &tokens)
	if status != http.StatusOK {
		t.Fatalf("login failed with status %d", status)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("login returned empty tokens")
	}
	return tokens
}

func createQuiz(t *testing.T, token string) string {
	t.Helper()

	var created struct {
		Record struct {
			ID string `json:"id"`
		} `json:"record"`
	}
	status := doRequest(t, http.MethodPost, "/v1/quizzes", token, branchingQuiz, &created)
	if status != http.StatusCreated {
		t.Fatalf("create quiz failed with status %d", status)
	}
	t.Cleanup(func() {
		doRequest(t, http.MethodDelete, "/v1/quizzes/"+created.Record.ID, token, nil, nil)
	})
	return created.Record.ID
}

func startSession(t *testing.T, quizID string) sessionView {
	t.Helper()

	var view sessionView
	status := doRequest(t, http.MethodPost, "/v1/quizzes/"+quizID+"/sessions", "", nil, &view)
	if status != http.StatusCreated {
		t.Fatalf("start session failed with status %d", status)
	}
	return view
}

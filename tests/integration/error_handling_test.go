//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"
)

func TestAuthorRoutesRequireToken(t *testing.T) {
	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/v1/quizzes"},
		{http.MethodPut, "/v1/quizzes/6f1c1a52-8a35-4b43-9d55-0e5a0b0b7e11"},
		{http.MethodDelete, "/v1/quizzes/6f1c1a52-8a35-4b43-9d55-0e5a0b0b7e11"},
		{http.MethodGet, "/v1/quizzes/6f1c1a52-8a35-4b43-9d55-0e5a0b0b7e11/export"},
		{http.MethodGet, "/v1/quizzes/6f1c1a52-8a35-4b43-9d55-0e5a0b0b7e11/stats"},
	}
	for _, tc := range cases {
		if status := doRequest(t, tc.method, tc.path, "", nil, nil); status != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, status)
		}
	}

	if status := doRequest(t, http.MethodPost, "/v1/quizzes", "not-a-token", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("garbage token: expected 401, got %d", status)
	}
}

func TestUnknownResources(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/v1/quizzes/6f1c1a52-8a35-4b43-9d55-0e5a0b0b7e11", http.StatusNotFound},
		{http.MethodGet, "/v1/quizzes/not-a-uuid", http.StatusBadRequest},
		{http.MethodPost, "/v1/quizzes/6f1c1a52-8a35-4b43-9d55-0e5a0b0b7e11/sessions", http.StatusNotFound},
		{http.MethodGet, "/v1/sessions/6f1c1a52-8a35-4b43-9d55-0e5a0b0b7e11", http.StatusNotFound},
		{http.MethodPost, "/v1/sessions/not-a-uuid/next", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if status := doRequest(t, tc.method, tc.path, "", nil, nil); status != tc.want {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, status)
		}
	}
}

func TestSessionRejectsBadAnswers(t *testing.T) {
	tokens := loginAuthor(t)
	view := startSession(t, createQuiz(t, tokens.AccessToken))
	base := "/v1/sessions/" + view.SessionID

	if status := doRequest(t, http.MethodPost, base+"/next", "", nil, nil); status != http.StatusBadRequest {
		t.Errorf("advance without answer: expected 400, got %d", status)
	}
	if status := doRequest(t, http.MethodPut, base+"/answers/q1", "", `{"answer":"sideways"}`, nil); status != http.StatusBadRequest {
		t.Errorf("unknown option: expected 400, got %d", status)
	}
	if status := doRequest(t, http.MethodPut, base+"/answers/q1", "", `{"answer":["short"]}`, nil); status != http.StatusBadRequest {
		t.Errorf("list for single choice: expected 400, got %d", status)
	}
}

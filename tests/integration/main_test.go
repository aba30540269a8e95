//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"
)

func TestHealthz(t *testing.T) {
	if status := doRequest(t, http.MethodGet, "/healthz", "", nil, nil); status != http.StatusOK {
		t.Fatalf("unexpected status code: %d", status)
	}
}

func TestPing(t *testing.T) {
	var out struct {
		Pong bool `json:"pong"`
	}
	if status := doRequest(t, http.MethodGet, "/v1/ping", "", nil, &out); status != http.StatusOK {
		t.Fatalf("unexpected status code: %d", status)
	}
	if !out.Pong {
		t.Fatal("expected pong")
	}
}

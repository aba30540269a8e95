package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quizflow/internal/auth"
	"github.com/gokatarajesh/quizflow/internal/auth/jwt"
	"github.com/gokatarajesh/quizflow/internal/config"
)

func okHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func testHandlers(t *testing.T) (Handlers, *jwt.Manager) {
	t.Helper()
	tokenCfg := jwt.TokenConfig{AccessSecret: []byte("access"), AccessTTL: time.Minute, RefreshTTL: time.Hour}
	svc := auth.NewService(auth.Author{Email: "author@example.com", PasswordHash: "x"}, auth.ServiceOptions{TokenConfig: tokenCfg}, zerolog.Nop())

	return Handlers{
		AuthService: svc,
		Public: []RouteRegistrar{RouteFunc(func(r *mux.Router) {
			r.HandleFunc("/v1/quizzes/{id}", okHandler("public")).Methods(http.MethodGet)
		})},
		Author: []RouteRegistrar{RouteFunc(func(r *mux.Router) {
			r.HandleFunc("/v1/quizzes/{id}", okHandler("author")).Methods(http.MethodPut)
		})},
	}, jwt.NewManager(tokenCfg)
}

func TestRouterHealthAndPing(t *testing.T) {
	h, _ := testHandlers(t)
	failing := true
	r := NewRouter(zerolog.Nop(), h, func(context.Context) error {
		if failing {
			return errors.New("postgres down")
		}
		return nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	failing = false
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterAuthorGuard(t *testing.T) {
	h, tokens := testHandlers(t)
	r := NewRouter(zerolog.Nop(), h, nil)
	path := "/v1/quizzes/abc"

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, path, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := tokens.GenerateAccessToken(jwt.Subject{Email: "author@example.com", Role: auth.RoleAuthor})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "author", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORS(t *testing.T) {
	handler := corsMiddleware(config.CORS{
		AllowedOrigins: []string{"http://app.local"},
		AllowedMethods: []string{"GET", "PUT"},
		AllowedHeaders: []string{"Authorization"},
		MaxAge:         60,
	})(okHandler("next"))

	req := httptest.NewRequest(http.MethodOptions, "/v1/quizzes", nil)
	req.Header.Set("Origin", "http://app.local")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://app.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, PUT", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "60", rec.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/v1/quizzes", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "next", rec.Body.String())
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

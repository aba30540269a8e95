package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/auth"
	"github.com/gokatarajesh/quizflow/internal/config"
	"github.com/gokatarajesh/quizflow/internal/logging"
)

// RouteRegistrar is implemented by every handler group.
type RouteRegistrar interface {
	Routes(r *mux.Router)
}

// RouteFunc adapts a plain registration method to RouteRegistrar.
type RouteFunc func(r *mux.Router)

func (f RouteFunc) Routes(r *mux.Router) { f(r) }

// Handlers groups the API surface. Nil entries are skipped.
type Handlers struct {
	AuthService *auth.Service
	Auth        RouteRegistrar
	// Public routes are open to players.
	Public []RouteRegistrar
	// Author routes sit behind auth.RequireAuthor.
	Author []RouteRegistrar
}

// PingFunc checks upstream dependencies.
type PingFunc func(ctx context.Context) error

// NewRouter wires base routes (health, metrics, ping) and the API groups.
func NewRouter(logger zerolog.Logger, h Handlers, ping PingFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(logger))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				reqLogger := logging.FromContext(r.Context())
				reqLogger.Error().Err(err).Msg("dependency ping failed")
				http.Error(w, "upstream error", http.StatusBadGateway)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	}).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	if h.AuthService != nil {
		api.Use(auth.AuthMiddleware(h.AuthService, logger))
	}

	if h.Auth != nil {
		h.Auth.Routes(api)
	}

	author := api.NewRoute().Subrouter()
	author.Use(auth.RequireAuthor)
	for _, reg := range h.Author {
		if reg != nil {
			reg.Routes(author)
		}
	}

	for _, reg := range h.Public {
		if reg != nil {
			reg.Routes(api)
		}
	}

	return r
}

// NewHTTPServer builds the API server around NewRouter.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, h Handlers) *http.Server {
	ping := func(ctx context.Context) error {
		return pingDependencies(ctx, pool, redis)
	}
	router := NewRouter(logger, h, ping)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: corsMiddleware(cfg.CORS)(router),
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redis.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}

// requestLogger stores a request-scoped logger in the context and logs
// each request once it completes.
func requestLogger(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))

			reqLogger.Debug().
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request handled")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Hijack is needed by the websocket upgrader.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func corsMiddleware(cfg config.CORS) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	wildcard := false
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = struct{}{}
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := allowed[origin]; ok || wildcard {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
					w.Header().Set("Access-Control-Allow-Methods", methods)
					w.Header().Set("Access-Control-Allow-Headers", headers)
					if cfg.AllowCredentials {
						w.Header().Set("Access-Control-Allow-Credentials", "true")
					}
					if cfg.MaxAge > 0 {
						w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
				}
			}

			if r.Method == http.MethodOptions && origin != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

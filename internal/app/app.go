package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/auth"
	"github.com/gokatarajesh/quizflow/internal/auth/jwt"
	"github.com/gokatarajesh/quizflow/internal/catalog"
	"github.com/gokatarajesh/quizflow/internal/config"
	"github.com/gokatarajesh/quizflow/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/quizflow/internal/db/sqlc"
	"github.com/gokatarajesh/quizflow/internal/logging"
	"github.com/gokatarajesh/quizflow/internal/metrics"
	"github.com/gokatarajesh/quizflow/internal/quiz"
	"github.com/gokatarajesh/quizflow/internal/server"
	"github.com/gokatarajesh/quizflow/internal/session"
	"github.com/gokatarajesh/quizflow/internal/stats"
	ws "github.com/gokatarajesh/quizflow/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	broadcaster    *session.Broadcaster
	snapshotWorker *stats.SnapshotWorker
	bgCancels      []context.CancelFunc
}

// New bootstraps configs, logger, Postgres, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	queries := sqlcgen.New(pool)
	quizRepo := repository.NewQuizRepository(queries)
	statsRepo := repository.NewStatsRepository(queries)

	appMetrics, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	// Author auth
	refreshSecret := cfg.Security.JWTRefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Security.JWTSecret + "_refresh"
	}
	authSvc := auth.NewService(
		auth.Author{Email: cfg.Security.AuthorEmail, PasswordHash: cfg.Security.AuthorPasswordHash},
		auth.ServiceOptions{
			TokenConfig: jwt.TokenConfig{
				AccessSecret:  []byte(cfg.Security.JWTSecret),
				RefreshSecret: []byte(refreshSecret),
				AccessTTL:     cfg.Security.AccessTokenTTL,
				RefreshTTL:    cfg.Security.RefreshTokenTTL,
				Issuer:        cfg.Name,
			},
			Redis: redisClient,
		},
		logger,
	)
	if cfg.Security.AuthorEmail == "" || cfg.Security.AuthorPasswordHash == "" {
		logger.Warn().Msg("author credentials not configured; authoring APIs disabled")
	}
	authHandlers := auth.NewHTTPHandlers(authSvc, logger)

	// Quiz catalog
	catalogSvc := catalog.NewService(
		quizRepo,
		catalog.NewCache(redisClient, 0),
		catalog.ServiceOptions{MaxDocumentBytes: cfg.Runtime.MaxQuizBytes, Observer: appMetrics},
		logger,
	)
	catalogHandlers := catalog.NewHTTPHandlers(catalogSvc, logger)

	// Completion stats
	statsSvc := stats.NewService(stats.NewRedisCounter(redisClient, ""), logger)
	statsHandler := stats.NewHTTPHandler(statsSvc, statsRepo, logger)
	var snapshotWorker *stats.SnapshotWorker
	if interval := cfg.Stats.SnapshotInterval; interval > 0 {
		snapshotWorker = stats.NewSnapshotWorker(statsSvc, catalogSvc, statsRepo, interval, logger)
	}

	// Player sessions
	navigator := quiz.NewNavigator(quiz.NavigatorOptions{Observer: appMetrics}, logger)
	sessionSvc := session.NewService(
		catalogSvc,
		session.NewRedisStore(redisClient, cfg.Runtime.SessionTTL, cfg.Runtime.LockTTL, logger),
		navigator,
		session.ServiceOptions{Recorder: session.Recorders{statsSvc, appMetrics}},
		logger,
	)
	wsHub := ws.NewHub(logger)
	sessionWS := session.NewWSHandler(sessionSvc, wsHub, ws.NewUpgrader(cfg.CORS.AllowedOrigins), logger)
	broadcaster := session.NewBroadcaster(redisClient, "", sessionWS.Publish, logger)
	sessionWS.SetPublisher(func(v *session.View, requestID string) error {
		return broadcaster.Publish(context.Background(), v, requestID)
	})
	sessionHTTP := session.NewHTTPHandlers(sessionSvc, logger)
	sessionHTTP.OnChange(func(v *session.View) {
		if err := broadcaster.Publish(context.Background(), v, ""); err != nil {
			logger.Warn().Err(err).Str("session_id", v.SessionID.String()).Msg("session update not published")
		}
	})

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, server.Handlers{
		AuthService: authSvc,
		Auth:        authHandlers,
		Public: []server.RouteRegistrar{
			server.RouteFunc(catalogHandlers.PublicRoutes),
			sessionHTTP,
			sessionWS,
		},
		Author: []server.RouteRegistrar{
			server.RouteFunc(catalogHandlers.AuthorRoutes),
			statsHandler,
		},
	})

	return &Application{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		http:           apiServer,
		broadcaster:    broadcaster,
		snapshotWorker: snapshotWorker,
		bgCancels:      make([]context.CancelFunc, 0, 2),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.broadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.broadcaster.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("session broadcaster stopped")
			}
		}()
	}

	if a.snapshotWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.snapshotWorker.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("stats snapshot worker stopped")
			}
		}()
	}
}

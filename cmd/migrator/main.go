package main

import (
	"database/sql"
	"flag"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/quizflow/db"
	"github.com/gokatarajesh/quizflow/internal/config"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, redo, status or version")
		dir     = flag.String("dir", "", "Read migrations from this directory instead of the embedded set")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	var pg config.Postgres
	if err := env.Parse(&pg); err != nil {
		log.Fatal().Err(err).Msg("invalid database configuration")
	}

	var (
		migrations fs.FS = db.Migrations
		migrationDir     = "migrations"
	)
	if *dir != "" {
		migrations = os.DirFS(*dir)
		migrationDir = "."
	}

	conn, err := sql.Open("pgx", pg.DSN())
	if err != nil {
		log.Fatal().Err(err).Str("host", pg.Host).Int("port", pg.Port).Msg("failed to open database connection")
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	log.Info().
		Str("host", pg.Host).
		Int("port", pg.Port).
		Str("database", pg.Database).
		Bool("embedded", *dir == "").
		Msg("connected to database")

	goose.SetBaseFS(migrations)
	goose.SetTableName("goose_db_version")
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("failed to set goose dialect")
	}

	switch *command {
	case "up":
		if err := goose.Up(conn, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations up")
		}
		log.Info().Msg("migrations applied successfully")

	case "down":
		if err := goose.Down(conn, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations down")
		}
		log.Info().Msg("migrations rolled back successfully")

	case "redo":
		if err := goose.Redo(conn, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to redo last migration")
		}
		log.Info().Msg("last migration re-applied")

	case "status":
		if err := goose.Status(conn, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to get migration status")
		}

	case "version":
		if err := goose.Version(conn, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to read migration version")
		}

	default:
		log.Fatal().Str("command", *command).Msg("unknown command. Use: up, down, redo, status or version")
	}
}

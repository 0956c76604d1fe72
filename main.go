package main

import (
	"database/sql"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/equate/internal/config"
	"github.com/robalobadob/equate/internal/db"
	"github.com/robalobadob/equate/internal/digits"
	"github.com/robalobadob/equate/internal/httpserver"
	"github.com/robalobadob/equate/internal/metrics"
	"github.com/robalobadob/equate/internal/store"
)

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := digits.Init(); err != nil {
		log.Fatal().Err(err).Msg("invalid PUZZLE_DIGITS")
	}

	var conn *sql.DB
	if cfg.DBPath != "" {
		var err error
		if conn, err = db.Open(cfg.DBPath); err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
		}
		defer conn.Close()
		if err := db.Migrate(conn); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	} else {
		log.Warn().Msg("DB_PATH not set; accounts, history and daily results disabled")
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(cfg, mem, conn, metrics.NewCollector("equate"))
	log.Info().Str("port", cfg.Port).Bool("db", conn != nil).Msg("starting equate server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

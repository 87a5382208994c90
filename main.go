// main.go
//
// Entry point for the WordHeat server: loads configuration, opens and
// migrates the database, wires the oracle-backed services and serves HTTP.
package main

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordheat/internal/config"
	"github.com/robalobadob/wordheat/internal/daily"
	"github.com/robalobadob/wordheat/internal/httpserver"
	"github.com/robalobadob/wordheat/internal/oracle"
	"github.com/robalobadob/wordheat/internal/scoring"
	"github.com/robalobadob/wordheat/internal/store"
	"github.com/robalobadob/wordheat/internal/words"
)

func main() {
	cfg := config.Load()
	zerolog.SetGlobalLevel(cfg.LogLevel)

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}

	db, err := store.OpenAndMigrate(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()

	if cfg.OracleAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set: words, scores and hints use fallbacks")
	}
	llm := oracle.New(oracle.Config{
		APIKey:        cfg.OracleAPIKey,
		Model:         cfg.OracleModel,
		BaseURL:       cfg.OracleBaseURL,
		Timeout:       cfg.OracleTimeout,
		Retries:       cfg.OracleRetries,
		RatePerSecond: cfg.OracleRate,
	})

	dailyStore := daily.NewStore(db)
	challenges := store.NewChallenges(db)
	sessions := store.NewMemoryStore()
	go sweep(sessions, cfg.SessionIdle)

	srv := httpserver.New(httpserver.Deps{
		Config:     cfg,
		Users:      store.NewUsers(db),
		Profiles:   store.NewProfiles(db, dailyStore),
		Daily:      dailyStore,
		Sessions:   sessions,
		Challenges: challenges,
		Targets:    words.NewProvider(llm, dailyStore, challenges, cfg.DailySalt),
		Scorer:     scoring.New(llm),
		Oracle:     llm,
	})
	log.Info().Str("port", cfg.Port).Str("model", cfg.OracleModel).Msg("starting wordheat")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// sweep closes sessions nobody has touched for idle.
func sweep(sessions store.Sessions, idle time.Duration) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for range t.C {
		sessions.Sweep(idle)
	}
}

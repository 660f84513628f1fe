// Entry point for the Unscramble HTTP server.
//
// Loads configuration, sets the log level, optionally starts tracing, builds
// the word catalog and serves the game API until the process exits.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/scramble/internal/config"
	"github.com/robalobadob/scramble/internal/httpserver"
	"github.com/robalobadob/scramble/internal/store"
	"github.com/robalobadob/scramble/internal/telemetry"
	"github.com/robalobadob/scramble/internal/words"
)

const sweepEvery = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, cfg.OTelEnabled)
	if err != nil {
		log.Fatal().Err(err).Msg("start telemetry")
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	if err := words.Init(cfg.WordsFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	catalog, err := words.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("word catalog")
	}

	srv := httpserver.New(store.NewMemoryStore(), catalog, cfg)
	srv.StartSweeper(ctx, sweepEvery)

	log.Info().Str("port", cfg.Port).Int("words", catalog.Len()).Msg("starting scramble server")
	if err := srv.Start(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

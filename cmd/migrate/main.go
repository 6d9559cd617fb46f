package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"github.com/fdg312/meal-hub/internal/config"
	"github.com/fdg312/meal-hub/internal/dbmigrate"
	"github.com/fdg312/meal-hub/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.SetGlobal(logger.New("meal-hub-migrate", cfg.LogLevel, cfg.Env))

	allowed := strings.Join(dbmigrate.Commands, "|")
	if len(os.Args) < 2 {
		log.Fatal().Msgf("usage: go run ./cmd/migrate [%s]", allowed)
	}

	command := os.Args[1]
	if !dbmigrate.IsCommand(command) {
		log.Fatal().Str("command", command).Msgf("unsupported command (allowed: %s)", allowed)
	}

	sel, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	if sel.Warning != "" {
		log.Warn().Msg(sel.Warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().Str("command", command).Str("using", sel.Source).Msg("migrate")
	if err := dbmigrate.Run(ctx, command, sel.URL); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	log.Info().Str("command", command).Msg("migrate completed")
}

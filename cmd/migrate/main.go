package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/shared"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := newRootCmd(cfg.MySQLDSN, openMigrator).Execute(); err != nil {
		log.Error().Err(err).Msg("migrate failed")
		os.Exit(1)
	}
}

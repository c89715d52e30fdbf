package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/app"
	"trip_planner/internal/shared"
	"trip_planner/internal/sources"
)

// env is what every subcommand needs: config plus a planner over the
// configured cache backend.
type env struct {
	cfg     shared.Config
	planner *app.Planner
	close   func()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tripctl",
		Short:         "Plan trips and warm the provider cache from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPlanCmd(), newPrewarmCmd())
	return root
}

func setup(ctx context.Context) (*env, error) {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	c, closeCache, err := sources.OpenCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	set, err := sources.NewSet(sources.ClientsFromConfig(cfg), c, cfg.ProviderTimeout)
	if err != nil {
		closeCache()
		return nil, err
	}
	return &env{cfg: cfg, planner: app.NewPlanner(set, cfg.FlightOrigin), close: closeCache}, nil
}

// tripFlags are shared by plan and prewarm.
type tripFlags struct {
	days       int
	people     int
	budget     float64
	experience string
}

func (f *tripFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.days, "days", 5, "trip length in days")
	cmd.Flags().IntVar(&f.people, "people", 2, "number of travelers")
	cmd.Flags().Float64Var(&f.budget, "budget", 50000, "total budget in INR")
	cmd.Flags().StringVar(&f.experience, "experience", "default", "adventure, offbeat, staycation or default")
}

package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"trip_planner/internal/domain"
)

// planFunc is the planner method prewarm drives.
type planFunc func(ctx context.Context, req domain.TripRequest) (domain.PlannedTrip, error)

func newPrewarmCmd() *cobra.Command {
	var f tripFlags
	cmd := &cobra.Command{
		Use:   "prewarm [destination...]",
		Short: "Plan the configured destinations so the shared cache is warm",
		Long: `Runs one plan per destination with a bounded number of concurrent workers.
Cached entries are keyed by the full query, so only requests with the same
dates, party size and budget share benefit. Use it with CACHE_BACKEND=redis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := domain.ParseExperience(f.experience)
			if err != nil {
				return err
			}
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			dests := args
			if len(dests) == 0 {
				dests = e.cfg.PrewarmDestinations
			}
			base := domain.TripRequest{Days: f.days, People: f.people, Budget: f.budget, Experience: exp}
			ok := prewarm(cmd.Context(), e.planner.Plan, dests, base, e.cfg.PrewarmWorkers)
			log.Info().Int("destinations", len(dests)).Int("ok", ok).Msg("prewarm completed")
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// prewarm plans every destination with at most workers in flight and
// returns how many plans succeeded.
func prewarm(ctx context.Context, plan planFunc, dests []string, base domain.TripRequest, workers int) int {
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg sync.WaitGroup
		ok atomic.Int32
	)

	for _, dest := range dests {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("prewarm interrupted")
			break
		}

		wg.Add(1)
		go func(dest string) {
			defer wg.Done()
			defer sem.Release(1)

			req := base
			req.Destination = dest
			trip, err := plan(ctx, req)
			if err != nil {
				log.Warn().Str("destination", dest).Err(err).Msg("prewarm failed")
				return
			}
			ok.Add(1)
			log.Info().Str("destination", dest).Int("offers", trip.Count()).Msg("prewarm ok")
		}(dest)
	}

	wg.Wait()
	return int(ok.Load())
}

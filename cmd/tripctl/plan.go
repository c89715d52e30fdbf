package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"trip_planner/internal/domain"
)

func newPlanCmd() *cobra.Command {
	var (
		destination string
		f           tripFlags
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan one trip and print it as JSON",
		Example: `  tripctl plan --destination Bali --days 5 --people 2 --budget 50000 --experience adventure`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exp, err := domain.ParseExperience(f.experience)
			if err != nil {
				return err
			}
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			req := domain.TripRequest{Destination: destination, Days: f.days, People: f.people, Budget: f.budget, Experience: exp}
			trip, err := e.planner.Plan(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Data    domain.PlannedTrip `json:"data"`
				Summary domain.TripSummary `json:"summary"`
			}{trip, domain.Summarize(trip, req.Budget)})
		},
	}
	cmd.Flags().StringVar(&destination, "destination", "", "destination name (required)")
	_ = cmd.MarkFlagRequired("destination")
	f.register(cmd)
	return cmd
}

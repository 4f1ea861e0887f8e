package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/wayfarer/internal/domain"
)

func planCmd(logLevel *string) *cobra.Command {
	var (
		userID string
		req    domain.PreTripRequest
		date   string
		mode   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print a pre-trip plan",
		Example: `  wayfarer plan --destination "Tokyo, Japan" --date 2026-11-02 --nationality German
  wayfarer plan -d Lisbon --mode family --group 4 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date != "" {
				d, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("--date must look like 2006-01-02: %w", err)
				}
				req.DepartureDate = d
			}
			if mode != "" {
				m, ok := domain.ParseMode(mode)
				if !ok {
					return fmt.Errorf("unknown mode %q", mode)
				}
				req.Mode = m
			}

			ctx := cmd.Context()
			gw, cfg, err := gatewayFromEnv(ctx)
			if err != nil {
				return err
			}
			orch := newOrchestrator(gw, cfg, newLogger(*logLevel))
			plan, err := orch.PlanPreTrip(ctx, userID, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			printPlan(cmd, plan)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "cli-user", "User ID the plan belongs to")
	cmd.Flags().StringVarP(&req.Destination, "destination", "d", "", "Where you are going")
	cmd.Flags().StringVar(&req.Origin, "origin", "", "Where you are leaving from")
	cmd.Flags().StringVar(&date, "date", "", "Departure date (YYYY-MM-DD); defaults to 30 days from now")
	cmd.Flags().StringVar(&req.Nationality, "nationality", "", "Passport nationality")
	cmd.Flags().IntVar(&req.GroupSize, "group", 0, "Number of travellers")
	cmd.Flags().StringVar(&mode, "mode", "", "Travel mode (family, friends, solo, solo_female, pets)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	return cmd
}

func printPlan(cmd *cobra.Command, p domain.PreTripPlan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pre-trip plan: %s -> %s, departing %s (%s)\n",
		p.Origin, p.Destination, p.DepartureDate.Format(time.DateOnly), p.Mode)
	summaries := p.Summaries()
	for _, c := range domain.Categories {
		fmt.Fprintf(out, "\n[%s]\n%s\n", c, summaries[c])
	}
	fmt.Fprintf(out, "\nEstimated cost: %s\n", p.CostEstimate)
	fmt.Fprintln(out, "\nTimeline:")
	for _, b := range p.Timeline {
		fmt.Fprintf(out, "  %d weeks before (%s)\n", b.WeeksBefore, b.DueDate.Format(time.DateOnly))
		for _, t := range b.Tasks {
			fmt.Fprintf(out, "    - %s\n", t)
		}
	}
	if n := p.FallbackCount(); n > 0 {
		fmt.Fprintf(out, "\n%d of %d sections use offline guidance.\n", n, len(domain.Categories))
	}
}

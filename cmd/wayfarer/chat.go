package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/service"
)

func chatCmd(logLevel *string) *cobra.Command {
	var (
		userID   string
		location string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Start an interactive conversation. Each line is one message.

Commands:
  /close      close the active trip so feedback is treated as post-trip
  /location X set your current location to X
  /quit       leave`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gw, cfg, err := gatewayFromEnv(ctx)
			if err != nil {
				return err
			}
			orch := newOrchestrator(gw, cfg, newLogger(*logLevel))
			return runChat(ctx, orch, userID, location, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "cli-user", "User ID the conversation belongs to")
	cmd.Flags().StringVarP(&location, "location", "l", "", "Your current location")
	return cmd
}

// runChat reads one message per line from in until EOF or /quit.
func runChat(ctx context.Context, orch *service.Orchestrator, userID, location string, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	var tripID string

	fmt.Fprint(out, "> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case line == "/quit":
			return nil
		case line == "/close":
			if tripID == "" {
				fmt.Fprintln(out, "No active trip.")
				break
			}
			if err := orch.CloseTrip(ctx, tripID); err != nil {
				fmt.Fprintf(out, "Could not close trip: %v\n", err)
				break
			}
			fmt.Fprintf(out, "Trip %s closed.\n", tripID)
			tripID = ""
		case strings.HasPrefix(line, "/location"):
			location = strings.TrimSpace(strings.TrimPrefix(line, "/location"))
			fmt.Fprintf(out, "Location set to %q.\n", location)
		default:
			env, err := orch.HandleMessage(ctx, userID, line, location)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				break
			}
			if env.Phase == domain.PhaseInTrip && env.TripID != "" {
				tripID = env.TripID
			}
			printEnvelope(out, env)
		}
		fmt.Fprint(out, "> ")
	}
	return sc.Err()
}

func printEnvelope(out io.Writer, env domain.Envelope) {
	fmt.Fprintf(out, "[%s | %s]\n%s\n", env.Phase, env.Mode, env.Message)
	if env.Itinerary != nil {
		for _, d := range env.Itinerary.Days {
			fmt.Fprintf(out, "  Day %d: %s\n", d.Day, d.Title)
			for _, a := range d.Activities {
				fmt.Fprintf(out, "    - %s\n", a)
			}
		}
	}
	if len(env.Suggestions) > 0 {
		fmt.Fprintf(out, "Suggestions: %s\n", strings.Join(env.Suggestions, " · "))
	}
}

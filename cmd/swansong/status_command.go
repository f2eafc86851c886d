package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"swansong/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and session counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status api.StatusResponse
			if err := ctx.getJSON(cmd.Context(), "/api/status", &status); err != nil {
				return err
			}
			var health api.HealthResponse
			if err := ctx.getJSON(cmd.Context(), "/api/health", &health); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			state := "running"
			if !status.Running {
				state = "stopped"
			}
			fmt.Fprintf(out, "Daemon:   %s (pid %d)\n", state, status.PID)
			fmt.Fprintf(out, "Store:    %s (%s)\n", status.StoreBackend, health.Store)
			fmt.Fprintf(out, "Sessions: %d total, %d pending, %d processing, %d ready, %d failed\n",
				status.Sessions.Total, status.Sessions.Pending, status.Sessions.Processing,
				status.Sessions.Ready, status.Sessions.Failed)

			fmt.Fprintln(out, "Stages:")
			for _, stage := range health.Stages {
				state := "ready"
				if !stage.Ready {
					state = "not ready"
					if stage.Detail != "" {
						state = fmt.Sprintf("not ready (%s)", stage.Detail)
					}
				}
				fmt.Fprintf(out, "  %-8s %s\n", stage.Name, state)
			}
			return nil
		},
	}
}

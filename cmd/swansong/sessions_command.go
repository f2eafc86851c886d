package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"swansong/internal/api"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List all generation sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp api.SessionListResponse
			if err := ctx.getJSON(cmd.Context(), "/api/sessions", &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(resp.Sessions)
			}

			if len(resp.Sessions) == 0 {
				fmt.Fprintln(out, "No sessions")
				return nil
			}
			fmt.Fprintln(out, renderTable(sessionTableHeaders, sessionTableRows(resp.Sessions), isTerminal(out)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw session list as JSON")
	return cmd
}

var sessionTableHeaders = []string{"ID", "Employee", "Status", "Created", "Detail"}

func sessionTableRows(sessions []api.SessionSummary) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, sess := range sessions {
		detail := sess.VideoURL
		if sess.Error != "" {
			detail = fmt.Sprintf("%s: %s", sess.FailedStage, sess.Error)
		}
		rows = append(rows, []string{
			sess.ID,
			sess.EmployeeName,
			sess.Status,
			sess.CreatedAt.Local().Format(time.DateTime),
			detail,
		})
	}
	return rows
}

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"swansong/internal/api"
	"swansong/internal/session"
)

const watchInterval = 3 * time.Second

func newShowCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "show <meeting-id>",
		Short: "Show the status of a generation session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			out := cmd.OutOrStdout()

			resp, err := fetchMeeting(cmd.Context(), ctx, id)
			if err != nil {
				return err
			}
			printMeeting(out, id, resp)
			if !watch {
				return nil
			}

			for {
				status, ok := session.ParseStatus(resp.Status)
				if ok && status.IsTerminal() {
					return nil
				}
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(watchInterval):
				}
				resp, err = fetchMeeting(cmd.Context(), ctx, id)
				if err != nil {
					return err
				}
				printMeeting(out, id, resp)
			}
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll until the session reaches a terminal status")
	return cmd
}

func fetchMeeting(ctx context.Context, cmdCtx *commandContext, id string) (api.MeetingResponse, error) {
	var resp api.MeetingResponse
	err := cmdCtx.getJSON(ctx, "/api/meeting/"+id, &resp)
	return resp, err
}

func printMeeting(out io.Writer, id string, resp api.MeetingResponse) {
	fmt.Fprintf(out, "[%s] %s  %s", time.Now().Format("15:04:05"), id, resp.Status)
	switch {
	case resp.VideoURL != "":
		fmt.Fprintf(out, "  video: %s", resp.VideoURL)
	case resp.Error != "":
		fmt.Fprintf(out, "  stage: %s  error: %s", resp.FailedStage, resp.Error)
	}
	fmt.Fprintln(out)
}

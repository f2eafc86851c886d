package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"swansong/internal/api"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var name string
	var info string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Start generating a farewell video for an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			info = strings.TrimSpace(info)
			if name == "" || info == "" {
				return errors.New("both --name and --info are required")
			}

			var resp api.GenerateResponse
			err := ctx.postJSON(cmd.Context(), "/api/generate", api.GenerateRequest{
				EmployeeName: name,
				EmployeeInfo: info,
			}, &resp)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Meeting ID:   %s\n", resp.MeetingID)
			fmt.Fprintf(out, "Meeting link: %s\n", resp.MeetingLink)
			fmt.Fprintf(out, "Status:       %s\n", resp.Status)
			fmt.Fprintf(out, "\nTrack progress with `swansong show %s --watch`\n", resp.MeetingID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Employee name")
	cmd.Flags().StringVar(&info, "info", "", "Employee background used to write the lyrics")
	return cmd
}

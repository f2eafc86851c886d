package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"swansong/internal/api"
)

func newInviteCommand(ctx *commandContext) *cobra.Command {
	var name string
	var email string
	var link string

	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Email a meeting invitation for a generated session",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			link = strings.TrimSpace(link)
			if email == "" || link == "" {
				return errors.New("both --email and --link are required")
			}

			var resp api.InviteResponse
			err := ctx.postJSON(cmd.Context(), "/api/send-invite", api.InviteRequest{
				EmployeeName:  strings.TrimSpace(name),
				EmployeeEmail: email,
				MeetingLink:   link,
			}, &resp)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Invite sent to %s (message id %s)\n", email, resp.MessageID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Employee name used in the email greeting")
	cmd.Flags().StringVar(&email, "email", "", "Employee email address")
	cmd.Flags().StringVar(&link, "link", "", "Meeting link to include in the invite")
	return cmd
}

package mailer

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"sync"
)

//go:embed invite.html.tmpl
var inviteTemplateSource string

var inviteTemplate = sync.OnceValues(func() (*template.Template, error) {
	return template.New("invite").Parse(inviteTemplateSource)
})

type inviteData struct {
	EmployeeName string
	MeetingLink  string
}

func renderInviteHTML(employeeName, meetingLink string) (string, error) {
	tmpl, err := inviteTemplate()
	if err != nil {
		return "", fmt.Errorf("parse invite template: %w", err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, inviteData{EmployeeName: employeeName, MeetingLink: meetingLink}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderInviteText(employeeName, meetingLink string) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Hi %s,\n\n", employeeName)
	buf.WriteString("A mandatory meeting has been scheduled for you regarding your role.\n")
	buf.WriteString("Please join at your earliest convenience:\n\n")
	buf.WriteString(meetingLink)
	buf.WriteString("\n\nHR Department\n")
	return buf.String()
}

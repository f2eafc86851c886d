// Package mailer delivers meeting invitation emails through an HTTP mail API.
package mailer

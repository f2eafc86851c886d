// Package logging builds the slog loggers used across the daemon and CLI.
//
// It renders console or JSON output, optionally teed into a log file under the
// configured log directory, and standardizes the structured field names for
// session ids, stage names, and correlation ids so pipeline events stay
// greppable. WithContext lifts identifiers stored in a context (see
// internal/services) into logger fields.
package logging

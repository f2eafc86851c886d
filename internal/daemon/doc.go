// Package daemon hosts the long-running swansong process: the HTTP API, the
// pipeline runner lifecycle, and the single-instance file lock.
package daemon

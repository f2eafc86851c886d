// Package api defines the JSON types exchanged between the daemon's HTTP
// surface and its clients, plus converters from internal session state.
package api

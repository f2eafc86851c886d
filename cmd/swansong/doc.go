// Command swansong is the CLI client for the swansong daemon. It submits
// generation requests, watches session progress, lists sessions, and sends
// meeting invitations over the daemon's HTTP API.
package main

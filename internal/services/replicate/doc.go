// Package replicate wraps the Replicate prediction API used by the music,
// voice-conversion, and avatar-video stages. A Run call creates a prediction
// for a pinned model version and polls it until terminal, returning the single
// output file URL. Callers bound each run with a context deadline; the client
// performs no retries of its own.
package replicate

// Package services holds plumbing shared by the external service clients:
// sentinel error markers with a consistent wrapping helper, and context
// annotations (session id, stage, correlation id) that the logging package
// lifts into structured fields.
//
// Subpackages wrap one upstream service each: replicate (generative media
// predictions), lyrics (the lyric generation endpoint), and mailer (the
// invite mail API).
package services

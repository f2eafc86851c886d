// Package pipeline orchestrates the generation stages that turn an employee
// profile into a finished farewell video: lyric writing, music generation,
// optional voice conversion, and avatar video rendering.
package pipeline

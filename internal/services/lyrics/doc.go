// Package lyrics wraps the external lyrics generation endpoint and validates
// the lyric text it returns against the word-count bounds a short song needs.
package lyrics

package lyrics

import (
	"fmt"
	"strings"
)

// CountWords counts whitespace-separated words in a lyric text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Validate checks a lyric text against the inclusive word-count bounds a
// roughly 30-second song can carry.
func Validate(text string, minWords, maxWords int) error {
	count := CountWords(text)
	if count < minWords || count > maxWords {
		return fmt.Errorf("lyric text has %d words, want between %d and %d", count, minWords, maxWords)
	}
	return nil
}

// Package chunker splits a document's raw text into the ordered sentence
// sequence that is the canonical index space for reading progress.
package chunker

import "strings"

// Chunk splits text on '.', '?', '!', trims whitespace around each piece,
// drops empty pieces, and re-appends a terminal '.' to every surviving
// sentence. It is deterministic and idempotent: Chunk(strings.Join(Chunk(x),
// " ")) reproduces Chunk(x) modulo whitespace.
func Chunk(text string) []string {
	pieces := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '?' || r == '!'
	})

	sentences := make([]string, 0, len(pieces))
	for _, p := range pieces {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		sentences = append(sentences, trimmed+".")
	}
	return sentences
}

// Package chunking splits long transcripts into token-bounded chunks and derives
// the overlap text that carries context across chunk boundaries.
package chunking

import (
	"strings"

	"github.com/jonathan/news-digest/internal/tokens"
)

const (
	// DefaultMaxTokens is the per-chunk token ceiling.
	DefaultMaxTokens = 3000
	// DefaultSeparator separates transcript paragraphs.
	DefaultSeparator = "\n\n"
	// DefaultOverlapWords is how many trailing words of the previous chunk are carried over.
	DefaultOverlapWords = 100
)

// Chunk groups the paragraphs of text into chunks whose token count stays within
// maxTokens. A paragraph that pushes the buffer over the ceiling starts the next
// chunk. A single paragraph larger than maxTokens becomes an oversized chunk of
// its own; it is never split. Blank input yields no chunks.
func Chunk(text string, maxTokens int, separator string, counter tokens.Counter) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if separator == "" {
		separator = DefaultSeparator
	}

	paragraphs := strings.Split(text, separator)
	var chunks []string
	var current []string

	for _, para := range paragraphs {
		current = append(current, para)
		if len(current) > 1 && counter.Count(strings.Join(current, separator)) > maxTokens {
			chunks = append(chunks, strings.Join(current[:len(current)-1], separator))
			current = []string{para}
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, separator))
	}
	return chunks
}

// Overlap returns the last n words of text joined by single spaces.
func Overlap(text string, n int) string {
	words := strings.Fields(text)
	if n <= 0 {
		return ""
	}
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}

// Payload builds the text sent to the model for chunk i: the raw chunk for the
// first one, otherwise the overlap of the previous raw chunk, a space, and the chunk.
func Payload(chunks []string, i, overlapWords int) string {
	if i == 0 {
		return chunks[0]
	}
	return Overlap(chunks[i-1], overlapWords) + " " + chunks[i]
}

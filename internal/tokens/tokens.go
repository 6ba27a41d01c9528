// Package tokens counts model tokens for chunk sizing.
package tokens

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter reports how many tokens a text costs for some model.
type Counter interface {
	Count(text string) int
}

// CounterFunc adapts a plain function to Counter.
type CounterFunc func(text string) int

// Count calls f(text).
func (f CounterFunc) Count(text string) int {
	return f(text)
}

// Words counts whitespace-separated words. Tests and offline runs use it.
var Words = CounterFunc(func(text string) int {
	return len(strings.Fields(text))
})

// Tiktoken counts tokens with a BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// Count encodes text and returns the token count.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// ForModel returns a tiktoken counter for model.
// Models unknown to the tokenizer tables fall back on their family encoding.
func ForModel(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding(model))
		if err != nil {
			return nil, err
		}
	}
	return &Tiktoken{enc: enc}, nil
}

func fallbackEncoding(model string) string {
	for _, prefix := range []string{"gpt-4.1", "gpt-4o", "gpt-5", "o1", "o3", "o4"} {
		if strings.HasPrefix(model, prefix) {
			return "o200k_base"
		}
	}
	return "cl100k_base"
}

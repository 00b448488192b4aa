// Package token provides the token counters used to budget prompt context.
package token

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/cadre-oss/sherpa/internal/config"
	"github.com/cadre-oss/sherpa/internal/errors"
)

// Counter measures text in tokens.
type Counter = func(string) int

// Estimate approximates tokens as one per four characters, rounded up.
func Estimate(s string) int {
	return (utf8.RuneCountInString(s) + 3) / 4
}

// Words counts whitespace-separated words.
func Words(s string) int {
	return len(strings.Fields(s))
}

// NewTiktoken returns a counter backed by the named BPE encoding
// (e.g. "cl100k_base"). The encoding is loaded once.
func NewTiktoken(encoding string) (Counter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}

	var mu sync.Mutex
	return func(s string) int {
		if s == "" {
			return 0
		}
		mu.Lock()
		defer mu.Unlock()
		return len(enc.Encode(s, nil, nil))
	}, nil
}

// FromConfig selects the counter named by cfg.TokenCounter.
func FromConfig(cfg config.MemoryConfig) (Counter, error) {
	switch cfg.TokenCounter {
	case "", "estimate":
		return Estimate, nil
	case "words":
		return Words, nil
	case "tiktoken":
		encoding := cfg.Encoding
		if encoding == "" {
			encoding = "cl100k_base"
		}
		return NewTiktoken(encoding)
	default:
		return nil, errors.Newf(errors.CodeConfigInvalid, "unknown token counter %q", cfg.TokenCounter).
			WithSuggestion("use one of: estimate, words, tiktoken")
	}
}

package rag

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

// SplitText cuts text into windows of size runes, each starting size-overlap
// runes after the previous one. The last window may be shorter.
//
// Dropping the first overlap runes of every fragment but the first and
// concatenating the rest yields the input unchanged.
func SplitText(text string, size, overlap int) []string {
	if text == "" || size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	step := size - overlap

	var fragments []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			fragments = append(fragments, string(runes[start:]))
			break
		}
		fragments = append(fragments, string(runes[start:end]))
	}
	return fragments
}

// Reassemble reverses SplitText for fragments produced with the same overlap.
func Reassemble(fragments []string, overlap int) string {
	var b strings.Builder
	for i, f := range fragments {
		if i == 0 {
			b.WriteString(f)
			continue
		}
		r := []rune(f)
		if len(r) > overlap {
			b.WriteString(string(r[overlap:]))
		}
	}
	return b.String()
}

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tk, tkErr
}

// CountTokens returns the cl100k token count of text. When the encoding
// cannot be loaded it falls back to a whitespace word count.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	enc, err := getTokenizer()
	if err != nil {
		return len(strings.Fields(text))
	}
	return len(enc.Encode(text, nil, nil))
}

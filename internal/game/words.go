package game

import (
	_ "embed"
	"math/rand"
	"strings"
)

//go:embed words.txt
var defaultWordsFile string

var defaultWords = parseWordList(defaultWordsFile)

func parseWordList(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if w := strings.TrimSpace(line); w != "" && !strings.HasPrefix(w, "#") {
			out = append(out, w)
		}
	}
	return out
}

// DefaultWords returns a copy of the built-in word list.
func DefaultWords() []string {
	return append([]string(nil), defaultWords...)
}

// wordPool lists the candidates for the next secret word under s.
func wordPool(s Settings) []string {
	if s.UseOnlyCustomWords && len(s.CustomWords) > 0 {
		return s.CustomWords
	}
	if len(s.CustomWords) == 0 {
		return defaultWords
	}

	seen := make(map[string]struct{}, len(defaultWords)+len(s.CustomWords))
	pool := make([]string, 0, len(defaultWords)+len(s.CustomWords))
	for _, list := range [][]string{defaultWords, s.CustomWords} {
		for _, w := range list {
			key := strings.ToLower(w)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			pool = append(pool, w)
		}
	}
	return pool
}

func pickWord(rng *rand.Rand, s Settings) string {
	pool := wordPool(s)
	return pool[rng.Intn(len(pool))]
}

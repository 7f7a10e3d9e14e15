package game

import (
	"strings"
	"unicode"
)

type Verdict int

const (
	VerdictIncorrect Verdict = iota
	VerdictPartial
	VerdictCorrect
)

// GuessResult is the outcome of comparing one guess against the secret word.
type GuessResult struct {
	Verdict Verdict
	// Matches counts positions where guess and word agree after
	// normalization.
	Matches int
}

// NormalizeGuess case-folds s and drops every whitespace rune.
func NormalizeGuess(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EvaluateGuess compares guess to word. A miss where at least half of the
// word's positions match is reported as partial.
func EvaluateGuess(guess, word string) GuessResult {
	g := []rune(NormalizeGuess(guess))
	w := []rune(NormalizeGuess(word))
	if len(w) == 0 {
		return GuessResult{Verdict: VerdictIncorrect}
	}
	if string(g) == string(w) {
		return GuessResult{Verdict: VerdictCorrect, Matches: len(w)}
	}

	matches := 0
	for i := 0; i < len(g) && i < len(w); i++ {
		if g[i] == w[i] {
			matches++
		}
	}
	if matches*2 >= len(w) {
		return GuessResult{Verdict: VerdictPartial, Matches: matches}
	}
	return GuessResult{Verdict: VerdictIncorrect, Matches: matches}
}

// GuessPoints is what a correct guesser earns with timeLeft of timePerRound
// seconds remaining.
func GuessPoints(timeLeft, timePerRound int) int {
	if timePerRound <= 0 {
		return BaseGuessScore
	}
	if timeLeft < 0 {
		timeLeft = 0
	}
	if timeLeft > timePerRound {
		timeLeft = timePerRound
	}
	return BaseGuessScore + timeLeft*MaxTimeBonus/timePerRound
}

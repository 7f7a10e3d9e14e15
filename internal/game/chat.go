package game

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

func (r *Room) guess(p *Player, text string) error {
	if r.status != StatusPlaying || !r.turnActive {
		return ErrNotPlaying
	}
	if p == r.drawer {
		return ErrDrawerCannotGuess
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxGuessLength {
		return ErrMessageTooLong
	}
	if !p.allowMessage(r.clock.Now()) {
		return ErrRateLimited
	}
	if p.HasGuessedCorrectly {
		return nil
	}

	res := EvaluateGuess(text, r.word)
	now := r.clock.Now()
	switch res.Verdict {
	case VerdictCorrect:
		pts := r.awardCorrectGuess(p)
		r.log.Debug().Str("player", p.Name).Int("points", pts).Msg("correct guess")
		r.broadcast(newChat(ChatCorrect, p.Name, fmt.Sprintf("%s guessed the word! (+%d)", p.Name, pts), now))
		r.broadcastPlayers()
		if r.allGuessed() {
			r.system("Everyone guessed the word!")
			r.endRound()
		}
	case VerdictPartial:
		send(p, newChat(ChatIncorrect, p.Name,
			fmt.Sprintf("%q is close! %d letters in the right place", text, res.Matches), now))
		r.broadcastExcept(p, newChat(ChatIncorrect, p.Name, p.Name+" guessed wrong", now))
	default:
		send(p, newChat(ChatIncorrect, p.Name, fmt.Sprintf("%q is not the word", text), now))
		r.broadcastExcept(p, newChat(ChatIncorrect, p.Name, p.Name+" guessed wrong", now))
	}
	return nil
}

// awardCorrectGuess latches the guesser and books both their points and the
// drawer's bonus in the turn ledger.
func (r *Room) awardCorrectGuess(p *Player) int {
	pts := GuessPoints(r.timeLeft, r.settings.TimePerRound)
	p.HasGuessedCorrectly = true
	p.Score += pts
	p.WordsGuessed++
	r.turnPoints[p.ID] += pts

	if r.drawer != nil {
		r.drawer.Score += DrawerBonus
		r.turnPoints[r.drawer.ID] += DrawerBonus
	}
	return pts
}

// allGuessed reports whether every active guesser has found the word.
func (r *Room) allGuessed() bool {
	guessers := 0
	for _, p := range r.players {
		if !p.active() || p == r.drawer {
			continue
		}
		guessers++
		if !p.HasGuessedCorrectly {
			return false
		}
	}
	return guessers > 0
}

func (r *Room) chat(p *Player, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxChatLength {
		return ErrMessageTooLong
	}

	if r.status == StatusPlaying && r.turnActive {
		normalized := NormalizeGuess(content)
		word := NormalizeGuess(r.word)
		switch {
		case p == r.drawer || p.HasGuessedCorrectly:
			if strings.Contains(normalized, word) {
				return ErrRevealsWord
			}
		case normalized == word:
			return r.guess(p, content)
		}
	}

	if !p.allowMessage(r.clock.Now()) {
		return ErrRateLimited
	}
	r.broadcast(newChat(ChatPlain, p.Name, content, r.clock.Now()))
	return nil
}

func (r *Room) relay(p *Player, payload json.RawMessage) error {
	if r.status != StatusPlaying {
		return ErrNotPlaying
	}
	if p != r.drawer {
		return ErrNotDrawer
	}
	if !json.Valid(payload) {
		return ErrMalformedMessage
	}
	r.broadcastExcept(p, RelayMessage{Payload: payload})
	return nil
}

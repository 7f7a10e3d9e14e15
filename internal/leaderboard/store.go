package leaderboard

import (
	"context"
	"sort"
	"time"
)

// Entry is a player's cumulative record across every finished game.
type Entry struct {
	PlayerName   string    `json:"playerName"`
	Score        int64     `json:"score"`
	GamesPlayed  int       `json:"gamesPlayed"`
	WordsGuessed int       `json:"wordsGuessed"`
	LastPlayed   time.Time `json:"lastPlayed"`
}

// Delta is what one player adds to their entry at the end of a game.
type Delta struct {
	PlayerName   string
	Score        int
	WordsGuessed int
}

// Store persists entries. Record must be additive: each delta bumps the
// player's games played by one.
type Store interface {
	Load(ctx context.Context) error
	Record(ctx context.Context, at time.Time, deltas []Delta) error
	Top(ctx context.Context, n int) ([]Entry, error)
}

func (e Entry) apply(d Delta, at time.Time) Entry {
	e.PlayerName = d.PlayerName
	e.Score += int64(d.Score)
	e.GamesPlayed++
	e.WordsGuessed += d.WordsGuessed
	e.LastPlayed = at
	return e
}

// sortEntries orders by score, highest first, with ties broken by name.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].PlayerName < entries[j].PlayerName
	})
}

package db

import "time"

// LeaderboardRow mirrors one row of the leaderboard table.
type LeaderboardRow struct {
	PlayerName   string    `json:"player_name" db:"player_name"`
	Score        int64     `json:"score" db:"score"`
	GamesPlayed  int       `json:"games_played" db:"games_played"`
	WordsGuessed int       `json:"words_guessed" db:"words_guessed"`
	LastPlayed   time.Time `json:"last_played" db:"last_played"`
}

// ScanArgs returns destinations in the column order used by the leaderboard
// queries.
func (r *LeaderboardRow) ScanArgs() []any {
	return []any{&r.PlayerName, &r.Score, &r.GamesPlayed, &r.WordsGuessed, &r.LastPlayed}
}

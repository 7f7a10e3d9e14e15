package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/krishanu7/scribble-backend/db"
)

const upsertEntry = `
INSERT INTO leaderboard (player_name, score, games_played, words_guessed, last_played)
VALUES ($1, $2, 1, $3, $4)
ON CONFLICT (player_name) DO UPDATE SET
	score = leaderboard.score + EXCLUDED.score,
	games_played = leaderboard.games_played + 1,
	words_guessed = leaderboard.words_guessed + EXCLUDED.words_guessed,
	last_played = EXCLUDED.last_played`

const selectTop = `
SELECT player_name, score, games_played, words_guessed, last_played
FROM leaderboard
ORDER BY score DESC, player_name ASC
LIMIT $1`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{db: conn}
}

func (s *PostgresStore) Load(ctx context.Context) error {
	return db.EnsureSchema(ctx, s.db)
}

// Record upserts every delta in one transaction.
func (s *PostgresStore) Record(ctx context.Context, at time.Time, deltas []Delta) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, d := range deltas {
		if _, err := tx.ExecContext(ctx, upsertEntry, d.PlayerName, d.Score, d.WordsGuessed, at); err != nil {
			return fmt.Errorf("failed to record %s: %w", d.PlayerName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit leaderboard: %w", err)
	}
	return nil
}

func (s *PostgresStore) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 100
	}
	rows, err := s.db.QueryContext(ctx, selectTop, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var row db.LeaderboardRow
		if err := rows.Scan(row.ScanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		out = append(out, Entry{
			PlayerName:   row.PlayerName,
			Score:        row.Score,
			GamesPlayed:  row.GamesPlayed,
			WordsGuessed: row.WordsGuessed,
			LastPlayed:   row.LastPlayed,
		})
	}
	return out, rows.Err()
}

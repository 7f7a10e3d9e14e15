package leaderboard

import (
	"context"
	"time"

	"github.com/krishanu7/scribble-backend/internal/game"
	"github.com/rs/zerolog"
)

// Service fronts a Store for the game rooms and the HTTP handler. Storage
// failures are logged here and never reach a room.
type Service struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "leaderboard").Logger(),
		now:   time.Now,
	}
}

// Load reads the persisted leaderboard at startup.
func (s *Service) Load(ctx context.Context) {
	if err := s.store.Load(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to load leaderboard, starting empty")
		return
	}
	s.log.Info().Msg("leaderboard loaded")
}

// RecordGame satisfies game.ResultRecorder.
func (s *Service) RecordGame(ctx context.Context, results []game.GameResult) {
	if len(results) == 0 {
		return
	}
	deltas := make([]Delta, 0, len(results))
	for _, r := range results {
		deltas = append(deltas, Delta{PlayerName: r.PlayerName, Score: r.Score, WordsGuessed: r.WordsGuessed})
	}

	if err := s.store.Record(ctx, s.now().UTC(), deltas); err != nil {
		s.log.Error().Err(err).Int("players", len(deltas)).Msg("failed to record game")
		return
	}
	s.log.Debug().Int("players", len(deltas)).Msg("game recorded")
}

func (s *Service) Top(ctx context.Context, n int) ([]Entry, error) {
	entries, err := s.store.Top(ctx, n)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read leaderboard")
		return nil, err
	}
	return entries, nil
}

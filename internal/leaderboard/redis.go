package leaderboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	scoresKey       = "leaderboard:scores"
	playerKeyPrefix = "leaderboard:player:"
)

// RedisStore ranks players in a sorted set and keeps the remaining counters
// in one hash per player.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func playerKey(name string) string {
	return playerKeyPrefix + name
}

func (s *RedisStore) Load(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Record(ctx context.Context, at time.Time, deltas []Delta) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, d := range deltas {
			key := playerKey(d.PlayerName)
			pipe.ZIncrBy(ctx, scoresKey, float64(d.Score), d.PlayerName)
			pipe.HIncrBy(ctx, key, "score", int64(d.Score))
			pipe.HIncrBy(ctx, key, "gamesPlayed", 1)
			pipe.HIncrBy(ctx, key, "wordsGuessed", int64(d.WordsGuessed))
			pipe.HSet(ctx, key, "lastPlayed", at.UnixMilli())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record game in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Top(ctx context.Context, n int) ([]Entry, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	ranked, err := s.rdb.ZRevRangeWithScores(ctx, scoresKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	if len(ranked) == 0 {
		return []Entry{}, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ranked))
	for i, z := range ranked {
		cmds[i] = pipe.HGetAll(ctx, playerKey(fmt.Sprint(z.Member)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read player stats: %w", err)
	}

	out := make([]Entry, 0, len(ranked))
	for i, z := range ranked {
		fields := cmds[i].Val()
		e := Entry{
			PlayerName:   fmt.Sprint(z.Member),
			Score:        int64(z.Score),
			GamesPlayed:  atoi(fields["gamesPlayed"]),
			WordsGuessed: atoi(fields["wordsGuessed"]),
		}
		if ms, err := strconv.ParseInt(fields["lastPlayed"], 10, 64); err == nil {
			e.LastPlayed = time.UnixMilli(ms).UTC()
		}
		out = append(out, e)
	}
	return out, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

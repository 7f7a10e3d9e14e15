package leaderboard

import (
	"context"
	"fmt"

	"github.com/krishanu7/scribble-backend/config"
	"github.com/krishanu7/scribble-backend/db"
	rdbPkg "github.com/krishanu7/scribble-backend/pkg/redis"
)

// OpenStore builds the store selected by LEADERBOARD_BACKEND. The returned
// func releases its connection.
func OpenStore(ctx context.Context, cfg config.Config) (Store, func(), error) {
	switch cfg.LeaderboardBackend {
	case "", "file":
		return NewFileStore(cfg.LeaderboardFile), func() {}, nil

	case "redis":
		rdb, err := rdbPkg.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, fmt.Errorf("leaderboard redis store: %w", err)
		}
		return NewRedisStore(rdb), func() { rdb.Close() }, nil

	case "postgres":
		conn, err := db.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, nil, fmt.Errorf("leaderboard postgres store: %w", err)
		}
		return NewPostgresStore(conn), func() { conn.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown leaderboard backend %q", cfg.LeaderboardBackend)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/krishanu7/scribble-backend/config"
	"github.com/krishanu7/scribble-backend/internal/leaderboard"
	"github.com/krishanu7/scribble-backend/internal/logger"
)

func main() {
	n := flag.Int("n", 10, "number of entries to print")
	flag.Parse()

	cfg := config.LoadConfig()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, closeStore, err := leaderboard.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.LeaderboardBackend).Msg("failed to open leaderboard store")
	}
	defer closeStore()

	if err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load leaderboard")
	}
	entries, err := store.Top(ctx, *n)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read leaderboard")
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tSCORE\tGAMES\tWORDS\tLAST PLAYED")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\n", i+1, e.PlayerName, e.Score, e.GamesPlayed, e.WordsGuessed, e.LastPlayed.Format(time.DateTime))
	}
	tw.Flush()
}

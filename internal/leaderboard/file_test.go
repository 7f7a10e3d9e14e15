package leaderboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "leaderboard.json"))

	require.NoError(t, s.Load(context.Background()))
	top, err := s.Top(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestFileStore_RecordIsAdditiveAndDurable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leaderboard.json")
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	s := NewFileStore(path)
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Record(ctx, first, []Delta{
		{PlayerName: "bob", Score: 187, WordsGuessed: 1},
		{PlayerName: "alice", Score: 25},
	}))
	require.NoError(t, s.Record(ctx, second, []Delta{
		{PlayerName: "alice", Score: 300, WordsGuessed: 2},
	}))

	reloaded := NewFileStore(path)
	require.NoError(t, reloaded.Load(ctx))
	top, err := reloaded.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, "alice", top[0].PlayerName)
	assert.EqualValues(t, 325, top[0].Score)
	assert.Equal(t, 2, top[0].GamesPlayed)
	assert.Equal(t, 2, top[0].WordsGuessed)
	assert.True(t, second.Equal(top[0].LastPlayed))

	assert.Equal(t, "bob", top[1].PlayerName)
	assert.Equal(t, 1, top[1].GamesPlayed)

	limited, err := reloaded.Top(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leaderboard.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewFileStore(path)
	assert.Error(t, s.Load(ctx))
	top, err := s.Top(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)

	require.NoError(t, s.Record(ctx, time.Now(), []Delta{{PlayerName: "carol", Score: 10}}))
	require.NoError(t, NewFileStore(path).Load(ctx))
}

func TestFileStore_WriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "missing-dir", "leaderboard.json"))

	err := s.Record(ctx, time.Now(), []Delta{{PlayerName: "dave", Score: 50}})
	assert.Error(t, err)

	top, err := s.Top(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

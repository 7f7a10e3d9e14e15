package ws

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/krishanu7/scribble-backend/internal/game"
	wsPkg "github.com/krishanu7/scribble-backend/pkg/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnouncement(t *testing.T) {
	assert.Equal(t, "maintenance at 5", parseAnnouncement(`{"content":" maintenance at 5 "}`))
	assert.Equal(t, "plain text", parseAnnouncement("plain text\n"))
	assert.Equal(t, "", parseAnnouncement(`{"content":""}`))
	assert.Len(t, []rune(parseAnnouncement(strings.Repeat("é", 300))), game.MaxChatLength)
}

func TestAnnouncementWorker_BroadcastsToHub(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	hub := wsPkg.NewHub(zerolog.Nop())
	client := wsPkg.NewClient("c1", nil, zerolog.Nop())
	hub.AddClient(client)

	w := NewAnnouncementWorker(rdb, hub, "", zerolog.Nop())
	assert.Equal(t, DefaultAnnouncementChannel, w.Channel)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, ready) }()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never subscribed")
	}

	require.NoError(t, rdb.Publish(context.Background(), DefaultAnnouncementChannel, `{"content":"server restarting soon"}`).Err())

	select {
	case data := <-client.Send:
		var msg game.ChatMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "chat", msg.Type)
		assert.Equal(t, game.ChatSystem, msg.Kind)
		assert.Equal(t, "server restarting soon", msg.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("announcement never delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

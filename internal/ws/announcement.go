package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/krishanu7/scribble-backend/internal/game"
	wsPkg "github.com/krishanu7/scribble-backend/pkg/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const DefaultAnnouncementChannel = "scribble:announcements"

// AnnouncementWorker relays operator notices published on a Redis channel to
// every open connection as a system chat line.
type AnnouncementWorker struct {
	RedisClient *redis.Client
	Hub         *wsPkg.Hub
	Channel     string

	log zerolog.Logger
	now func() time.Time
}

func NewAnnouncementWorker(rdb *redis.Client, hub *wsPkg.Hub, channel string, log zerolog.Logger) *AnnouncementWorker {
	if channel == "" {
		channel = DefaultAnnouncementChannel
	}
	return &AnnouncementWorker{
		RedisClient: rdb,
		Hub:         hub,
		Channel:     channel,
		log:         log.With().Str("component", "announcements").Logger(),
		now:         time.Now,
	}
}

// Run blocks until ctx is cancelled. The subscription is confirmed before
// ready is closed; ready may be nil.
func (w *AnnouncementWorker) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := w.RedisClient.Subscribe(ctx, w.Channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}
	w.log.Info().Str("channel", w.Channel).Msg("announcement worker started")

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
				return nil
			}
			w.log.Warn().Err(err).Msg("announcement receive failed")
			continue
		}

		content := parseAnnouncement(msg.Payload)
		if content == "" {
			w.log.Debug().Msg("empty announcement ignored")
			continue
		}
		sent := w.Hub.Broadcast(game.SystemMessage(content, w.now()))
		w.log.Info().Int("clients", sent).Msg("announcement sent")
	}
}

// parseAnnouncement accepts {"content": "..."} or plain text.
func parseAnnouncement(payload string) string {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err == nil {
		return truncate(strings.TrimSpace(body.Content))
	}
	return truncate(strings.TrimSpace(payload))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > game.MaxChatLength {
		return string(r[:game.MaxChatLength])
	}
	return s
}

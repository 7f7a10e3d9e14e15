package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/krishanu7/scribble-backend/internal/game"
)

type RoomStats interface {
	Stats() game.Stats
}

type ConnStats interface {
	Count() int
	Total() int64
}

type Handler struct {
	rooms   RoomStats
	conns   ConnStats
	started time.Time
	now     func() time.Time
}

func NewHandler(rooms RoomStats, conns ConnStats, started time.Time) *Handler {
	return &Handler{rooms: rooms, conns: conns, started: started, now: time.Now}
}

type connections struct {
	Current int   `json:"current"`
	Total   int64 `json:"total"`
}

type StatsResponse struct {
	UptimeSeconds int64       `json:"uptimeSeconds"`
	Connections   connections `json:"connections"`
	Rooms         game.Stats  `json:"rooms"`
	WordCount     int         `json:"wordCount"`
}

// GetStats serves GET /admin/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		UptimeSeconds: int64(h.now().Sub(h.started).Seconds()),
		Connections:   connections{Current: h.conns.Count(), Total: h.conns.Total()},
		Rooms:         h.rooms.Stats(),
		WordCount:     len(game.DefaultWords()),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

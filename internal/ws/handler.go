package ws

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	wsPkg "github.com/krishanu7/scribble-backend/pkg/websocket"
	"github.com/rs/zerolog"
)

type Handler struct {
	Hub      *wsPkg.Hub
	router   *Router
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHandler(hub *wsPkg.Hub, router *Router, upgrader websocket.Upgrader, log zerolog.Logger) *Handler {
	return &Handler{
		Hub:      hub,
		router:   router,
		upgrader: upgrader,
		log:      log.With().Str("component", "ws").Logger(),
	}
}

// ServeWS upgrades the request and pumps frames into the router until the
// socket closes. Players join a room with a join message, not through the
// URL.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}

	client := wsPkg.NewClient(uuid.NewString(), conn, h.log)
	h.Hub.AddClient(client)
	h.log.Debug().Str("client", client.ID).Str("remote", r.RemoteAddr).Msg("connection opened")

	go client.WritePump()
	go h.read(client)
}

func (h *Handler) read(c *wsPkg.Client) {
	ctx := context.Background()
	defer func() {
		h.router.Disconnect(ctx, c)
		h.Hub.RemoveClient(c)
		c.Close()
	}()

	c.ReadPump(func(msg []byte) {
		h.router.Handle(ctx, c, msg)
	})
}

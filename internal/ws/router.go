package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/krishanu7/scribble-backend/internal/game"
	"github.com/rs/zerolog"
)

const defaultTimeout = 5 * time.Second

type session struct {
	roomID   string
	playerID string
	room     *game.Room
}

// Router binds connections to players and dispatches decoded messages to
// the player's room. A connection joins at most one room.
type Router struct {
	registry *game.Registry
	log      zerolog.Logger
	timeout  time.Duration

	mu       sync.Mutex
	sessions map[game.Conn]*session
}

func NewRouter(registry *game.Registry, log zerolog.Logger) *Router {
	return &Router{
		registry: registry,
		log:      log.With().Str("component", "router").Logger(),
		timeout:  defaultTimeout,
		sessions: make(map[game.Conn]*session),
	}
}

// Handle processes one inbound frame. Failures are reported to conn as an
// error message; the connection stays open.
func (rt *Router) Handle(ctx context.Context, conn game.Conn, data []byte) {
	ctx, cancel := context.WithTimeout(ctx, rt.timeout)
	defer cancel()

	if err := rt.dispatch(ctx, conn, data); err != nil {
		rt.log.Debug().Err(err).Msg("request rejected")
		conn.SendJSON(game.NewErrorMessage(err))
	}
}

func (rt *Router) dispatch(ctx context.Context, conn game.Conn, data []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			rt.log.Error().Interface("panic", rec).Msg("recovered from panic in message handler")
			err = game.ErrInternal
		}
	}()

	msg, err := Decode(data)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case JoinRequest:
		return rt.join(ctx, conn, m)
	case LeaveRequest:
		return rt.leave(ctx, conn)
	}

	s, ok := rt.session(conn)
	if !ok {
		return game.ErrNotJoined
	}

	switch m := msg.(type) {
	case ReadyRequest:
		return s.room.ToggleReady(ctx, s.playerID)
	case SettingsRequest:
		return s.room.UpdateSettings(ctx, s.playerID, m.Settings)
	case DrawRequest:
		return s.room.Relay(ctx, s.playerID, m.Raw)
	case GuessRequest:
		return s.room.Guess(ctx, s.playerID, m.Guess)
	case ChatRequest:
		return s.room.Chat(ctx, s.playerID, m.Content)
	case StartNewGameRequest:
		return s.room.StartNewGame(ctx, s.playerID)
	case KickRequest:
		return s.room.Kick(ctx, s.playerID, m.PlayerToKick)
	default:
		return fmt.Errorf("unhandled message %T", msg)
	}
}

func (rt *Router) join(ctx context.Context, conn game.Conn, m JoinRequest) error {
	if s, ok := rt.session(conn); ok {
		select {
		case <-s.room.Done():
			rt.take(conn)
		default:
			return game.ErrAlreadyJoined
		}
	}

	var (
		room *game.Room
		info game.PlayerInfo
		err  error
	)
	// the room may shut down between lookup and join; a fresh one is
	// created on the second attempt
	for attempt := 0; attempt < 2; attempt++ {
		room, err = rt.registry.GetOrCreate(m.RoomID)
		if err != nil {
			return err
		}
		info, err = room.Join(ctx, m.PlayerName, conn)
		if !errors.Is(err, game.ErrRoomClosed) {
			break
		}
	}
	if err != nil {
		return err
	}

	rt.mu.Lock()
	rt.sessions[conn] = &session{roomID: room.ID, playerID: info.ID, room: room}
	rt.mu.Unlock()

	rt.log.Info().Str("room", room.ID).Str("player", info.ID).Str("name", info.Name).Msg("player joined")
	return nil
}

func (rt *Router) leave(ctx context.Context, conn game.Conn) error {
	s, ok := rt.take(conn)
	if !ok {
		return game.ErrNotJoined
	}
	rt.log.Info().Str("room", s.roomID).Str("player", s.playerID).Msg("player left")
	return s.room.Leave(ctx, s.playerID)
}

// Disconnect is called once the transport for conn has gone away.
func (rt *Router) Disconnect(ctx context.Context, conn game.Conn) {
	s, ok := rt.take(conn)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, rt.timeout)
	defer cancel()

	if err := s.room.Disconnect(ctx, s.playerID, conn); err != nil && !errors.Is(err, game.ErrRoomClosed) {
		rt.log.Warn().Err(err).Str("room", s.roomID).Str("player", s.playerID).Msg("disconnect failed")
		return
	}
	rt.log.Info().Str("room", s.roomID).Str("player", s.playerID).Msg("player disconnected")
}

// Sessions is the number of connections currently bound to a player.
func (rt *Router) Sessions() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.sessions)
}

func (rt *Router) session(conn game.Conn) (*session, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	s, ok := rt.sessions[conn]
	return s, ok
}

func (rt *Router) take(conn game.Conn) (*session, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	s, ok := rt.sessions[conn]
	if ok {
		delete(rt.sessions, conn)
	}
	return s, ok
}

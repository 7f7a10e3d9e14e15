package ws

import (
	"encoding/json"
	"fmt"

	"github.com/krishanu7/scribble-backend/internal/game"
)

// Inbound is the closed set of messages a client may send.
type Inbound interface {
	inbound()
}

type JoinRequest struct {
	RoomID     string
	PlayerName string
}

type ReadyRequest struct{}

type SettingsRequest struct {
	Settings game.SettingsUpdate
}

type LeaveRequest struct{}

// DrawRequest carries a stroke or canvas command. Raw is the complete
// message and is relayed as is.
type DrawRequest struct {
	Kind string
	Raw  json.RawMessage
}

type GuessRequest struct {
	Guess string
}

type ChatRequest struct {
	Content string
}

type StartNewGameRequest struct{}

type KickRequest struct {
	PlayerToKick string
}

func (JoinRequest) inbound()         {}
func (ReadyRequest) inbound()        {}
func (SettingsRequest) inbound()     {}
func (LeaveRequest) inbound()        {}
func (DrawRequest) inbound()         {}
func (GuessRequest) inbound()        {}
func (ChatRequest) inbound()         {}
func (StartNewGameRequest) inbound() {}
func (KickRequest) inbound()         {}

func malformed(format string, args ...any) error {
	return &game.Error{Code: game.CodeMalformed, Message: fmt.Sprintf(format, args...)}
}

// Decode parses one client frame. Unknown types and missing required fields
// are rejected here so handlers only see well-formed requests.
func Decode(data []byte) (Inbound, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, game.ErrMalformedMessage
	}

	switch env.Type {
	case "join":
		var m struct {
			RoomID     string  `json:"roomId"`
			PlayerName *string `json:"playerName"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, game.ErrMalformedMessage
		}
		if m.PlayerName == nil {
			return nil, malformed("join requires playerName")
		}
		return JoinRequest{RoomID: m.RoomID, PlayerName: *m.PlayerName}, nil

	case "ready":
		return ReadyRequest{}, nil

	case "gameSettings", "updateSettings":
		var m struct {
			Settings *game.SettingsUpdate `json:"settings"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, game.ErrMalformedMessage
		}
		if m.Settings == nil {
			return nil, malformed("%s requires settings", env.Type)
		}
		return SettingsRequest{Settings: *m.Settings}, nil

	case "leave":
		return LeaveRequest{}, nil

	case "draw", "clear", "pathStart", "pathEnd":
		return DrawRequest{Kind: env.Type, Raw: json.RawMessage(data)}, nil

	case "guess":
		var m struct {
			Guess *string `json:"guess"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, game.ErrMalformedMessage
		}
		if m.Guess == nil {
			return nil, malformed("guess requires guess")
		}
		return GuessRequest{Guess: *m.Guess}, nil

	// clients cannot post server notices; system is treated as chat
	case "chat", "system":
		var m struct {
			Content *string `json:"content"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, game.ErrMalformedMessage
		}
		if m.Content == nil {
			return nil, malformed("%s requires content", env.Type)
		}
		return ChatRequest{Content: *m.Content}, nil

	case "startNewGameRequest":
		return StartNewGameRequest{}, nil

	case "kickPlayer":
		var m struct {
			PlayerToKick *string `json:"playerToKick"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, game.ErrMalformedMessage
		}
		if m.PlayerToKick == nil {
			return nil, malformed("kickPlayer requires playerToKick")
		}
		return KickRequest{PlayerToKick: *m.PlayerToKick}, nil

	case "":
		return nil, malformed("message type is missing")
	default:
		return nil, malformed("unknown message type %q", env.Type)
	}
}

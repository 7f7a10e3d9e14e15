package game

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Conn is the outbound half of a player's connection. SendJSON must not
// block; it reports false when the message was dropped.
type Conn interface {
	SendJSON(v any) bool
	Close()
}

// Message is the closed set of payloads a room sends to clients.
type Message interface {
	outbound()
}

type JoinedMessage struct {
	Type          string     `json:"type"`
	RoomID        string     `json:"roomId"`
	PlayerDetails PlayerInfo `json:"playerDetails"`
	Settings      Settings   `json:"settings"`
}

// GameStateView is the per-recipient snapshot of the room. Word is only
// filled for the drawer, or for everyone once the turn is over.
type GameStateView struct {
	Status            Status   `json:"status"`
	CurrentRound      int      `json:"currentRound"`
	MaxRounds         int      `json:"maxRounds"`
	TurnWithinRound   int      `json:"turnWithinRound"`
	TimeLeft          int      `json:"timeLeft"`
	TimePerRound      int      `json:"timePerRound"`
	CurrentDrawer     string   `json:"currentDrawer,omitempty"`
	CurrentDrawerName string   `json:"currentDrawerName,omitempty"`
	WordLength        int      `json:"wordLength,omitempty"`
	Word              string   `json:"word,omitempty"`
	Settings          Settings `json:"settings"`
}

type GameStateMessage struct {
	Type       string        `json:"type"`
	GameState  GameStateView `json:"gameState"`
	PlayerInfo PlayerInfo    `json:"playerInfo"`
}

type PlayerListMessage struct {
	Type    string       `json:"type"`
	Players []PlayerInfo `json:"players"`
}

type ChatType string

const (
	ChatSystem    ChatType = "system"
	ChatCorrect   ChatType = "correct"
	ChatIncorrect ChatType = "incorrect"
	ChatPlain     ChatType = "chat"
)

// ChatEntry is one line of the chat pane. Its kind travels as chatType
// because type is the envelope discriminator.
type ChatEntry struct {
	ID         string   `json:"id"`
	Kind       ChatType `json:"chatType"`
	PlayerName string   `json:"playerName,omitempty"`
	Content    string   `json:"content"`
	Timestamp  int64    `json:"timestamp"`
}

// ChatMessage is sent flat: {type:"chat", id, chatType, playerName,
// content, timestamp}.
type ChatMessage struct {
	Type string `json:"type"`
	ChatEntry
}

type Standing struct {
	Rank         int    `json:"rank"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	WordsGuessed int    `json:"wordsGuessed"`
}

type LeaderboardMessage struct {
	Type    string     `json:"type"`
	Players []Standing `json:"players"`
}

type KickedMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Code    Code   `json:"code,omitempty"`
}

type ClearMessage struct {
	Type string `json:"type"`
}

// RelayMessage forwards a drawer's stroke payload untouched.
type RelayMessage struct {
	Payload json.RawMessage
}

func (m RelayMessage) MarshalJSON() ([]byte, error) {
	return m.Payload, nil
}

func (JoinedMessage) outbound()      {}
func (GameStateMessage) outbound()   {}
func (PlayerListMessage) outbound()  {}
func (ChatMessage) outbound()        {}
func (LeaderboardMessage) outbound() {}
func (KickedMessage) outbound()      {}
func (ErrorMessage) outbound()       {}
func (ClearMessage) outbound()       {}
func (RelayMessage) outbound()       {}

func newChat(kind ChatType, playerName, content string, at time.Time) ChatMessage {
	return ChatMessage{
		Type: "chat",
		ChatEntry: ChatEntry{
			ID:         uuid.NewString(),
			Kind:       kind,
			PlayerName: playerName,
			Content:    content,
			Timestamp:  at.UnixMilli(),
		},
	}
}

// SystemMessage is a server notice shown in the chat pane.
func SystemMessage(content string, at time.Time) ChatMessage {
	return newChat(ChatSystem, "", content, at)
}

// NewErrorMessage converts err into the error payload sent to the
// offending connection. Errors not raised by a room are not echoed verbatim.
func NewErrorMessage(err error) ErrorMessage {
	code := CodeOf(err)
	content := err.Error()
	if code == "" {
		code = CodeInternal
		content = ErrInternal.Message
	}
	return ErrorMessage{Type: "error", Content: content, Code: code}
}

func send(p *Player, msg Message) {
	if p.conn == nil || p.Disconnected {
		return
	}
	p.conn.SendJSON(msg)
}

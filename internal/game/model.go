package game

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	StatusEnded   Status = "ended"
)

const (
	MaxPlayers     = 10
	MinPlayers     = 2
	MaxNameLength  = 20
	MaxGuessLength = 50
	MaxChatLength  = 200

	MinRounds       = 1
	MaxRounds       = 20
	MinTimePerRound = 30
	MaxTimePerRound = 180

	MaxCustomWords      = 200
	MaxCustomWordLength = 30

	BaseGuessScore = 100
	MaxTimeBonus   = 100
	DrawerBonus    = 25
)

// Settings are chosen by the party leader between games.
type Settings struct {
	MaxRounds          int      `json:"maxRounds"`
	TimePerRound       int      `json:"timePerRound"`
	CustomWords        []string `json:"customWords"`
	UseOnlyCustomWords bool     `json:"useOnlyCustomWords"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxRounds:    3,
		TimePerRound: 80,
		CustomWords:  []string{},
	}
}

// SettingsUpdate carries a partial settings change; nil fields keep the
// current value.
type SettingsUpdate struct {
	MaxRounds          *int      `json:"maxRounds,omitempty"`
	TimePerRound       *int      `json:"timePerRound,omitempty"`
	CustomWords        *[]string `json:"customWords,omitempty"`
	UseOnlyCustomWords *bool     `json:"useOnlyCustomWords,omitempty"`
}

// Apply returns s with u layered on top, clamped into the allowed ranges.
func (s Settings) Apply(u SettingsUpdate) Settings {
	out := s
	if u.MaxRounds != nil {
		out.MaxRounds = *u.MaxRounds
	}
	if u.TimePerRound != nil {
		out.TimePerRound = *u.TimePerRound
	}
	if u.CustomWords != nil {
		out.CustomWords = *u.CustomWords
	}
	if u.UseOnlyCustomWords != nil {
		out.UseOnlyCustomWords = *u.UseOnlyCustomWords
	}
	return out.normalized()
}

func (s Settings) normalized() Settings {
	s.MaxRounds = clamp(s.MaxRounds, MinRounds, MaxRounds)
	s.TimePerRound = clamp(s.TimePerRound, MinTimePerRound, MaxTimePerRound)
	s.CustomWords = cleanWords(s.CustomWords)
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func cleanWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Join(strings.Fields(w), " ")
		if w == "" || utf8.RuneCountInString(w) > MaxCustomWordLength {
			continue
		}
		key := strings.ToLower(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
		if len(out) == MaxCustomWords {
			break
		}
	}
	return out
}

// Player is owned by its room and only touched from the room's loop.
type Player struct {
	ID                  string
	Name                string
	Score               int
	WordsGuessed        int
	IsReady             bool
	IsDrawing           bool
	HasGuessedCorrectly bool
	IsPartyLeader       bool
	Disconnected        bool
	LastMessageTime     time.Time

	conn    Conn
	limiter *rate.Limiter
	grace   *Handle
}

func newPlayer(id, name string, conn Conn, minInterval time.Duration) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		conn:    conn,
		limiter: newLimiter(minInterval),
	}
}

func newLimiter(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}

// allowMessage applies the per-player minimum interval between chat and
// guess messages.
func (p *Player) allowMessage(now time.Time) bool {
	if !p.limiter.AllowN(now, 1) {
		return false
	}
	p.LastMessageTime = now
	return true
}

func (p *Player) active() bool {
	return !p.Disconnected
}

// PlayerInfo is the public view of a player sent to clients.
type PlayerInfo struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Score               int    `json:"score"`
	IsReady             bool   `json:"isReady"`
	IsDrawing           bool   `json:"isDrawing"`
	HasGuessedCorrectly bool   `json:"hasGuessedCorrectly"`
	IsPartyLeader       bool   `json:"isPartyLeader"`
	Disconnected        bool   `json:"disconnected"`
}

func (p *Player) Info() PlayerInfo {
	return PlayerInfo{
		ID:                  p.ID,
		Name:                p.Name,
		Score:               p.Score,
		IsReady:             p.IsReady,
		IsDrawing:           p.IsDrawing,
		HasGuessedCorrectly: p.HasGuessedCorrectly,
		IsPartyLeader:       p.IsPartyLeader,
		Disconnected:        p.Disconnected,
	}
}

// ValidateName trims name and checks it against the display name rules.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// ValidateRoomID accepts the empty string (server picks a code) or exactly
// four ASCII digits.
func ValidateRoomID(id string) error {
	if id == "" {
		return nil
	}
	if len(id) != 4 {
		return ErrInvalidRoomID
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return ErrInvalidRoomID
		}
	}
	return nil
}

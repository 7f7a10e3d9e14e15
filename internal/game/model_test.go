package game

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsApply(t *testing.T) {
	intp := func(v int) *int { return &v }
	boolp := func(v bool) *bool { return &v }
	words := func(w ...string) *[]string { return &w }

	tests := []struct {
		name string
		in   SettingsUpdate
		want Settings
	}{
		{
			name: "rounds clamped high",
			in:   SettingsUpdate{MaxRounds: intp(25)},
			want: Settings{MaxRounds: 20, TimePerRound: 80, CustomWords: []string{}},
		},
		{
			name: "time clamped low",
			in:   SettingsUpdate{MaxRounds: intp(0), TimePerRound: intp(5)},
			want: Settings{MaxRounds: 1, TimePerRound: 30, CustomWords: []string{}},
		},
		{
			name: "custom words cleaned",
			in: SettingsUpdate{
				CustomWords:        words(" Cat ", "cat", "", "hot   dog", strings.Repeat("x", 31)),
				UseOnlyCustomWords: boolp(true),
			},
			want: Settings{MaxRounds: 3, TimePerRound: 80, CustomWords: []string{"Cat", "hot dog"}, UseOnlyCustomWords: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultSettings().Apply(tt.in))
		})
	}
}

func TestSettingsApply_CapsWordCount(t *testing.T) {
	many := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		many = append(many, "word"+strings.Repeat("a", i%20)+string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	got := DefaultSettings().Apply(SettingsUpdate{CustomWords: &many})
	assert.Len(t, got.CustomWords, MaxCustomWords)
}

func TestWordPool(t *testing.T) {
	defaults := DefaultWords()
	require.NotEmpty(t, defaults)

	s := DefaultSettings()
	assert.Len(t, wordPool(s), len(defaults))

	s.UseOnlyCustomWords = true
	assert.Len(t, wordPool(s), len(defaults), "empty custom list falls back to defaults")

	s.CustomWords = []string{"zeppelin", "Apple"}
	assert.Equal(t, []string{"zeppelin", "Apple"}, wordPool(s))

	s.UseOnlyCustomWords = false
	pool := wordPool(s)
	assert.Contains(t, pool, "zeppelin")
	assert.Len(t, pool, len(defaults)+1, "case-insensitive duplicates collapse")
}

func TestValidateRoomID(t *testing.T) {
	assert.NoError(t, ValidateRoomID(""))
	assert.NoError(t, ValidateRoomID("0042"))
	assert.ErrorIs(t, ValidateRoomID("123"), ErrInvalidRoomID)
	assert.ErrorIs(t, ValidateRoomID("12a4"), ErrInvalidRoomID)
	assert.ErrorIs(t, ValidateRoomID("12345"), ErrInvalidRoomID)
}

func TestPlayerRateLimit(t *testing.T) {
	p := newPlayer("id", "alice", nil, 500*time.Millisecond)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, p.allowMessage(now))
	assert.Equal(t, now, p.LastMessageTime)
	assert.False(t, p.allowMessage(now.Add(100*time.Millisecond)))
	assert.True(t, p.allowMessage(now.Add(600*time.Millisecond)))
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage(ErrNotLeader)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, CodeUnauthorized, msg.Code)
	assert.Equal(t, ErrNotLeader.Message, msg.Content)

	msg = NewErrorMessage(assert.AnError)
	assert.Equal(t, CodeInternal, msg.Code)
	assert.NotContains(t, msg.Content, assert.AnError.Error())
}

func TestChatMessageIsFlat(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(newChat(ChatCorrect, "bob", "bob guessed the word!", at))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "chat", got["type"])
	assert.Equal(t, "correct", got["chatType"])
	assert.Equal(t, "bob", got["playerName"])
	assert.Equal(t, "bob guessed the word!", got["content"])
	assert.EqualValues(t, at.UnixMilli(), got["timestamp"])
	assert.NotEmpty(t, got["id"])
	assert.NotContains(t, got, "message")
}

package game

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	live := !t.stopped && !t.fired
	t.stopped = true
	return live
}

// Advance moves time forward, firing due timers in deadline order. Timers
// scheduled by a callback fire in the same call if they fall inside d.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()

		next.fn()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeConn struct {
	mu     sync.Mutex
	msgs   []any
	closed bool
}

func (c *fakeConn) SendJSON(v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, v)
	return true
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func lastOf[T any](c *fakeConn) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.msgs) - 1; i >= 0; i-- {
		if m, ok := c.msgs[i].(T); ok {
			return m, true
		}
	}
	var zero T
	return zero, false
}

func allOf[T any](c *fakeConn) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []T
	for _, m := range c.msgs {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func chatsOf(c *fakeConn, kind ChatType) []ChatEntry {
	var out []ChatEntry
	for _, m := range allOf[ChatMessage](c) {
		if m.Kind == kind {
			out = append(out, m.ChatEntry)
		}
	}
	return out
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordGame(ctx context.Context, results []GameResult) {
	m.Called(ctx, results)
}

// harness drives a single room synchronously on a fake clock.
type harness struct {
	t       *testing.T
	ctx     context.Context
	room    *Room
	clock   *fakeClock
	rec     *mockRecorder
	conns   map[string]*fakeConn
	emptied bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		ctx:   context.Background(),
		clock: newFakeClock(),
		rec:   &mockRecorder{},
		conns: map[string]*fakeConn{},
	}
	h.rec.On("RecordGame", mock.Anything, mock.Anything).Return()
	h.room = NewRoom("1234", RoomOptions{
		Config:      DefaultRoomConfig(),
		Clock:       h.clock,
		Logger:      zerolog.Nop(),
		Recorder:    h.rec,
		Rand:        rand.New(rand.NewSource(1)),
		OnEmpty:     func(*Room) { h.emptied = true },
		Synchronous: true,
	})
	return h
}

func (h *harness) join(name string) PlayerInfo {
	h.t.Helper()
	conn := &fakeConn{}
	info, err := h.room.Join(h.ctx, name, conn)
	require.NoError(h.t, err)
	h.conns[name] = conn
	return info
}

func (h *harness) player(name string) *Player {
	h.t.Helper()
	p := h.room.playerByName(name)
	require.NotNil(h.t, p, "player %s", name)
	return p
}

func (h *harness) conn(name string) *fakeConn {
	return h.conns[name]
}

// useWord restricts the word pool to w. The caller must be the leader.
func (h *harness) useWord(leader, w string) {
	h.t.Helper()
	words := []string{w}
	only := true
	require.NoError(h.t, h.room.UpdateSettings(h.ctx, h.player(leader).ID, SettingsUpdate{
		CustomWords:        &words,
		UseOnlyCustomWords: &only,
	}))
}

func (h *harness) readyAll() {
	h.t.Helper()
	for _, p := range h.room.activePlayers() {
		require.NoError(h.t, h.room.ToggleReady(h.ctx, p.ID))
	}
}

// startGame joins names in order, pins the word and readies everyone.
func (h *harness) startGame(word string, names ...string) {
	h.t.Helper()
	for _, n := range names {
		h.join(n)
	}
	h.useWord(names[0], word)
	h.readyAll()
	require.Equal(h.t, StatusPlaying, h.room.status)
}

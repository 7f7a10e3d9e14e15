package game

import (
	"context"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(NewMemoryStore(), RegistryOptions{
		Room:   RoomOptions{Config: DefaultRoomConfig(), Logger: zerolog.Nop()},
		Logger: zerolog.Nop(),
		Rand:   rand.New(rand.NewSource(7)),
	})
}

func TestRegistry_GetOrCreate(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()

	_, err := reg.GetOrCreate("12a4")
	assert.ErrorIs(t, err, ErrInvalidRoomID)

	a, err := reg.GetOrCreate("1234")
	require.NoError(t, err)
	b, err := reg.GetOrCreate("1234")
	require.NoError(t, err)
	assert.Same(t, a, b)

	gen, err := reg.GetOrCreate("")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}$`), gen.ID)
	assert.NotEqual(t, "1234", gen.ID)

	got, ok := reg.Get(gen.ID)
	assert.True(t, ok)
	assert.Same(t, gen, got)
	assert.EqualValues(t, 2, reg.Stats().TotalRooms)
}

func TestRegistry_StatsAndRemovalWhenEmpty(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Close()
	ctx := context.Background()

	room, err := reg.GetOrCreate("4321")
	require.NoError(t, err)
	_, err = room.Join(ctx, "alice", &fakeConn{})
	require.NoError(t, err)
	_, err = room.Join(ctx, "bob", &fakeConn{})
	require.NoError(t, err)

	st := reg.Stats()
	assert.Equal(t, 1, st.Rooms)
	assert.Equal(t, 2, st.Players)
	assert.Zero(t, st.PlayingRooms)

	// a failed first join leaves an empty room which must not linger
	empty, err := reg.GetOrCreate("9999")
	require.NoError(t, err)
	_, err = empty.Join(ctx, "", &fakeConn{})
	assert.ErrorIs(t, err, ErrNameRequired)

	select {
	case <-empty.Done():
	case <-time.After(time.Second):
		t.Fatal("empty room did not shut down")
	}
	_, ok := reg.Get("9999")
	assert.False(t, ok)

	fresh, err := reg.GetOrCreate("9999")
	require.NoError(t, err)
	assert.NotSame(t, empty, fresh)
}

func TestRegistry_CloseStopsRooms(t *testing.T) {
	reg := newTestRegistry()
	room, err := reg.GetOrCreate("1111")
	require.NoError(t, err)

	reg.Close()

	select {
	case <-room.Done():
	case <-time.After(time.Second):
		t.Fatal("room still running")
	}
	_, err = reg.GetOrCreate("2222")
	assert.ErrorIs(t, err, ErrRoomClosed)
	assert.Zero(t, reg.Stats().Rooms)
}

func TestMemoryStore_DeleteOnlyMatchingRoom(t *testing.T) {
	s := NewMemoryStore()
	old := NewRoom("1000", RoomOptions{Logger: zerolog.Nop()})
	cur := NewRoom("1000", RoomOptions{Logger: zerolog.Nop()})
	s.Put(cur)

	assert.False(t, s.Delete("1000", old))
	_, ok := s.Get("1000")
	assert.True(t, ok)
	assert.True(t, s.Delete("1000", cur))
	assert.Empty(t, s.List())
}

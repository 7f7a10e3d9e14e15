package game

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// RoomStore holds the live rooms. The registry serialises writes; reads may
// come from any goroutine.
type RoomStore interface {
	Get(id string) (*Room, bool)
	Put(room *Room)
	// Delete removes id only while it still maps to room.
	Delete(id string, room *Room) bool
	List() []*Room
}

type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*Room)}
}

func (s *MemoryStore) Get(id string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	return room, ok
}

func (s *MemoryStore) Put(room *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
}

func (s *MemoryStore) Delete(id string, room *Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.rooms[id]; !ok || cur != room {
		return false
	}
	delete(s.rooms, id)
	return true
}

func (s *MemoryStore) List() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type RegistryOptions struct {
	Room   RoomOptions
	Logger zerolog.Logger
	Rand   *rand.Rand
}

// Registry creates rooms on first join and forgets them once they empty.
type Registry struct {
	mu      sync.Mutex
	store   RoomStore
	opts    RoomOptions
	log     zerolog.Logger
	rng     *rand.Rand
	closed  bool
	created atomic.Int64
}

func NewRegistry(store RoomStore, opts RegistryOptions) *Registry {
	if store == nil {
		store = NewMemoryStore()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Registry{
		store: store,
		opts:  opts.Room,
		log:   opts.Logger.With().Str("component", "registry").Logger(),
		rng:   opts.Rand,
	}
}

// GetOrCreate returns the room with the given code, creating it if needed.
// An empty id allocates a fresh code.
func (g *Registry) GetOrCreate(id string) (*Room, error) {
	if err := ValidateRoomID(id); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, ErrRoomClosed
	}

	if id == "" {
		code, err := g.freeCode()
		if err != nil {
			return nil, err
		}
		id = code
	}
	if room, ok := g.store.Get(id); ok {
		return room, nil
	}
	return g.startRoom(id), nil
}

func (g *Registry) Get(id string) (*Room, bool) {
	return g.store.Get(id)
}

func (g *Registry) freeCode() (string, error) {
	for i := 0; i < 100; i++ {
		code := fmt.Sprintf("%04d", g.rng.Intn(10000))
		if _, taken := g.store.Get(code); !taken {
			return code, nil
		}
	}
	for n := 0; n < 10000; n++ {
		code := fmt.Sprintf("%04d", n)
		if _, taken := g.store.Get(code); !taken {
			return code, nil
		}
	}
	return "", ErrRoomsExhausted
}

func (g *Registry) startRoom(id string) *Room {
	opts := g.opts
	opts.Logger = g.opts.Logger.With().Str("component", "room").Logger()
	opts.OnEmpty = g.remove
	opts.Synchronous = false
	room := NewRoom(id, opts)
	g.store.Put(room)
	g.created.Add(1)
	go room.Run()

	g.log.Info().Str("room", id).Msg("room created")
	return room
}

func (g *Registry) remove(room *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.store.Delete(room.ID, room) {
		g.log.Info().Str("room", room.ID).Msg("room deleted")
	}
}

type Stats struct {
	Rooms        int   `json:"activeRooms"`
	PlayingRooms int   `json:"playingRooms"`
	Players      int   `json:"activePlayers"`
	TotalRooms   int64 `json:"totalRooms"`
}

func (g *Registry) Stats() Stats {
	rooms := g.store.List()
	st := Stats{Rooms: len(rooms), TotalRooms: g.created.Load()}
	for _, room := range rooms {
		if room.Playing() {
			st.PlayingRooms++
		}
		st.Players += room.ActivePlayers()
	}
	return st
}

// Close shuts every room down and refuses new ones.
func (g *Registry) Close() {
	g.mu.Lock()
	g.closed = true
	rooms := g.store.List()
	g.mu.Unlock()

	for _, room := range rooms {
		room.Close()
		g.store.Delete(room.ID, room)
	}
	g.log.Info().Int("rooms", len(rooms)).Msg("registry closed")
}

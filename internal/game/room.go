package game

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// GameResult is one player's contribution to the cross-game leaderboard.
type GameResult struct {
	PlayerName   string
	Score        int
	WordsGuessed int
}

// ResultRecorder persists finished games. Implementations must honour ctx;
// errors are theirs to log, the room never waits on a retry.
type ResultRecorder interface {
	RecordGame(ctx context.Context, results []GameResult)
}

type RoomConfig struct {
	ReconnectGrace     time.Duration
	RoundEndDelay      time.Duration
	MinMessageInterval time.Duration
	RecordTimeout      time.Duration
}

func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		ReconnectGrace:     30 * time.Second,
		RoundEndDelay:      3 * time.Second,
		MinMessageInterval: 500 * time.Millisecond,
		RecordTimeout:      5 * time.Second,
	}
}

type RoomOptions struct {
	Config   RoomConfig
	Clock    Clock
	Logger   zerolog.Logger
	Recorder ResultRecorder
	Rand     *rand.Rand
	// Synchronous runs every task on the calling goroutine instead of the
	// room loop; Run is not used. The caller must not touch the room from
	// more than one goroutine at a time.
	Synchronous bool
	// OnEmpty is called from the room loop once the last player has been
	// removed and the room has shut down.
	OnEmpty func(*Room)
}

// Room is a single game session. Every mutation runs on the room's own loop
// (see Run), one task at a time, so none of the fields below the channel
// block are locked.
type Room struct {
	ID string

	cfg      RoomConfig
	clock    Clock
	log      zerolog.Logger
	recorder ResultRecorder
	rng      *rand.Rand
	onEmpty  func(*Room)
	sched    *Scheduler

	inbox       chan func()
	done        chan struct{}
	closeOnce   sync.Once
	stopping    bool
	synchronous bool

	players         []*Player
	status          Status
	settings        Settings
	currentRound    int
	turnWithinRound int
	drawer          *Player
	word            string
	timeLeft        int
	turnActive      bool
	drawnThisRound  map[string]bool
	turnPoints      map[string]int
	roundEnd        *Handle

	playing atomic.Bool
	active  atomic.Int32
}

func NewRoom(id string, opts RoomOptions) *Room {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(opts.Clock.Now().UnixNano()))
	}
	if opts.Config == (RoomConfig{}) {
		opts.Config = DefaultRoomConfig()
	}

	r := &Room{
		ID:              id,
		cfg:             opts.Config,
		clock:           opts.Clock,
		log:             opts.Logger.With().Str("room", id).Logger(),
		recorder:        opts.Recorder,
		rng:             opts.Rand,
		onEmpty:         opts.OnEmpty,
		synchronous:     opts.Synchronous,
		inbox:           make(chan func(), 64),
		done:            make(chan struct{}),
		status:          StatusWaiting,
		settings:        DefaultSettings(),
		turnWithinRound: -1,
		drawnThisRound:  map[string]bool{},
		turnPoints:      map[string]int{},
	}
	r.sched = NewScheduler(r.clock, r.post)
	return r
}

// Run processes queued tasks until the room shuts down.
func (r *Room) Run() {
	for {
		select {
		case task := <-r.inbox:
			r.safe(task)
		case <-r.done:
			return
		}
	}
}

// Done is closed once the room has shut down.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) safe(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("room task panicked")
		}
		r.publish()
		if r.stopping {
			r.closeOnce.Do(func() { close(r.done) })
		}
	}()
	task()
}

// post hands fn to the room loop. Timer callbacks use it, so it never blocks
// past shutdown.
func (r *Room) post(fn func()) {
	if r.synchronous {
		r.safe(fn)
		return
	}
	select {
	case r.inbox <- fn:
	case <-r.done:
	}
}

// call runs fn on the room loop and waits for its result.
func (r *Room) call(ctx context.Context, fn func() error) error {
	if r.isClosed() {
		return ErrRoomClosed
	}
	if r.synchronous {
		var err error
		r.safe(func() { err = r.run(ctx, fn) })
		return err
	}

	errc := make(chan error, 1)
	task := func() {
		err := r.run(ctx, fn)
		r.publish()
		errc <- err
	}

	select {
	case r.inbox <- task:
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// A queued task always reports back, so the caller never misses a
	// change it made. The task itself drops fn if ctx expired in the queue.
	select {
	case err := <-errc:
		return err
	case <-r.done:
		select {
		case err := <-errc:
			return err
		default:
			return ErrRoomClosed
		}
	}
}

func (r *Room) run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.guard(fn)
}

func (r *Room) guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("room handler panicked")
			err = ErrInternal
		}
	}()
	return fn()
}

func (r *Room) isClosed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// publish copies the figures read by Stats out of the loop.
func (r *Room) publish() {
	r.playing.Store(r.status == StatusPlaying)
	r.active.Store(int32(r.activeCount()))
}

func (r *Room) Playing() bool     { return r.playing.Load() }
func (r *Room) ActivePlayers() int { return int(r.active.Load()) }

func (r *Room) Join(ctx context.Context, name string, conn Conn) (PlayerInfo, error) {
	var info PlayerInfo
	err := r.call(ctx, func() error {
		var err error
		info, err = r.join(name, conn)
		return err
	})
	return info, err
}

// Disconnect soft-deletes the player if conn is still the one attached to
// them. A stale socket closing after a reconnect is ignored.
func (r *Room) Disconnect(ctx context.Context, playerID string, conn Conn) error {
	return r.call(ctx, func() error {
		p := r.playerByID(playerID)
		if p == nil || p.Disconnected || (conn != nil && p.conn != conn) {
			return nil
		}
		r.disconnect(p, "%s left the room")
		return nil
	})
}

// Leave detaches the player on request. The socket stays open so the client
// can join another room.
func (r *Room) Leave(ctx context.Context, playerID string) error {
	return r.withPlayer(ctx, playerID, func(p *Player) error {
		r.disconnect(p, "%s left the room")
		return nil
	})
}

func (r *Room) ToggleReady(ctx context.Context, playerID string) error {
	return r.withPlayer(ctx, playerID, r.toggleReady)
}

func (r *Room) UpdateSettings(ctx context.Context, playerID string, u SettingsUpdate) error {
	return r.withPlayer(ctx, playerID, func(p *Player) error {
		return r.updateSettings(p, u)
	})
}

func (r *Room) Guess(ctx context.Context, playerID, text string) error {
	return r.withPlayer(ctx, playerID, func(p *Player) error {
		return r.guess(p, text)
	})
}

func (r *Room) Chat(ctx context.Context, playerID, content string) error {
	return r.withPlayer(ctx, playerID, func(p *Player) error {
		return r.chat(p, content)
	})
}

// Relay forwards a drawing payload from the drawer to everyone else.
func (r *Room) Relay(ctx context.Context, playerID string, payload json.RawMessage) error {
	return r.withPlayer(ctx, playerID, func(p *Player) error {
		return r.relay(p, payload)
	})
}

func (r *Room) StartNewGame(ctx context.Context, playerID string) error {
	return r.withPlayer(ctx, playerID, r.startNewGame)
}

func (r *Room) Kick(ctx context.Context, playerID, target string) error {
	return r.withPlayer(ctx, playerID, func(p *Player) error {
		return r.kick(p, target)
	})
}

// Close cancels the room's timers and stops its loop. Players are not
// notified; their connections are closed by the transport.
func (r *Room) Close() {
	_ = r.call(context.Background(), func() error {
		r.shutdown(false)
		return nil
	})
}

func (r *Room) withPlayer(ctx context.Context, playerID string, fn func(*Player) error) error {
	return r.call(ctx, func() error {
		p := r.playerByID(playerID)
		if p == nil || p.Disconnected {
			return ErrPlayerNotFound
		}
		return fn(p)
	})
}

// shutdown stops every timer. The loop exits once the current task returns,
// so the caller's result is delivered before Done is closed.
func (r *Room) shutdown(notify bool) {
	r.sched.Cancel()
	r.roundEnd.Cancel()
	for _, p := range r.players {
		p.grace.Cancel()
	}
	r.stopping = true
	r.log.Info().Msg("room closed")
	if notify && r.onEmpty != nil {
		r.onEmpty(r)
	}
}

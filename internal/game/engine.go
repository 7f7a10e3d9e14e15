package game

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

func (r *Room) tryStartGame() {
	if r.status != StatusWaiting {
		return
	}
	active := r.activePlayers()
	if len(active) < MinPlayers {
		return
	}
	for _, p := range active {
		if !p.IsReady {
			return
		}
	}

	r.status = StatusPlaying
	r.currentRound = 0
	r.turnWithinRound = -1
	r.drawnThisRound = map[string]bool{}
	for _, p := range r.players {
		p.Score = 0
		p.WordsGuessed = 0
		p.HasGuessedCorrectly = false
		p.IsDrawing = false
	}

	r.log.Info().Int("players", len(active)).Int("max_rounds", r.settings.MaxRounds).Msg("game started")
	r.system("Game started!")
	r.startNewTurn()
}

// startNewTurn hands the pencil to the next active player who has not drawn
// in the current round. When everyone has, a new round begins; past the last
// round the game ends instead.
func (r *Room) startNewTurn() {
	if r.status != StatusPlaying {
		return
	}
	r.roundEnd.Cancel()
	r.roundEnd = nil

	active := r.activePlayers()
	if len(active) < MinPlayers {
		r.endGame()
		return
	}

	next, idx := r.nextDrawer(active)
	if next == nil || r.currentRound == 0 {
		r.currentRound++
		r.drawnThisRound = map[string]bool{}
		next, idx = active[0], 0
	}
	if r.currentRound > r.settings.MaxRounds {
		r.currentRound = r.settings.MaxRounds
		r.endGame()
		return
	}

	for _, p := range r.players {
		p.IsDrawing = false
		p.HasGuessedCorrectly = false
	}
	next.IsDrawing = true
	r.drawer = next
	r.drawnThisRound[next.ID] = true
	r.turnWithinRound = idx
	r.word = pickWord(r.rng, r.settings)
	r.turnPoints = map[string]int{}
	r.timeLeft = r.settings.TimePerRound
	r.turnActive = true

	r.log.Debug().Int("round", r.currentRound).Int("turn", idx).Str("drawer", next.Name).Msg("turn started")
	r.broadcast(ClearMessage{Type: "clear"})
	r.broadcastState()
	r.broadcastPlayers()
	r.systemf("%s is drawing now!", next.Name)

	r.sched.Start(time.Duration(r.settings.TimePerRound)*time.Second, r.onTick, r.onTurnExpired)
}

func (r *Room) nextDrawer(active []*Player) (*Player, int) {
	for i, p := range active {
		if !r.drawnThisRound[p.ID] {
			return p, i
		}
	}
	return nil, -1
}

func (r *Room) onTick(remaining time.Duration) {
	r.timeLeft = int(remaining / time.Second)
	r.broadcastState()
}

func (r *Room) onTurnExpired() {
	r.timeLeft = 0
	r.system("Time's up!")
	r.endRound()
}

// endRound reveals the word, reports the turn's points and queues the next
// turn after the round-end delay.
func (r *Room) endRound() {
	if !r.turnActive {
		return
	}
	r.turnActive = false
	r.sched.Cancel()
	for _, p := range r.players {
		p.IsDrawing = false
	}

	r.log.Debug().Int("round", r.currentRound).Interface("points", r.turnPoints).Msg("turn ended")
	r.broadcastState()
	r.systemf("The word was %q", r.word)
	r.system(r.ledgerSummary())
	r.broadcastPlayers()

	r.roundEnd.Cancel()
	r.roundEnd = r.sched.After(r.cfg.RoundEndDelay, r.startNewTurn)
}

func (r *Room) ledgerSummary() string {
	if len(r.turnPoints) == 0 {
		return "Nobody scored this turn"
	}
	parts := make([]string, 0, len(r.turnPoints))
	for _, p := range r.players {
		if pts, ok := r.turnPoints[p.ID]; ok {
			parts = append(parts, fmt.Sprintf("%s +%d", p.Name, pts))
		}
	}
	return "Points this turn: " + strings.Join(parts, ", ")
}

func (r *Room) endGame() {
	r.sched.Cancel()
	r.roundEnd.Cancel()
	r.roundEnd = nil
	r.turnActive = false
	r.status = StatusEnded
	r.drawer = nil
	r.word = ""
	r.timeLeft = 0

	standings := r.standings()
	r.recordResults(standings)

	for _, p := range r.players {
		p.IsReady = false
		p.IsDrawing = false
		p.HasGuessedCorrectly = false
	}

	r.log.Info().Int("rounds", r.currentRound).Int("players", len(standings)).Msg("game ended")
	r.broadcast(LeaderboardMessage{Type: "gameLeaderboard", Players: standings})
	if len(standings) > 0 {
		r.systemf("Game over! %s wins with %d points", standings[0].Name, standings[0].Score)
	} else {
		r.system("Game over!")
	}
	r.broadcastState()
	r.broadcastPlayers()
}

// standings ranks active players by score, ties broken by join order.
func (r *Room) standings() []Standing {
	active := r.activePlayers()
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Score > active[j].Score
	})
	out := make([]Standing, 0, len(active))
	for i, p := range active {
		out = append(out, Standing{
			Rank:         i + 1,
			ID:           p.ID,
			Name:         p.Name,
			Score:        p.Score,
			WordsGuessed: p.WordsGuessed,
		})
	}
	return out
}

func (r *Room) recordResults(standings []Standing) {
	if r.recorder == nil || len(standings) == 0 {
		return
	}
	results := make([]GameResult, 0, len(standings))
	for _, s := range standings {
		results = append(results, GameResult{PlayerName: s.Name, Score: s.Score, WordsGuessed: s.WordsGuessed})
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.RecordTimeout)
	defer cancel()
	r.recorder.RecordGame(ctx, results)
}

func (r *Room) startNewGame(p *Player) error {
	if !p.IsPartyLeader {
		return ErrNotLeader
	}
	if r.status != StatusEnded {
		return ErrGameNotEnded
	}

	r.status = StatusWaiting
	r.currentRound = 0
	r.turnWithinRound = -1
	r.drawnThisRound = map[string]bool{}
	for _, pl := range r.players {
		pl.Score = 0
		pl.WordsGuessed = 0
		pl.IsReady = false
	}

	r.log.Info().Msg("new game lobby")
	r.systemf("%s started a new game, get ready!", p.Name)
	r.broadcastState()
	r.broadcastPlayers()
	return nil
}

func (r *Room) toggleReady(p *Player) error {
	switch r.status {
	case StatusPlaying:
		return ErrGameInProgress
	case StatusEnded:
		return ErrAwaitingNewGame
	}
	p.IsReady = !p.IsReady
	r.broadcastPlayers()
	r.tryStartGame()
	return nil
}

func (r *Room) updateSettings(p *Player, u SettingsUpdate) error {
	if !p.IsPartyLeader {
		return ErrNotLeader
	}
	if r.status == StatusPlaying {
		return ErrGameInProgress
	}
	r.settings = r.settings.Apply(u)

	r.log.Info().Int("max_rounds", r.settings.MaxRounds).Int("time_per_round", r.settings.TimePerRound).
		Int("custom_words", len(r.settings.CustomWords)).Msg("settings updated")
	r.broadcastState()
	r.systemf("Settings updated: %d rounds, %ds per turn, %d custom words",
		r.settings.MaxRounds, r.settings.TimePerRound, len(r.settings.CustomWords))
	return nil
}

func (r *Room) stateFor(p *Player) GameStateMessage {
	v := GameStateView{
		Status:          r.status,
		CurrentRound:    r.currentRound,
		MaxRounds:       r.settings.MaxRounds,
		TurnWithinRound: r.turnWithinRound,
		TimeLeft:        r.timeLeft,
		TimePerRound:    r.settings.TimePerRound,
		Settings:        r.settings,
	}
	if r.status == StatusPlaying && r.drawer != nil {
		v.CurrentDrawer = r.drawer.ID
		v.CurrentDrawerName = r.drawer.Name
		v.WordLength = utf8.RuneCountInString(r.word)
		if p == r.drawer || !r.turnActive {
			v.Word = r.word
		}
	}
	return GameStateMessage{Type: "gameState", GameState: v, PlayerInfo: p.Info()}
}

func (r *Room) broadcastState() {
	for _, p := range r.players {
		send(p, r.stateFor(p))
	}
}

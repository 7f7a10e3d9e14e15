package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func (r *Room) join(name string, conn Conn) (PlayerInfo, error) {
	name, err := ValidateName(name)
	if err != nil {
		r.abandonIfEmpty()
		return PlayerInfo{}, err
	}

	if existing := r.playerByName(name); existing != nil {
		if existing.active() {
			return PlayerInfo{}, ErrNameTaken
		}
		if r.activeCount() >= MaxPlayers {
			return PlayerInfo{}, ErrRoomFull
		}
		r.reconnect(existing, conn)
		return existing.Info(), nil
	}

	if r.activeCount() >= MaxPlayers {
		return PlayerInfo{}, ErrRoomFull
	}

	p := newPlayer(uuid.NewString(), name, conn, r.cfg.MinMessageInterval)
	r.players = append(r.players, p)
	r.ensureLeader()

	r.log.Info().Str("player", p.Name).Str("player_id", p.ID).Msg("player joined")
	r.sendWelcome(p)
	r.broadcastPlayers()
	r.systemf("%s joined the room", p.Name)
	return p.Info(), nil
}

func (r *Room) reconnect(p *Player, conn Conn) {
	p.grace.Cancel()
	p.grace = nil
	p.Disconnected = false
	p.IsReady = false
	p.conn = conn
	r.ensureLeader()

	r.log.Info().Str("player", p.Name).Msg("player reconnected")
	r.sendWelcome(p)
	r.broadcastPlayers()
	r.systemf("%s reconnected", p.Name)
}

func (r *Room) sendWelcome(p *Player) {
	send(p, JoinedMessage{
		Type:          "joined",
		RoomID:        r.ID,
		PlayerDetails: p.Info(),
		Settings:      r.settings,
	})
	send(p, r.stateFor(p))
}

// abandonIfEmpty shuts down a room that was created for a join which then
// failed.
func (r *Room) abandonIfEmpty() {
	if len(r.players) == 0 {
		r.shutdown(true)
	}
}

// disconnect keeps the player in the room for the reconnect grace period
// and repairs the game around their absence.
func (r *Room) disconnect(p *Player, format string) {
	wasDrawer := r.drawer == p && r.turnActive
	wasLeader := p.IsPartyLeader

	p.Disconnected = true
	p.IsReady = false
	p.IsDrawing = false
	p.conn = nil
	p.grace.Cancel()
	p.grace = r.sched.After(r.cfg.ReconnectGrace, func() { r.removePlayer(p) })

	r.ensureLeader()
	r.log.Info().Str("player", p.Name).Msg("player disconnected")
	r.broadcastPlayers()
	r.systemf(format, p.Name)
	if wasLeader {
		if leader := r.leader(); leader != nil {
			r.systemf("%s is now the party leader", leader.Name)
		}
	}

	switch r.status {
	case StatusPlaying:
		switch {
		case r.activeCount() < MinPlayers:
			r.system("Not enough players left, game over")
			r.endGame()
		case wasDrawer:
			r.system("The drawer left, round over")
			r.endRound()
		case r.turnActive && r.allGuessed():
			r.endRound()
		}
	case StatusWaiting:
		r.tryStartGame()
	}
}

// removePlayer hard-deletes a player whose grace period ran out.
func (r *Room) removePlayer(p *Player) {
	if !p.Disconnected {
		return
	}
	for i, cur := range r.players {
		if cur == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	if r.drawer == p {
		r.drawer = nil
	}
	delete(r.drawnThisRound, p.ID)
	r.log.Info().Str("player", p.Name).Msg("player removed after grace period")

	if len(r.players) == 0 {
		r.shutdown(true)
		return
	}
	r.ensureLeader()
	r.broadcastPlayers()
}

func (r *Room) kick(req *Player, targetName string) error {
	if !req.IsPartyLeader {
		return ErrNotLeader
	}
	target := r.playerByName(strings.TrimSpace(targetName))
	if target == nil || !target.active() {
		return ErrPlayerNotFound
	}
	if target == req {
		return ErrCannotKickSelf
	}

	send(target, KickedMessage{Type: "kicked", Reason: "You were kicked by the party leader"})
	if target.conn != nil {
		target.conn.Close()
	}
	r.log.Info().Str("player", target.Name).Str("by", req.Name).Msg("player kicked")
	r.disconnect(target, "%s was kicked from the room")
	return nil
}

// ensureLeader keeps exactly one active leader. A disconnected leader keeps
// the flag only while nobody else is around to take it.
func (r *Room) ensureLeader() {
	var current *Player
	for _, p := range r.players {
		if p.IsPartyLeader && p.active() {
			current = p
			break
		}
	}
	if current == nil {
		current = r.firstActive()
		if current == nil {
			return
		}
	}
	for _, p := range r.players {
		p.IsPartyLeader = p == current
	}
}

func (r *Room) leader() *Player {
	for _, p := range r.players {
		if p.IsPartyLeader && p.active() {
			return p
		}
	}
	return nil
}

func (r *Room) firstActive() *Player {
	for _, p := range r.players {
		if p.active() {
			return p
		}
	}
	return nil
}

func (r *Room) activePlayers() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.active() {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) activeCount() int {
	n := 0
	for _, p := range r.players {
		if p.active() {
			n++
		}
	}
	return n
}

func (r *Room) playerByID(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// playerByName prefers an active player so a name freed by a disconnect
// resolves to whoever holds it now.
func (r *Room) playerByName(name string) *Player {
	var found *Player
	for _, p := range r.players {
		if !strings.EqualFold(p.Name, name) {
			continue
		}
		if p.active() {
			return p
		}
		if found == nil {
			found = p
		}
	}
	return found
}

func (r *Room) playerInfos() []PlayerInfo {
	out := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.Info())
	}
	return out
}

func (r *Room) broadcast(msg Message) {
	for _, p := range r.players {
		send(p, msg)
	}
}

func (r *Room) broadcastExcept(skip *Player, msg Message) {
	for _, p := range r.players {
		if p != skip {
			send(p, msg)
		}
	}
}

func (r *Room) broadcastPlayers() {
	r.broadcast(PlayerListMessage{Type: "playerList", Players: r.playerInfos()})
}

func (r *Room) system(content string) {
	r.broadcast(newChat(ChatSystem, "", content, r.clock.Now()))
}

func (r *Room) systemf(format string, args ...any) {
	r.system(fmt.Sprintf(format, args...))
}

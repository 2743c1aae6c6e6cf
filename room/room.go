// room/room.go
package room

import (
	"crypto/rand"
	"encoding/hex"
	"sort"
	"time"
)

// Phase 表示房间的业务状态
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlaying
	PhaseFinished
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Player 是房间内的一名成员
type Player struct {
	ID      string
	Name    string
	Ready   bool
	Taps    int
	JoinSeq uint64 // assigned at join time, drives roster order and creator succession
}

// Room 是游戏房间的核心结构
type Room struct {
	ID        string
	Phase     Phase
	Players   map[string]*Player // sessionID -> player
	CreatorID string
	TimeLeft  int
	CreatedAt time.Time

	timerID  int64  // 0 when no countdown is running
	timerGen uint64 // bumped on every timer start and stop
	nextSeq  uint64
}

func newRoom(id string, roundSeconds int) *Room {
	return &Room{
		ID:        id,
		Phase:     PhaseWaiting,
		Players:   make(map[string]*Player),
		TimeLeft:  roundSeconds,
		CreatedAt: time.Now(),
	}
}

// addPlayer inserts a new not-ready member with zero taps.
func (r *Room) addPlayer(sessionID, name string) *Player {
	r.nextSeq++
	p := &Player{
		ID:      sessionID,
		Name:    name,
		JoinSeq: r.nextSeq,
	}
	r.Players[sessionID] = p
	return p
}

func (r *Room) removePlayer(sessionID string) {
	delete(r.Players, sessionID)
}

// Roster returns the members ordered by join time. Broadcast payloads and
// creator succession both rely on this ordering being stable.
func (r *Room) Roster() []*Player {
	players := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].JoinSeq < players[j].JoinSeq
	})
	return players
}

// allReady reports whether every current member has toggled ready. A lone
// member counts: no minimum player count is enforced.
func (r *Room) allReady() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// successor picks the earliest-joined remaining member as the new creator.
func (r *Room) successor() string {
	var best *Player
	for _, p := range r.Players {
		if best == nil || p.JoinSeq < best.JoinSeq {
			best = p
		}
	}
	if best == nil {
		return ""
	}
	return best.ID
}

// resetRound clears per-round player state for a fresh Waiting phase.
func (r *Room) resetRound(roundSeconds int) {
	for _, p := range r.Players {
		p.Ready = false
		p.Taps = 0
	}
	r.TimeLeft = roundSeconds
}

// newRoomID returns a short shareable identifier: 8 hex characters from a
// cryptographically strong source. Collisions are not re-checked against
// the registry; at 32 bits of entropy and room lifetimes of minutes the
// probability is negligible. Randomness failure is fatal.
func newRoomID() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("room id generation failed: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

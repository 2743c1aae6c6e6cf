// room/manager.go
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/taparena/logger"
	"github.com/wfunc/taparena/models"
)

// DefaultRoundSeconds is the countdown length of one tap round.
const DefaultRoundSeconds = 15

var (
	// ErrRoomNotFound is surfaced to a joiner naming an unknown room id.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomNotJoinable is surfaced when the target room already left
	// the waiting phase.
	ErrRoomNotJoinable = errors.New("room not joinable")
)

// Manager 管理所有房间，是房间与成员归属的唯一权威
//
// A single mutex serializes every handler and every timer tick, across all
// rooms. That is the whole concurrency model: no room or player is ever
// mutated outside this lock.
type Manager struct {
	mu           sync.Mutex
	rooms        map[string]*Room  // roomID -> room
	members      map[string]string // sessionID -> roomID
	scheduler    Scheduler
	broadcaster  Broadcaster
	roundSink    RoundSink
	roundSeconds int
}

// NewManager 创建一个新的房间管理器
func NewManager(scheduler Scheduler, broadcaster Broadcaster, roundSeconds int) *Manager {
	if roundSeconds <= 0 {
		roundSeconds = DefaultRoundSeconds
	}
	return &Manager{
		rooms:        make(map[string]*Room),
		members:      make(map[string]string),
		scheduler:    scheduler,
		broadcaster:  broadcaster,
		roundSeconds: roundSeconds,
	}
}

// SetRoundSink registers the receiver for finished-round records.
func (m *Manager) SetRoundSink(sink RoundSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundSink = sink
}

// CreateRoom makes the requester the sole member and creator of a fresh
// waiting room. A requester already in a room leaves it first, exactly as
// if it had disconnected. Returns the new room id.
func (m *Manager) CreateRoom(sessionID, name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leaveLocked(sessionID)

	r := newRoom(newRoomID(), m.roundSeconds)
	r.addPlayer(sessionID, name)
	r.CreatorID = sessionID

	m.rooms[r.ID] = r
	m.members[sessionID] = r.ID

	logger.Log.Infof("Session %s created room %s", sessionID, r.ID)

	m.broadcaster.SendState(r, sessionID)
	return r.ID
}

// JoinRoom adds the requester to an existing waiting room. On error the
// registry is left untouched and the requester stays wherever it was.
func (m *Manager) JoinRoom(sessionID, roomID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.rooms[roomID]
	if !exists {
		return ErrRoomNotFound
	}
	if r.Phase != PhaseWaiting {
		return ErrRoomNotJoinable
	}

	// Re-joining the current room is a state refresh, not a membership
	// change. Going through leave would briefly empty a solo room and
	// destroy it.
	if m.members[sessionID] == roomID {
		m.broadcaster.SendState(r, sessionID)
		return nil
	}

	m.leaveLocked(sessionID)

	r.addPlayer(sessionID, name)
	m.members[sessionID] = r.ID

	logger.Log.Infof("Session %s joined room %s (%d players)", sessionID, r.ID, len(r.Players))

	m.broadcaster.BroadcastState(r)
	return nil
}

// ToggleReady flips the requester's ready flag. When the flip makes every
// member ready the round starts. Ignored outside the waiting phase; a
// client tapping a stale button is a race, not an error.
func (m *Manager) ToggleReady(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.memberRoomLocked(sessionID)
	if r == nil || r.Phase != PhaseWaiting {
		return
	}

	p := r.Players[sessionID]
	p.Ready = !p.Ready

	if r.allReady() {
		m.startRoundLocked(r)
	}

	m.broadcaster.BroadcastState(r)
}

// Tap counts one score increment for the requester. Reports whether the
// tap landed in a running round.
func (m *Manager) Tap(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.memberRoomLocked(sessionID)
	if r == nil || r.Phase != PhasePlaying {
		return false
	}

	p := r.Players[sessionID]
	p.Taps++

	m.broadcaster.BroadcastTapUpdate(r, sessionID, p.Taps)
	return true
}

// Restart re-arms the waiting phase: ready flags and taps cleared, timer
// cancelled if one is running. Only the creator may do this, from any
// phase.
func (m *Manager) Restart(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.memberRoomLocked(sessionID)
	if r == nil || r.CreatorID != sessionID {
		return
	}

	m.stopTimerLocked(r)
	r.Phase = PhaseWaiting
	r.resetRound(m.roundSeconds)

	logger.Log.Infof("Room %s re-armed by creator %s", r.ID, sessionID)

	m.broadcaster.BroadcastState(r)
}

// Leave removes the requester from its room, explicit leave and disconnect
// alike. The last member out destroys the room; a departing creator hands
// the role to the earliest-joined survivor in the same operation.
func (m *Manager) Leave(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveLocked(sessionID)
}

// RoomCount returns the number of live rooms.
func (m *Manager) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// MemberRoom returns the room id the session currently belongs to.
func (m *Manager) MemberRoom(sessionID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	roomID, ok := m.members[sessionID]
	return roomID, ok
}

// --- internals, all called with mu held ---

func (m *Manager) memberRoomLocked(sessionID string) *Room {
	roomID, ok := m.members[sessionID]
	if !ok {
		return nil
	}
	return m.rooms[roomID]
}

func (m *Manager) leaveLocked(sessionID string) {
	roomID, ok := m.members[sessionID]
	if !ok {
		return
	}
	delete(m.members, sessionID)

	r := m.rooms[roomID]
	if r == nil {
		return
	}

	wasCreator := r.CreatorID == sessionID
	r.removePlayer(sessionID)

	if len(r.Players) == 0 {
		m.destroyLocked(r)
		return
	}

	if wasCreator {
		r.CreatorID = r.successor()
		logger.Log.Infof("Room %s creator left, %s takes over", r.ID, r.CreatorID)
	}

	m.broadcaster.BroadcastState(r)
}

func (m *Manager) destroyLocked(r *Room) {
	m.stopTimerLocked(r)
	delete(m.rooms, r.ID)
	logger.Log.Infof("Room %s destroyed", r.ID)
}

func (m *Manager) startRoundLocked(r *Room) {
	for _, p := range r.Players {
		p.Taps = 0
	}
	r.TimeLeft = m.roundSeconds
	r.Phase = PhasePlaying

	// The generation guard makes a tick that was already in flight when
	// the timer got cancelled a no-op instead of a stale mutation.
	r.timerGen++
	gen := r.timerGen
	r.timerID = m.scheduler.AddTimer(time.Second, time.Second, func() {
		m.onTick(r.ID, gen)
	})

	logger.Log.Infof("Room %s round started, %d players, %ds", r.ID, len(r.Players), r.TimeLeft)
}

func (m *Manager) stopTimerLocked(r *Room) {
	if r.timerID == 0 {
		return
	}
	m.scheduler.RemoveTimer(r.timerID)
	r.timerID = 0
	r.timerGen++
}

// onTick runs once per second while a round is playing. The terminal tick
// clears the timer, flips the phase and hands the record off, all inside
// the same broadcast step.
func (m *Manager) onTick(roomID string, gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.rooms[roomID]
	if r == nil || r.Phase != PhasePlaying || r.timerGen != gen {
		return
	}

	r.TimeLeft--
	if r.TimeLeft <= 0 {
		r.TimeLeft = 0
		m.stopTimerLocked(r)
		r.Phase = PhaseFinished
		logger.Log.Infof("Room %s round finished", r.ID)
		m.recordRoundLocked(r)
	}

	m.broadcaster.BroadcastState(r)
}

func (m *Manager) recordRoundLocked(r *Room) {
	if m.roundSink == nil {
		return
	}

	best := 0
	for _, p := range r.Players {
		if p.Taps > best {
			best = p.Taps
		}
	}

	record := models.RoundRecord{
		RoomID:     r.ID,
		Duration:   m.roundSeconds,
		FinishedAt: time.Now(),
	}
	for _, p := range r.Roster() {
		record.Players = append(record.Players, models.PlayerResult{
			PlayerID: p.ID,
			Name:     p.Name,
			Taps:     p.Taps,
			Winner:   p.Taps == best && best > 0,
		})
	}

	// Fire and forget: history must never gate a tick.
	go m.roundSink.RoundFinished(record)
}

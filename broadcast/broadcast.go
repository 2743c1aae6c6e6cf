// broadcast/broadcast.go
package broadcast

import (
	"github.com/wfunc/taparena/network"
	"github.com/wfunc/taparena/room"
	"github.com/wfunc/taparena/session"
)

// RoomBroadcaster 基于房间的广播器
//
// Delivery is fire and forget per recipient: a member whose connection
// died between registry lookup and write is simply unreachable, and the
// disconnect path prunes it independently.
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		sessionManager: sessionManager,
	}
}

// SendState sends the full room snapshot to one member.
func (b *RoomBroadcaster) SendState(r *room.Room, sessionID string) {
	b.send(sessionID, network.EventGameState, b.snapshotFor(r, sessionID))
}

// BroadcastState sends the full room snapshot to every member. IsCreator
// is computed per recipient; everything else is shared.
func (b *RoomBroadcaster) BroadcastState(r *room.Room) {
	roster := rosterStates(r)
	for _, p := range r.Roster() {
		state := network.GameState{
			GameID:    r.ID,
			State:     r.Phase.String(),
			Players:   roster,
			TimeLeft:  r.TimeLeft,
			IsCreator: p.ID == r.CreatorID,
		}
		b.send(p.ID, network.EventGameState, state)
	}
}

// BroadcastTapUpdate pushes one member's new tap count to the whole room
// without re-serializing the roster.
func (b *RoomBroadcaster) BroadcastTapUpdate(r *room.Room, playerID string, taps int) {
	update := network.TapUpdate{PlayerID: playerID, Taps: taps}
	for _, p := range r.Roster() {
		b.send(p.ID, network.EventTapUpdate, update)
	}
}

func (b *RoomBroadcaster) snapshotFor(r *room.Room, sessionID string) network.GameState {
	return network.GameState{
		GameID:    r.ID,
		State:     r.Phase.String(),
		Players:   rosterStates(r),
		TimeLeft:  r.TimeLeft,
		IsCreator: sessionID == r.CreatorID,
	}
}

func (b *RoomBroadcaster) send(sessionID, eventType string, payload interface{}) {
	sess, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return
	}
	if err := sess.Send(eventType, payload); err != nil {
		// 发送失败由断线处理负责清理
		return
	}
}

func rosterStates(r *room.Room) []network.PlayerState {
	roster := r.Roster()
	states := make([]network.PlayerState, 0, len(roster))
	for _, p := range roster {
		states = append(states, network.PlayerState{
			ID:    p.ID,
			Name:  p.Name,
			Ready: p.Ready,
			Taps:  p.Taps,
		})
	}
	return states
}

package room

import (
	"time"

	"github.com/wfunc/taparena/models"
)

// Broadcaster delivers room state to member connections. Defined here to
// break the import cycle between room and broadcast.
type Broadcaster interface {
	// SendState sends a full snapshot of r to a single member.
	SendState(r *Room, sessionID string)
	// BroadcastState sends a full snapshot of r to every member, with
	// per-recipient creator framing.
	BroadcastState(r *Room)
	// BroadcastTapUpdate sends an incremental score event to every member.
	BroadcastTapUpdate(r *Room, playerID string, taps int)
}

// Scheduler is the timing primitive behind the round countdown. The
// production implementation is timer.Manager; tests inject a fake and
// advance ticks by hand.
type Scheduler interface {
	AddTimer(delay time.Duration, interval time.Duration, callback func()) int64
	RemoveTimer(timerId int64)
}

// RoundSink receives the record of every finished round. Implementations
// must not block: the manager hands records off on their own goroutine.
type RoundSink interface {
	RoundFinished(record models.RoundRecord)
}

package room

import (
	"encoding/hex"
	"testing"
)

func TestRoom_AddAndRemovePlayer(t *testing.T) {
	r := newRoom("abcd1234", DefaultRoundSeconds)

	p := r.addPlayer("player1", "Alice")
	if p == nil {
		t.Fatal("addPlayer should return the new player")
	}
	if len(r.Players) != 1 {
		t.Fatalf("Expected player count to be 1, got %d", len(r.Players))
	}
	if p.Ready || p.Taps != 0 {
		t.Error("New players must start not ready with zero taps")
	}

	r.removePlayer("player1")
	if len(r.Players) != 0 {
		t.Fatalf("Expected player count to be 0 after removal, got %d", len(r.Players))
	}
}

func TestRoom_RosterOrder(t *testing.T) {
	r := newRoom("abcd1234", DefaultRoundSeconds)
	r.addPlayer("c", "Carol")
	r.addPlayer("a", "Alice")
	r.addPlayer("b", "Bob")

	roster := r.Roster()
	if len(roster) != 3 {
		t.Fatalf("Expected roster of 3, got %d", len(roster))
	}

	want := []string{"c", "a", "b"}
	for i, p := range roster {
		if p.ID != want[i] {
			t.Errorf("Roster position %d: expected %s, got %s", i, want[i], p.ID)
		}
	}
}

func TestRoom_AllReady(t *testing.T) {
	r := newRoom("abcd1234", DefaultRoundSeconds)

	if r.allReady() {
		t.Error("An empty room must never count as all ready")
	}

	a := r.addPlayer("a", "Alice")
	b := r.addPlayer("b", "Bob")

	if r.allReady() {
		t.Error("No member is ready yet")
	}

	a.Ready = true
	if r.allReady() {
		t.Error("Only one of two members is ready")
	}

	b.Ready = true
	if !r.allReady() {
		t.Error("Every member is ready")
	}
}

func TestRoom_AllReady_SoloMember(t *testing.T) {
	r := newRoom("abcd1234", DefaultRoundSeconds)
	p := r.addPlayer("a", "Alice")
	p.Ready = true

	// No minimum player count: a lone creator can start.
	if !r.allReady() {
		t.Error("A single ready member should count as all ready")
	}
}

func TestRoom_Successor(t *testing.T) {
	r := newRoom("abcd1234", DefaultRoundSeconds)
	r.addPlayer("a", "Alice")
	r.addPlayer("b", "Bob")
	r.addPlayer("c", "Carol")

	r.removePlayer("a")
	if got := r.successor(); got != "b" {
		t.Errorf("Expected earliest remaining member b, got %s", got)
	}

	r.removePlayer("b")
	if got := r.successor(); got != "c" {
		t.Errorf("Expected c, got %s", got)
	}

	r.removePlayer("c")
	if got := r.successor(); got != "" {
		t.Errorf("Expected empty successor for empty room, got %s", got)
	}
}

func TestPhase_String(t *testing.T) {
	cases := map[Phase]string{
		PhaseWaiting:  "waiting",
		PhasePlaying:  "playing",
		PhaseFinished: "finished",
		Phase(99):     "unknown",
	}
	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}

func TestNewRoomID(t *testing.T) {
	id := newRoomID()
	if len(id) != 8 {
		t.Fatalf("Expected 8 hex characters, got %q", id)
	}
	if _, err := hex.DecodeString(id); err != nil {
		t.Fatalf("Room id %q is not hex: %v", id, err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		other := newRoomID()
		if seen[other] {
			t.Fatalf("Room id %q repeated within 100 draws", other)
		}
		seen[other] = true
	}
}

package room

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"arena-server/internal/protocol"
	"arena-server/internal/telemetry"
)

func managerOptions() Options {
	return Options{Seed: 1, Logger: telemetry.Discard()}
}

type testClock struct {
	ns atomic.Int64
}

func newTestClock(start time.Time) *testClock {
	c := &testClock{}
	c.ns.Store(start.UnixNano())
	return c
}

func (c *testClock) Now() time.Time { return time.Unix(0, c.ns.Load()).UTC() }

func (c *testClock) Advance(d time.Duration) { c.ns.Add(int64(d)) }

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFindOrCreateRoomReusesByMode(t *testing.T) {
	m := NewManager(managerOptions())
	defer m.Close("test over")

	a, err := m.FindOrCreateRoom(protocol.ModeClassic)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, _ := m.FindOrCreateRoom(protocol.ModeClassic)
	if a != b {
		t.Fatalf("expected the classic room to be reused")
	}
	w, _ := m.FindOrCreateRoom(protocol.ModeWarfare)
	if w == a || w.Mode != protocol.ModeWarfare {
		t.Fatalf("warfare must get its own room")
	}
	if _, err := m.FindOrCreateRoom("battle-royale"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("unknown mode: %v", err)
	}
}

func TestFindOrCreateRoomAppliesOptionsToNewRoomsOnly(t *testing.T) {
	m := NewManager(managerOptions())
	defer m.Close("test over")

	r, err := m.FindOrCreateRoom(protocol.ModeClassic, WithWorldSize(1000, 800), WithTickRate(120), WithAI(false, 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.world.Width != 1000 || r.world.Height != 800 || r.opts.TickRate != 120 {
		t.Fatalf("options not applied: %vx%v at %d Hz", r.world.Width, r.world.Height, r.opts.TickRate)
	}
	again, _ := m.FindOrCreateRoom(protocol.ModeClassic, WithWorldSize(2000, 2000))
	if again != r {
		t.Fatalf("accepting room should be reused whatever the options")
	}
	w, _ := m.FindOrCreateRoom(protocol.ModeWarfare)
	if w.opts.TickRate != DefaultTickRate || w.world.Width == 1000 {
		t.Fatalf("per-call options leaked into the manager defaults")
	}
}

func TestJoinRoutesPlayer(t *testing.T) {
	m := NewManager(managerOptions())
	defer m.Close("test over")

	fc := newFakeConn()
	r, err := m.Join(protocol.ModeClassic, "p1", fc, protocol.JoinGame{Username: "alice"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if m.RoomOf("p1") != r {
		t.Fatalf("player not routed to its room")
	}
	fc.waitFor(t, protocol.MsgGameJoined)

	if err := m.Route("p1", Chat{PlayerID: "p1", Message: protocol.ChatMessage{Message: "hi"}}); err != nil {
		t.Fatalf("route: %v", err)
	}
	fc.waitFor(t, protocol.MsgChat)

	if err := m.Route("ghost", Leave{PlayerID: "ghost"}); !errors.Is(err, ErrNotInRoom) {
		t.Fatalf("route unknown player: %v", err)
	}

	m.RemovePlayer("p1")
	if m.RoomOf("p1") != nil {
		t.Fatalf("player still routed after removal")
	}
	waitUntil(t, "room to empty", func() bool { return r.PlayerCount() == 0 })
}

func TestFullRoomOverflowsToNewRoom(t *testing.T) {
	opts := managerOptions()
	opts.Capacity = 1
	m := NewManager(opts)
	defer m.Close("test over")

	r1, err := m.Join(protocol.ModeClassic, "p1", newFakeConn(), protocol.JoinGame{Username: "a"})
	if err != nil {
		t.Fatalf("join p1: %v", err)
	}
	r2, err := m.Join(protocol.ModeClassic, "p2", newFakeConn(), protocol.JoinGame{Username: "b"})
	if err != nil {
		t.Fatalf("join p2: %v", err)
	}
	if r1 == r2 {
		t.Fatalf("capacity 1 room admitted two players")
	}
}

func TestMaxRoomsLimitsCreation(t *testing.T) {
	opts := managerOptions()
	opts.Capacity = 1
	opts.MaxRooms = 1
	m := NewManager(opts)
	defer m.Close("test over")

	if _, err := m.Join(protocol.ModeClassic, "p1", newFakeConn(), protocol.JoinGame{Username: "a"}); err != nil {
		t.Fatalf("join p1: %v", err)
	}
	if _, err := m.Join(protocol.ModeClassic, "p2", newFakeConn(), protocol.JoinGame{Username: "b"}); !errors.Is(err, ErrNoRoomAvailable) {
		t.Fatalf("join beyond room limit: %v", err)
	}
}

func TestSweepDrainsThenDestroysEmptyRooms(t *testing.T) {
	clock := newTestClock(t0)
	opts := managerOptions()
	opts.Now = clock.Now
	opts.EmptyGrace = time.Minute
	m := NewManager(opts)
	defer m.Close("test over")

	r, _ := m.FindOrCreateRoom(protocol.ModeClassic)
	if n := m.Sweep(); n != 0 || r.State() != StateActive {
		t.Fatalf("fresh room swept: n=%d state=%d", n, r.State())
	}

	clock.Advance(2 * time.Minute)
	if n := m.Sweep(); n != 0 || r.State() != StateDraining {
		t.Fatalf("idle room should be marked first: n=%d state=%d", n, r.State())
	}
	if n := m.Sweep(); n != 1 {
		t.Fatalf("drained room not destroyed, n=%d", n)
	}
	select {
	case <-r.Done():
	default:
		t.Fatalf("destroyed room still running")
	}
	if st := m.Stats(); st.Rooms != 0 {
		t.Fatalf("rooms after sweep = %d", st.Rooms)
	}
}

func TestDrainingRoomWithPlayersSurvivesSweep(t *testing.T) {
	m := NewManager(managerOptions())
	defer m.Close("test over")

	fc := newFakeConn()
	r, err := m.Join(protocol.ModeClassic, "p1", fc, protocol.JoinGame{Username: "a"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !m.Drain(r.ID) {
		t.Fatalf("drain failed")
	}
	if n := m.Sweep(); n != 0 {
		t.Fatalf("occupied draining room destroyed")
	}
	if r.Accepting() {
		t.Fatalf("draining room must not accept players")
	}

	r2, err := m.Join(protocol.ModeClassic, "p2", newFakeConn(), protocol.JoinGame{Username: "b"})
	if err != nil {
		t.Fatalf("join p2: %v", err)
	}
	if r2 == r {
		t.Fatalf("new player placed in a draining room")
	}

	m.RemovePlayer("p1")
	waitUntil(t, "room to empty", func() bool { return r.PlayerCount() == 0 })
	if n := m.Sweep(); n != 1 {
		t.Fatalf("empty draining room not destroyed, n=%d", n)
	}
}

func TestStatsCountsPlayersByMode(t *testing.T) {
	clock := newTestClock(t0)
	opts := managerOptions()
	opts.Now = clock.Now
	m := NewManager(opts)
	defer m.Close("test over")

	m.Join(protocol.ModeClassic, "c1", newFakeConn(), protocol.JoinGame{Username: "a"})
	m.Join(protocol.ModeClassic, "c2", newFakeConn(), protocol.JoinGame{Username: "b"})
	m.Join(protocol.ModeWarfare, "w1", newFakeConn(), protocol.JoinGame{Username: "c"})

	clock.Advance(90 * time.Second)
	st := m.Stats()
	if st.Rooms != 2 || st.Players != 3 {
		t.Fatalf("rooms=%d players=%d", st.Rooms, st.Players)
	}
	if st.PlayersByMode[protocol.ModeClassic] != 2 || st.PlayersByMode[protocol.ModeWarfare] != 1 {
		t.Fatalf("players by mode %+v", st.PlayersByMode)
	}
	if len(st.RoomList) != 2 || st.RoomList[0].State != "active" {
		t.Fatalf("room list %+v", st.RoomList)
	}
	for _, rs := range st.RoomList {
		if !rs.Accepting {
			t.Fatalf("room %s with spare capacity not accepting", rs.ID)
		}
		if rs.UptimeSeconds != 90 {
			t.Fatalf("room %s uptime = %v, want 90", rs.ID, rs.UptimeSeconds)
		}
	}
	m.Drain(st.RoomList[0].ID)
	if rs := m.Room(st.RoomList[0].ID).Stats(); rs.Accepting || rs.State != "draining" {
		t.Fatalf("draining room stats %+v", rs)
	}
}

func TestRunClosesRoomsOnShutdown(t *testing.T) {
	opts := managerOptions()
	opts.CleanupInterval = 10 * time.Millisecond
	m := NewManager(opts)

	fc := newFakeConn()
	r, err := m.Join(protocol.ModeClassic, "p1", fc, protocol.JoinGame{Username: "a"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("manager did not stop")
	}
	<-r.Done()
	fc.waitFor(t, protocol.MsgRoomClosed)
}

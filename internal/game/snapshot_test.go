package game

import (
	"testing"

	"arena-server/internal/protocol"
)

func TestSnapshotForFiltersByDistance(t *testing.T) {
	w := newTestWorld(protocol.ModeWarfare)
	place(w, "a", 1000, 1000, 0, 50)
	place(w, "b", 3500, 3500, 0, 50)
	w.Coins["near"] = newCoin("near", 1100, 1000, 2)
	w.Coins["far"] = newCoin("far", 3900, 3900, 2)

	st := w.SnapshotFor("a", t0)
	if len(st.Snakes) != 1 || st.Snakes[0].ID != "a" {
		t.Fatalf("expected only own snake in view, got %d", len(st.Snakes))
	}
	if len(st.Coins) != 1 || st.Coins[0].ID != "near" {
		t.Fatalf("expected only the near coin, got %+v", st.Coins)
	}
	if st.You == nil {
		t.Fatalf("per-player snapshot must carry private state")
	}
	if len(st.You.Weapons) != 1 || st.You.Weapons[0].Kind != "pistol" || st.You.Weapons[0].Ammo != -1 {
		t.Fatalf("unexpected inventory %+v", st.You.Weapons)
	}
	if st.You.ActiveSlot != protocol.SlotSidearm {
		t.Fatalf("active slot = %q", st.You.ActiveSlot)
	}

	shared := w.Snapshot(t0)
	if len(shared.Snakes) != 2 || shared.You != nil {
		t.Fatalf("shared snapshot should include everyone and no private state")
	}
}

func TestSnapshotOmitsDeadSnakes(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	s := place(w, "a", 1000, 1000, 0, 50)
	place(w, "b", 2000, 2000, 0, 50)
	w.kill(s, "", t0)

	st := w.Snapshot(t0)
	if len(st.Snakes) != 1 || st.Snakes[0].ID != "b" {
		t.Fatalf("dead snake leaked into snapshot: %+v", st.Snakes)
	}
	if st.Snakes[0].Weapon != "" {
		t.Fatalf("classic snapshot should not carry weapons")
	}
}

func TestSnakeDTORoundsCoordinates(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	s := place(w, "a", 1000.123, 1000.987, 0, 50)
	dto := s.toDTO(t0, false)
	if dto.Segments[0] != [2]float64{1000.1, 1001} {
		t.Fatalf("head = %v", dto.Segments[0])
	}
	if len(dto.Segments) != len(s.Segments) {
		t.Fatalf("segments = %d, want %d", len(dto.Segments), len(s.Segments))
	}
}

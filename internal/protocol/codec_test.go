package protocol

import (
	"math"
	"testing"
)

func TestMessageConstants(t *testing.T) {
	if MsgJoinGame != "joinGame" {
		t.Fatalf("MsgJoinGame = %q, want %q", MsgJoinGame, "joinGame")
	}
	if MsgCashOut != "playerCashOut" {
		t.Fatalf("MsgCashOut = %q, want %q", MsgCashOut, "playerCashOut")
	}
	if MsgGameState != "gameState" {
		t.Fatalf("MsgGameState = %q, want %q", MsgGameState, "gameState")
	}
}

func TestEncodeRejectsEmptyTypeAndNilPayload(t *testing.T) {
	if _, err := Encode("", Error{}); err == nil {
		t.Fatalf("expected error for empty type")
	}
	if _, err := Encode(MsgError, nil); err == nil {
		t.Fatalf("expected error for nil payload")
	}
}

func TestEnvelopeCarriesCashoutResult(t *testing.T) {
	b, err := Encode(MsgCashoutResult, CashoutResult{Success: true, Profit: 70, TotalCashed: 120})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.T != MsgCashoutResult {
		t.Fatalf("type = %q, want %q", env.T, MsgCashoutResult)
	}
	res, err := DecodePayload[CashoutResult](env)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !res.Success || res.Profit != 70 || res.TotalCashed != 120 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDecodeEnvelopeRejectsMissingType(t *testing.T) {
	if _, err := DecodeEnvelope([]byte(`{"p":{}}`)); err == nil {
		t.Fatalf("expected error for missing type")
	}
	if _, err := DecodeEnvelope(nil); err == nil {
		t.Fatalf("expected error for empty frame")
	}
}

func TestBinaryStateKeepsPrivateInventory(t *testing.T) {
	st := State{
		Tick:   42,
		Snakes: []SnakeDTO{{ID: "a", Name: "alice", Segments: [][2]float64{{1, 2}, {3, 4}}, Cash: 10}},
		You: &PrivateDTO{
			Alive:      true,
			Cash:       10,
			ActiveSlot: SlotSidearm,
			Weapons:    []WeaponDTO{{Slot: SlotSidearm, Kind: "pistol", Ammo: -1}},
			Ammo:       map[string]int{"light": 30},
		},
	}
	b, err := EncodeBinary(MsgGameState, st)
	if err != nil {
		t.Fatalf("encode binary: %v", err)
	}
	typ, got, err := DecodeBinary[State](b)
	if err != nil {
		t.Fatalf("decode binary: %v", err)
	}
	if typ != MsgGameState {
		t.Fatalf("type = %q, want %q", typ, MsgGameState)
	}
	if got.Tick != 42 || len(got.Snakes) != 1 || got.Snakes[0].Segments[1][0] != 3 {
		t.Fatalf("unexpected state %+v", got)
	}
	if got.You == nil || got.You.Ammo["light"] != 30 || got.You.Weapons[0].Ammo != -1 {
		t.Fatalf("private inventory lost: %+v", got.You)
	}
}

func TestSanitizeJoin(t *testing.T) {
	j, ok := SanitizeJoin(JoinGame{GameMode: " WARFARE ", Username: "  a\x00b  ", Wager: -5, Color: "red"})
	if !ok {
		t.Fatalf("expected warfare join to be accepted")
	}
	if j.GameMode != ModeWarfare || j.Username != "ab" || j.Wager != 0 || j.Color != "" {
		t.Fatalf("unexpected sanitized join %+v", j)
	}
	if _, ok := SanitizeJoin(JoinGame{GameMode: "battle-royale"}); ok {
		t.Fatalf("expected unknown mode to be rejected")
	}
}

func TestSanitizeInputDropsNonFinite(t *testing.T) {
	nan := math.NaN()
	x := 10.0
	in, _ := SanitizeInput(PlayerInput{TargetAngle: &nan, WorldX: &x})
	if in.TargetAngle != nil {
		t.Fatalf("expected NaN angle to be dropped")
	}
	if in.WorldX != nil || in.WorldY != nil {
		t.Fatalf("expected half world point to be dropped")
	}
	huge := 1e300
	if in, _ := SanitizeInput(PlayerInput{TargetAngle: &huge}); in.TargetAngle != nil {
		t.Fatalf("expected out-of-range angle to be dropped")
	}
	wrapped := -3 * math.Pi
	if in, _ := SanitizeInput(PlayerInput{TargetAngle: &wrapped}); in.TargetAngle == nil || *in.TargetAngle != wrapped {
		t.Fatalf("expected wrapped angle to pass through")
	}
	if _, ok := SanitizeShoot(PlayerShoot{TargetX: math.Inf(1)}); ok {
		t.Fatalf("expected infinite shoot target to be rejected")
	}
}

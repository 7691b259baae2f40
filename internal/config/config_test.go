package config

import (
	"strings"
	"testing"
	"time"

	"arena-server/internal/telemetry"
)

type recorder struct {
	lines []string
}

func (r *recorder) logger() telemetry.Logger {
	return telemetry.LoggerFunc(func(format string, args ...any) {
		r.lines = append(r.lines, format)
	})
}

func TestLoadAppliesOverrides(t *testing.T) {
	t.Setenv("ARENA_ADDR", ":9090")
	t.Setenv("ARENA_TICK_RATE", "120")
	t.Setenv("ARENA_ENABLE_AI", "false")
	t.Setenv("ARENA_WORLD_WIDTH", "6000")
	t.Setenv("ARENA_CLEANUP_INTERVAL", "45s")
	t.Setenv("ARENA_RESULTS_URL", "http://ledger.local/results")

	rec := &recorder{}
	cfg := Load(rec.logger())
	if cfg.Addr != ":9090" || cfg.TickRate != 120 || cfg.EnableAI {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.WorldWidth != 6000 || cfg.WorldHeight != 4000 {
		t.Fatalf("world = %vx%v", cfg.WorldWidth, cfg.WorldHeight)
	}
	if cfg.CleanupInterval != 45*time.Second {
		t.Fatalf("cleanup interval = %v", cfg.CleanupInterval)
	}
	if cfg.ResultsURL != "http://ledger.local/results" {
		t.Fatalf("results url = %q", cfg.ResultsURL)
	}
	if len(rec.lines) != 0 {
		t.Fatalf("unexpected warnings %v", rec.lines)
	}
}

func TestInvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("ARENA_ROOM_CAPACITY", "lots")
	t.Setenv("ARENA_ENABLE_AI", "maybe")
	t.Setenv("ARENA_IP_COOLDOWN", "-3s")
	t.Setenv("ARENA_TICK_RATE", "30")

	rec := &recorder{}
	cfg := Load(rec.logger())
	def := Default()
	if cfg.RoomCapacity != def.RoomCapacity || cfg.EnableAI != def.EnableAI || cfg.IPCooldown != def.IPCooldown {
		t.Fatalf("invalid values leaked into config: %+v", cfg)
	}
	if cfg.TickRate != def.TickRate {
		t.Fatalf("tick rate = %d, want default %d", cfg.TickRate, def.TickRate)
	}
	if len(rec.lines) != 4 {
		t.Fatalf("warnings = %d, want 4: %v", len(rec.lines), rec.lines)
	}
	for _, l := range rec.lines {
		if !strings.HasPrefix(l, "invalid ") {
			t.Fatalf("unexpected warning format %q", l)
		}
	}
}

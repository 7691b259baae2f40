// Package config loads process settings from the environment. A .env file
// in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"arena-server/internal/telemetry"
)

// Config holds process-level settings. Gameplay tunables are constants in
// the game package.
type Config struct {
	Addr      string
	StaticDir string

	TickRate       int
	MaxBroadcastHz int
	RoomCapacity   int
	MaxRooms       int
	WorldWidth     float64
	WorldHeight    float64
	EnableAI       bool
	AICount        int

	CleanupInterval time.Duration
	ResultsURL      string

	MaxConnections int
	IPCooldown     time.Duration
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:            ":8080",
		StaticDir:       "../client",
		TickRate:        60,
		MaxBroadcastHz:  60,
		RoomCapacity:    30,
		WorldWidth:      4000,
		WorldHeight:     4000,
		EnableAI:        true,
		AICount:         12,
		CleanupInterval: 30 * time.Second,
		MaxConnections:  500,
		IPCooldown:      2 * time.Second,
	}
}

// Load reads .env (optional) and applies ARENA_* overrides on top of
// Default. Invalid values are logged and the default kept.
func Load(logger telemetry.Logger) Config {
	if logger == nil {
		logger = telemetry.WrapLogger(nil)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Printf("config: load .env: %v", err)
	}
	cfg := Default()
	cfg.apply(os.Getenv, logger)
	return cfg
}

func (c *Config) apply(getenv func(string) string, logger telemetry.Logger) {
	str := func(key string, dst *string) {
		if raw := getenv(key); raw != "" {
			*dst = raw
		}
	}
	// max <= 0 means unbounded.
	integer := func(key string, dst *int, min, max int) {
		raw := getenv(key)
		if raw == "" {
			return
		}
		v, err := strconv.Atoi(raw)
		if err == nil && v < min {
			err = fmt.Errorf("must be at least %d", min)
		}
		if err == nil && max > 0 && v > max {
			err = fmt.Errorf("must be at most %d", max)
		}
		if err != nil {
			logger.Printf("invalid %s=%q: %v", key, raw, err)
			return
		}
		*dst = v
	}
	float := func(key string, dst *float64) {
		raw := getenv(key)
		if raw == "" {
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err == nil && v <= 0 {
			err = errors.New("must be positive")
		}
		if err != nil {
			logger.Printf("invalid %s=%q: %v", key, raw, err)
			return
		}
		*dst = v
	}
	boolean := func(key string, dst *bool) {
		raw := getenv(key)
		if raw == "" {
			return
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			logger.Printf("invalid %s=%q: %v", key, raw, err)
			return
		}
		*dst = v
	}
	duration := func(key string, dst *time.Duration) {
		raw := getenv(key)
		if raw == "" {
			return
		}
		v, err := time.ParseDuration(raw)
		if err == nil && v < 0 {
			err = errors.New("must not be negative")
		}
		if err != nil {
			logger.Printf("invalid %s=%q: %v", key, raw, err)
			return
		}
		*dst = v
	}

	str("ARENA_ADDR", &c.Addr)
	str("ARENA_STATIC_DIR", &c.StaticDir)
	integer("ARENA_TICK_RATE", &c.TickRate, 60, 120)
	integer("ARENA_MAX_BROADCAST_HZ", &c.MaxBroadcastHz, 1, 0)
	integer("ARENA_ROOM_CAPACITY", &c.RoomCapacity, 1, 0)
	integer("ARENA_MAX_ROOMS", &c.MaxRooms, 0, 0)
	float("ARENA_WORLD_WIDTH", &c.WorldWidth)
	float("ARENA_WORLD_HEIGHT", &c.WorldHeight)
	boolean("ARENA_ENABLE_AI", &c.EnableAI)
	integer("ARENA_AI_COUNT", &c.AICount, 0, 0)
	duration("ARENA_CLEANUP_INTERVAL", &c.CleanupInterval)
	str("ARENA_RESULTS_URL", &c.ResultsURL)
	integer("ARENA_MAX_CONNECTIONS", &c.MaxConnections, 1, 0)
	duration("ARENA_IP_COOLDOWN", &c.IPCooldown)
}

// Package game holds the arena simulation: snakes, collectibles, weapons,
// projectiles, AI and the per-tick World.Step. A World is not safe for
// concurrent use; its owning room drives it from a single goroutine.
package game

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"arena-server/internal/protocol"
)

// Config describes a world at creation.
type Config struct {
	Mode     string
	Width    float64
	Height   float64
	EnableAI bool
	AICount  int
	Seed     int64
}

// EventKind identifies something a room needs to react to.
type EventKind uint8

const (
	EventDeath EventKind = iota
	EventSever
	EventBounce
	EventDeflect
	EventRespawn
)

// Event is emitted by Step for the owning room.
type Event struct {
	Kind     EventKind
	EntityID string
	OtherID  string
	Cause    string // killer name or "collision", for deaths
	Cash     int
	Length   int
	IsAI     bool
}

// World holds the state of one arena.
type World struct {
	Mode   string
	Width  float64
	Height float64

	Snakes      map[string]*Snake
	Food        map[string]*Food
	Orbs        map[string]*GlowOrb
	Coins       map[string]*Coin
	Pickups     map[string]*Pickup
	Projectiles []*Projectile
	Effects     []*Effect
	Grid        *SpatialGrid

	Tick   uint64
	KingID string

	aiIDs   []string
	tasks   taskQueue
	rng     *rand.Rand
	seq     uint64
	events  []Event
	closed  bool
	colorIx int
}

// New creates a world and seeds its collectibles and AI population.
func New(cfg Config, now time.Time) *World {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWorldWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultWorldHeight
	}
	if cfg.Mode == "" {
		cfg.Mode = protocol.ModeClassic
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}
	w := &World{
		Mode:    cfg.Mode,
		Width:   cfg.Width,
		Height:  cfg.Height,
		Snakes:  make(map[string]*Snake),
		Food:    make(map[string]*Food),
		Orbs:    make(map[string]*GlowOrb),
		Coins:   make(map[string]*Coin),
		Pickups: make(map[string]*Pickup),
		Grid:    NewSpatialGrid(GridCellSize),
		rng:     rand.New(rand.NewSource(seed)),
	}
	w.populate(math.MaxInt)
	if cfg.EnableAI {
		for i := 0; i < cfg.AICount; i++ {
			w.spawnAI(now)
		}
	}
	return w
}

// Warfare reports whether weapons and pickups are enabled.
func (w *World) Warfare() bool {
	return w.Mode == protocol.ModeWarfare
}

func (w *World) nextID(prefix string) string {
	w.seq++
	return fmt.Sprintf("%s%d", prefix, w.seq)
}

func (w *World) emit(e Event) {
	w.events = append(w.events, e)
}

// Snake returns the entity with id, or nil.
func (w *World) Snake(id string) *Snake {
	return w.Snakes[id]
}

// HumanCount returns the number of non-AI entities.
func (w *World) HumanCount() int {
	n := 0
	for _, s := range w.Snakes {
		if !s.IsAI {
			n++
		}
	}
	return n
}

// sortedSnakes returns alive snakes in ID order so per-tick resolution is
// deterministic.
func (w *World) sortedSnakes() []*Snake {
	out := make([]*Snake, 0, len(w.Snakes))
	for _, s := range w.Snakes {
		if s.Alive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) pickColor() string {
	c := PlayerColors[w.colorIx%len(PlayerColors)]
	w.colorIx++
	return c
}

// spawnPoint picks a random spawn position and heading.
func (w *World) spawnPoint() (x, y, angle float64) {
	x, y = randomRectPoint(w.rng, w.Width, w.Height, math.Min(SpawnMargin, math.Min(w.Width, w.Height)/4))
	return x, y, w.rng.Float64() * 2 * math.Pi
}

// AddPlayer creates a human entity staking wager and spawns it. An empty
// color picks one from the palette.
func (w *World) AddPlayer(id, name, color string, wager int, now time.Time) *Snake {
	if color == "" {
		color = w.pickColor()
	}
	s := newSnake(id, name, color, false, !w.Warfare())
	s.Wager = wager
	x, y, a := w.spawnPoint()
	s.spawn(x, y, a, wager, now, w.Warfare())
	w.Snakes[id] = s
	return s
}

// RemovePlayer deletes an entity. A live body is dropped as coins first.
// The removed snake is returned so the caller can report its final state.
func (w *World) RemovePlayer(id string) *Snake {
	s := w.Snakes[id]
	if s == nil {
		return nil
	}
	if s.Alive {
		w.dropCoins(s.Segments, int(float64(s.Cash)*DeathDropShare))
		s.Alive = false
	}
	delete(w.Snakes, id)
	return s
}

// SetInput applies a steering update. A world point is converted to an
// angle from the current head and also becomes the aim point.
func (w *World) SetInput(id string, in protocol.PlayerInput) bool {
	s := w.Snakes[id]
	if s == nil || !s.Alive {
		return false
	}
	if in.WorldX != nil && in.WorldY != nil {
		s.steerTowards(*in.WorldX, *in.WorldY)
		s.AimX, s.AimY, s.hasAim = *in.WorldX, *in.WorldY, true
	} else if in.TargetAngle != nil && !math.IsNaN(*in.TargetAngle) && !math.IsInf(*in.TargetAngle, 0) {
		s.TargetAngle = normalizeAngle(*in.TargetAngle)
	}
	s.Boosting = in.Boosting
	s.Trigger = in.MouseHeld
	return true
}

// Close stops the world: pending tasks are cancelled and Step becomes a
// no-op.
func (w *World) Close() {
	w.closed = true
	w.tasks.clear()
}

// PendingTasks reports the number of scheduled tasks.
func (w *World) PendingTasks() int {
	return w.tasks.Len()
}

// Step advances the world by one tick and returns the events it produced.
func (w *World) Step(now time.Time) []Event {
	if w.closed {
		return nil
	}
	w.Tick++
	w.events = w.events[:0]

	// 0. Deferred work due this tick
	w.runTasks(now)

	// 1. Full-auto fire for held triggers
	if w.Warfare() {
		for _, s := range w.sortedSnakes() {
			w.autoFire(s, now)
		}
	}

	// 2. Human movement
	for _, s := range w.sortedSnakes() {
		if !s.IsAI {
			s.update(now, w.Width, w.Height)
		}
	}

	// 3. AI decisions and movement, against this tick's positions
	if len(w.aiIDs) > 0 {
		w.rebuildGrid()
	}
	for _, id := range w.aiIDs {
		if s := w.Snakes[id]; s != nil && s.Alive {
			w.updateAI(s, now)
			s.update(now, w.Width, w.Height)
		}
	}

	// 4. Projectiles, orbs, effects
	for _, p := range w.Projectiles {
		p.advance(now, w.Width, w.Height)
	}
	for _, o := range w.Orbs {
		o.drift(w.rng, w.Width, w.Height)
	}
	w.updateEffects()

	// 5. Vacuum attraction
	w.rebuildGrid()
	w.vacuum()

	// 6. Collisions
	w.collideSnakes(now)
	w.collideProjectiles(now)
	w.collectItems(now)
	w.pruneProjectiles()

	// 7. King
	w.updateKing()

	// 8. Repopulate collectibles
	w.populate(MaxSpawnPerTick)

	out := make([]Event, len(w.events))
	copy(out, w.events)
	return out
}

// rebuildGrid rebuilds the spatial grid from current state
func (w *World) rebuildGrid() {
	w.Grid.Clear()
	for _, f := range w.Food {
		w.Grid.InsertItem(entryFood, f.ID, f.X, f.Y)
	}
	for _, o := range w.Orbs {
		w.Grid.InsertItem(entryOrb, o.ID, o.X, o.Y)
	}
	for _, c := range w.Coins {
		w.Grid.InsertItem(entryCoin, c.ID, c.X, c.Y)
	}
	for _, p := range w.Pickups {
		w.Grid.InsertItem(entryPickup, p.ID, p.X, p.Y)
	}
	for _, s := range w.Snakes {
		if s.Alive {
			w.Grid.InsertSnakeBody(s)
		}
	}
}

func (w *World) pruneProjectiles() {
	kept := w.Projectiles[:0]
	for _, p := range w.Projectiles {
		if p.Alive {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(w.Projectiles); i++ {
		w.Projectiles[i] = nil
	}
	w.Projectiles = kept
}

// updateKing crowns the richest live entity. Ties go to the lower ID.
func (w *World) updateKing() {
	w.KingID = ""
	best := -1
	for _, s := range w.sortedSnakes() {
		if s.Cash > best {
			best = s.Cash
			w.KingID = s.ID
		}
	}
}

// Leaderboard returns the top LeaderboardSize live entities by cash.
func (w *World) Leaderboard() []protocol.LeaderboardEntry {
	snakes := w.sortedSnakes()
	sort.SliceStable(snakes, func(i, j int) bool {
		return snakes[i].Cash > snakes[j].Cash
	})
	if len(snakes) > LeaderboardSize {
		snakes = snakes[:LeaderboardSize]
	}
	entries := make([]protocol.LeaderboardEntry, len(snakes))
	for i, s := range snakes {
		entries[i] = protocol.LeaderboardEntry{ID: s.ID, Name: s.Name, Cash: s.Cash}
	}
	return entries
}

// TotalCash sums cash held by live entities and lying in coins.
func (w *World) TotalCash() int {
	total := 0
	for _, s := range w.Snakes {
		if s.Alive {
			total += s.Cash
		}
	}
	for _, c := range w.Coins {
		total += c.Value
	}
	return total
}

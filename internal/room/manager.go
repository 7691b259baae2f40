package room

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"arena-server/internal/protocol"
	"arena-server/internal/telemetry"
)

var (
	ErrNoRoomAvailable = errors.New("no room available")
	ErrUnknownMode     = errors.New("unknown game mode")
	ErrNotInRoom       = errors.New("player not in a room")
)

const maxJoinAttempts = 3

// Manager owns the room registry and the player→room routing table.
type Manager struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	players map[string]*Room

	opts Options
	log  telemetry.Logger
}

// NewManager creates an empty registry. Every room it creates shares opts.
func NewManager(opts Options) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		rooms:   make(map[string]*Room),
		players: make(map[string]*Room),
		opts:    opts,
		log:     opts.Logger,
	}
}

// RoomOption overrides the Manager defaults for a room created by
// FindOrCreateRoom.
type RoomOption func(*Options)

// WithWorldSize sets the world dimensions of a new room.
func WithWorldSize(width, height float64) RoomOption {
	return func(o *Options) { o.Width, o.Height = width, height }
}

// WithTickRate sets the simulation rate of a new room.
func WithTickRate(hz int) RoomOption {
	return func(o *Options) { o.TickRate = hz }
}

// WithAI toggles AI entities in a new room.
func WithAI(enabled bool, count int) RoomOption {
	return func(o *Options) { o.EnableAI, o.AICount = enabled, count }
}

// WithCapacity sets the human player limit of a new room.
func WithCapacity(n int) RoomOption {
	return func(o *Options) { o.Capacity = n }
}

// FindOrCreateRoom returns the fullest accepting room of mode, creating and
// starting a new one when none has space. opts apply only to a room created
// by this call; an existing room is reused as it is.
func (m *Manager) FindOrCreateRoom(mode string, opts ...RoomOption) (*Room, error) {
	if !protocol.ValidMode(mode) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var best *Room
	for _, r := range m.rooms {
		if r.Mode != mode || !r.Accepting() {
			continue
		}
		if best == nil || r.PlayerCount() > best.PlayerCount() ||
			(r.PlayerCount() == best.PlayerCount() && r.ID < best.ID) {
			best = r
		}
	}
	if best != nil {
		return best, nil
	}
	if m.opts.MaxRooms > 0 && len(m.rooms) >= m.opts.MaxRooms {
		return nil, ErrNoRoomAvailable
	}

	ro := m.opts
	for _, o := range opts {
		o(&ro)
	}
	r := NewRoom(mode, ro)
	m.rooms[r.ID] = r
	go r.Run()
	m.log.Printf("manager: created %s room %s (%d rooms)", mode, r.ID, len(m.rooms))
	return r, nil
}

// Join places a player in a room of mode. A room that fills up or closes
// between lookup and admission is skipped and another one tried.
func (m *Manager) Join(mode, playerID string, conn Conn, req protocol.JoinGame) (*Room, error) {
	var lastErr error
	for attempt := 0; attempt < maxJoinAttempts; attempt++ {
		r, err := m.FindOrCreateRoom(mode)
		if err != nil {
			return nil, err
		}
		_, err = r.Join(playerID, conn, req)
		if err == nil {
			m.mu.Lock()
			m.players[playerID] = r
			m.mu.Unlock()
			return r, nil
		}
		if !errors.Is(err, ErrRoomFull) && !errors.Is(err, ErrRoomClosed) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrNoRoomAvailable, lastErr)
}

// Room returns a room by ID.
func (m *Manager) Room(id string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[id]
}

// RoomOf returns the room a player is in, or nil.
func (m *Manager) RoomOf(playerID string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.players[playerID]
}

// Route forwards a command to the player's room.
func (m *Manager) Route(playerID string, cmd any) error {
	r := m.RoomOf(playerID)
	if r == nil {
		return ErrNotInRoom
	}
	if !r.Send(cmd) {
		return ErrRoomClosed
	}
	return nil
}

// RemovePlayer takes a player out of its room.
func (m *Manager) RemovePlayer(playerID string) {
	m.mu.Lock()
	r := m.players[playerID]
	delete(m.players, playerID)
	m.mu.Unlock()
	if r != nil {
		r.Send(Leave{PlayerID: playerID})
	}
}

// Drain marks a room for cleanup. It stops admitting players and is
// destroyed by the next sweep after it empties.
func (m *Manager) Drain(roomID string) bool {
	r := m.Room(roomID)
	if r == nil {
		return false
	}
	if r.MarkDraining() {
		m.log.Printf("manager: room %s draining", roomID)
		return true
	}
	return false
}

// Sweep destroys empty rooms that were marked for cleanup and marks empty
// active rooms older than the grace period, so an idle room survives one
// full interval before it goes. It returns the number of rooms destroyed.
func (m *Manager) Sweep() int {
	now := m.opts.Now()
	m.mu.Lock()
	var doomed []*Room
	for id, r := range m.rooms {
		if r.PlayerCount() > 0 {
			continue
		}
		switch r.State() {
		case StateActive:
			if now.Sub(r.createdAt) >= m.opts.EmptyGrace {
				r.MarkDraining()
			}
		default:
			doomed = append(doomed, r)
			delete(m.rooms, id)
		}
	}
	m.dropPlayersOf(doomed)
	m.mu.Unlock()

	for _, r := range doomed {
		r.Destroy("room closed")
	}
	if len(doomed) > 0 {
		m.log.Printf("manager: swept %d rooms", len(doomed))
	}
	return len(doomed)
}

func (m *Manager) dropPlayersOf(rooms []*Room) {
	if len(rooms) == 0 {
		return
	}
	gone := make(map[*Room]bool, len(rooms))
	for _, r := range rooms {
		gone[r] = true
	}
	for pid, r := range m.players {
		if gone[r] {
			delete(m.players, pid)
		}
	}
}

// Close destroys every room.
func (m *Manager) Close(reason string) {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	clear(m.rooms)
	clear(m.players)
	m.mu.Unlock()

	for _, r := range rooms {
		r.Destroy(reason)
	}
}

// Run sweeps on CleanupInterval until ctx is done, then closes every room.
func (m *Manager) Run(ctx context.Context) error {
	t := time.NewTicker(m.opts.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			m.Close("server shutting down")
			return nil
		case <-t.C:
			m.Sweep()
		}
	}
}

// Stats aggregates room stats.
func (m *Manager) Stats() ManagerStats {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	out := ManagerStats{
		RoomsByMode:   make(map[string]int),
		PlayersByMode: make(map[string]int),
		RoomList:      make([]RoomStats, 0, len(rooms)),
	}
	for _, r := range rooms {
		st := r.Stats()
		out.Rooms++
		out.Players += st.Players
		out.RoomsByMode[st.Mode]++
		out.PlayersByMode[st.Mode] += st.Players
		out.RoomList = append(out.RoomList, st)
	}
	sort.Slice(out.RoomList, func(i, j int) bool { return out.RoomList[i].ID < out.RoomList[j].ID })
	return out
}

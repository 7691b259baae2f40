// Package room runs arenas. Each Room owns one game.World and drives it from
// a single goroutine; everything else talks to it through its Inbox. The
// Manager keeps the registry of rooms and routes players to them.
package room

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"arena-server/internal/game"
	"arena-server/internal/protocol"
	"arena-server/internal/telemetry"
)

// Room lifecycle states.
const (
	StateActive int32 = iota
	StateDraining
	StateDestroyed
)

var stateNames = [...]string{"active", "draining", "destroyed"}

var (
	ErrRoomFull         = errors.New("room full")
	ErrRoomClosed       = errors.New("room closed")
	ErrAlreadyJoined    = errors.New("player already in room")
	ErrRoomFault        = errors.New("room fault")
	ErrRoomUnresponsive = errors.New("room unresponsive")
)

const (
	DefaultTickRate       = 60
	DefaultMaxBroadcastHz = 60
	DefaultCapacity       = 30
	MinTickRate           = 60
	MaxTickRate           = 120

	adaptEvery    = time.Second
	reportTimeout = 5 * time.Second
	joinTimeout   = 5 * time.Second
	inboxSize     = 512
)

// Options configures rooms. The Manager passes the same Options to every
// room it creates.
type Options struct {
	TickRate       int // world steps per second, 60..120
	MaxBroadcastHz int
	Capacity       int // human players per room
	Width, Height  float64
	EnableAI       bool
	AICount        int
	Seed           int64 // 0 seeds from the clock

	MaxRooms        int           // 0 means unlimited
	CleanupInterval time.Duration // janitor period
	EmptyGrace      time.Duration // a new empty room is left alone this long

	Logger   telemetry.Logger
	Reporter ResultReporter
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.TickRate == 0 {
		o.TickRate = DefaultTickRate
	}
	if o.TickRate < MinTickRate {
		o.TickRate = MinTickRate
	}
	if o.TickRate > MaxTickRate {
		o.TickRate = MaxTickRate
	}
	if o.MaxBroadcastHz <= 0 {
		o.MaxBroadcastHz = DefaultMaxBroadcastHz
	}
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = 30 * time.Second
	}
	if o.EmptyGrace <= 0 {
		o.EmptyGrace = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = telemetry.WrapLogger(nil)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type player struct {
	id     string
	name   string
	conn   Conn
	limits *RateLimiter
	// playing is true from spawn until the life's result is reported.
	playing bool
}

// Room is one arena. Only Run's goroutine touches world and players.
type Room struct {
	ID    string
	Mode  string
	Inbox chan any

	opts    Options
	log     telemetry.Logger
	world   *game.World
	players map[string]*player

	tickCost  timing
	sendCost  timing
	interval  time.Duration
	faults    uint64
	bytesSent uint64
	createdAt time.Time

	state atomic.Int32
	count atomic.Int32
	stats atomic.Pointer[RoomStats]

	closeOnce   sync.Once
	closeReason string
	quit        chan struct{}
	done        chan struct{}
}

// NewRoom creates a room for mode. Call Run to start it.
func NewRoom(mode string, opts Options) *Room {
	opts = opts.withDefaults()
	now := opts.Now()
	seed := opts.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}
	r := &Room{
		ID:    strings.SplitN(uuid.NewString(), "-", 2)[0],
		Mode:  mode,
		Inbox: make(chan any, inboxSize),
		opts:  opts,
		log:   opts.Logger,
		world: game.New(game.Config{
			Mode:     mode,
			Width:    opts.Width,
			Height:   opts.Height,
			EnableAI: opts.EnableAI,
			AICount:  opts.AICount,
			Seed:     seed,
		}, now),
		players:   make(map[string]*player),
		interval:  BroadcastInterval(0, 0, opts.MaxBroadcastHz),
		createdAt: now,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	r.publishStats()
	return r
}

// State returns the lifecycle state.
func (r *Room) State() int32 { return r.state.Load() }

// PlayerCount returns the number of connected humans.
func (r *Room) PlayerCount() int { return int(r.count.Load()) }

// Accepting reports whether the room takes new players.
func (r *Room) Accepting() bool {
	return r.State() == StateActive && r.PlayerCount() < r.opts.Capacity
}

// MarkDraining stops admissions. The room keeps ticking until it is empty
// and the manager destroys it.
func (r *Room) MarkDraining() bool {
	return r.state.CompareAndSwap(StateActive, StateDraining)
}

// Done is closed once the room's goroutine has exited.
func (r *Room) Done() <-chan struct{} { return r.done }

// Send delivers a command to the room. It returns false once the room has
// been destroyed.
func (r *Room) Send(cmd any) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.Inbox <- cmd:
		return true
	case <-r.done:
		return false
	}
}

// Join admits a player and waits for the room's answer.
func (r *Room) Join(playerID string, conn Conn, req protocol.JoinGame) (JoinResult, error) {
	reply := make(chan JoinResult, 1)
	if !r.Send(Join{PlayerID: playerID, Conn: conn, Request: req, Reply: reply}) {
		return JoinResult{}, ErrRoomClosed
	}
	t := time.NewTimer(joinTimeout)
	defer t.Stop()
	select {
	case res := <-reply:
		return res, res.Err
	case <-r.done:
		return JoinResult{}, ErrRoomClosed
	case <-t.C:
		return JoinResult{}, ErrRoomUnresponsive
	}
}

// Destroy stops the room, tells remaining players why and releases the
// world. It blocks until Run has returned, so Run must have been started.
func (r *Room) Destroy(reason string) {
	r.closeOnce.Do(func() {
		r.closeReason = reason
		r.state.Store(StateDestroyed)
		close(r.quit)
	})
	<-r.done
}

// Run is the room loop: world ticks, commands, adaptive broadcasts.
func (r *Room) Run() {
	defer close(r.done)

	tick := time.NewTicker(hzInterval(r.opts.TickRate))
	defer tick.Stop()
	bcast := time.NewTicker(r.interval)
	defer bcast.Stop()
	adapt := time.NewTicker(adaptEvery)
	defer adapt.Stop()

	r.log.Printf("room %s: started (%s, %d Hz)", r.ID, r.Mode, r.opts.TickRate)
	for {
		select {
		case <-r.quit:
			r.teardown()
			return
		case cmd := <-r.Inbox:
			if r.guard("command", func() { r.handleCommand(cmd) }) {
				r.refuseJoin(cmd)
			}
		case <-tick.C:
			r.tick()
		case <-bcast.C:
			r.guard("broadcast", r.broadcastState)
		case <-adapt.C:
			r.guard("adapt", func() {
				r.adapt(bcast)
				r.publishStats()
			})
		}
	}
}

func (r *Room) tick() {
	start := time.Now()
	now := r.opts.Now()
	for _, e := range r.safeStep(now) {
		r.guard("event", func() { r.handleEvent(e, now) })
	}
	r.tickCost.observe(time.Since(start))
}

// safeStep runs one world step, returning no events if it faulted.
func (r *Room) safeStep(now time.Time) (events []game.Event) {
	if r.guard("tick", func() { events = r.world.Step(now) }) {
		return nil
	}
	return events
}

// guard runs fn on the room goroutine. A panic is logged, counted and
// surfaced to every client as an error; the loop keeps going. It reports
// whether fn faulted.
func (r *Room) guard(what string, fn func()) (faulted bool) {
	defer func() {
		if rec := recover(); rec != nil {
			faulted = true
			r.faults++
			r.log.Printf("room %s: %s fault: %v", r.ID, what, rec)
			r.notifyFault()
		}
	}()
	fn()
	return false
}

func (r *Room) notifyFault() {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Printf("room %s: fault notice failed: %v", r.ID, rec)
		}
	}()
	r.broadcastJSON(protocol.MsgError, protocol.Error{Message: "room fault"})
}

// refuseJoin answers a join whose handling faulted so the caller is not
// left waiting.
func (r *Room) refuseJoin(cmd any) {
	if j, ok := cmd.(Join); ok && j.Reply != nil {
		select {
		case j.Reply <- JoinResult{RoomID: r.ID, PlayerID: j.PlayerID, Err: ErrRoomFault}:
		default:
		}
	}
}

func (r *Room) handleEvent(e game.Event, now time.Time) {
	if e.Kind != game.EventDeath {
		return
	}
	p := r.players[e.EntityID]
	if p == nil {
		return
	}
	r.sendJSON(p, protocol.MsgDeath, protocol.Death{Killer: e.Cause, Cash: e.Cash})
	if s := r.world.Snake(p.id); s != nil {
		r.finish(p, s, now, 0)
	}
	r.log.Printf("room %s: %s killed by %s (cash %d)", r.ID, p.name, e.Cause, e.Cash)
}

func (r *Room) handleCommand(cmd any) {
	now := r.opts.Now()
	switch c := cmd.(type) {
	case Join:
		r.handleJoin(c, now)
	case Leave:
		r.handleLeave(c.PlayerID, now)
	case Input:
		p := r.players[c.PlayerID]
		if p == nil || !p.limits.Allow(ClassMovement, now) {
			return
		}
		r.world.SetInput(c.PlayerID, c.Input)
	case Shoot:
		p := r.players[c.PlayerID]
		if p == nil || !p.limits.Allow(ClassShooting, now) {
			return
		}
		// Cooldown and ammo rejections are routine and dropped quietly.
		if res := r.world.Shoot(c.PlayerID, c.TargetX, c.TargetY, now); res.Reason == game.ReasonWrongMode {
			r.sendError(p, res.Reason)
		}
	case Switch:
		p := r.players[c.PlayerID]
		if p == nil {
			return
		}
		slot, ok := game.ParseSlot(c.Slot)
		if !ok {
			r.sendError(p, "unknown slot")
			return
		}
		if ok, reason := r.world.SwitchWeapon(c.PlayerID, slot); !ok {
			r.sendError(p, reason)
		}
	case CashOut:
		r.handleCashOut(c.PlayerID, now)
	case Respawn:
		p := r.players[c.PlayerID]
		if p == nil {
			return
		}
		if ok, reason := r.world.Respawn(c.PlayerID, now); !ok {
			r.sendError(p, reason)
			return
		}
		p.playing = true
		r.log.Printf("room %s: %s respawned", r.ID, p.name)
	case Chat:
		p := r.players[c.PlayerID]
		if p == nil || !p.limits.Allow(ClassChat, now) {
			return
		}
		msg := c.Message
		msg.PlayerID = p.id
		msg.Username = p.name
		if msg.Timestamp == 0 {
			msg.Timestamp = now.UnixMilli()
		}
		r.broadcastJSON(protocol.MsgChat, msg)
	default:
		r.log.Printf("room %s: unknown command %T", r.ID, cmd)
	}
}

func (r *Room) handleJoin(c Join, now time.Time) {
	switch {
	case r.State() != StateActive:
		c.Reply <- JoinResult{Err: ErrRoomClosed}
		return
	case len(r.players) >= r.opts.Capacity:
		c.Reply <- JoinResult{Err: ErrRoomFull}
		return
	case r.players[c.PlayerID] != nil:
		c.Reply <- JoinResult{Err: ErrAlreadyJoined}
		return
	}

	req := c.Request
	s := r.world.AddPlayer(c.PlayerID, req.Username, req.Color, req.Wager, now)
	p := &player{id: c.PlayerID, name: s.Name, conn: c.Conn, limits: NewRateLimiter(), playing: true}
	r.players[p.id] = p
	r.count.Store(int32(len(r.players)))
	c.Reply <- JoinResult{RoomID: r.ID, PlayerID: p.id}

	r.sendJSON(p, protocol.MsgGameJoined, protocol.GameJoined{
		RoomID:    r.ID,
		PlayerID:  p.id,
		GameMode:  r.Mode,
		GameState: r.stateFor(p.id, now),
	})
	r.broadcastExcept(p.id, protocol.MsgPlayerJoined, protocol.PlayerPresence{ID: p.id, Username: p.name})
	r.log.Printf("room %s: player %s (%s) joined with wager %d, %d players", r.ID, p.name, p.id, req.Wager, len(r.players))
}

func (r *Room) handleLeave(id string, now time.Time) {
	p := r.players[id]
	if p == nil {
		return
	}
	if s := r.world.Snake(id); s != nil && s.Alive {
		r.finish(p, s, now, 0)
	}
	r.world.RemovePlayer(id)
	delete(r.players, id)
	r.count.Store(int32(len(r.players)))
	r.broadcastJSON(protocol.MsgPlayerLeft, protocol.PlayerPresence{ID: id, Username: p.name})
	r.log.Printf("room %s: player %s left, %d players", r.ID, p.name, len(r.players))
}

func (r *Room) handleCashOut(id string, now time.Time) {
	p := r.players[id]
	if p == nil {
		return
	}
	res := r.world.CashOut(id, now)
	payload := protocol.CashoutResult{
		Success:     res.Success,
		Profit:      res.Profit,
		TotalCashed: res.TotalCashed,
		Reason:      res.Reason,
	}
	r.sendJSON(p, protocol.MsgCashoutResult, payload)
	if !res.Success {
		return
	}
	r.sendJSON(p, protocol.MsgCashoutSuccess, payload)
	if s := r.world.Snake(id); s != nil {
		r.finish(p, s, now, res.TotalCashed)
	}
	r.log.Printf("room %s: %s cashed out %d (profit %d)", r.ID, p.name, res.TotalCashed, res.Profit)
}

// finish reports the end of a player's current life once.
func (r *Room) finish(p *player, s *game.Snake, now time.Time, finalCash int) {
	if !p.playing {
		return
	}
	p.playing = false
	if r.opts.Reporter == nil {
		return
	}
	res := Result{
		GameMode:        r.Mode,
		WagerAmount:     s.Wager,
		FinalScore:      s.PeakCash,
		FinalLength:     len(s.Segments),
		FinalCash:       finalCash,
		DurationSeconds: now.Sub(s.SpawnedAt).Seconds(),
		UserID:          p.id,
	}
	go r.report(res)
}

func (r *Room) report(res Result) {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()
	if err := r.opts.Reporter.Report(ctx, res); err != nil {
		r.log.Printf("room %s: report result for %s: %v", r.ID, res.UserID, err)
	}
}

func (r *Room) stateFor(id string, now time.Time) protocol.State {
	if r.world.Warfare() {
		return r.world.SnapshotFor(id, now)
	}
	return r.world.Snapshot(now)
}

// broadcastState sends gameState to every player. Classic rooms share one
// JSON frame; warfare rooms build a distance-filtered binary frame per
// player. Players whose send fails are dropped.
func (r *Room) broadcastState() {
	if len(r.players) == 0 {
		return
	}
	start := time.Now()
	now := r.opts.Now()
	var failed []string

	if r.world.Warfare() {
		for id, p := range r.players {
			b, err := protocol.EncodeBinary(protocol.MsgGameState, r.world.SnapshotFor(id, now))
			if err != nil {
				r.log.Printf("room %s: encode state for %s: %v", r.ID, id, err)
				continue
			}
			if err := p.conn.SendBinary(b); err != nil {
				failed = append(failed, id)
				continue
			}
			r.bytesSent += uint64(len(b))
		}
	} else {
		b, err := protocol.Encode(protocol.MsgGameState, r.world.Snapshot(now))
		if err != nil {
			r.log.Printf("room %s: encode state: %v", r.ID, err)
			return
		}
		for id, p := range r.players {
			if err := p.conn.Send(b); err != nil {
				failed = append(failed, id)
				continue
			}
			r.bytesSent += uint64(len(b))
		}
	}
	r.sendCost.observe(time.Since(start))

	for _, id := range failed {
		r.log.Printf("room %s: dropping %s after failed send", r.ID, id)
		if p := r.players[id]; p != nil {
			_ = p.conn.Close()
		}
		r.handleLeave(id, now)
	}
}

// adapt recomputes the broadcast interval from the live player count and
// the measured cost.
func (r *Room) adapt(bcast *time.Ticker) {
	cost := r.tickCost.Avg() + r.sendCost.Avg()
	next := BroadcastInterval(len(r.players), cost, r.opts.MaxBroadcastHz)
	if next == r.interval {
		return
	}
	r.log.Printf("room %s: broadcast interval %v -> %v (%d players, cost %v)", r.ID, r.interval, next, len(r.players), cost)
	r.interval = next
	bcast.Reset(next)
}

func (r *Room) sendJSON(p *player, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.log.Printf("room %s: encode %s: %v", r.ID, t, err)
		return
	}
	if err := p.conn.Send(b); err == nil {
		r.bytesSent += uint64(len(b))
	}
}

func (r *Room) sendError(p *player, msg string) {
	r.sendJSON(p, protocol.MsgError, protocol.Error{Message: msg})
}

func (r *Room) broadcastJSON(t string, payload any) {
	r.broadcastExcept("", t, payload)
}

func (r *Room) broadcastExcept(skip, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.log.Printf("room %s: encode %s: %v", r.ID, t, err)
		return
	}
	for id, p := range r.players {
		if id == skip {
			continue
		}
		if err := p.conn.Send(b); err == nil {
			r.bytesSent += uint64(len(b))
		}
	}
}

// teardown runs on the room goroutine after Destroy.
func (r *Room) teardown() {
	now := r.opts.Now()
	b, err := protocol.Encode(protocol.MsgRoomClosed, protocol.RoomClosed{Reason: r.closeReason})
	for id, p := range r.players {
		r.guard("teardown", func() {
			defer p.conn.Close()
			// The room went away under a live player: their stake is
			// reported as banked.
			if s := r.world.Snake(id); s != nil && s.Alive {
				r.finish(p, s, now, s.Cash)
			}
			if err == nil {
				_ = p.conn.Send(b)
			}
		})
	}
	clear(r.players)
	r.count.Store(0)
	r.world.Close()
	r.publishStats()
	r.log.Printf("room %s: destroyed (%s)", r.ID, r.closeReason)
}

// publishStats stores a copy of the room's stats for other goroutines.
func (r *Room) publishStats() {
	st := RoomStats{
		ID:             r.ID,
		Mode:           r.Mode,
		State:          stateNames[r.State()],
		Players:        len(r.players),
		AIs:            len(r.world.Snakes) - r.world.HumanCount(),
		Tick:           r.world.Tick,
		BroadcastHz:    float64(time.Second) / float64(r.interval),
		AvgTickMs:      millis(r.tickCost.Avg()),
		MaxTickMs:      millis(r.tickCost.max),
		AvgBroadcastMs: millis(r.sendCost.Avg()),
		MaxBroadcastMs: millis(r.sendCost.max),
		Faults:         r.faults,
		BytesSent:      r.bytesSent,
		TotalCash:      r.world.TotalCash(),
	}
	r.stats.Store(&st)
}

// Stats returns the most recently published stats with live state, player
// count, admission flag and uptime.
func (r *Room) Stats() RoomStats {
	st := *r.stats.Load()
	st.State = stateNames[r.State()]
	st.Players = r.PlayerCount()
	st.Accepting = r.Accepting()
	st.UptimeSeconds = r.opts.Now().Sub(r.createdAt).Seconds()
	return st
}

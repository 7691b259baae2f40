package game

import (
	"math"
	"testing"
	"time"

	"arena-server/internal/protocol"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

const tick = time.Second / 60

func newTestWorld(mode string) *World {
	w := New(Config{Mode: mode, Seed: 1}, t0)
	clearItems(w)
	return w
}

func clearItems(w *World) {
	w.Food = make(map[string]*Food)
	w.Orbs = make(map[string]*GlowOrb)
	w.Coins = make(map[string]*Coin)
	w.Pickups = make(map[string]*Pickup)
}

// place adds a non-invincible player at a fixed position.
func place(w *World, id string, x, y, angle float64, cash int) *Snake {
	s := w.AddPlayer(id, id, "", cash, t0)
	s.spawn(x, y, angle, cash, t0, w.Warfare())
	s.InvincibleUntil = time.Time{}
	return s
}

func countEvents(events []Event, kind EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestNewWorldSeedsCollectibles(t *testing.T) {
	w := New(Config{Mode: protocol.ModeWarfare, Seed: 7}, t0)
	if len(w.Food) != TargetFoodCount {
		t.Fatalf("food = %d, want %d", len(w.Food), TargetFoodCount)
	}
	if len(w.Coins) != TargetCoinCount {
		t.Fatalf("coins = %d, want %d", len(w.Coins), TargetCoinCount)
	}
	if len(w.Pickups) != TargetWeaponPickups+TargetAmmoPickups+TargetPowerUps {
		t.Fatalf("pickups = %d", len(w.Pickups))
	}
	c := New(Config{Mode: protocol.ModeClassic, Seed: 7}, t0)
	if len(c.Pickups) != 0 {
		t.Fatalf("classic world should have no pickups, got %d", len(c.Pickups))
	}
}

func TestStepMovesSnakeAndAdvancesTick(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	s := place(w, "a", 2000, 2000, 0, 50)

	w.Step(t0.Add(tick))
	if w.Tick != 1 {
		t.Fatalf("tick = %d, want 1", w.Tick)
	}
	if h := s.Head(); h.X <= 2000 {
		t.Fatalf("expected head to move along +x, got %v", h)
	}
}

func TestHeadOnCollisionKillsBoth(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	a := place(w, "a", 1000, 1000, 0, 50)
	b := place(w, "b", 1015, 1000, math.Pi, 50)
	lenA, lenB := len(a.Segments), len(b.Segments)

	events := w.Step(t0.Add(tick))
	if a.Alive || b.Alive {
		t.Fatalf("expected both dead, a=%v b=%v", a.Alive, b.Alive)
	}
	if n := countEvents(events, EventDeath); n != 2 {
		t.Fatalf("death events = %d, want 2", n)
	}
	if len(a.Segments) != lenA || len(b.Segments) != lenB {
		t.Fatalf("death must not change segment counts")
	}
}

func TestInvincibleEntitiesDoNotCollide(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	a := place(w, "a", 1000, 1000, 0, 50)
	b := place(w, "b", 1015, 1000, math.Pi, 50)
	a.InvincibleUntil = t0.Add(time.Second)
	cash := b.Cash

	w.Step(t0.Add(tick))
	if !a.Alive || !b.Alive {
		t.Fatalf("expected both alive while one is invincible")
	}
	if b.Cash != cash {
		t.Fatalf("cash changed during invincible contact: %d -> %d", cash, b.Cash)
	}
	if a.IsInvincible(a.InvincibleUntil) {
		t.Fatalf("invincibility must end at its end time")
	}
}

func TestHelmetTurnsHeadOnIntoBounce(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	a := place(w, "a", 1000, 1000, 0, 50)
	b := place(w, "b", 1015, 1000, math.Pi, 50)
	a.grantPowerUp(PowerUpHelmet, t0)

	now := t0.Add(tick)
	events := w.Step(now)
	if !a.Alive || !b.Alive {
		t.Fatalf("expected bounce, got a=%v b=%v", a.Alive, b.Alive)
	}
	if countEvents(events, EventBounce) != 1 {
		t.Fatalf("expected one bounce event")
	}
	if h := a.powerUp(PowerUpHelmet, now); h == nil || h.Integrity != 100-HelmetBounceCost {
		t.Fatalf("helmet integrity not charged: %+v", h)
	}
	ha, hb := a.Head(), b.Head()
	if d := dist(ha.X, ha.Y, hb.X, hb.Y); d <= a.Size()+b.Size() {
		t.Fatalf("heads still overlapping after bounce: %f", d)
	}
}

func TestRammingSeversBody(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	b := place(w, "b", 1000, 1000, 0, 50)
	a := place(w, "a", 960, 1020, -math.Pi/2, 50)
	a.grantPowerUp(PowerUpRam, t0)

	events := w.Step(t0.Add(tick))
	if !a.Alive || !b.Alive {
		t.Fatalf("expected both alive, a=%v b=%v", a.Alive, b.Alive)
	}
	if countEvents(events, EventSever) != 1 {
		t.Fatalf("expected a sever event")
	}
	if len(b.Segments) != 4 {
		t.Fatalf("victim segments = %d, want 4", len(b.Segments))
	}
	if b.Cash != 10 {
		t.Fatalf("victim cash = %d, want 10", b.Cash)
	}
	if a.Cash <= 50 {
		t.Fatalf("rammer should be paid, cash = %d", a.Cash)
	}
}

func TestBodyContactWithoutRamKillsAttacker(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	b := place(w, "b", 1000, 1000, 0, 50)
	a := place(w, "a", 960, 1020, -math.Pi/2, 50)
	n := len(b.Segments)

	w.Step(t0.Add(tick))
	if a.Alive {
		t.Fatalf("attacker should die on body contact")
	}
	if !b.Alive || len(b.Segments) != n {
		t.Fatalf("victim should be untouched, alive=%v segments=%d", b.Alive, len(b.Segments))
	}
}

func TestSeverConservesCash(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	a := place(w, "a", 1000, 1000, 0, 50)
	b := place(w, "b", 2000, 2000, 0, 50)

	w.sever(b, 4, a.ID, t0)
	coins := 0
	for _, c := range w.Coins {
		coins += c.Value
	}
	if got := a.Cash + b.Cash + coins; got != 100 {
		t.Fatalf("cash after sever = %d, want 100", got)
	}
	if b.Cash != 10 {
		t.Fatalf("victim cash = %d, want 10", b.Cash)
	}
}

func TestSegmentCountChangesAtMostOnePerTick(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	s := place(w, "a", 2000, 2000, 0, 50)
	start := len(s.Segments)
	s.Cash = 500

	prev := start
	now := t0
	for i := 0; i < 40; i++ {
		now = now.Add(tick)
		w.Step(now)
		n := len(s.Segments)
		if d := n - prev; d < -1 || d > 1 {
			t.Fatalf("tick %d: segments jumped %d -> %d", i, prev, n)
		}
		prev = n
	}
	if prev != start+10 {
		t.Fatalf("segments after 40 ticks = %d, want %d", prev, start+10)
	}

	s.Cash = 0
	for i := 0; i < 40; i++ {
		now = now.Add(tick)
		w.Step(now)
		n := len(s.Segments)
		if d := n - prev; d < -1 || d > 1 {
			t.Fatalf("shrink tick %d: segments jumped %d -> %d", i, prev, n)
		}
		prev = n
	}
	if prev >= start+10 {
		t.Fatalf("expected shrink, still %d segments", prev)
	}
}

func TestSnakeStaysInsideWorld(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	s := place(w, "a", 10, 10, math.Pi, 50)
	now := t0
	for i := 0; i < 20; i++ {
		now = now.Add(tick)
		w.Step(now)
	}
	h := s.Head()
	if h.X < 0 || h.Y < 0 || h.X > w.Width || h.Y > w.Height {
		t.Fatalf("head escaped the world: %v", h)
	}
	if !s.Alive {
		t.Fatalf("edge contact should clamp, not kill")
	}
}

func TestInvincibilityScalesWithWager(t *testing.T) {
	cases := []struct {
		wager int
		want  time.Duration
	}{
		{0, 3 * time.Second},
		{50, 4 * time.Second},
		{10000, InvincibilityMax},
	}
	for _, c := range cases {
		if got := InvincibilityFor(c.wager); got != c.want {
			t.Fatalf("InvincibilityFor(%d) = %v, want %v", c.wager, got, c.want)
		}
	}
}

func TestKingIsRichestLiveEntity(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	a := place(w, "a", 1000, 1000, 0, 50)
	b := place(w, "b", 3000, 3000, 0, 50)
	b.Cash = 80

	w.updateKing()
	if w.KingID != "b" {
		t.Fatalf("king = %q, want b", w.KingID)
	}
	a.Cash = 80
	w.updateKing()
	if w.KingID != "a" {
		t.Fatalf("tie should go to lower id, got %q", w.KingID)
	}
	lb := w.Leaderboard()
	if len(lb) != 2 || lb[0].Cash != 80 {
		t.Fatalf("unexpected leaderboard %+v", lb)
	}
}

func TestRemovePlayerDropsCoins(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	place(w, "a", 1000, 1000, 0, 100)

	s := w.RemovePlayer("a")
	if s == nil || w.Snake("a") != nil {
		t.Fatalf("player not removed")
	}
	coins := 0
	for _, c := range w.Coins {
		coins += c.Value
	}
	if coins != 80 {
		t.Fatalf("dropped coins = %d, want 80", coins)
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-5 * math.Pi / 2, -math.Pi / 2},
	}
	for _, c := range cases {
		if got := normalizeAngle(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("normalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	for _, huge := range []float64{1e300, -1e300, math.MaxFloat64} {
		if got := normalizeAngle(huge); got <= -math.Pi || got > math.Pi {
			t.Fatalf("normalizeAngle(%g) = %v, outside (-π, π]", huge, got)
		}
	}
}

func TestSetInputWithHugeAngleReturns(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	s := place(w, "a", 2000, 2000, 0, 50)

	done := make(chan bool, 1)
	go func() {
		huge := 1e300
		done <- w.SetInput("a", protocol.PlayerInput{TargetAngle: &huge})
	}()
	select {
	case ok := <-done:
		if !ok {
			t.Fatalf("input rejected for a live snake")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("SetInput did not return")
	}
	if s.TargetAngle <= -math.Pi || s.TargetAngle > math.Pi {
		t.Fatalf("target angle %v outside (-π, π]", s.TargetAngle)
	}

	nan := math.NaN()
	w.SetInput("a", protocol.PlayerInput{TargetAngle: &nan})
	if math.IsNaN(s.TargetAngle) {
		t.Fatalf("NaN angle reached the snake")
	}
}

func TestHeadOnWithOneRammerKillsTheOther(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	a := place(w, "a", 1000, 1000, 0, 50)
	b := place(w, "b", 1015, 1000, math.Pi, 50)
	a.grantPowerUp(PowerUpRam, t0)

	events := w.Step(t0.Add(tick))
	if !a.Alive {
		t.Fatalf("rammer died in a head-on")
	}
	if b.Alive {
		t.Fatalf("non-rammer survived a head-on with a rammer")
	}
	if n := countEvents(events, EventDeath); n != 1 {
		t.Fatalf("death events = %d, want 1", n)
	}
}

func TestHeadOnWithTwoRammersKillsBoth(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	a := place(w, "a", 1000, 1000, 0, 50)
	b := place(w, "b", 1015, 1000, math.Pi, 50)
	a.grantPowerUp(PowerUpRam, t0)
	b.grantPowerUp(PowerUpRam, t0)

	w.Step(t0.Add(tick))
	if a.Alive || b.Alive {
		t.Fatalf("expected both rammers dead, a=%v b=%v", a.Alive, b.Alive)
	}
}

func TestVacuumRadiusScalesWithSizeAndBoost(t *testing.T) {
	small := newSnake("s", "s", "", false, true)
	small.spawn(1000, 1000, 0, 10, t0, false)
	big := newSnake("b", "b", "", false, true)
	big.spawn(1000, 1000, 0, 2000, t0, false)

	if got, want := small.vacuumRadius(), small.Size()*VacuumRadiusFactor; math.Abs(got-want) > 1e-9 {
		t.Fatalf("radius = %v, want %v", got, want)
	}
	if big.vacuumRadius() <= small.vacuumRadius() {
		t.Fatalf("bigger snake should pull from further: %v <= %v", big.vacuumRadius(), small.vacuumRadius())
	}
	idle := small.vacuumRadius()
	small.Boosting = true
	small.Boost = BoostMax
	if got := small.vacuumRadius(); math.Abs(got-idle*VacuumBoostFactor) > 1e-9 {
		t.Fatalf("boosting radius = %v, want %v", got, idle*VacuumBoostFactor)
	}
	small.Boost = 0
	if got := small.vacuumRadius(); got != idle {
		t.Fatalf("boost held with an empty pool still widened the radius: %v", got)
	}
}

func TestVacuumPullsOnlyWithinRadius(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	s := place(w, "a", 2000, 2000, 0, 50)
	r := s.vacuumRadius()
	near := newFood("near", 2000, 2000+r*0.8, w.rng)
	far := newFood("far", 2000, 2000-r*1.5, w.rng)
	w.Food[near.ID] = near
	w.Food[far.ID] = far
	w.rebuildGrid()

	w.vacuum()
	if d := 2000 + r*0.8 - near.Y; math.Abs(d-VacuumSpeed) > 1e-9 {
		t.Fatalf("food inside the radius moved %v, want %v", d, VacuumSpeed)
	}
	if far.Y != 2000-r*1.5 || far.VX != 0 || far.VY != 0 {
		t.Fatalf("food outside the radius was pulled")
	}
}

func TestFoodNeverGrantsCash(t *testing.T) {
	w := newTestWorld(protocol.ModeClassic)
	s := place(w, "a", 2000, 2000, 0, 50)
	f := newFood("f1", 2003, 2000, w.rng)
	w.Food[f.ID] = f
	w.rebuildGrid()

	w.Step(t0.Add(tick))
	if _, ok := w.Food[f.ID]; ok {
		t.Fatalf("food under the head was not eaten")
	}
	if s.Cash != 50 {
		t.Fatalf("cash = %d after eating food, want 50", s.Cash)
	}
	if s.mass <= 0 {
		t.Fatalf("eating food should add body mass")
	}
}

func TestPathModeKeepsSegmentSpacing(t *testing.T) {
	s := newSnake("a", "a", "", false, true)
	s.spawn(1000, 1000, 0, 50, t0, false)
	n := len(s.Segments)
	s.TargetAngle = math.Pi / 2

	for k := 1; k <= 120; k++ {
		s.update(t0.Add(time.Duration(k)*tick), 4000, 4000)
	}
	if len(s.Segments) != n {
		t.Fatalf("segments = %d, want %d", len(s.Segments), n)
	}
	for i := 1; i < len(s.Segments); i++ {
		a, b := s.Segments[i-1], s.Segments[i]
		d := dist(a.X, a.Y, b.X, b.Y)
		if d > SegmentSpacing+1e-6 || d < SegmentSpacing*0.95 {
			t.Fatalf("segment %d is %v from its predecessor, want ~%v", i, d, SegmentSpacing)
		}
	}
	last := s.Segments[len(s.Segments)-1]
	if last.X == 1000-float64(n-1)*SegmentSpacing && last.Y == 1000 {
		t.Fatalf("tail never followed the head")
	}
}

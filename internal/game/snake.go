package game

import (
	"math"
	"time"
)

// Segment is one body element. Index 0 of Snake.Segments is the head.
type Segment struct {
	X, Y      float64
	Health    float64
	MaxHealth float64
}

// Snake is a player- or AI-controlled entity. It is owned by a single World
// and only touched from that world's tick goroutine.
type Snake struct {
	ID    string
	Name  string
	Color string
	IsAI  bool

	Segments    []Segment
	Angle       float64 // radians, direction of movement
	TargetAngle float64
	Boosting    bool // requested by input
	Boost       float64
	Alive       bool
	CashedOut   bool

	Cash     int
	Wager    int
	PeakCash int
	Kills    int

	SpawnedAt       time.Time
	InvincibleUntil time.Time
	// Life increments on every spawn so deferred tasks can tell a stale
	// target from the current one.
	Life uint64

	// Warfare inventory.
	Weapons    [slotCount]*Weapon
	ActiveSlot Slot
	Reserve    [ammoTypeCount]int
	PowerUps   []PowerUp

	Trigger bool // mouse held
	AimX    float64
	AimY    float64
	hasAim  bool

	pendingShot bool // full-auto click waiting out the spin-up

	AI *Brain

	pathMode  bool    // classic body model
	path      []Point // head history, newest first
	growth    float64 // fractional segment accumulator
	mass      float64 // boost value eaten this life, feeds TargetSegments
	kickUntil time.Time
	kickMult  float64
}

func newSnake(id, name, color string, isAI, pathMode bool) *Snake {
	return &Snake{ID: id, Name: name, Color: color, IsAI: isAI, pathMode: pathMode}
}

// spawn places the snake at (x,y) heading along angle with cash as its
// balance and resets every per-life field.
func (s *Snake) spawn(x, y, angle float64, cash int, now time.Time, warfare bool) {
	s.Alive = true
	s.CashedOut = false
	s.Cash = cash
	s.PeakCash = cash
	s.Kills = 0
	s.Angle = angle
	s.TargetAngle = angle
	s.Boosting = false
	s.Boost = BoostMax
	s.SpawnedAt = now
	s.InvincibleUntil = now.Add(InvincibilityFor(s.Wager))
	s.Life++
	s.growth = 0
	s.mass = 0
	s.kickUntil = time.Time{}
	s.Trigger = false
	s.hasAim = false
	s.pendingShot = false
	s.PowerUps = nil
	s.Reserve = [ammoTypeCount]int{}
	s.Weapons = [slotCount]*Weapon{}
	s.ActiveSlot = SlotSidearm
	if warfare {
		s.Weapons[SlotSidearm] = newWeapon(WeaponPistol)
	}

	n := s.TargetSegments()
	s.Segments = make([]Segment, n)
	s.path = make([]Point, n)
	for i := 0; i < n; i++ {
		px := x - float64(i)*SegmentSpacing*math.Cos(angle)
		py := y - float64(i)*SegmentSpacing*math.Sin(angle)
		s.Segments[i] = Segment{X: px, Y: py}
		s.path[i] = Point{X: px, Y: py}
	}
	s.Segments[0].Health, s.Segments[0].MaxHealth = HeadMaxHealth, HeadMaxHealth
	for i := 1; i < n; i++ {
		s.Segments[i].Health, s.Segments[i].MaxHealth = SegmentMaxHealth, SegmentMaxHealth
	}
}

// InvincibilityFor scales spawn protection with the stake.
func InvincibilityFor(wager int) time.Duration {
	d := InvincibilityBase + time.Duration(max(wager, 0))*InvincibilityPerCash
	return min(d, InvincibilityMax)
}

// Head returns the head position
func (s *Snake) Head() Point {
	if len(s.Segments) == 0 {
		return Point{}
	}
	return Point{X: s.Segments[0].X, Y: s.Segments[0].Y}
}

// Size is the collision radius, growing with cash.
func (s *Snake) Size() float64 {
	sz := SnakeBaseSize * (1 + math.Sqrt(float64(max(s.Cash, 0)))/SizeCashScale)
	return math.Min(sz, SnakeMaxSize)
}

// BodyRadius is the collision radius of non-head segments.
func (s *Snake) BodyRadius() float64 {
	return s.Size() * BodyRadiusFactor
}

// TargetSegments is the body length the snake converges towards.
func (s *Snake) TargetSegments() int {
	n := InitialSegments + max(s.Cash, 0)/CashPerSegment + int(s.mass/MassPerSegment)
	return min(max(n, MinSegments), MaxSegments)
}

// IsInvincible reports whether spawn protection is active.
func (s *Snake) IsInvincible(now time.Time) bool {
	return now.Before(s.InvincibleUntil)
}

// IsBoosting reports whether the snake is actually boosting this tick.
func (s *Snake) IsBoosting() bool {
	return s.Boosting && s.Boost > 0
}

// ActiveWeapon returns the weapon in the active slot, or nil.
func (s *Snake) ActiveWeapon() *Weapon {
	return s.Weapons[s.ActiveSlot]
}

// Armed reports whether the snake carries anything beyond the sidearm.
func (s *Snake) Armed() bool {
	for _, sl := range []Slot{SlotPrimary, SlotSecondary} {
		if w := s.Weapons[sl]; w != nil && w.Ammo != 0 {
			return true
		}
	}
	return false
}

func (s *Snake) addCash(amount int) {
	s.Cash += amount
	if s.Cash > s.PeakCash {
		s.PeakCash = s.Cash
	}
}

// kick applies a short speed multiplier, used after helmet bounces.
func (s *Snake) kick(now time.Time) {
	s.kickMult = SpeedKickMultiplier
	s.kickUntil = now.Add(SpeedKickDuration)
}

func (s *Snake) speed(now time.Time) float64 {
	sp := SnakeBaseSpeed * s.powerUpSpeed(now)
	if s.IsBoosting() {
		sp *= BoostMultiplier
	}
	if now.Before(s.kickUntil) {
		sp *= s.kickMult
	}
	return sp
}

// update advances the snake one tick: steering, boost accounting, movement,
// world-edge clamping, body follow and growth.
func (s *Snake) update(now time.Time, width, height float64) {
	if !s.Alive || len(s.Segments) == 0 {
		return
	}
	s.expirePowerUps(now)

	diff := normalizeAngle(s.TargetAngle - s.Angle)
	s.Angle = normalizeAngle(s.Angle + diff*TurnFraction)

	sp := s.speed(now)
	if s.IsBoosting() {
		s.Boost = math.Max(0, s.Boost-BoostDrainPerTick)
	} else if s.Boost < BoostMax {
		s.Boost = math.Min(BoostMax, s.Boost+BoostRegenPerTick)
	}

	head := &s.Segments[0]
	head.X = clamp(head.X+sp*math.Cos(s.Angle), 0, width)
	head.Y = clamp(head.Y+sp*math.Sin(s.Angle), 0, height)

	if s.pathMode {
		s.followPath()
	} else {
		s.followChain()
	}
	s.stepGrowth()
}

// followPath records the head in the path history and re-samples every
// segment at a fixed arc distance along it.
func (s *Snake) followPath() {
	h := s.Head()
	s.path = append(s.path, Point{})
	copy(s.path[1:], s.path)
	s.path[0] = h

	idx := 1
	acc := 0.0
	for j := 1; j < len(s.path) && idx < len(s.Segments); j++ {
		a, b := s.path[j-1], s.path[j]
		l := dist(a.X, a.Y, b.X, b.Y)
		for l > 0 && idx < len(s.Segments) && acc+l >= float64(idx)*SegmentSpacing {
			t := (float64(idx)*SegmentSpacing - acc) / l
			s.Segments[idx].X = a.X + (b.X-a.X)*t
			s.Segments[idx].Y = a.Y + (b.Y-a.Y)*t
			idx++
		}
		acc += l
		if idx >= len(s.Segments) {
			s.path = s.path[:j+1]
			break
		}
	}
}

// followChain pulls each segment toward its predecessor once it drifts past
// the target spacing.
func (s *Snake) followChain() {
	for i := 1; i < len(s.Segments); i++ {
		prev := s.Segments[i-1]
		seg := &s.Segments[i]
		d := dist(prev.X, prev.Y, seg.X, seg.Y)
		if d <= SegmentSpacing || d == 0 {
			continue
		}
		move := (d - SegmentSpacing) * BodyFollowSmoothing
		seg.X += (prev.X - seg.X) / d * move
		seg.Y += (prev.Y - seg.Y) / d * move
	}
}

// stepGrowth moves the body length at most one segment per tick toward
// TargetSegments.
func (s *Snake) stepGrowth() {
	target := s.TargetSegments()
	n := len(s.Segments)
	switch {
	case n < target:
		if s.growth < 0 {
			s.growth = 0
		}
		s.growth += GrowthPerTick
		if s.growth >= 1 {
			s.growth--
			tail := s.Segments[n-1]
			tail.Health, tail.MaxHealth = SegmentMaxHealth, SegmentMaxHealth
			s.Segments = append(s.Segments, tail)
		}
	case n > target && n > MinSegments:
		if s.growth > 0 {
			s.growth = 0
		}
		s.growth -= GrowthPerTick
		if s.growth <= -1 {
			s.growth++
			s.Segments = s.Segments[:n-1]
		}
	default:
		s.growth = 0
	}
}

// cutAt removes segments idx.. and returns them. The head always survives.
func (s *Snake) cutAt(idx int) []Segment {
	if idx < 1 || idx >= len(s.Segments) {
		return nil
	}
	removed := make([]Segment, len(s.Segments)-idx)
	copy(removed, s.Segments[idx:])
	s.Segments = s.Segments[:idx]
	s.growth = 0
	return removed
}

// steerTowards points the snake at a world position.
func (s *Snake) steerTowards(x, y float64) {
	h := s.Head()
	if x == h.X && y == h.Y {
		return
	}
	s.TargetAngle = math.Atan2(y-h.Y, x-h.X)
}

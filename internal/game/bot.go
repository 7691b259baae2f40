package game

import (
	"math"
	"sort"
	"time"
)

// CombatState is an AI entity's current behaviour in warfare.
type CombatState uint8

const (
	StateExploring CombatState = iota
	StateHunting
	StateEngaging
	StateFleeing
)

func (c CombatState) String() string {
	switch c {
	case StateExploring:
		return "exploring"
	case StateHunting:
		return "hunting"
	case StateEngaging:
		return "engaging"
	case StateFleeing:
		return "fleeing"
	}
	return ""
}

// Brain is the per-entity AI state and personality.
type Brain struct {
	Aggressiveness float64 // 0..1
	Accuracy       float64 // 0..1
	Reaction       time.Duration
	State          CombatState

	nextDecision time.Time
	targetAngle  float64
	boost        bool
	fire         bool
	aimX, aimY   float64
	waypoint     Point
	waypointEnd  time.Time
}

func (w *World) newBrain() *Brain {
	span := int64(AIReactionMax - AIReactionMin)
	return &Brain{
		Aggressiveness: w.rng.Float64(),
		Accuracy:       0.4 + 0.5*w.rng.Float64(),
		Reaction:       AIReactionMin + time.Duration(w.rng.Int63n(span+1)),
	}
}

// spawnAI creates a new AI entity and registers it in the world.
func (w *World) spawnAI(now time.Time) *Snake {
	id := w.nextID("ai-")
	name := aiNames[len(w.aiIDs)%len(aiNames)]
	s := newSnake(id, name, w.pickColor(), true, !w.Warfare())
	s.AI = w.newBrain()
	w.Snakes[id] = s
	w.aiIDs = append(w.aiIDs, id)
	w.respawnAI(s, now)
	return s
}

func (w *World) respawnAI(s *Snake, now time.Time) {
	s.Wager = AIMinStartCash + w.rng.Intn(AIMaxStartCash-AIMinStartCash+1)
	x, y, a := w.spawnPoint()
	s.spawn(x, y, a, s.Wager, now, w.Warfare())
	s.AI.State = StateExploring
	s.AI.nextDecision = now
	s.AI.fire = false
	s.AI.waypointEnd = time.Time{}
	w.emit(Event{Kind: EventRespawn, EntityID: s.ID, IsAI: true})
}

// updateAI re-evaluates the entity's decision once per reaction interval and
// applies the standing decision every tick.
func (w *World) updateAI(s *Snake, now time.Time) {
	b := s.AI
	if b == nil {
		return
	}
	if !now.Before(b.nextDecision) {
		if w.Warfare() {
			w.decideWarfare(s, now)
		} else {
			w.decideClassic(s, now)
		}
		b.nextDecision = now.Add(b.Reaction)
	}
	s.TargetAngle = b.targetAngle
	s.Boosting = b.boost
	if w.Warfare() && b.fire {
		w.fire(s, b.aimX, b.aimY, now)
	}
}

// avoidBoundary steers toward the centre when the head is near an edge.
func (w *World) avoidBoundary(s *Snake) bool {
	h := s.Head()
	buf := math.Min(AIBoundaryBuffer, math.Min(w.Width, w.Height)/4)
	if h.X > buf && h.X < w.Width-buf && h.Y > buf && h.Y < w.Height-buf {
		return false
	}
	s.AI.targetAngle = math.Atan2(w.Height/2-h.Y, w.Width/2-h.X)
	return true
}

// avoidDanger turns away from any foreign head or body segment ahead
// within AIDangerRadius.
func (w *World) avoidDanger(s *Snake) bool {
	h := s.Head()
	r := AIDangerRadius + s.Size()
	for _, e := range w.Grid.NearbySnakeBody(h.X, h.Y, r, s.ID) {
		a := math.Atan2(e.y-h.Y, e.x-h.X)
		diff := normalizeAngle(a - s.Angle)
		if math.Abs(diff) < math.Pi/3 {
			if diff >= 0 {
				s.AI.targetAngle = s.Angle - math.Pi/2
			} else {
				s.AI.targetAngle = s.Angle + math.Pi/2
			}
			return true
		}
	}
	for _, o := range w.sortedSnakes() {
		if o == s {
			continue
		}
		oh := o.Head()
		if dist2(h.X, h.Y, oh.X, oh.Y) < r*r {
			s.AI.targetAngle = math.Atan2(h.Y-oh.Y, h.X-oh.X)
			return true
		}
	}
	return false
}

// decideClassic: boundary, then danger, then the nearest coin, food or orb
// within its seek radius, then wander.
func (w *World) decideClassic(s *Snake, now time.Time) {
	b := s.AI
	b.boost = false
	b.fire = false

	// --- Priority 1: Boundary avoidance ---
	if w.avoidBoundary(s) {
		return
	}
	// --- Priority 2: Danger avoidance ---
	if w.avoidDanger(s) {
		b.boost = s.Boost > BoostMax/2
		return
	}

	// --- Priority 3: Greedy collection, coins > food > orbs ---
	h := s.Head()
	seek := []struct {
		kind   entryKind
		radius float64
	}{
		{entryCoin, AICoinSeekRadius},
		{entryFood, AIFoodSeekRadius},
		{entryOrb, AIOrbSeekRadius},
	}
	for _, sk := range seek {
		if p, ok := w.nearestItem(sk.kind, h, sk.radius); ok {
			b.targetAngle = math.Atan2(p.Y-h.Y, p.X-h.X)
			return
		}
	}

	// --- Priority 4: Wander ---
	w.wander(s, now)
}

// nearestItem returns the position of the closest live item of kind.
func (w *World) nearestItem(kind entryKind, h Point, radius float64) (Point, bool) {
	best := Point{}
	bestD := math.Inf(1)
	for _, id := range w.Grid.NearbyItems(kind, h.X, h.Y, radius) {
		p, ok := w.itemPos(kind, id)
		if !ok {
			continue
		}
		if d := dist2(h.X, h.Y, p.X, p.Y); d < bestD {
			best, bestD = p, d
		}
	}
	return best, !math.IsInf(bestD, 1)
}

func (w *World) itemPos(kind entryKind, id string) (Point, bool) {
	switch kind {
	case entryFood:
		if f := w.Food[id]; f != nil {
			return Point{f.X, f.Y}, true
		}
	case entryOrb:
		if o := w.Orbs[id]; o != nil {
			return Point{o.X, o.Y}, true
		}
	case entryCoin:
		if c := w.Coins[id]; c != nil {
			return Point{c.X, c.Y}, true
		}
	case entryPickup:
		if p := w.Pickups[id]; p != nil {
			return Point{p.X, p.Y}, true
		}
	}
	return Point{}, false
}

// wander heads for a random waypoint, picking a new one when reached or
// after AIWaypointTimeout.
func (w *World) wander(s *Snake, now time.Time) {
	b := s.AI
	h := s.Head()
	if b.waypointEnd.IsZero() || !now.Before(b.waypointEnd) || dist(h.X, h.Y, b.waypoint.X, b.waypoint.Y) < AIWaypointReach {
		x, y := randomRectPoint(w.rng, w.Width, w.Height, math.Min(AIBoundaryBuffer, math.Min(w.Width, w.Height)/4))
		b.waypoint = Point{x, y}
		b.waypointEnd = now.Add(AIWaypointTimeout)
	}
	b.targetAngle = math.Atan2(b.waypoint.Y-h.Y, b.waypoint.X-h.X)
}

// Assessment summarises an AI entity's surroundings.
type Assessment struct {
	Threat        float64 // summed threat of nearby opponents
	ThreatX       float64 // threat-weighted centre of opponents
	ThreatY       float64
	Nearest       *Snake
	NearestDist   float64
	Opportunities int
	Best          Point // most valuable nearby item
}

// threatScore rates one opponent by relative size, armament and proximity.
func threatScore(self, other *Snake, d float64) float64 {
	if d >= AIAwarenessRadius {
		return 0
	}
	score := other.Size() / self.Size()
	if other.Armed() {
		score *= 1.5
	}
	return score * (1 - d/AIAwarenessRadius)
}

// chooseState maps an assessment and a personality to a combat state.
func chooseState(a Assessment, aggressiveness float64) CombatState {
	switch {
	case a.Threat >= AIFleeThreat:
		return StateFleeing
	case a.Nearest != nil && aggressiveness >= AIEngageAggression:
		return StateEngaging
	case a.Opportunities > 0 && a.Threat == 0:
		return StateHunting
	}
	return StateExploring
}

func (w *World) assess(s *Snake, now time.Time) Assessment {
	h := s.Head()
	a := Assessment{NearestDist: math.Inf(1)}
	var wx, wy float64
	for _, o := range w.sortedSnakes() {
		if o == s || o.IsInvincible(now) {
			continue
		}
		oh := o.Head()
		d := dist(h.X, h.Y, oh.X, oh.Y)
		if d >= AIAwarenessRadius {
			continue
		}
		t := threatScore(s, o, d)
		a.Threat += t
		wx += oh.X * t
		wy += oh.Y * t
		if d < a.NearestDist {
			a.Nearest, a.NearestDist = o, d
		}
	}
	if a.Threat > 0 {
		a.ThreatX, a.ThreatY = wx/a.Threat, wy/a.Threat
	}

	bestValue := 0.0
	consider := func(p Point, value float64) {
		a.Opportunities++
		if value > bestValue {
			bestValue, a.Best = value, p
		}
	}
	for _, id := range sortedIDs(w.Grid.NearbyItems(entryPickup, h.X, h.Y, AIAwarenessRadius)) {
		p := w.Pickups[id]
		if p == nil {
			continue
		}
		v := 15.0
		switch p.Kind {
		case PickupWeapon:
			v = 30
		case PickupPowerUp:
			v = 25
		}
		consider(Point{p.X, p.Y}, v)
	}
	for _, id := range sortedIDs(w.Grid.NearbyItems(entryCoin, h.X, h.Y, AICoinSeekRadius)) {
		if c := w.Coins[id]; c != nil {
			consider(Point{c.X, c.Y}, float64(c.Value)*3)
		}
	}
	return a
}

func sortedIDs(ids []string) []string {
	sort.Strings(ids)
	return ids
}

// decideWarfare runs the exploring/hunting/engaging/fleeing state machine.
func (w *World) decideWarfare(s *Snake, now time.Time) {
	b := s.AI
	b.boost = false
	b.fire = false

	a := w.assess(s, now)
	b.State = chooseState(a, b.Aggressiveness)
	h := s.Head()

	switch b.State {
	case StateFleeing:
		b.targetAngle = math.Atan2(h.Y-a.ThreatY, h.X-a.ThreatX)
		b.boost = s.Boost > 0
	case StateEngaging:
		eh := a.Nearest.Head()
		b.targetAngle = math.Atan2(eh.Y-h.Y, eh.X-h.X)
		b.boost = a.NearestDist > AIAwarenessRadius/2 && s.Boost > BoostMax/2
		miss := (1 - b.Accuracy) * AIAimError
		b.aimX = eh.X + (w.rng.Float64()*2-1)*miss
		b.aimY = eh.Y + (w.rng.Float64()*2-1)*miss
		b.fire = true
	case StateHunting:
		b.targetAngle = math.Atan2(a.Best.Y-h.Y, a.Best.X-h.X)
	default:
		w.wander(s, now)
	}

	// Edges and bodies override the state's heading, not its trigger.
	if !w.avoidBoundary(s) && b.State != StateFleeing {
		w.avoidDanger(s)
	}
}

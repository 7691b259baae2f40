package game

import (
	"math"
	"time"
)

// collideSnakes resolves entity-vs-entity contact. Every unordered pair is
// resolved at most once per tick, in ID order. Invincible entities neither
// collide nor can be collided with.
func (w *World) collideSnakes(now time.Time) {
	snakes := w.sortedSnakes()

	// head vs head
	for i := 0; i < len(snakes); i++ {
		for j := i + 1; j < len(snakes); j++ {
			a, b := snakes[i], snakes[j]
			if !a.Alive || !b.Alive || a.IsInvincible(now) || b.IsInvincible(now) {
				continue
			}
			ha, hb := a.Head(), b.Head()
			r := a.Size() + b.Size()
			if dist2(ha.X, ha.Y, hb.X, hb.Y) > r*r {
				continue
			}
			w.resolveHeadOn(a, b, now)
		}
	}

	// head vs body
	for _, a := range snakes {
		if !a.Alive || a.IsInvincible(now) {
			continue
		}
		victim, idx := w.bodyContact(a, now)
		if victim == nil {
			continue
		}
		if a.IsRamming(now) {
			w.sever(victim, idx, a.ID, now)
			continue
		}
		w.kill(a, victim.ID, now)
	}
}

// bodyContact finds the closest foreign body segment touching a's head.
func (w *World) bodyContact(a *Snake, now time.Time) (*Snake, int) {
	h := a.Head()
	var (
		best    *Snake
		bestIdx int
		bestD   = math.Inf(1)
	)
	for _, e := range w.Grid.NearbySnakeBody(h.X, h.Y, a.Size()+SnakeMaxSize*BodyRadiusFactor, a.ID) {
		v := w.Snakes[e.id]
		if v == nil || !v.Alive || v.IsInvincible(now) || e.segIdx >= len(v.Segments) {
			continue
		}
		seg := v.Segments[e.segIdx]
		d := dist(h.X, h.Y, seg.X, seg.Y)
		if d > a.Size()+v.BodyRadius() {
			continue
		}
		if d < bestD || (d == bestD && best != nil && v.ID < best.ID) {
			best, bestIdx, bestD = v, e.segIdx, d
		}
	}
	return best, bestIdx
}

// resolveHeadOn applies the head-to-head rules: ramming beats not ramming,
// two rammers both die, a helmet on either side turns the hit into a
// bounce, and otherwise both die.
func (w *World) resolveHeadOn(a, b *Snake, now time.Time) {
	ra, rb := a.IsRamming(now), b.IsRamming(now)
	switch {
	case ra && rb:
		w.kill(a, b.ID, now)
		w.kill(b, a.ID, now)
	case ra:
		w.kill(b, a.ID, now)
	case rb:
		w.kill(a, b.ID, now)
	case a.hasHelmet(now) || b.hasHelmet(now):
		w.bounce(a, b, now)
	default:
		w.kill(a, b.ID, now)
		w.kill(b, a.ID, now)
	}
}

func (s *Snake) hasHelmet(now time.Time) bool {
	h := s.powerUp(PowerUpHelmet, now)
	return h != nil && h.Integrity > 0
}

// bounce pushes both heads apart along the contact normal, turns them away
// from each other and gives both a speed kick. Each helmet involved pays
// HelmetBounceCost.
func (w *World) bounce(a, b *Snake, now time.Time) {
	ha, hb := a.Head(), b.Head()
	nx, ny := hb.X-ha.X, hb.Y-ha.Y
	d := math.Hypot(nx, ny)
	if d == 0 {
		nx, ny, d = math.Cos(a.Angle), math.Sin(a.Angle), 1
	}
	nx, ny = nx/d, ny/d
	push := (a.Size()+b.Size()-d)/2 + 1

	a.Segments[0].X = clamp(ha.X-nx*push, 0, w.Width)
	a.Segments[0].Y = clamp(ha.Y-ny*push, 0, w.Height)
	b.Segments[0].X = clamp(hb.X+nx*push, 0, w.Width)
	b.Segments[0].Y = clamp(hb.Y+ny*push, 0, w.Height)

	a.Angle = math.Atan2(-ny, -nx)
	a.TargetAngle = a.Angle
	b.Angle = math.Atan2(ny, nx)
	b.TargetAngle = b.Angle
	a.kick(now)
	b.kick(now)
	a.helmetBounce(now)
	b.helmetBounce(now)

	w.spawnEffect(EffectBounce, (ha.X+hb.X)/2, (ha.Y+hb.Y)/2)
	w.emit(Event{Kind: EventBounce, EntityID: a.ID, OtherID: b.ID})
}

// collideProjectiles resolves projectile hits: heads first, then bodies.
func (w *World) collideProjectiles(now time.Time) {
	snakes := w.sortedSnakes()
	for _, p := range w.Projectiles {
		if !p.Alive {
			continue
		}
		deflected := false
		for _, s := range snakes {
			if !s.Alive || !p.canHit(s.ID) || s.IsInvincible(now) {
				continue
			}
			h := s.Head()
			r := s.Size() + ProjectileRadius
			if dist2(p.X, p.Y, h.X, h.Y) <= r*r {
				deflected = w.hitHead(p, s, now)
				break
			}
		}
		if !p.Alive || deflected {
			continue
		}
		if v, idx := w.projectileBodyContact(p, now); v != nil {
			w.hitBody(p, v, idx, now)
		}
	}
}

func (w *World) projectileBodyContact(p *Projectile, now time.Time) (*Snake, int) {
	var (
		best    *Snake
		bestIdx int
		bestD   = math.Inf(1)
	)
	for _, e := range w.Grid.NearbySnakeBody(p.X, p.Y, SnakeMaxSize*BodyRadiusFactor+ProjectileRadius, p.OwnerID) {
		v := w.Snakes[e.id]
		if v == nil || !v.Alive || !p.canHit(v.ID) || v.IsInvincible(now) || e.segIdx >= len(v.Segments) {
			continue
		}
		seg := v.Segments[e.segIdx]
		d := dist(p.X, p.Y, seg.X, seg.Y)
		if d > v.BodyRadius()+ProjectileRadius {
			continue
		}
		if d < bestD {
			best, bestIdx, bestD = v, e.segIdx, d
		}
	}
	return best, bestIdx
}

// hitHead applies a head hit. It reports true when a forcefield deflected
// the projectile, which then keeps flying without an owner.
func (w *World) hitHead(p *Projectile, s *Snake, now time.Time) bool {
	h := s.Head()
	if s.useForcefield(now) {
		p.reflect(p.X-h.X, p.Y-h.Y)
		p.OwnerID = ""
		p.IgnoreID = s.ID
		w.spawnEffect(EffectDeflect, p.X, p.Y)
		w.emit(Event{Kind: EventDeflect, EntityID: s.ID})
		return true
	}
	p.Alive = false
	dmg, helmeted := s.absorbWithHelmet(p.Damage, now)
	if !helmeted {
		w.kill(s, p.OwnerID, now)
		return false
	}
	w.spawnEffect(EffectHit, h.X, h.Y)
	if dmg <= 0 {
		return false
	}
	s.Segments[0].Health -= dmg
	if s.Segments[0].Health <= 0 {
		w.kill(s, p.OwnerID, now)
	}
	return false
}

// hitBody applies scaled damage to one segment and severs it at zero health.
func (w *World) hitBody(p *Projectile, v *Snake, idx int, now time.Time) {
	p.Alive = false
	seg := &v.Segments[idx]
	seg.Health -= p.Damage * BodyDamageScale
	w.spawnEffect(EffectHit, seg.X, seg.Y)
	if seg.Health <= 0 {
		w.sever(v, idx, p.OwnerID, now)
	}
}

package game

import (
	"math"
	"time"
)

// vacuumRadius is how far s pulls collectibles in.
func (s *Snake) vacuumRadius() float64 {
	r := s.Size() * VacuumRadiusFactor
	if s.IsBoosting() {
		r *= VacuumBoostFactor
	}
	return r
}

// pull moves (x,y) toward the head by up to step px without overshooting.
// It returns the new position and the applied velocity.
func pull(x, y, hx, hy, step float64) (nx, ny, vx, vy float64) {
	d := dist(x, y, hx, hy)
	if d == 0 {
		return x, y, 0, 0
	}
	move := math.Min(step, d)
	vx = (hx - x) / d * move
	vy = (hy - y) / d * move
	return x + vx, y + vy, vx, vy
}

// vacuum drags food, orbs and coins near a live entity toward its head.
// Items pulled by nobody lose their vacuum velocity.
func (w *World) vacuum() {
	for _, f := range w.Food {
		f.VX, f.VY = 0, 0
	}
	for _, c := range w.Coins {
		c.VX, c.VY = 0, 0
	}
	for _, s := range w.sortedSnakes() {
		h := s.Head()
		r := s.vacuumRadius()
		step := VacuumSpeed
		if s.IsBoosting() {
			step = VacuumBoostSpeed
		}
		for _, id := range w.Grid.NearbyItems(entryFood, h.X, h.Y, r) {
			if f := w.Food[id]; f != nil {
				f.X, f.Y, f.VX, f.VY = pull(f.X, f.Y, h.X, h.Y, step)
			}
		}
		for _, id := range w.Grid.NearbyItems(entryOrb, h.X, h.Y, r) {
			if o := w.Orbs[id]; o != nil {
				o.X, o.Y, _, _ = pull(o.X, o.Y, h.X, h.Y, step)
			}
		}
		for _, id := range w.Grid.NearbyItems(entryCoin, h.X, h.Y, r) {
			if c := w.Coins[id]; c != nil {
				c.X, c.Y, c.VX, c.VY = pull(c.X, c.Y, h.X, h.Y, step)
			}
		}
	}
}

// collectItems hands every collectible touching a live head to that
// entity. Entities are visited in ID order, so a contested item goes to the
// lower ID.
func (w *World) collectItems(now time.Time) {
	for _, s := range w.sortedSnakes() {
		h := s.Head()
		// grid positions predate the vacuum pass
		reach := s.Size() + math.Max(PickupRadius, OrbRadius) + VacuumBoostSpeed

		for _, id := range w.Grid.NearbyItems(entryFood, h.X, h.Y, reach) {
			f := w.Food[id]
			if f == nil || !touches(h, s.Size()+FoodRadius, f.X, f.Y) {
				continue
			}
			s.eat(f.Value)
			delete(w.Food, id)
		}
		for _, id := range w.Grid.NearbyItems(entryOrb, h.X, h.Y, reach) {
			o := w.Orbs[id]
			if o == nil || !touches(h, s.Size()+OrbRadius, o.X, o.Y) {
				continue
			}
			s.eat(o.Value)
			delete(w.Orbs, id)
		}
		for _, id := range w.Grid.NearbyItems(entryCoin, h.X, h.Y, reach) {
			c := w.Coins[id]
			if c == nil || !touches(h, s.Size()+CoinRadius, c.X, c.Y) {
				continue
			}
			s.addCash(c.Value)
			delete(w.Coins, id)
		}
		if !w.Warfare() {
			continue
		}
		for _, id := range w.Grid.NearbyItems(entryPickup, h.X, h.Y, reach) {
			p := w.Pickups[id]
			if p == nil || !touches(h, s.Size()+PickupRadius, p.X, p.Y) {
				continue
			}
			s.applyPickup(p, now)
			delete(w.Pickups, id)
		}
	}
}

func touches(h Point, r, x, y float64) bool {
	return dist2(h.X, h.Y, x, y) <= r*r
}

// eat grants boost and body mass. Boost never exceeds BoostMax through
// eating, but an overcharged pool is not cut back either.
func (s *Snake) eat(value float64) {
	if s.Boost < BoostMax {
		s.Boost = math.Min(BoostMax, s.Boost+value)
	}
	s.mass += value
}

func (s *Snake) applyPickup(p *Pickup, now time.Time) {
	switch p.Kind {
	case PickupWeapon:
		s.equipWeapon(p.Weapon)
	case PickupAmmo:
		s.addAmmo(p.Ammo, p.Amount)
	case PickupPowerUp:
		s.grantPowerUp(p.PowerUp, now)
	}
}

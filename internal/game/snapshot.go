package game

import (
	"sort"
	"time"

	"arena-server/internal/protocol"
)

// Snapshot builds the shared room-wide state.
func (w *World) Snapshot(now time.Time) protocol.State {
	return w.snapshot(now, nil, 0)
}

// SnapshotFor builds the state for one player: entities and items beyond
// ViewDistance of the player's head are left out and the player's private
// inventory is attached.
func (w *World) SnapshotFor(id string, now time.Time) protocol.State {
	s := w.Snakes[id]
	if s == nil {
		return w.Snapshot(now)
	}
	h := s.Head()
	st := w.snapshot(now, &h, ViewDistance)
	priv := s.privateDTO(now)
	st.You = &priv
	return st
}

func (w *World) snapshot(now time.Time, center *Point, radius float64) protocol.State {
	visible := func(x, y float64) bool {
		return center == nil || dist2(center.X, center.Y, x, y) <= radius*radius
	}
	st := protocol.State{
		Tick:        w.Tick,
		Time:        now.UnixMilli(),
		Snakes:      []protocol.SnakeDTO{},
		Food:        []protocol.FoodDTO{},
		Orbs:        []protocol.OrbDTO{},
		Coins:       []protocol.CoinDTO{},
		Leaderboard: w.Leaderboard(),
		KingID:      w.KingID,
	}
	for _, s := range w.sortedSnakes() {
		if center != nil && !s.within(*center, radius) {
			continue
		}
		st.Snakes = append(st.Snakes, s.toDTO(now, w.Warfare()))
	}
	for _, f := range w.Food {
		if visible(f.X, f.Y) {
			st.Food = append(st.Food, protocol.FoodDTO{ID: f.ID, X: roundTo1(f.X), Y: roundTo1(f.Y), Value: f.Value, Color: f.Color})
		}
	}
	for _, o := range w.Orbs {
		if visible(o.X, o.Y) {
			st.Orbs = append(st.Orbs, protocol.OrbDTO{ID: o.ID, X: roundTo1(o.X), Y: roundTo1(o.Y), Value: o.Value, Hue: o.Hue})
		}
	}
	for _, c := range w.Coins {
		if visible(c.X, c.Y) {
			st.Coins = append(st.Coins, protocol.CoinDTO{ID: c.ID, X: roundTo1(c.X), Y: roundTo1(c.Y), Value: c.Value})
		}
	}
	for _, p := range w.Pickups {
		if visible(p.X, p.Y) {
			st.Pickups = append(st.Pickups, protocol.PickupDTO{
				ID: p.ID, X: roundTo1(p.X), Y: roundTo1(p.Y), Kind: p.Kind.String(), Item: p.Item(), Amount: p.Amount,
			})
		}
	}
	for _, p := range w.Projectiles {
		if !p.Alive || !visible(p.X, p.Y) {
			continue
		}
		dto := protocol.ProjectileDTO{
			ID: p.ID, X: roundTo1(p.X), Y: roundTo1(p.Y), VX: roundTo1(p.VX), VY: roundTo1(p.VY), Weapon: p.Weapon.String(),
		}
		for _, t := range p.Trail {
			dto.Trail = append(dto.Trail, [2]float64{roundTo1(t.X), roundTo1(t.Y)})
		}
		st.Projectiles = append(st.Projectiles, dto)
	}
	for _, e := range w.Effects {
		if !visible(e.X, e.Y) {
			continue
		}
		dto := protocol.EffectDTO{ID: e.ID, Kind: e.Kind.String(), X: roundTo1(e.X), Y: roundTo1(e.Y)}
		dto.Particles = make([][2]float64, len(e.Particles))
		for i, p := range e.Particles {
			dto.Particles[i] = [2]float64{roundTo1(p.X), roundTo1(p.Y)}
		}
		st.Effects = append(st.Effects, dto)
	}
	sortStable(&st)
	return st
}

// sortStable orders item lists by ID so identical worlds encode identically.
func sortStable(st *protocol.State) {
	sort.Slice(st.Food, func(i, j int) bool { return st.Food[i].ID < st.Food[j].ID })
	sort.Slice(st.Orbs, func(i, j int) bool { return st.Orbs[i].ID < st.Orbs[j].ID })
	sort.Slice(st.Coins, func(i, j int) bool { return st.Coins[i].ID < st.Coins[j].ID })
	sort.Slice(st.Pickups, func(i, j int) bool { return st.Pickups[i].ID < st.Pickups[j].ID })
}

// within reports whether any segment lies inside the view circle.
func (s *Snake) within(c Point, radius float64) bool {
	r2 := radius * radius
	for _, seg := range s.Segments {
		if dist2(c.X, c.Y, seg.X, seg.Y) <= r2 {
			return true
		}
	}
	return false
}

// toDTO converts snake to serializable form.
// Coordinates are rounded to 1 decimal place to reduce wire size.
func (s *Snake) toDTO(now time.Time, warfare bool) protocol.SnakeDTO {
	pairs := make([][2]float64, len(s.Segments))
	for i, p := range s.Segments {
		pairs[i] = [2]float64{roundTo1(p.X), roundTo1(p.Y)}
	}
	dto := protocol.SnakeDTO{
		ID:         s.ID,
		Name:       s.Name,
		Segments:   pairs,
		Color:      s.Color,
		Cash:       s.Cash,
		Size:       roundTo1(s.Size()),
		Angle:      roundTo1(s.Angle),
		Boosting:   boolInt(s.IsBoosting()),
		Invincible: boolInt(s.IsInvincible(now)),
		AI:         boolInt(s.IsAI),
	}
	if warfare {
		if wp := s.ActiveWeapon(); wp != nil {
			dto.Weapon = wp.Kind.String()
		}
		if s.AI != nil {
			dto.Combat = s.AI.State.String()
		}
		for _, p := range s.PowerUps {
			if now.Before(p.ExpiresAt) {
				dto.PowerUps = append(dto.PowerUps, p.Kind.String())
			}
		}
	}
	return dto
}

func (s *Snake) privateDTO(now time.Time) protocol.PrivateDTO {
	out := protocol.PrivateDTO{
		Alive:     s.Alive,
		CashedOut: s.CashedOut,
		Boost:     roundTo1(s.Boost),
		Cash:      s.Cash,
		Wager:     s.Wager,
	}
	if s.IsInvincible(now) {
		out.InvincibleMs = s.InvincibleUntil.Sub(now).Milliseconds()
	}
	hasWeapon := false
	for sl := Slot(0); sl < slotCount; sl++ {
		wp := s.Weapons[sl]
		if wp == nil {
			continue
		}
		hasWeapon = true
		out.Weapons = append(out.Weapons, protocol.WeaponDTO{
			Slot: sl.String(), Kind: wp.Kind.String(), Ammo: wp.Ammo, MaxAmmo: wp.Kind.Stats().MaxAmmo,
		})
	}
	if hasWeapon {
		out.ActiveSlot = s.ActiveSlot.String()
	}
	for t := AmmoType(1); t < ammoTypeCount; t++ {
		if s.Reserve[t] > 0 {
			if out.Ammo == nil {
				out.Ammo = make(map[string]int)
			}
			out.Ammo[t.String()] = s.Reserve[t]
		}
	}
	for _, p := range s.PowerUps {
		if !now.Before(p.ExpiresAt) {
			continue
		}
		out.PowerUps = append(out.PowerUps, protocol.PowerUpDTO{
			Kind:        p.Kind.String(),
			ExpiresInMs: p.ExpiresAt.Sub(now).Milliseconds(),
			Integrity:   p.Integrity,
			Charges:     p.Charges,
		})
	}
	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package game

import (
	"math"
	"time"
)

// Shoot handles a playerShoot command: the aim point is remembered for
// full-auto fire and the active weapon is fired once if it can be.
func (w *World) Shoot(id string, tx, ty float64, now time.Time) FireResult {
	s := w.Snakes[id]
	if s == nil {
		return FireResult{Reason: ReasonNotInGame}
	}
	if !w.Warfare() {
		return FireResult{Reason: ReasonWrongMode}
	}
	s.AimX, s.AimY, s.hasAim = tx, ty, true
	return w.fire(s, tx, ty, now)
}

// autoFire repeats a held full-auto trigger at the last aim point. A click
// that arrived while the weapon was spinning up is fired here once it is due.
func (w *World) autoFire(s *Snake, now time.Time) {
	if s.IsAI || !(s.Trigger || s.pendingShot) || !s.hasAim {
		return
	}
	wp := s.ActiveWeapon()
	if wp == nil || wp.Kind.Stats().Mode != FireAuto {
		return
	}
	w.fire(s, s.AimX, s.AimY, now)
}

// fire pulls the trigger of s's active weapon toward (tx,ty).
func (w *World) fire(s *Snake, tx, ty float64, now time.Time) FireResult {
	if !s.Alive {
		return FireResult{Reason: ReasonNotAlive}
	}
	if s.IsInvincible(now) {
		return FireResult{Reason: ReasonInvincible}
	}
	wp := s.ActiveWeapon()
	if ok, reason := checkFire(wp, now); !ok {
		switch reason {
		case ReasonNoAmmo, ReasonEmptySlot:
			s.fallbackToSidearm()
		case ReasonCoolingDown:
			s.pendingShot = wp.Kind.Stats().Mode == FireAuto
		}
		return FireResult{Reason: reason}
	}

	st := wp.Kind.Stats()
	h := s.Head()
	base := math.Atan2(ty-h.Y, tx-h.X)
	wp.LastShot = now
	wp.holdShots++
	s.pendingShot = false

	shots := 0
	for _, a := range shotAngles(st, base, w.jitter) {
		w.launch(s, wp.Kind, a, now)
		shots++
	}
	dry := consumeRound(wp)
	if st.Mode == FireBurst && !dry {
		for i := 1; i < st.BurstCount; i++ {
			w.tasks.schedule(Task{
				Due:      now.Add(time.Duration(i) * st.BurstDelay),
				Kind:     TaskBurstShot,
				EntityID: s.ID,
				Life:     s.Life,
				Slot:     s.ActiveSlot,
				Weapon:   wp.Kind,
				TargetX:  tx,
				TargetY:  ty,
			})
		}
	}
	if dry {
		s.fallbackToSidearm()
	}
	return FireResult{Fired: true, Shots: shots}
}

// burstShot fires one follow-up round of a burst, provided the same weapon
// is still in the slot and loaded.
func (w *World) burstShot(s *Snake, t Task, now time.Time) {
	if !s.Alive {
		return
	}
	wp := s.Weapons[t.Slot]
	if wp == nil || wp.Kind != t.Weapon || wp.Ammo == 0 {
		return
	}
	h := s.Head()
	base := math.Atan2(t.TargetY-h.Y, t.TargetX-h.X)
	for _, a := range shotAngles(wp.Kind.Stats(), base, w.jitter) {
		w.launch(s, wp.Kind, a, now)
	}
	if consumeRound(wp) && s.ActiveSlot == t.Slot {
		s.fallbackToSidearm()
	}
}

func (w *World) launch(s *Snake, kind WeaponKind, angle float64, now time.Time) {
	h := s.Head()
	off := s.Size() + ProjectileRadius
	x := h.X + math.Cos(angle)*off
	y := h.Y + math.Sin(angle)*off
	w.Projectiles = append(w.Projectiles, newProjectile(w.nextID("p"), s.ID, kind, x, y, angle, now))
}

func (w *World) jitter() float64 {
	return w.rng.Float64()*2 - 1
}

// SwitchWeapon selects slot if it holds a usable weapon. Switching to a
// weapon that ran dry reloads it from reserve first.
func (w *World) SwitchWeapon(id string, slot Slot) (bool, string) {
	s := w.Snakes[id]
	if s == nil {
		return false, ReasonNotInGame
	}
	if !w.Warfare() {
		return false, ReasonWrongMode
	}
	if !s.Alive {
		return false, ReasonNotAlive
	}
	if slot >= slotCount || s.Weapons[slot] == nil {
		return false, ReasonEmptySlot
	}
	wp := s.Weapons[slot]
	if wp.Ammo == 0 {
		s.reload(wp)
	}
	if wp.Ammo == 0 {
		return false, ReasonNoAmmo
	}
	s.ActiveSlot = slot
	return true, ""
}

func (s *Snake) fallbackToSidearm() {
	if s.Weapons[SlotSidearm] != nil {
		s.ActiveSlot = SlotSidearm
	}
}

// reload moves reserve ammo into wp up to its capacity.
func (s *Snake) reload(wp *Weapon) {
	st := wp.Kind.Stats()
	if wp.Unlimited() || st.Ammo == AmmoNone {
		return
	}
	need := st.MaxAmmo - wp.Ammo
	take := min(need, s.Reserve[st.Ammo])
	wp.Ammo += take
	s.Reserve[st.Ammo] -= take
}

// equipWeapon puts a picked-up weapon in the first open slot, or replaces
// the active non-sidearm slot (primary when the sidearm is active). Picking
// up a kind already carried refills it instead.
func (s *Snake) equipWeapon(kind WeaponKind) Slot {
	for _, sl := range []Slot{SlotPrimary, SlotSecondary} {
		if wp := s.Weapons[sl]; wp != nil && wp.Kind == kind {
			wp.Ammo = kind.Stats().MaxAmmo
			return sl
		}
	}
	target := SlotPrimary
	switch {
	case s.Weapons[SlotPrimary] == nil:
		target = SlotPrimary
	case s.Weapons[SlotSecondary] == nil:
		target = SlotSecondary
	case s.ActiveSlot != SlotSidearm:
		target = s.ActiveSlot
	}
	s.Weapons[target] = newWeapon(kind)
	if s.ActiveSlot == SlotSidearm {
		s.ActiveSlot = target
	}
	return target
}

// addAmmo tops up carried weapons of type t first; the rest goes to reserve.
func (s *Snake) addAmmo(t AmmoType, amount int) {
	for _, sl := range []Slot{SlotPrimary, SlotSecondary} {
		wp := s.Weapons[sl]
		if wp == nil || amount <= 0 {
			continue
		}
		st := wp.Kind.Stats()
		if st.Ammo != t {
			continue
		}
		give := min(st.MaxAmmo-wp.Ammo, amount)
		wp.Ammo += give
		amount -= give
	}
	if amount > 0 {
		s.Reserve[t] += amount
	}
}

package game

import (
	"math"
	"time"

	"arena-server/internal/protocol"
)

// WeaponKind identifies a weapon variant. Behaviour lives in weaponTable;
// the kind is just a tag.
type WeaponKind uint8

const (
	WeaponNone WeaponKind = iota
	WeaponPistol
	WeaponSMG
	WeaponRifle
	WeaponBurst
	WeaponShotgun
	WeaponSniper
	weaponKindCount
)

// FireMode selects how a trigger pull turns into projectiles.
type FireMode uint8

const (
	FireSemi   FireMode = iota // one projectile per playerShoot
	FireAuto                   // repeats while the trigger is held
	FireBurst                  // BurstCount projectiles BurstDelay apart
	FireSpread                 // Pellets projectiles at once across SpreadArc
)

// AmmoType groups weapons that share reserve ammunition.
type AmmoType uint8

const (
	AmmoNone AmmoType = iota // unlimited
	AmmoLight
	AmmoRifle
	AmmoShells
	AmmoSniper
	ammoTypeCount
)

// WeaponStats is the static definition of a weapon kind.
type WeaponStats struct {
	Name            string
	Damage          float64 // per projectile
	MaxAmmo         int     // 0 means unlimited
	FireInterval    time.Duration
	ProjectileSpeed float64
	Accuracy        float64 // 0..100
	Range           float64
	Mode            FireMode
	Ammo            AmmoType
	BurstCount      int
	BurstDelay      time.Duration
	Pellets         int
	SpreadArc       float64
}

var weaponTable = [weaponKindCount]WeaponStats{
	WeaponPistol: {
		Name: "pistol", Damage: 12, FireInterval: 350 * time.Millisecond,
		ProjectileSpeed: 14, Accuracy: 90, Range: 900, Mode: FireSemi,
	},
	WeaponSMG: {
		Name: "smg", Damage: 7, MaxAmmo: 120, FireInterval: 90 * time.Millisecond,
		ProjectileSpeed: 15, Accuracy: 70, Range: 800, Mode: FireAuto, Ammo: AmmoLight,
	},
	WeaponRifle: {
		Name: "rifle", Damage: 14, MaxAmmo: 90, FireInterval: 150 * time.Millisecond,
		ProjectileSpeed: 17, Accuracy: 82, Range: 1200, Mode: FireAuto, Ammo: AmmoRifle,
	},
	WeaponBurst: {
		Name: "burst", Damage: 16, MaxAmmo: 60, FireInterval: 450 * time.Millisecond,
		ProjectileSpeed: 17, Accuracy: 88, Range: 1200, Mode: FireBurst, Ammo: AmmoRifle,
		BurstCount: 3, BurstDelay: 70 * time.Millisecond,
	},
	WeaponShotgun: {
		Name: "shotgun", Damage: 9, MaxAmmo: 24, FireInterval: 900 * time.Millisecond,
		ProjectileSpeed: 13, Accuracy: 60, Range: 500, Mode: FireSpread, Ammo: AmmoShells,
		Pellets: 6, SpreadArc: 0.5,
	},
	WeaponSniper: {
		Name: "sniper", Damage: 70, MaxAmmo: 10, FireInterval: 1400 * time.Millisecond,
		ProjectileSpeed: 30, Accuracy: 98, Range: 2200, Mode: FireSemi, Ammo: AmmoSniper,
	},
}

// Stats returns the static definition for k.
func (k WeaponKind) Stats() WeaponStats {
	if k >= weaponKindCount {
		return WeaponStats{}
	}
	return weaponTable[k]
}

func (k WeaponKind) String() string {
	if s := k.Stats(); s.Name != "" {
		return s.Name
	}
	return "none"
}

// pickupWeapons are the kinds that spawn as world pickups.
var pickupWeapons = []WeaponKind{WeaponSMG, WeaponRifle, WeaponBurst, WeaponShotgun, WeaponSniper}

func (a AmmoType) String() string {
	switch a {
	case AmmoLight:
		return "light"
	case AmmoRifle:
		return "rifle"
	case AmmoShells:
		return "shells"
	case AmmoSniper:
		return "sniper"
	}
	return "none"
}

// pickupAmount is the ammo granted by one ammo pickup of type a.
func (a AmmoType) pickupAmount() int {
	switch a {
	case AmmoLight:
		return 60
	case AmmoRifle:
		return 30
	case AmmoShells:
		return 8
	case AmmoSniper:
		return 4
	}
	return 0
}

// Slot indexes the three-slot inventory.
type Slot uint8

const (
	SlotPrimary Slot = iota
	SlotSecondary
	SlotSidearm
	slotCount
)

func (s Slot) String() string {
	switch s {
	case SlotPrimary:
		return protocol.SlotPrimary
	case SlotSecondary:
		return protocol.SlotSecondary
	case SlotSidearm:
		return protocol.SlotSidearm
	}
	return ""
}

// ParseSlot maps a wire slot name to a Slot.
func ParseSlot(name string) (Slot, bool) {
	switch name {
	case protocol.SlotPrimary:
		return SlotPrimary, true
	case protocol.SlotSecondary:
		return SlotSecondary, true
	case protocol.SlotSidearm:
		return SlotSidearm, true
	}
	return 0, false
}

// Weapon is an equipped weapon instance.
type Weapon struct {
	Kind     WeaponKind
	Ammo     int // -1 for unlimited
	LastShot time.Time

	// Full-auto run: shot n of a held trigger is due n intervals after
	// holdStart.
	holdStart time.Time
	holdShots int
}

func newWeapon(k WeaponKind) *Weapon {
	st := k.Stats()
	ammo := st.MaxAmmo
	if ammo == 0 {
		ammo = -1
	}
	return &Weapon{Kind: k, Ammo: ammo}
}

// Unlimited reports whether the weapon never runs out.
func (w *Weapon) Unlimited() bool {
	return w.Ammo < 0
}

// Fire rejection reasons.
const (
	ReasonNotAlive    = "not alive"
	ReasonInvincible  = "invincible"
	ReasonNoAmmo      = "no ammo"
	ReasonCoolingDown = "cooling down"
	ReasonEmptySlot   = "empty slot"
	ReasonWrongMode   = "wrong mode"
	ReasonNotInGame   = "not in game"
)

// checkFire reports whether w may fire at now, and why not otherwise. A
// full-auto weapon that has not been fired for more than an interval past
// its next due shot starts a new run at now.
func checkFire(w *Weapon, now time.Time) (bool, string) {
	if w == nil {
		return false, ReasonEmptySlot
	}
	if w.Ammo == 0 {
		return false, ReasonNoAmmo
	}
	st := w.Kind.Stats()
	if st.Mode == FireAuto {
		due := w.nextAutoShot()
		if w.holdStart.IsZero() || now.Sub(due) > st.FireInterval {
			w.holdStart, w.holdShots = now, 0
			return false, ReasonCoolingDown
		}
		if now.Before(due) {
			return false, ReasonCoolingDown
		}
		return true, ""
	}
	if !w.LastShot.IsZero() && now.Sub(w.LastShot) < st.FireInterval {
		return false, ReasonCoolingDown
	}
	return true, ""
}

// nextAutoShot is when the current full-auto run may fire again. A run
// that has lasted D has fired at most floor(D/interval) shots.
func (w *Weapon) nextAutoShot() time.Time {
	return w.holdStart.Add(time.Duration(w.holdShots+1) * w.Kind.Stats().FireInterval)
}

// consumeRound takes one round from w. It returns true when the weapon has
// just run dry.
func consumeRound(w *Weapon) bool {
	if w.Unlimited() {
		return false
	}
	if w.Ammo > 0 {
		w.Ammo--
	}
	return w.Ammo == 0
}

// spreadFor is the maximum angular error for a given accuracy.
func spreadFor(accuracy float64) float64 {
	return (100 - clamp(accuracy, 0, 100)) / 100 * MaxSpread
}

// shotAngles returns the launch angles for one trigger pull at baseAngle.
// jitter returns a value in [-1,1].
func shotAngles(st WeaponStats, baseAngle float64, jitter func() float64) []float64 {
	spread := spreadFor(st.Accuracy)
	if st.Mode == FireSpread && st.Pellets > 1 {
		out := make([]float64, st.Pellets)
		step := st.SpreadArc / float64(st.Pellets-1)
		start := baseAngle - st.SpreadArc/2
		for i := range out {
			out[i] = start + float64(i)*step + jitter()*spread*0.25
		}
		return out
	}
	return []float64{baseAngle + jitter()*spread}
}

// FireResult reports the outcome of a trigger pull.
type FireResult struct {
	Fired  bool
	Shots  int
	Reason string
}

// newProjectile launches a projectile from (x,y) along angle.
func newProjectile(id, ownerID string, kind WeaponKind, x, y, angle float64, now time.Time) *Projectile {
	st := kind.Stats()
	return &Projectile{
		ID:      id,
		OwnerID: ownerID,
		Weapon:  kind,
		X:       x,
		Y:       y,
		VX:      math.Cos(angle) * st.ProjectileSpeed,
		VY:      math.Sin(angle) * st.ProjectileSpeed,
		Damage:  st.Damage,
		Range:   st.Range,
		BornAt:  now,
		Alive:   true,
	}
}

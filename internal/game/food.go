package game

import (
	"math"
	"math/rand"
)

// Food is a small boost pellet.
type Food struct {
	ID     string
	X, Y   float64
	VX, VY float64
	Value  float64 // boost granted
	Color  string
}

// GlowOrb is a drifting high-value boost pellet.
type GlowOrb struct {
	ID       string
	X, Y     float64
	VX, VY   float64
	Value    float64
	Hue      int
	dirTicks int
}

// Coin carries cash.
type Coin struct {
	ID     string
	X, Y   float64
	VX, VY float64
	Value  int
}

// PickupKind tags a warfare pickup.
type PickupKind uint8

const (
	PickupWeapon PickupKind = iota
	PickupAmmo
	PickupPowerUp
)

func (k PickupKind) String() string {
	switch k {
	case PickupWeapon:
		return "weapon"
	case PickupAmmo:
		return "ammo"
	case PickupPowerUp:
		return "powerup"
	}
	return ""
}

// Pickup is a weapon, ammo box or power-up lying in the world.
type Pickup struct {
	ID      string
	X, Y    float64
	Kind    PickupKind
	Weapon  WeaponKind
	Ammo    AmmoType
	Amount  int
	PowerUp PowerUpKind
}

// Item returns the concrete variant name shown to clients.
func (p *Pickup) Item() string {
	switch p.Kind {
	case PickupWeapon:
		return p.Weapon.String()
	case PickupAmmo:
		return p.Ammo.String()
	default:
		return p.PowerUp.String()
	}
}

var foodColors = []string{
	"#ff6b6b", "#ffd93d", "#6bcb77", "#4d96ff", "#ff922b",
	"#cc5de8", "#20c997", "#f06595", "#74c0fc", "#a9e34b",
}

func newFood(id string, x, y float64, rng *rand.Rand) *Food {
	return &Food{
		ID:    id,
		X:     x,
		Y:     y,
		Value: math.Round(randRange(rng, FoodMinBoost, FoodMaxBoost)),
		Color: foodColors[rng.Intn(len(foodColors))],
	}
}

func newGlowOrb(id string, x, y float64, rng *rand.Rand) *GlowOrb {
	o := &GlowOrb{
		ID:    id,
		X:     x,
		Y:     y,
		Value: math.Round(randRange(rng, OrbMinBoost, OrbMaxBoost)),
		Hue:   rng.Intn(360),
	}
	o.turn(rng)
	return o
}

func (o *GlowOrb) turn(rng *rand.Rand) {
	a := rng.Float64() * 2 * math.Pi
	o.VX = math.Cos(a) * OrbDriftSpeed
	o.VY = math.Sin(a) * OrbDriftSpeed
	o.dirTicks = 60 + rng.Intn(120)
}

// drift advances an orb one tick, bouncing off the world edges.
func (o *GlowOrb) drift(rng *rand.Rand, width, height float64) {
	o.X += o.VX
	o.Y += o.VY
	if o.X < 0 || o.X > width {
		o.VX = -o.VX
		o.X = clamp(o.X, 0, width)
	}
	if o.Y < 0 || o.Y > height {
		o.VY = -o.VY
		o.Y = clamp(o.Y, 0, height)
	}
	o.dirTicks--
	if o.dirTicks <= 0 {
		o.turn(rng)
	}
}

func newCoin(id string, x, y float64, value int) *Coin {
	return &Coin{ID: id, X: x, Y: y, Value: value}
}

// newPickup rolls a random warfare pickup of the given kind.
func newPickup(id string, kind PickupKind, x, y float64, rng *rand.Rand) *Pickup {
	p := &Pickup{ID: id, X: x, Y: y, Kind: kind}
	switch kind {
	case PickupWeapon:
		p.Weapon = pickupWeapons[rng.Intn(len(pickupWeapons))]
	case PickupAmmo:
		p.Ammo = AmmoType(1 + rng.Intn(int(ammoTypeCount)-1))
		p.Amount = p.Ammo.pickupAmount()
	case PickupPowerUp:
		p.PowerUp = PowerUpKind(rng.Intn(int(powerUpKindCount)))
	}
	return p
}

// foodCluster scatters 5-12 food items around (cx,cy).
func (w *World) foodCluster(cx, cy float64) []*Food {
	count := 5 + w.rng.Intn(8)
	radius := 80.0 + w.rng.Float64()*70.0
	out := make([]*Food, count)
	for i := range out {
		x, y := randomPointNear(w.rng, cx, cy, radius, w.Width, w.Height)
		out[i] = newFood(w.nextID("f"), x, y, w.rng)
	}
	return out
}

// coinValues splits total into coins no larger than MaxCoinValue.
func coinValues(total int) []int {
	if total <= 0 {
		return nil
	}
	n := (total + MaxCoinValue - 1) / MaxCoinValue
	out := make([]int, n)
	for i := range out {
		out[i] = total / n
	}
	for i := 0; i < total%n; i++ {
		out[i]++
	}
	return out
}

// dropCoins scatters total cash as coins along a body.
func (w *World) dropCoins(body []Segment, total int) {
	values := coinValues(total)
	if len(values) == 0 || len(body) == 0 {
		return
	}
	step := float64(len(body)) / float64(len(values))
	for i, v := range values {
		seg := body[min(int(float64(i)*step), len(body)-1)]
		x := clamp(seg.X+(w.rng.Float64()*2-1)*15, 0, w.Width)
		y := clamp(seg.Y+(w.rng.Float64()*2-1)*15, 0, w.Height)
		c := newCoin(w.nextID("c"), x, y, v)
		w.Coins[c.ID] = c
	}
}

package game

import (
	"math"
	"time"
)

// Projectile is a fired round in flight.
type Projectile struct {
	ID       string
	OwnerID  string // cleared when deflected
	IgnoreID string // entity that may not be hit, e.g. the deflector
	Weapon   WeaponKind
	X, Y     float64
	VX, VY   float64
	Damage   float64
	Range    float64
	Traveled float64
	BornAt   time.Time
	Trail    []Point
	Alive    bool
}

// advance moves the projectile one tick and retires it when it leaves the
// world, runs out of range or outlives ProjectileMaxLifetime.
func (p *Projectile) advance(now time.Time, width, height float64) {
	if !p.Alive {
		return
	}
	p.Trail = append(p.Trail, Point{X: p.X, Y: p.Y})
	if len(p.Trail) > ProjectileTrailLength {
		p.Trail = p.Trail[len(p.Trail)-ProjectileTrailLength:]
	}
	p.X += p.VX
	p.Y += p.VY
	p.Traveled += math.Hypot(p.VX, p.VY)
	switch {
	case p.X < 0 || p.X > width || p.Y < 0 || p.Y > height:
		p.Alive = false
	case p.Range > 0 && p.Traveled > p.Range:
		p.Alive = false
	case now.Sub(p.BornAt) > ProjectileMaxLifetime:
		p.Alive = false
	}
}

// reflect mirrors the velocity about the normal (nx,ny) pointing away from
// the deflecting surface.
func (p *Projectile) reflect(nx, ny float64) {
	l := math.Hypot(nx, ny)
	if l == 0 {
		p.VX, p.VY = -p.VX, -p.VY
		return
	}
	nx, ny = nx/l, ny/l
	dot := p.VX*nx + p.VY*ny
	p.VX -= 2 * dot * nx
	p.VY -= 2 * dot * ny
}

// canHit reports whether the projectile may damage the snake with id.
func (p *Projectile) canHit(id string) bool {
	return p.Alive && id != p.OwnerID && id != p.IgnoreID
}

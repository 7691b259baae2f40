package game

import "math"

// EffectKind tags a collision effect for client rendering.
type EffectKind uint8

const (
	EffectDeath EffectKind = iota
	EffectSever
	EffectBounce
	EffectDeflect
	EffectHit
)

func (k EffectKind) String() string {
	switch k {
	case EffectDeath:
		return "death"
	case EffectSever:
		return "sever"
	case EffectBounce:
		return "bounce"
	case EffectDeflect:
		return "deflect"
	case EffectHit:
		return "hit"
	}
	return ""
}

// Particle is one short-lived spark of an effect.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Life   int // ticks left
}

// Effect is a burst of particles at a collision point.
type Effect struct {
	ID        string
	Kind      EffectKind
	X, Y      float64
	Particles []Particle
}

// spawnEffect adds a particle burst, dropping the oldest effect when the
// cap is reached.
func (w *World) spawnEffect(kind EffectKind, x, y float64) {
	if len(w.Effects) >= MaxEffects {
		w.Effects = w.Effects[1:]
	}
	e := &Effect{ID: w.nextID("e"), Kind: kind, X: x, Y: y}
	e.Particles = make([]Particle, EffectParticleCount)
	for i := range e.Particles {
		a := w.rng.Float64() * 2 * math.Pi
		sp := EffectParticleSpeed * (0.5 + w.rng.Float64())
		e.Particles[i] = Particle{X: x, Y: y, VX: math.Cos(a) * sp, VY: math.Sin(a) * sp, Life: EffectParticleLife}
	}
	w.Effects = append(w.Effects, e)
}

// updateEffects advances every particle and drops finished effects.
func (w *World) updateEffects() {
	kept := w.Effects[:0]
	for _, e := range w.Effects {
		live := e.Particles[:0]
		for _, p := range e.Particles {
			p.X += p.VX
			p.Y += p.VY
			p.VX *= ParticleDrag
			p.VY *= ParticleDrag
			p.Life--
			if p.Life > 0 {
				live = append(live, p)
			}
		}
		e.Particles = live
		if len(live) > 0 {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(w.Effects); i++ {
		w.Effects[i] = nil
	}
	w.Effects = kept
}

package game

import "time"

// PowerUpKind identifies a timed power-up.
type PowerUpKind uint8

const (
	PowerUpHelmet PowerUpKind = iota
	PowerUpForcefield
	PowerUpRam
	PowerUpSpeed
	PowerUpOvercharge // instant, never stored
	powerUpKindCount
)

type powerUpStats struct {
	name      string
	duration  time.Duration
	integrity float64
	charges   int
	speed     float64
	boost     float64
}

var powerUpTable = [powerUpKindCount]powerUpStats{
	PowerUpHelmet:     {name: "helmet", duration: 30 * time.Second, integrity: 100},
	PowerUpForcefield: {name: "forcefield", duration: 20 * time.Second, charges: 3},
	PowerUpRam:        {name: "ram", duration: 6 * time.Second},
	PowerUpSpeed:      {name: "speed", duration: 8 * time.Second, speed: 1.5},
	PowerUpOvercharge: {name: "overcharge", boost: 50},
}

func (k PowerUpKind) String() string {
	if k < powerUpKindCount {
		return powerUpTable[k].name
	}
	return "none"
}

// PowerUp is an active timed effect on a snake.
type PowerUp struct {
	Kind      PowerUpKind
	ExpiresAt time.Time
	Integrity float64 // helmet only
	Charges   int     // forcefield only
}

func (s *Snake) powerUp(kind PowerUpKind, now time.Time) *PowerUp {
	for i := range s.PowerUps {
		p := &s.PowerUps[i]
		if p.Kind == kind && now.Before(p.ExpiresAt) {
			return p
		}
	}
	return nil
}

// HasPowerUp reports whether kind is active at now.
func (s *Snake) HasPowerUp(kind PowerUpKind, now time.Time) bool {
	return s.powerUp(kind, now) != nil
}

// IsRamming reports whether the ram power-up is active.
func (s *Snake) IsRamming(now time.Time) bool {
	return s.HasPowerUp(PowerUpRam, now)
}

// grantPowerUp applies a picked-up power-up. Re-collecting an active kind
// refreshes it. When the snake already carries MaxActivePowerUps, the one
// closest to expiry is replaced.
func (s *Snake) grantPowerUp(kind PowerUpKind, now time.Time) {
	st := powerUpTable[kind]
	if kind == PowerUpOvercharge {
		if s.Boost < BoostOverchargeMax {
			s.Boost = min(s.Boost+st.boost, BoostOverchargeMax)
		}
		return
	}
	fresh := PowerUp{Kind: kind, ExpiresAt: now.Add(st.duration), Integrity: st.integrity, Charges: st.charges}
	if p := s.powerUp(kind, now); p != nil {
		*p = fresh
		return
	}
	s.expirePowerUps(now)
	if len(s.PowerUps) < MaxActivePowerUps {
		s.PowerUps = append(s.PowerUps, fresh)
		return
	}
	oldest := 0
	for i := range s.PowerUps {
		if s.PowerUps[i].ExpiresAt.Before(s.PowerUps[oldest].ExpiresAt) {
			oldest = i
		}
	}
	s.PowerUps[oldest] = fresh
}

// expirePowerUps drops effects whose time is up or whose resources are spent.
func (s *Snake) expirePowerUps(now time.Time) {
	kept := s.PowerUps[:0]
	for _, p := range s.PowerUps {
		if !now.Before(p.ExpiresAt) {
			continue
		}
		if p.Kind == PowerUpHelmet && p.Integrity <= 0 {
			continue
		}
		if p.Kind == PowerUpForcefield && p.Charges <= 0 {
			continue
		}
		kept = append(kept, p)
	}
	s.PowerUps = kept
}

// absorbWithHelmet lets an active helmet soak up damage. It returns the
// damage left over and whether a helmet was involved.
func (s *Snake) absorbWithHelmet(damage float64, now time.Time) (float64, bool) {
	h := s.powerUp(PowerUpHelmet, now)
	if h == nil || h.Integrity <= 0 {
		return damage, false
	}
	absorbed := min(h.Integrity, damage)
	h.Integrity -= absorbed
	return damage - absorbed, true
}

// helmetBounce spends HelmetBounceCost integrity. It reports false when no
// helmet is available.
func (s *Snake) helmetBounce(now time.Time) bool {
	h := s.powerUp(PowerUpHelmet, now)
	if h == nil || h.Integrity <= 0 {
		return false
	}
	h.Integrity -= HelmetBounceCost
	return true
}

// useForcefield spends one forcefield charge if available.
func (s *Snake) useForcefield(now time.Time) bool {
	f := s.powerUp(PowerUpForcefield, now)
	if f == nil || f.Charges <= 0 {
		return false
	}
	f.Charges--
	return true
}

func (s *Snake) powerUpSpeed(now time.Time) float64 {
	mult := 1.0
	if s.HasPowerUp(PowerUpSpeed, now) {
		mult *= powerUpTable[PowerUpSpeed].speed
	}
	return mult
}

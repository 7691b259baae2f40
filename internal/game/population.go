package game

// densityTarget scales a reference count to this world's area.
func (w *World) densityTarget(reference int) int {
	return int(float64(reference) * (w.Width * w.Height) / ReferenceArea)
}

// spawnPosition picks where a new collectible goes: usually near a random
// live human, otherwise anywhere.
func (w *World) spawnPosition(anchors []Point) (float64, float64) {
	if len(anchors) > 0 && w.rng.Float64() < SpawnNearPlayerOdds {
		a := anchors[w.rng.Intn(len(anchors))]
		return randomPointNear(w.rng, a.X, a.Y, SpawnNearRadius, w.Width, w.Height)
	}
	return randomRectPoint(w.rng, w.Width, w.Height, 0)
}

func (w *World) humanAnchors() []Point {
	var out []Point
	for _, s := range w.sortedSnakes() {
		if !s.IsAI {
			out = append(out, s.Head())
		}
	}
	return out
}

// populate tops collectible collections up toward their density targets,
// adding at most limit items per collection.
func (w *World) populate(limit int) {
	anchors := w.humanAnchors()

	// Food comes in clusters while the deficit is large.
	deficit := min(w.densityTarget(TargetFoodCount)-len(w.Food), limit)
	for deficit > 0 {
		x, y := w.spawnPosition(anchors)
		if deficit >= 5 {
			for _, f := range w.foodCluster(x, y) {
				if deficit <= 0 {
					break
				}
				w.Food[f.ID] = f
				deficit--
			}
			continue
		}
		f := newFood(w.nextID("f"), x, y, w.rng)
		w.Food[f.ID] = f
		deficit--
	}

	for n := min(w.densityTarget(TargetOrbCount)-len(w.Orbs), limit); n > 0; n-- {
		x, y := w.spawnPosition(anchors)
		o := newGlowOrb(w.nextID("o"), x, y, w.rng)
		w.Orbs[o.ID] = o
	}

	for n := min(w.densityTarget(TargetCoinCount)-len(w.Coins), limit); n > 0; n-- {
		x, y := w.spawnPosition(anchors)
		v := CoinMinValue + w.rng.Intn(CoinMaxValue-CoinMinValue+1)
		c := newCoin(w.nextID("c"), x, y, v)
		w.Coins[c.ID] = c
	}

	if !w.Warfare() {
		return
	}
	var counts [3]int
	for _, p := range w.Pickups {
		counts[p.Kind]++
	}
	targets := [3]int{
		PickupWeapon:  w.densityTarget(TargetWeaponPickups),
		PickupAmmo:    w.densityTarget(TargetAmmoPickups),
		PickupPowerUp: w.densityTarget(TargetPowerUps),
	}
	for kind := PickupWeapon; kind <= PickupPowerUp; kind++ {
		for n := min(targets[kind]-counts[kind], limit); n > 0; n-- {
			x, y := w.spawnPosition(anchors)
			p := newPickup(w.nextID("k"), kind, x, y, w.rng)
			w.Pickups[p.ID] = p
		}
	}
}

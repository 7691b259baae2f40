package game

import (
	"math"
	"math/rand"
)

// Point is a 2D coordinate
type Point struct {
	X float64
	Y float64
}

func dist(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	dy := ay - by
	return math.Sqrt(dx*dx + dy*dy)
}

func dist2(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	dy := ay - by
	return dx*dx + dy*dy
}

// normalizeAngle wraps an angle into (-π, π]
func normalizeAngle(a float64) float64 {
	a = math.Remainder(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// roundTo1 rounds a float64 to 1 decimal place to save protocol bytes.
func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// randomRectPoint returns a uniform point inside the world keeping margin px
// away from every edge.
func randomRectPoint(rng *rand.Rand, width, height, margin float64) (float64, float64) {
	return margin + rng.Float64()*(width-2*margin), margin + rng.Float64()*(height-2*margin)
}

// randomPointNear returns a uniform point within radius of (cx,cy), clamped
// to the world.
func randomPointNear(rng *rand.Rand, cx, cy, radius, width, height float64) (float64, float64) {
	r := radius * math.Sqrt(rng.Float64())
	a := rng.Float64() * 2 * math.Pi
	return clamp(cx+r*math.Cos(a), 0, width), clamp(cy+r*math.Sin(a), 0, height)
}

func randRange(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

package room

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSlidingWindowCapsBurst(t *testing.T) {
	w := newSlidingWindow(3, time.Second)
	for i := 0; i < 3; i++ {
		if !w.Allow(t0.Add(time.Duration(i) * time.Millisecond)) {
			t.Fatalf("event %d rejected inside budget", i)
		}
	}
	if w.Allow(t0.Add(10 * time.Millisecond)) {
		t.Fatalf("fourth event inside the window admitted")
	}
	if w.Allow(t0.Add(999 * time.Millisecond)) {
		t.Fatalf("window slid too early")
	}
	if !w.Allow(t0.Add(time.Second)) {
		t.Fatalf("oldest admission expired, event should pass")
	}
	if w.Allow(t0.Add(time.Second + time.Millisecond)) {
		t.Fatalf("second slot still inside the window")
	}
}

func TestRateLimiterClassesAreIndependent(t *testing.T) {
	rl := NewRateLimiter()
	shots := 0
	for i := 0; i < 100; i++ {
		if rl.Allow(ClassShooting, t0) {
			shots++
		}
	}
	if shots != classLimits[ClassShooting].n {
		t.Fatalf("admitted %d shots, want %d", shots, classLimits[ClassShooting].n)
	}
	if !rl.Allow(ClassMovement, t0) {
		t.Fatalf("movement budget consumed by shooting")
	}
	if rl.Allow(classCount, t0) {
		t.Fatalf("unknown class admitted")
	}
}

func TestMovementSustainedRate(t *testing.T) {
	rl := NewRateLimiter()
	admitted := 0
	// 240 events spread over two seconds: twice the movement budget.
	for i := 0; i < 240; i++ {
		if rl.Allow(ClassMovement, t0.Add(time.Duration(i)*time.Second/120)) {
			admitted++
		}
	}
	if admitted > 2*classLimits[ClassMovement].n {
		t.Fatalf("admitted %d over two seconds", admitted)
	}
	if admitted < classLimits[ClassMovement].n {
		t.Fatalf("admitted only %d", admitted)
	}
}

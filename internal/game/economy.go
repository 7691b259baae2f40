package game

import (
	"math"
	"time"
)

// Cash-out and respawn rejection reasons.
const (
	ReasonAlreadyCashedOut   = "already cashed out"
	ReasonInsufficientProfit = "insufficient profit"
	ReasonAlreadyAlive       = "already alive"
)

// CashOutResult reports the outcome of a cash-out attempt.
type CashOutResult struct {
	Success     bool
	Profit      int
	TotalCashed int
	Reason      string
}

// CashOut converts a live entity's balance into a terminal result. It
// succeeds only when the entity is alive, not cashed out yet, and holds more
// cash than it staked.
func (w *World) CashOut(id string, now time.Time) CashOutResult {
	s := w.Snakes[id]
	switch {
	case s == nil:
		return CashOutResult{Reason: ReasonNotInGame}
	case s.CashedOut:
		return CashOutResult{Reason: ReasonAlreadyCashedOut}
	case !s.Alive:
		return CashOutResult{Reason: ReasonNotAlive}
	case s.Cash <= s.Wager:
		return CashOutResult{Reason: ReasonInsufficientProfit}
	}
	res := CashOutResult{Success: true, Profit: s.Cash - s.Wager, TotalCashed: s.Cash}
	s.Alive = false
	s.CashedOut = true
	s.Trigger = false
	s.Boosting = false
	return res
}

// Respawn gives an entity a new life staked at its original wager. It also
// clears the cashed-out flag.
func (w *World) Respawn(id string, now time.Time) (bool, string) {
	s := w.Snakes[id]
	if s == nil {
		return false, ReasonNotInGame
	}
	if s.Alive {
		return false, ReasonAlreadyAlive
	}
	x, y, a := w.spawnPoint()
	s.spawn(x, y, a, s.Wager, now, w.Warfare())
	w.emit(Event{Kind: EventRespawn, EntityID: s.ID, IsAI: s.IsAI})
	return true, ""
}

func (w *World) nameOf(id string) string {
	if s := w.Snakes[id]; s != nil {
		return s.Name
	}
	return ""
}

// kill marks s dead, drops DeathDropShare of its cash along the body and
// credits killerID. AI entities get a respawn scheduled.
func (w *World) kill(s *Snake, killerID string, now time.Time) {
	if !s.Alive {
		return
	}
	s.Alive = false
	s.Trigger = false
	cash := s.Cash
	w.dropCoins(s.Segments, int(float64(cash)*DeathDropShare))
	s.Cash = 0

	cause := "collision"
	if k := w.Snakes[killerID]; k != nil && k != s {
		k.Kills++
		cause = k.Name
	}
	h := s.Head()
	w.spawnEffect(EffectDeath, h.X, h.Y)
	w.emit(Event{
		Kind:     EventDeath,
		EntityID: s.ID,
		OtherID:  killerID,
		Cause:    cause,
		Cash:     cash,
		Length:   len(s.Segments),
		IsAI:     s.IsAI,
	})
	if s.IsAI {
		w.tasks.schedule(Task{Due: now.Add(AIRespawnDelay), Kind: TaskRespawnAI, EntityID: s.ID, Life: s.Life})
	}
}

// sever cuts victim at idx. The cut segments carry a share of the victim's
// cash proportional to their count; SeverAttackerShare of it goes to the
// attacker and the rest is dropped as coins along the severed trail.
func (w *World) sever(victim *Snake, idx int, attackerID string, now time.Time) {
	n := len(victim.Segments)
	removed := victim.cutAt(idx)
	if len(removed) == 0 {
		return
	}
	frac := float64(len(removed)) / float64(n)
	share := int(math.Floor(float64(victim.Cash) * frac))
	victim.Cash -= share
	victim.mass *= 1 - frac

	payout := 0
	if a := w.Snakes[attackerID]; a != nil && a.Alive && a != victim {
		payout = int(float64(share) * SeverAttackerShare)
		a.addCash(payout)
	}
	w.dropCoins(removed, share-payout)

	w.spawnEffect(EffectSever, removed[0].X, removed[0].Y)
	w.emit(Event{Kind: EventSever, EntityID: victim.ID, OtherID: attackerID, Cash: share, Length: len(removed)})
}

package game

import (
	"sort"
	"time"
)

// TaskKind identifies deferred world work.
type TaskKind uint8

const (
	TaskRespawnAI TaskKind = iota
	TaskBurstShot
)

// Task is a scheduled action owned by a World. Tasks carry the target's Life
// so work meant for an earlier life of an entity is dropped.
type Task struct {
	Due      time.Time
	Kind     TaskKind
	EntityID string
	Life     uint64
	Slot     Slot
	Weapon   WeaponKind
	TargetX  float64
	TargetY  float64
}

type taskQueue struct {
	tasks []Task
}

func (q *taskQueue) schedule(t Task) {
	q.tasks = append(q.tasks, t)
}

// popDue removes and returns every task due at or before now, oldest first.
func (q *taskQueue) popDue(now time.Time) []Task {
	var due []Task
	kept := q.tasks[:0]
	for _, t := range q.tasks {
		if !t.Due.After(now) {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	q.tasks = kept
	sort.SliceStable(due, func(i, j int) bool { return due[i].Due.Before(due[j].Due) })
	return due
}

func (q *taskQueue) clear() {
	q.tasks = nil
}

// Len reports the number of pending tasks.
func (q *taskQueue) Len() int {
	return len(q.tasks)
}

// runTasks executes due tasks. A task whose entity is gone, or has been
// respawned since the task was scheduled, is skipped.
func (w *World) runTasks(now time.Time) {
	for _, t := range w.tasks.popDue(now) {
		s := w.Snakes[t.EntityID]
		if s == nil || s.Life != t.Life {
			continue
		}
		switch t.Kind {
		case TaskRespawnAI:
			if !s.Alive {
				w.respawnAI(s, now)
			}
		case TaskBurstShot:
			w.burstShot(s, t, now)
		}
	}
}

package room

import "time"

const emaAlpha = 0.1

// timing tracks an exponential moving average and the maximum of a duration.
type timing struct {
	avg  float64 // nanoseconds
	max  time.Duration
	seen bool
}

func (t *timing) observe(d time.Duration) {
	if !t.seen {
		t.avg = float64(d)
		t.seen = true
	} else {
		t.avg += emaAlpha * (float64(d) - t.avg)
	}
	if d > t.max {
		t.max = d
	}
}

func (t *timing) Avg() time.Duration { return time.Duration(t.avg) }

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// RoomStats is a point-in-time view of one room, safe to share.
type RoomStats struct {
	ID             string  `json:"id"`
	Mode           string  `json:"mode"`
	State          string  `json:"state"`
	Accepting      bool    `json:"acceptingPlayers"`
	UptimeSeconds  float64 `json:"uptimeSeconds"`
	Players        int     `json:"players"`
	AIs            int     `json:"ais"`
	Tick           uint64  `json:"tick"`
	BroadcastHz    float64 `json:"broadcastHz"`
	AvgTickMs      float64 `json:"avgTickMs"`
	MaxTickMs      float64 `json:"maxTickMs"`
	AvgBroadcastMs float64 `json:"avgBroadcastMs"`
	MaxBroadcastMs float64 `json:"maxBroadcastMs"`
	Faults         uint64  `json:"faults"`
	BytesSent      uint64  `json:"bytesSent"`
	TotalCash      int     `json:"totalCash"`
}

// ManagerStats aggregates every room.
type ManagerStats struct {
	Rooms         int            `json:"rooms"`
	Players       int            `json:"players"`
	RoomsByMode   map[string]int `json:"roomsByMode"`
	PlayersByMode map[string]int `json:"playersByMode"`
	RoomList      []RoomStats    `json:"roomList"`
}

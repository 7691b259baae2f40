package room

import "time"

// Broadcast tiers by live player count. Larger rooms emit less often.
var broadcastTiers = []struct {
	maxPlayers int
	hz         int
}{
	{4, 60},
	{10, 50},
	{20, 40},
	{-1, 30}, // everything larger
}

// BroadcastInterval picks the emission interval for a room. cost is the
// smoothed tick+broadcast cost; when it eats more than half the tier's
// interval the next wider tier is used. The result is never shorter than
// 1/maxHz.
func BroadcastInterval(players int, cost time.Duration, maxHz int) time.Duration {
	tier := len(broadcastTiers) - 1
	for i, t := range broadcastTiers {
		if t.maxPlayers >= 0 && players <= t.maxPlayers {
			tier = i
			break
		}
	}
	if cost > 0 && cost > hzInterval(broadcastTiers[tier].hz)/2 && tier < len(broadcastTiers)-1 {
		tier++
	}
	hz := broadcastTiers[tier].hz
	if maxHz > 0 && hz > maxHz {
		hz = maxHz
	}
	return hzInterval(hz)
}

func hzInterval(hz int) time.Duration {
	if hz <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(hz)
}

package protocol

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Bounds applied to untrusted input before it reaches a room.
const (
	MaxUsernameLen = 20
	MaxChatLen     = 200
	MaxWager       = 100000
	MaxCoordinate  = 1e6
	MaxAngle       = 4 * math.Pi
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// SanitizeJoin normalizes a join request. ok is false when the request cannot
// be served at all (unknown mode).
func SanitizeJoin(j JoinGame) (JoinGame, bool) {
	j.GameMode = strings.ToLower(strings.TrimSpace(j.GameMode))
	if j.GameMode == "" {
		j.GameMode = ModeClassic
	}
	if !ValidMode(j.GameMode) {
		return j, false
	}
	j.Username = SanitizeText(j.Username, MaxUsernameLen)
	if j.Username == "" {
		j.Username = "Player"
	}
	if j.Wager < 0 {
		j.Wager = 0
	}
	if j.Wager > MaxWager {
		j.Wager = MaxWager
	}
	if !colorPattern.MatchString(j.Color) {
		j.Color = ""
	}
	return j, true
}

// SanitizeInput drops non-finite or absurd values. ok is false when nothing
// usable remains.
func SanitizeInput(in PlayerInput) (PlayerInput, bool) {
	if in.TargetAngle != nil && !validAngle(*in.TargetAngle) {
		in.TargetAngle = nil
	}
	if in.WorldX == nil || in.WorldY == nil || !validCoord(*in.WorldX) || !validCoord(*in.WorldY) {
		in.WorldX, in.WorldY = nil, nil
	}
	return in, true
}

// SanitizeShoot reports whether a shoot target is usable.
func SanitizeShoot(s PlayerShoot) (PlayerShoot, bool) {
	if !validCoord(s.TargetX) || !validCoord(s.TargetY) {
		return s, false
	}
	return s, true
}

// SanitizeChat trims and bounds a chat message. ok is false for empty text.
func SanitizeChat(c ChatMessage) (ChatMessage, bool) {
	c.Message = SanitizeText(c.Message, MaxChatLen)
	return c, c.Message != ""
}

// SanitizeText strips control characters, trims, and truncates to max runes.
func SanitizeText(s string, max int) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > max {
		runes = runes[:max]
	}
	return string(runes)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validAngle accepts angles a client can produce from atan2 plus a turn or
// two of wrap.
func validAngle(v float64) bool {
	return finite(v) && math.Abs(v) <= MaxAngle
}

func validCoord(v float64) bool {
	return finite(v) && math.Abs(v) <= MaxCoordinate
}

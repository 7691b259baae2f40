package room

import "arena-server/internal/protocol"

// Conn is the transport a room writes to. Send writes a text frame,
// SendBinary a binary frame.
type Conn interface {
	Send([]byte) error
	SendBinary([]byte) error
	Close() error
}

// Join asks a room to admit a player. The room always answers on Reply
// unless it is destroyed first.
type Join struct {
	PlayerID string
	Conn     Conn
	Request  protocol.JoinGame
	Reply    chan<- JoinResult
}

// JoinResult answers a Join. Err is ErrRoomFull or ErrRoomClosed on refusal.
type JoinResult struct {
	RoomID   string
	PlayerID string
	Err      error
}

// Leave removes a player, usually because the connection dropped.
type Leave struct {
	PlayerID string
}

// Input carries sanitized steering intent.
type Input struct {
	PlayerID string
	Input    protocol.PlayerInput
}

// Shoot fires the player's active weapon at a world point.
type Shoot struct {
	PlayerID string
	TargetX  float64
	TargetY  float64
}

// Switch selects a weapon slot.
type Switch struct {
	PlayerID string
	Slot     string
}

// CashOut banks the player's cash. The result is written to the player's
// connection.
type CashOut struct {
	PlayerID string
}

// Respawn brings a dead or cashed-out player back with a fresh stake.
type Respawn struct {
	PlayerID string
}

// Chat relays a message to every occupant.
type Chat struct {
	PlayerID string
	Message  protocol.ChatMessage
}

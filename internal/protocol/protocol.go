// Package protocol defines the messages exchanged between arena clients and
// the server.
//
// Every frame is an envelope {"t": type, "p": payload}. Control messages are
// JSON text frames. Warfare-mode gameState frames are msgpack binary frames
// carrying the same envelope shape, because each one is built per player.
//
//	Client → Server:
//	  joinGame      {"gameMode":"classic","username":"bob","wager":50,"color":"#e74c3c"}
//	  playerInput   {"targetAngle":1.57,"boosting":true,"mouseHeld":false}
//	                {"worldX":120,"worldY":80,"boosting":false,"mouseHeld":true}
//	  playerShoot   {"targetX":120,"targetY":80}
//	  switchWeapon  {"slot":"primary"}
//	  playerCashOut {}
//	  playerRespawn {}
//	  chatMessage   {"message":"gg","timestamp":1700000000000}
//	Server → Client:
//	  gameJoined, playerJoined, playerLeft, gameState, cashoutSuccess,
//	  cashoutResult, chatMessage, roomClosed, death, error
//
// State payloads use single-character keys to keep broadcast frames small.
// All x,y coordinates are rounded to 1 decimal place.
package protocol

// Message type identifiers (value of the envelope "t" field).
const (
	MsgJoinGame     = "joinGame"
	MsgPlayerInput  = "playerInput"
	MsgPlayerShoot  = "playerShoot"
	MsgSwitchWeapon = "switchWeapon"
	MsgCashOut      = "playerCashOut"
	MsgRespawn      = "playerRespawn"
	MsgChat         = "chatMessage"

	MsgGameJoined     = "gameJoined"
	MsgPlayerJoined   = "playerJoined"
	MsgPlayerLeft     = "playerLeft"
	MsgGameState      = "gameState"
	MsgCashoutSuccess = "cashoutSuccess"
	MsgCashoutResult  = "cashoutResult"
	MsgRoomClosed     = "roomClosed"
	MsgDeath          = "death"
	MsgError          = "error"
)

// Game modes.
const (
	ModeClassic = "classic"
	ModeWarfare = "warfare"
)

// ValidMode reports whether m names a supported game mode.
func ValidMode(m string) bool {
	return m == ModeClassic || m == ModeWarfare
}

// Weapon slot names as used by switchWeapon and inventory snapshots.
const (
	SlotPrimary   = "primary"
	SlotSecondary = "secondary"
	SlotSidearm   = "sidearm"
)

package protocol

// JoinGame is the first message a client sends after connecting.
type JoinGame struct {
	GameMode string `json:"gameMode" jsonschema:"enum=classic,enum=warfare"`
	Username string `json:"username" jsonschema:"maxLength=20"`
	Wager    int    `json:"wager" jsonschema:"minimum=0,maximum=100000"`
	Color    string `json:"color,omitempty" jsonschema:"pattern=^#[0-9a-fA-F]{6}$"`
}

// PlayerInput carries steering intent. Either TargetAngle or the WorldX/WorldY
// pair is set; a world point is converted to an angle from the snake head.
type PlayerInput struct {
	TargetAngle *float64 `json:"targetAngle,omitempty"`
	WorldX      *float64 `json:"worldX,omitempty"`
	WorldY      *float64 `json:"worldY,omitempty"`
	Boosting    bool     `json:"boosting"`
	MouseHeld   bool     `json:"mouseHeld"`
}

// PlayerShoot asks the server to fire the active weapon at a world point.
type PlayerShoot struct {
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
}

// SwitchWeapon selects an inventory slot.
type SwitchWeapon struct {
	Slot string `json:"slot" jsonschema:"enum=primary,enum=secondary,enum=sidearm"`
}

// ChatMessage is relayed verbatim to every room occupant. PlayerID and
// Username are filled in by the server.
type ChatMessage struct {
	PlayerID  string `json:"playerId,omitempty"`
	Username  string `json:"username,omitempty"`
	Message   string `json:"message" jsonschema:"maxLength=200"`
	Timestamp int64  `json:"timestamp"`
}

// GameJoined answers a successful joinGame.
type GameJoined struct {
	RoomID    string `json:"roomId"`
	PlayerID  string `json:"playerId"`
	GameMode  string `json:"gameMode"`
	GameState State  `json:"gameState"`
}

// PlayerPresence is the payload of playerJoined and playerLeft.
type PlayerPresence struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CashoutResult answers playerCashOut. On success the same payload is also
// sent as cashoutSuccess.
type CashoutResult struct {
	Success     bool   `json:"success"`
	Profit      int    `json:"profit"`
	TotalCashed int    `json:"totalCashed"`
	Reason      string `json:"reason,omitempty"`
}

// RoomClosed is sent to remaining occupants before a room is destroyed.
type RoomClosed struct {
	Reason string `json:"reason"`
}

// Death is sent to a player when their snake dies.
// Killer is the killer's name, or a cause such as "boundary".
type Death struct {
	Killer string `json:"killer"`
	Cash   int    `json:"cash"`
}

// Error reports a rejected command or a room fault.
type Error struct {
	Message string `json:"message"`
}

// State is the gameState payload.
type State struct {
	Tick        uint64             `json:"tk"`
	Time        int64              `json:"ts"`
	Snakes      []SnakeDTO         `json:"s"`
	Food        []FoodDTO          `json:"f"`
	Orbs        []OrbDTO           `json:"o"`
	Coins       []CoinDTO          `json:"c"`
	Pickups     []PickupDTO        `json:"pk,omitempty"`
	Projectiles []ProjectileDTO    `json:"pr,omitempty"`
	Effects     []EffectDTO        `json:"e,omitempty"`
	Leaderboard []LeaderboardEntry `json:"l"`
	KingID      string             `json:"k,omitempty"`
	You         *PrivateDTO        `json:"y,omitempty"`
}

// SnakeDTO is the compact snake used in state updates.
// Segments are flat [x,y] pairs.
type SnakeDTO struct {
	ID         string       `json:"i"`
	Name       string       `json:"n"`
	Segments   [][2]float64 `json:"s"`
	Color      string       `json:"c"`
	Cash       int          `json:"p"`
	Size       float64      `json:"w"`
	Angle      float64      `json:"a"`
	Boosting   int          `json:"b,omitempty"`
	Invincible int          `json:"v,omitempty"`
	AI         int          `json:"ai,omitempty"`
	Combat     string       `json:"cs,omitempty"`
	Weapon     string       `json:"wp,omitempty"`
	PowerUps   []string     `json:"u,omitempty"`
}

// FoodDTO: {"i":"f1","x":1.0,"y":2.0,"v":4,"c":"#f00"}
type FoodDTO struct {
	ID    string  `json:"i"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"v"`
	Color string  `json:"c"`
}

// OrbDTO is a drifting glow orb.
type OrbDTO struct {
	ID    string  `json:"i"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"v"`
	Hue   int     `json:"h"`
}

// CoinDTO is a cash-bearing pickup.
type CoinDTO struct {
	ID    string  `json:"i"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value int     `json:"v"`
}

// PickupDTO is a warfare weapon, ammo or power-up pickup.
// Kind is "weapon", "ammo" or "powerup"; Item names the concrete variant.
type PickupDTO struct {
	ID     string  `json:"i"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Kind   string  `json:"k"`
	Item   string  `json:"it"`
	Amount int     `json:"v,omitempty"`
}

// ProjectileDTO carries a short trail for client-side streak rendering.
type ProjectileDTO struct {
	ID     string       `json:"i"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	VX     float64      `json:"vx"`
	VY     float64      `json:"vy"`
	Weapon string       `json:"wp"`
	Trail  [][2]float64 `json:"t,omitempty"`
}

// EffectDTO is a collision effect with its live particles.
type EffectDTO struct {
	ID        string       `json:"i"`
	Kind      string       `json:"k"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Particles [][2]float64 `json:"pt"`
}

// LeaderboardEntry is a single leaderboard row.
type LeaderboardEntry struct {
	ID   string `json:"i"`
	Name string `json:"n"`
	Cash int    `json:"p"`
}

// PrivateDTO is the receiving player's own state, including inventory.
type PrivateDTO struct {
	Alive        bool           `json:"al"`
	CashedOut    bool           `json:"co,omitempty"`
	Boost        float64        `json:"b"`
	Cash         int            `json:"p"`
	Wager        int            `json:"wg"`
	InvincibleMs int64          `json:"inv,omitempty"`
	ActiveSlot   string         `json:"as,omitempty"`
	Weapons      []WeaponDTO    `json:"ws,omitempty"`
	Ammo         map[string]int `json:"am,omitempty"`
	PowerUps     []PowerUpDTO   `json:"pu,omitempty"`
}

// WeaponDTO describes one inventory slot. Ammo is -1 for unlimited weapons.
type WeaponDTO struct {
	Slot    string `json:"sl"`
	Kind    string `json:"k"`
	Ammo    int    `json:"a"`
	MaxAmmo int    `json:"m"`
}

// PowerUpDTO describes one active power-up.
type PowerUpDTO struct {
	Kind        string  `json:"k"`
	ExpiresInMs int64   `json:"x"`
	Integrity   float64 `json:"hp,omitempty"`
	Charges     int     `json:"ch,omitempty"`
}

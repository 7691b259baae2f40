package game

import "time"

// Gameplay tunables. Distances are in world px, speeds in px per tick.
const (
	// World
	DefaultWorldWidth  = 4000.0
	DefaultWorldHeight = 4000.0
	SpawnMargin        = 200.0
	// ReferenceArea is the world area the target densities below are tuned for.
	ReferenceArea = DefaultWorldWidth * DefaultWorldHeight

	// Snake
	SnakeBaseSpeed      = 3.0
	BoostMultiplier     = 2.5
	BoostMax            = 100.0
	BoostOverchargeMax  = 150.0
	BoostDrainPerTick   = 0.8
	BoostRegenPerTick   = 0.15
	TurnFraction        = 0.15 // share of the angular gap closed each tick
	SegmentSpacing      = 10.0
	InitialSegments     = 10
	MinSegments         = 3
	MaxSegments         = 300
	CashPerSegment      = 5
	MassPerSegment      = 25.0 // boost value eaten per extra segment
	GrowthPerTick       = 0.25 // fractional segment accrued per tick
	HeadMaxHealth       = 100.0
	SegmentMaxHealth    = 40.0
	SnakeBaseSize       = 10.0
	SnakeMaxSize        = 40.0
	SizeCashScale       = 15.0
	BodyFollowSmoothing = 0.5
	BodyRadiusFactor    = 0.8

	InvincibilityBase    = 3 * time.Second
	InvincibilityPerCash = 20 * time.Millisecond
	InvincibilityMax     = 8 * time.Second

	SpeedKickMultiplier = 1.8
	SpeedKickDuration   = 400 * time.Millisecond

	// Collectibles
	TargetFoodCount     = 1500
	TargetOrbCount      = 120
	TargetCoinCount     = 250
	TargetWeaponPickups = 40
	TargetAmmoPickups   = 60
	TargetPowerUps      = 30
	MaxSpawnPerTick     = 60
	SpawnNearPlayerOdds = 0.6
	SpawnNearRadius     = 800.0

	FoodRadius    = 5.0
	FoodMinBoost  = 2.0
	FoodMaxBoost  = 6.0
	OrbRadius     = 8.0
	OrbMinBoost   = 10.0
	OrbMaxBoost   = 20.0
	OrbDriftSpeed = 0.6
	CoinRadius    = 7.0
	CoinMinValue  = 1
	CoinMaxValue  = 5
	MaxCoinValue  = 10 // largest single coin dropped from a body
	PickupRadius  = 14.0

	// Vacuum
	VacuumRadiusFactor = 3.0 // × snake size
	VacuumBoostFactor  = 1.6
	VacuumSpeed        = 4.0
	VacuumBoostSpeed   = 6.5

	// Economy
	DeathDropShare     = 0.8 // share of cash dropped as coins on death
	SeverAttackerShare = 0.3 // share of severed cash paid to the attacker

	// Projectiles
	ProjectileRadius      = 4.0
	ProjectileMaxLifetime = 2 * time.Second
	ProjectileTrailLength = 6
	BodyDamageScale       = 0.6
	MaxSpread             = 0.35 // radians of spread at accuracy 0

	// Power-ups
	MaxActivePowerUps = 3
	HelmetBounceCost  = 50.0

	// Effects
	MaxEffects          = 64
	EffectParticleCount = 12
	EffectParticleLife  = 30 // ticks
	EffectParticleSpeed = 3.0
	ParticleDrag        = 0.92

	// AI
	DefaultAICount     = 12
	AIRespawnDelay     = 3 * time.Second
	AIReactionMin      = 100 * time.Millisecond
	AIReactionMax      = 300 * time.Millisecond
	AICoinSeekRadius   = 600.0
	AIFoodSeekRadius   = 400.0
	AIOrbSeekRadius    = 300.0
	AIDangerRadius     = 150.0
	AIBoundaryBuffer   = 250.0
	AIAwarenessRadius  = 700.0
	AIFleeThreat       = 1.6
	AIEngageAggression = 0.5
	AIAimError         = 120.0
	AIWaypointTimeout  = 6 * time.Second
	AIWaypointReach    = 60.0
	AIMinStartCash     = 10
	AIMaxStartCash     = 60

	// Snapshots
	LeaderboardSize = 10
	ViewDistance    = 1400.0
)

// PlayerColors is the palette handed to players without a chosen color.
var PlayerColors = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f39c12", "#9b59b6",
	"#1abc9c", "#e67e22", "#e91e63", "#00bcd4", "#8bc34a",
	"#ff5722", "#607d8b", "#795548", "#673ab7", "#03a9f4",
	"#4caf50", "#ffeb3b", "#ff9800", "#f44336", "#9c27b0",
}

var aiNames = []string{
	"Viper", "Cobra", "Mamba", "Python", "Anaconda",
	"Sidewinder", "Taipan", "Krait", "Boomslang", "Adder",
	"Rattler", "Asp", "Copperhead", "Kingsnake", "Racer",
}

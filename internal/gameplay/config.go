package gameplay

// Physics tuning shared by the integrator, projectiles and the AI search.
const (
	// Gravity is the default downward acceleration applied to projectiles.
	Gravity = 0.5
	// WindMin is the lower bound of the per-round wind draw.
	WindMin = -2.0
	// WindMax is the upper bound of the per-round wind draw.
	WindMax = 2.0
	// WindEffectMultiplier scales wind into horizontal acceleration.
	WindEffectMultiplier = 0.01

	// ProjectileSpeedMultiplier converts tank power into launch speed.
	ProjectileSpeedMultiplier = 0.3
	// ProjectileTimeScale converts elapsed wall seconds into ballistic seconds.
	ProjectileTimeScale = 30.0
	// ProjectileTrailMaxLength caps the recorded trail samples per projectile.
	ProjectileTrailMaxLength = 200

	// BaseTick is the nominal frame duration in wall seconds.
	BaseTick = 0.016
	// BallisticTick is the largest ballistic time a single integration sub-step may cover.
	BallisticTick = 0.5
	// MaxSubSteps bounds the worst-case integration cost of one update call.
	MaxSubSteps = 512
	// MaxDeltaTime is the frame delta ceiling callers clamp to before ticking.
	MaxDeltaTime = 0.1
	// DefaultDeltaTime is used when no previous frame timestamp exists.
	DefaultDeltaTime = BaseTick
)

// Terrain generation and settling.
const (
	TerrainHeightRatio      = 0.6
	TerrainSegments         = 10
	TerrainHeightMinRatio   = 0.2
	TerrainHeightMaxRatio   = 0.6
	TerrainNoiseAmplitude   = 10.0
	TerrainSmoothPasses     = 5
	TerrainMaxSlope         = 3.0
	TerrainSettleIterations = 25
	// CraterDepthFactor is the crater depth at the impact column relative to the radius.
	CraterDepthFactor = 0.8
	// DirtHeightFactor is the dirt mound height at the impact column relative to the radius.
	DirtHeightFactor = 0.5
)

// Tank limits and economy.
const (
	InitialHealth  = 100.0
	MaxHealth      = 100.0
	MaxShield      = 50.0
	ShieldAmount   = 50.0
	RepairAmount   = 30.0
	DefaultAngle   = 45.0
	DefaultPower   = 50.0
	AngleMin       = 0.0
	AngleMax       = 180.0
	PowerMin       = 10.0
	PowerMax       = 300.0
	AngleStep      = 5.0
	PowerStep      = 5.0
	Tank1XRatio    = 0.2
	Tank2XRatio    = 0.8
	InitialMoney   = 1000
	RoundWinReward = 500
	// ContactTriggerPack is the number of triggers granted by one shop purchase.
	ContactTriggerPack = 25
)

// Effects.
const (
	ExplosionParticleCount     = 50
	ExplosionParticleCountNuke = 100
	ExplosionParticleSpeedMin  = 2.0
	ExplosionParticleSpeedMax  = 7.0
	ExplosionParticleGravity   = 0.3
	ExplosionLifetime          = 1.0
	ExplosionLifetimeNuke      = 2.0
	// EffectFrameRate normalises particle motion to per-frame units.
	EffectFrameRate = 60.0

	NapalmPrimaryRadius   = 50.0
	NapalmSatelliteRadius = 30.0
	NapalmSatellites      = 3
	NapalmLifetime        = 5.0
	NapalmExpandSeconds   = 2.0
	NapalmDamagePerSecond = 5.0
)

// Turn pacing in simulated seconds.
const (
	TurnDelay    = 1.0
	AIThinkDelay = 1.5
	AIShootDelay = 0.5
)

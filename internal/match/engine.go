// Package match sequences turns, rounds and the shop around the simulation core.
package match

import (
	"math/rand"

	"tankduel/engine/internal/ai"
	"tankduel/engine/internal/combat"
	"tankduel/engine/internal/effects"
	"tankduel/engine/internal/environment"
	"tankduel/engine/internal/events"
	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/logging"
	"tankduel/engine/internal/projectile"
	"tankduel/engine/internal/simulation"
	"tankduel/engine/internal/tank"
	"tankduel/engine/internal/terrain"
)

// Phase is the coarse state of a game.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhasePlaying  Phase = "playing"
	PhaseShop     Phase = "shop"
	PhaseGameOver Phase = "gameover"
)

// LevelGenerator builds the ground for a new round.
type LevelGenerator func(width int, maxHeight float64, rng *rand.Rand) *terrain.Terrain

// GenerateLevel rolls fresh hills with the default settings.
func GenerateLevel(width int, maxHeight float64, rng *rand.Rand) *terrain.Terrain {
	ground := terrain.New(width, maxHeight, terrain.DefaultSettings())
	ground.Generate(rng)
	return ground
}

// pendingShot links an AI shot to the profile that must hear where it landed.
type pendingShot struct {
	shooter *tank.Tank
	target  *tank.Tank
	profile ai.Profile
}

// Engine owns one game: the ground, the tanks, everything in flight and the turn order.
// It is driven from a single goroutine through Update and the control methods.
type Engine struct {
	width   int
	height  int
	catalog gameplay.Catalog
	rng     *rand.Rand
	logger  *logging.Logger
	events  *events.Log
	level   LevelGenerator
	envOpts []environment.Option

	env      *environment.Environment
	history  *combat.History
	resolver *combat.Resolver
	memory   *ai.Memory
	timers   *simulation.Scheduler

	mode     Mode
	phase    Phase
	round    int
	clock    float64
	seats    []Seat
	profiles []ai.Profile
	money    []int

	ground      *terrain.Terrain
	tanks       []*tank.Tank
	projectiles []*projectile.Projectile
	explosions  []*effects.Explosion
	napalm      []*effects.NapalmPool

	current       int
	turn          int
	firedThisTurn bool
	turnScheduled bool
	armed         *pendingShot
	inFlight      *pendingShot
	winner        int
	notifications []Notification
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithRand injects the random source shared by terrain, wind, particles and the AI.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithLogger attaches the structured logger used for game diagnostics.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCatalog overrides the weapon and shop tables.
func WithCatalog(catalog gameplay.Catalog) Option {
	return func(e *Engine) {
		e.catalog = catalog.Clone()
	}
}

// WithEventLog records every gameplay event into log.
func WithEventLog(log *events.Log) Option {
	return func(e *Engine) {
		e.events = log
	}
}

// WithGravity overrides the downward acceleration applied to shells.
func WithGravity(gravity float64) Option {
	return func(e *Engine) {
		if gravity > 0 {
			e.envOpts = append(e.envOpts, environment.WithGravity(gravity))
		}
	}
}

// WithWindRange overrides the bounds of the per-round wind draw.
func WithWindRange(minWind, maxWind float64) Option {
	return func(e *Engine) {
		e.envOpts = append(e.envOpts, environment.WithWindRange(minWind, maxWind))
	}
}

// WithLevelGenerator replaces the terrain generator, primarily for tests.
func WithLevelGenerator(level LevelGenerator) Option {
	return func(e *Engine) {
		if level != nil {
			e.level = level
		}
	}
}

// NewEngine builds an idle engine for a field of the given size.
func NewEngine(width, height int, opts ...Option) *Engine {
	//1.- Seed the defaults before letting options override them.
	e := &Engine{
		width:   width,
		height:  height,
		catalog: gameplay.DefaultCatalog(),
		rng:     rand.New(rand.NewSource(1)),
		logger:  logging.L(),
		level:   GenerateLevel,
		history: combat.NewHistory(),
		memory:  ai.NewMemory(),
		timers:  simulation.NewScheduler(),
		phase:   PhaseIdle,
		winner:  -1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	//2.- Build the collaborators that depend on the final random source and tables.
	e.env = environment.New(e.rng, e.envOpts...)
	e.resolver = combat.NewResolver(
		combat.WithCatalog(e.catalog),
		combat.WithRand(e.rng),
		combat.WithHistory(e.history),
		combat.WithLogger(e.logger),
	)
	return e
}

// StartGame begins round one with the classic roster for mode.
func (e *Engine) StartGame(mode Mode, profile string) error {
	seats, err := SeatsFor(mode, profile, profile)
	if err != nil {
		return err
	}
	return e.Start(mode, seats)
}

// Start begins round one with an explicit roster.
func (e *Engine) Start(mode Mode, seats []Seat) error {
	resolved, profiles, err := resolveSeats(seats)
	if err != nil {
		return err
	}
	//1.- Drop everything left over from a previous game.
	e.timers.Reset()
	e.memory.Reset()
	e.history.Reset()
	e.notifications = nil
	e.tanks = nil

	e.mode = mode
	e.seats = resolved
	e.profiles = profiles
	e.money = make([]int, len(resolved))
	for i, seat := range resolved {
		e.money[i] = seat.Money
	}
	e.phase = PhasePlaying
	e.round = 1
	e.clock = 0
	e.current = 0
	e.winner = -1

	//2.- Roll the first level and hand the turn to seat zero.
	e.env.GenerateWind()
	e.initLevel()
	e.logger.Info("game started",
		logging.String("mode", string(mode)),
		logging.Int("seats", len(resolved)),
	)
	e.beginTurn()
	return nil
}

func (e *Engine) initLevel() {
	maxHeight := float64(e.height) * gameplay.TerrainHeightRatio
	e.ground = e.level(e.width, maxHeight, e.rng)

	//1.- Rebuild the tanks at full health, keeping shields and triggers bought in the shop.
	previous := e.tanks
	e.tanks = make([]*tank.Tank, len(e.seats))
	for i, seat := range e.seats {
		x := seatX(e.width, i, len(e.seats))
		t := tank.New(x, e.ground.Height(x), seatColor(i), seat.Name, seat.IsAI())
		if i < len(previous) && previous[i] != nil {
			t.Shield = previous[i].Shield
			t.ContactTriggers = previous[i].ContactTriggers
		}
		e.tanks[i] = t
	}

	e.projectiles = nil
	e.explosions = nil
	e.napalm = nil
	e.firedThisTurn = false
	e.turnScheduled = false
	e.armed = nil
	e.inFlight = nil

	gravity, wind := e.env.Snapshot()
	states := make([]events.TankState, len(e.tanks))
	for i, t := range e.tanks {
		states[i] = events.TankState{Name: t.Name, X: t.X, Y: t.Y, Health: t.Health, Shield: t.Shield, Money: e.money[i], AI: t.IsAI}
	}
	e.emit(events.RoundStarted{Round: e.round, Wind: wind, Gravity: gravity, Tanks: states})
}

// Update advances the game by dt simulated seconds.
func (e *Engine) Update(dt float64) {
	if e == nil || e.phase != PhasePlaying || !(dt > 0) {
		return
	}
	e.clock += dt
	//1.- Timers run first and may end the round or fire a shot.
	e.timers.Advance(dt)
	if e.phase != PhasePlaying {
		return
	}
	e.burn(dt)
	e.stepProjectiles(dt)

	alive := e.explosions[:0]
	for _, explosion := range e.explosions {
		if explosion.Update(dt) {
			alive = append(alive, explosion)
		}
	}
	e.explosions = alive

	//2.- Living tanks rest on whatever ground is left under them.
	for _, t := range e.tanks {
		if t.IsAlive() {
			t.Y = e.ground.Height(t.X)
		}
	}
	e.checkTurnComplete()
}

func (e *Engine) burn(dt float64) {
	active := e.napalm[:0]
	for _, pool := range e.napalm {
		if !pool.Update(dt) {
			continue
		}
		active = append(active, pool)
		for _, t := range e.tanks {
			if !t.IsAlive() {
				continue
			}
			amount := pool.DamageRate(t.X, t.Y) * dt
			if amount <= 0 {
				continue
			}
			lost := t.TakeDamage(amount)
			e.history.Record(combat.HistoryEntry{Attacker: pool.Owner, Victim: t.Name, Amount: amount, Timestamp: e.clock})
			if !t.IsAlive() {
				e.emit(events.Damage{Attacker: pool.Owner, Victim: t.Name, Amount: amount, HealthLost: lost, Killed: true, Source: "napalm"})
			}
		}
	}
	e.napalm = active
}

func (e *Engine) stepProjectiles(dt float64) {
	if len(e.projectiles) == 0 {
		return
	}
	gravity, wind := e.env.Snapshot()
	world := projectile.World{Gravity: gravity, Wind: wind, Ground: e.ground}
	for _, t := range e.tanks {
		if t.IsAlive() {
			world.Tanks = append(world.Tanks, projectile.Point{X: t.X, Y: t.Y})
		}
	}

	survivors := make([]*projectile.Projectile, 0, len(e.projectiles))
	for _, p := range e.projectiles {
		if !p.Active {
			continue
		}
		result := projectile.Step(p, dt, world)
		switch {
		case result.Outcome == projectile.Flying:
			survivors = append(survivors, p)
		case result.Outcome == projectile.Split:
			survivors = append(survivors, result.Children...)
		case p.Weapon == gameplay.WeaponRiotCharge && result.Outcome == projectile.HitTerrain:
			e.riotCharge(p)
		case result.Outcome.Explodes():
			e.resolve(p.X, p.Y, result.GroundHeight, p.Weapon, result.Outcome.String())
		}
	}
	e.projectiles = survivors
}

// resolve applies an impact and feeds the outcome to any waiting AI profile.
func (e *Engine) resolve(x, y, groundHeight float64, weapon gameplay.WeaponID, outcome string) {
	res := e.resolver.ResolveImpact(e.ground, e.tanks, combat.Impact{
		X:            x,
		Y:            y,
		GroundHeight: groundHeight,
		Weapon:       weapon,
		Attacker:     e.currentName(),
		Clock:        e.clock,
	})
	if res.Explosion != nil {
		e.explosions = append(e.explosions, res.Explosion)
	}
	e.napalm = append(e.napalm, res.Napalm...)
	e.emit(events.Impact{Weapon: string(weapon), X: res.X, Y: res.Y, Outcome: outcome, Terrain: string(res.Effect)})
	for _, hit := range res.Damage {
		e.emit(events.Damage{
			Attacker:   e.currentName(),
			Victim:     hit.Victim,
			Amount:     hit.Amount,
			HealthLost: hit.HealthLost,
			Killed:     hit.Killed,
			Source:     "impact",
		})
	}
	e.reportShot(res.X, res.Y)
}

func (e *Engine) riotCharge(p *projectile.Projectile) {
	origin := p.Origin()
	shooter := combat.CarveRiotWedge(e.ground, e.tanks, origin.X, origin.Y)
	if shooter == nil {
		return
	}
	e.emit(events.Impact{Weapon: string(p.Weapon), X: shooter.X, Y: shooter.Y, Outcome: "riot_wedge", Terrain: string(combat.EffectCrater)})
}

func (e *Engine) reportShot(x, y float64) {
	shot := e.inFlight
	e.inFlight = nil
	if shot == nil {
		return
	}
	if learner, ok := shot.profile.(ai.Learner); ok {
		learner.OnShotResult(e.memory, ai.ShotResult{Shooter: shot.shooter, Target: shot.target, ImpactX: x, ImpactY: y})
	}
}

func (e *Engine) checkTurnComplete() {
	if e.turnScheduled || len(e.projectiles) > 0 {
		return
	}
	//1.- A seat that burned to death before shooting forfeits its turn.
	if current := e.currentTank(); !e.firedThisTurn && current != nil && current.IsAlive() {
		return
	}
	e.turnScheduled = true
	e.timers.Schedule(gameplay.TurnDelay, e.finishTurn)
}

func (e *Engine) finishTurn() {
	winner, alive := -1, 0
	for i, t := range e.tanks {
		if t.IsAlive() {
			winner = i
			alive++
		}
	}
	switch alive {
	case 0:
		e.endRound(-1)
	case 1:
		e.endRound(winner)
	default:
		e.nextTurn()
	}
}

func (e *Engine) nextTurn() {
	e.firedThisTurn = false
	e.turnScheduled = false
	//1.- Walk the seats in order, skipping the dead.
	for range e.tanks {
		e.current = (e.current + 1) % len(e.tanks)
		if e.tanks[e.current].IsAlive() {
			break
		}
	}
	e.beginTurn()
}

// beginTurn hands control to the current seat, queueing the computer's think time.
func (e *Engine) beginTurn() {
	e.turn++
	if t := e.currentTank(); t != nil && t.IsAI && t.IsAlive() {
		turn := e.turn
		e.timers.Schedule(gameplay.AIThinkDelay, func() { e.makeAIMove(turn) })
	}
}

func (e *Engine) endRound(winner int) {
	e.winner = winner
	if winner < 0 {
		e.phase = PhaseGameOver
		e.emit(events.RoundEnded{Round: e.round})
		e.emit(events.GameOver{Round: e.round, Reason: "all tanks destroyed"})
		e.logger.Info("game over", logging.Int("round", e.round), logging.String("reason", "all tanks destroyed"))
		return
	}
	e.phase = PhaseShop
	e.money[winner] += gameplay.RoundWinReward
	name := e.tanks[winner].Name
	e.emit(events.RoundEnded{Round: e.round, Winner: name, Reward: gameplay.RoundWinReward})
	e.logger.Info("round ended",
		logging.Int("round", e.round),
		logging.String("winner", name),
		logging.Int("balance", e.money[winner]),
	)
}

// CompleteShopPhase leaves the shop and starts the next round on fresh ground.
func (e *Engine) CompleteShopPhase() bool {
	if e == nil || e.phase != PhaseShop {
		return false
	}
	e.phase = PhasePlaying
	e.round++
	e.current = 0
	e.winner = -1
	e.timers.Reset()
	e.env.GenerateWind()
	e.initLevel()
	e.beginTurn()
	return true
}

// Finish ends the game early, for example when a headless run reaches its round limit.
// The richest seat is reported as the winner; a tie has no winner.
func (e *Engine) Finish(reason string) {
	if e == nil || e.phase == PhaseIdle || e.phase == PhaseGameOver {
		return
	}
	e.timers.Reset()
	e.phase = PhaseGameOver
	leader, best, tied := "", -1, false
	for i, t := range e.tanks {
		switch {
		case e.money[i] > best:
			leader, best, tied = t.Name, e.money[i], false
		case e.money[i] == best:
			tied = true
		}
	}
	if tied {
		leader = ""
	}
	e.emit(events.GameOver{Round: e.round, Winner: leader, Reason: reason})
	e.logger.Info("game over", logging.Int("round", e.round), logging.String("winner", leader), logging.String("reason", reason))
}

// RestartToMenu abandons the game and clears every piece of transient state.
func (e *Engine) RestartToMenu() {
	if e == nil {
		return
	}
	e.phase = PhaseIdle
	e.timers.Reset()
	e.memory.Reset()
	e.history.Reset()
	e.tanks = nil
	e.projectiles = nil
	e.explosions = nil
	e.napalm = nil
	e.notifications = nil
	e.armed = nil
	e.inFlight = nil
	e.firedThisTurn = false
	e.turnScheduled = false
	e.winner = -1
}

// makeAIMove aims for the seat whose turn was numbered turn; stale timers are ignored.
func (e *Engine) makeAIMove(turn int) {
	shooter := e.currentTank()
	if turn != e.turn || e.phase != PhasePlaying || shooter == nil || !shooter.IsAI || !shooter.IsAlive() {
		return
	}
	var enemies []*tank.Tank
	for i, t := range e.tanks {
		if i != e.current && t.IsAlive() {
			enemies = append(enemies, t)
		}
	}
	if len(enemies) == 0 {
		return
	}
	profile := e.profiles[e.current]
	if profile == nil {
		profile, _ = ai.Lookup(string(ai.Moron))
	}

	//1.- Let the profile aim with everything it is allowed to see.
	gravity, wind := e.env.Snapshot()
	decision := profile.Decide(ai.Context{
		Shooter:       shooter,
		Enemies:       enemies,
		DefaultTarget: enemies[0],
		Gravity:       gravity,
		Wind:          wind,
		Ground:        e.ground,
		History:       e.history.Recent(),
		Money:         e.MoneyByName(),
		Memory:        e.memory,
		Rand:          e.rng,
	})
	target := decision.Target
	if target == nil {
		target = enemies[0]
	}
	shooter.SetAngle(decision.Angle)
	shooter.SetPower(decision.Power)

	//2.- Fall back to the free shell when the wish list is out of budget.
	weapon := decision.Weapon
	if weapon == "" || !e.canAfford(e.current, weapon) {
		weapon = gameplay.WeaponNormal
	}
	shooter.SetWeapon(weapon)

	e.armed = nil
	if _, ok := profile.(ai.Learner); ok {
		e.armed = &pendingShot{shooter: shooter, target: target, profile: profile}
	}
	e.emit(events.AIDecision{
		Shooter: shooter.Name,
		Profile: string(profile.ID()),
		Target:  target.Name,
		Angle:   shooter.Angle,
		Power:   shooter.Power,
		Weapon:  string(weapon),
	})
	e.timers.Schedule(gameplay.AIShootDelay, func() {
		if turn == e.turn {
			e.Fire()
		}
	})
}

func (e *Engine) emit(ev events.Event) {
	if e.events != nil {
		e.events.Append(e.clock, e.round, ev)
	}
	e.logger.Debug(string(ev.Kind()), ev.LoggingFields()...)
}

func (e *Engine) currentTank() *tank.Tank {
	if e.current < 0 || e.current >= len(e.tanks) {
		return nil
	}
	return e.tanks[e.current]
}

func (e *Engine) currentName() string {
	if t := e.currentTank(); t != nil {
		return t.Name
	}
	return ""
}

func (e *Engine) canAfford(seat int, weapon gameplay.WeaponID) bool {
	config, ok := e.catalog.Weapon(weapon)
	if !ok || seat < 0 || seat >= len(e.money) {
		return false
	}
	return e.money[seat] >= config.Cost
}

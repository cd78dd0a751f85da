package match

import (
	"fmt"

	"tankduel/engine/internal/ai"
	"tankduel/engine/internal/combat"
	"tankduel/engine/internal/effects"
	"tankduel/engine/internal/environment"
	"tankduel/engine/internal/events"
	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/logging"
	"tankduel/engine/internal/projectile"
	"tankduel/engine/internal/tank"
	"tankduel/engine/internal/terrain"
)

// NotificationType classifies a message for the player.
type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
	NotifyWarning NotificationType = "warning"
	NotifyInfo    NotificationType = "info"
)

// Notification is a short message queued for the front end.
type Notification struct {
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
}

// HUD is the status line for the seat whose turn it is.
type HUD struct {
	PlayerName           string  `json:"playerName"`
	Money                int     `json:"money"`
	Angle                int     `json:"angle"`
	Power                int     `json:"power"`
	Weapon               string  `json:"weapon"`
	ContactTriggers      int     `json:"contactTriggers"`
	ContactTriggerActive bool    `json:"contactTriggerActive"`
	Wind                 float64 `json:"wind"`
}

// Fire launches the current seat's weapon. It reports whether a shot left the barrel.
func (e *Engine) Fire() bool {
	if e == nil || e.phase != PhasePlaying || e.firedThisTurn || len(e.projectiles) > 0 {
		return false
	}
	shooter := e.currentTank()
	if shooter == nil || !shooter.IsAlive() {
		return false
	}
	//1.- The shot must name a known weapon the seat can pay for.
	weapon, ok := e.catalog.Weapon(shooter.CurrentWeapon)
	if !ok {
		e.notify(NotifyError, "Invalid weapon selected!")
		return false
	}
	if e.money[e.current] < weapon.Cost {
		e.notify(NotifyError, "Not enough money for this weapon!")
		return false
	}
	e.money[e.current] -= weapon.Cost

	//2.- Spend a contact trigger when the toggle is on.
	armed := false
	if shooter.UseContactTrigger {
		if shooter.ConsumeContactTrigger() {
			armed = true
			e.notify(NotifyInfo, "Contact Trigger used!")
		} else {
			shooter.UseContactTrigger = false
			e.notify(NotifyWarning, "No contact triggers left!")
		}
	}

	//3.- Only the shot the AI just aimed may report back to its profile.
	e.inFlight = nil
	if e.armed != nil && e.armed.shooter == shooter {
		e.inFlight = e.armed
	}
	e.armed = nil

	x, y := shooter.Muzzle()
	p := projectile.New(x, y, shooter.Angle, shooter.Power, weapon.Value, armed)
	e.firedThisTurn = true
	e.turnScheduled = false
	e.emit(events.ShotFired{
		Shooter:        shooter.Name,
		Weapon:         string(weapon.Value),
		Angle:          shooter.Angle,
		Power:          shooter.Power,
		Cost:           weapon.Cost,
		ContactTrigger: armed,
		AI:             shooter.IsAI,
	})

	//4.- A laser resolves on the spot instead of flying.
	if p.Kind == projectile.KindLaser {
		p.Active = false
		e.fireLaser(shooter, weapon.Value)
		return true
	}
	e.projectiles = []*projectile.Projectile{p}
	return true
}

func (e *Engine) fireLaser(shooter *tank.Tank, weapon gameplay.WeaponID) {
	trace := combat.TraceLaser(e.ground, e.tanks, shooter)
	outcome := "spent"
	switch {
	case trace.HitTank:
		outcome = "hit_tank"
	case trace.HitTerrain:
		outcome = "hit_terrain"
	case trace.OutOfBounds:
		outcome = "out_of_bounds"
	}
	e.logger.Debug("laser traced",
		logging.String("shooter", shooter.Name),
		logging.String("outcome", outcome),
		logging.Int("tunnel", trace.Tunnel),
	)
	e.resolve(trace.X, trace.Y, e.ground.Height(trace.X), weapon, outcome)
}

// humanTank returns the current tank when a person is in control of it.
func (e *Engine) humanTank() *tank.Tank {
	if e == nil {
		return nil
	}
	t := e.currentTank()
	if t == nil || t.IsAI {
		return nil
	}
	return t
}

// SetAngle aims the current human seat.
func (e *Engine) SetAngle(angle float64) {
	if t := e.humanTank(); t != nil {
		t.SetAngle(angle)
	}
}

// AdjustAngle nudges the current human seat's aim by delta degrees.
func (e *Engine) AdjustAngle(delta float64) {
	if t := e.humanTank(); t != nil {
		t.SetAngle(t.Angle + delta)
	}
}

// SetPower sets the current human seat's launch power.
func (e *Engine) SetPower(power float64) {
	if t := e.humanTank(); t != nil {
		t.SetPower(power)
	}
}

// AdjustPower nudges the current human seat's launch power.
func (e *Engine) AdjustPower(delta float64) {
	if t := e.humanTank(); t != nil {
		t.SetPower(t.Power + delta)
	}
}

// CycleWeapon moves the current human seat's selection through the catalogue.
func (e *Engine) CycleWeapon(direction int) {
	if t := e.humanTank(); t != nil {
		t.SetWeapon(e.catalog.Next(t.CurrentWeapon, direction))
	}
}

// SetWeapon selects a weapon for the current human seat, ignoring unknown ids.
func (e *Engine) SetWeapon(id gameplay.WeaponID) bool {
	t := e.humanTank()
	if t == nil || !e.catalog.IsValid(id) {
		return false
	}
	t.SetWeapon(id)
	return true
}

// ToggleContactTrigger flips the current human seat's trigger toggle.
func (e *Engine) ToggleContactTrigger() bool {
	t := e.humanTank()
	if t == nil {
		return false
	}
	if t.ContactTriggers == 0 {
		t.UseContactTrigger = false
		return false
	}
	return t.ToggleContactTrigger()
}

// BuyItem spends the round winner's money on a shop item.
func (e *Engine) BuyItem(id gameplay.ShopItemID) bool {
	if e == nil || e.phase != PhaseShop {
		return false
	}
	item, ok := e.catalog.ShopItem(id)
	if !ok {
		e.notify(NotifyError, "Invalid item selected!")
		return false
	}
	buyer := -1
	for i, t := range e.tanks {
		if t.IsAlive() {
			buyer = i
			break
		}
	}
	if buyer < 0 {
		return false
	}
	if e.money[buyer] < item.Cost {
		e.notify(NotifyError, "Not enough money!")
		return false
	}
	t := e.tanks[buyer]
	switch id {
	case gameplay.ShopShield:
		t.AddShield(gameplay.ShieldAmount)
	case gameplay.ShopRepair:
		t.Repair(gameplay.RepairAmount)
	case gameplay.ShopContactTrigger:
		t.ContactTriggers += gameplay.ContactTriggerPack
	}
	e.money[buyer] -= item.Cost
	e.notify(NotifySuccess, fmt.Sprintf("Purchased %s!", item.Name))
	e.emit(events.Purchase{Buyer: t.Name, Item: string(id), Cost: item.Cost, Balance: e.money[buyer]})
	return true
}

// HUD returns the status of the seat whose turn it is.
func (e *Engine) HUD() (HUD, bool) {
	if e == nil {
		return HUD{}, false
	}
	t := e.currentTank()
	if t == nil {
		return HUD{}, false
	}
	_, wind := e.env.Snapshot()
	return HUD{
		PlayerName:           t.Name,
		Money:                e.money[e.current],
		Angle:                int(t.Angle + 0.5),
		Power:                int(t.Power + 0.5),
		Weapon:               string(t.CurrentWeapon),
		ContactTriggers:      t.ContactTriggers,
		ContactTriggerActive: t.UseContactTrigger,
		Wind:                 wind,
	}, true
}

func (e *Engine) notify(kind NotificationType, message string) {
	e.notifications = append(e.notifications, Notification{Type: kind, Message: message})
}

// ConsumeNotifications drains the notification queue.
func (e *Engine) ConsumeNotifications() []Notification {
	if e == nil {
		return nil
	}
	out := e.notifications
	e.notifications = nil
	return out
}

// Phase reports the coarse game state.
func (e *Engine) Phase() Phase { return e.phase }

// Round reports the one-based round number.
func (e *Engine) Round() int { return e.round }

// Mode reports who controls the tanks.
func (e *Engine) Mode() Mode { return e.mode }

// Clock reports the simulated seconds since the game started.
func (e *Engine) Clock() float64 { return e.clock }

// CurrentSeat returns the index of the seat whose turn it is.
func (e *Engine) CurrentSeat() int { return e.current }

// Winner names the winner of the last round, if there is one.
func (e *Engine) Winner() (string, bool) {
	if e.winner < 0 || e.winner >= len(e.tanks) {
		return "", false
	}
	return e.tanks[e.winner].Name, true
}

// PendingTimers reports how many deferred turn actions are queued.
func (e *Engine) PendingTimers() int { return e.timers.Len() }

// Terrain exposes the live ground.
func (e *Engine) Terrain() *terrain.Terrain { return e.ground }

// Environment exposes the live gravity and wind.
func (e *Engine) Environment() *environment.Environment { return e.env }

// Tanks returns the tanks in seat order.
func (e *Engine) Tanks() []*tank.Tank {
	return append([]*tank.Tank(nil), e.tanks...)
}

// Projectiles returns the shells in flight.
func (e *Engine) Projectiles() []*projectile.Projectile {
	return append([]*projectile.Projectile(nil), e.projectiles...)
}

// Explosions returns the bursts still animating.
func (e *Engine) Explosions() []*effects.Explosion {
	return append([]*effects.Explosion(nil), e.explosions...)
}

// NapalmPools returns the fires still burning.
func (e *Engine) NapalmPools() []*effects.NapalmPool {
	return append([]*effects.NapalmPool(nil), e.napalm...)
}

// Money returns the balance of a seat.
func (e *Engine) Money(seat int) int {
	if seat < 0 || seat >= len(e.money) {
		return 0
	}
	return e.money[seat]
}

// MoneyByName maps every tank name to its seat's balance.
func (e *Engine) MoneyByName() map[string]int {
	out := make(map[string]int, len(e.tanks))
	for i, t := range e.tanks {
		if i < len(e.money) {
			out[t.Name] = e.money[i]
			continue
		}
		out[t.Name] = gameplay.InitialMoney
	}
	return out
}

// History returns the recent damage log, newest first.
func (e *Engine) History() []combat.HistoryEntry { return e.history.Recent() }

// Memory exposes the learning state shared by the computer opponents.
func (e *Engine) Memory() *ai.Memory { return e.memory }

// Events exposes the gameplay event log, nil when none was configured.
func (e *Engine) Events() *events.Log { return e.events }

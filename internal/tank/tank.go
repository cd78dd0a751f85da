// Package tank models the physical state of a combatant.
package tank

import (
	"math"

	"tankduel/engine/internal/gameplay"
)

// Tank is the entity projectiles collide with and damage.
type Tank struct {
	X, Y              float64
	Angle             float64
	Power             float64
	Health            float64
	MaxHealth         float64
	Shield            float64
	MaxShield         float64
	Color             string
	Name              string
	IsAI              bool
	CurrentWeapon     gameplay.WeaponID
	ContactTriggers   int
	UseContactTrigger bool
}

// New creates a tank at the default aim with full health.
func New(x, y float64, color, name string, isAI bool) *Tank {
	return &Tank{
		X:             x,
		Y:             y,
		Angle:         gameplay.DefaultAngle,
		Power:         gameplay.DefaultPower,
		Health:        gameplay.InitialHealth,
		MaxHealth:     gameplay.MaxHealth,
		MaxShield:     gameplay.MaxShield,
		Color:         color,
		Name:          name,
		IsAI:          isAI,
		CurrentWeapon: gameplay.DefaultWeaponID,
	}
}

// SetPosition moves the tank.
func (t *Tank) SetPosition(x, y float64) {
	if t == nil {
		return
	}
	t.X, t.Y = x, y
}

// SetAngle clamps the barrel angle into the supported range.
func (t *Tank) SetAngle(angle float64) {
	if t == nil {
		return
	}
	t.Angle = clamp(angle, gameplay.AngleMin, gameplay.AngleMax)
}

// SetPower clamps the launch power into the supported range.
func (t *Tank) SetPower(power float64) {
	if t == nil {
		return
	}
	t.Power = clamp(power, gameplay.PowerMin, gameplay.PowerMax)
}

// SetWeapon selects the weapon fired next.
func (t *Tank) SetWeapon(id gameplay.WeaponID) {
	if t == nil {
		return
	}
	t.CurrentWeapon = id
}

// TakeDamage drains the shield first and applies the remainder to health.
// It returns the amount of health actually lost.
func (t *Tank) TakeDamage(damage float64) float64 {
	if t == nil || damage <= 0 || math.IsNaN(damage) {
		return 0
	}
	//1.- Let the shield soak as much as it can.
	if t.Shield > 0 {
		absorbed := math.Min(t.Shield, damage)
		t.Shield -= absorbed
		damage -= absorbed
	}
	//2.- Health never drops below zero.
	before := t.Health
	t.Health = math.Max(0, t.Health-damage)
	return before - t.Health
}

// AddShield charges the shield up to its maximum.
func (t *Tank) AddShield(amount float64) {
	if t == nil {
		return
	}
	t.Shield = math.Min(t.MaxShield, t.Shield+amount)
}

// Repair restores health up to its maximum.
func (t *Tank) Repair(amount float64) {
	if t == nil {
		return
	}
	t.Health = math.Min(t.MaxHealth, t.Health+amount)
}

// IsAlive reports whether the tank still has health.
func (t *Tank) IsAlive() bool {
	return t != nil && t.Health > 0
}

// ToggleContactTrigger flips the trigger toggle when at least one trigger is owned.
func (t *Tank) ToggleContactTrigger() bool {
	if t == nil || t.ContactTriggers <= 0 {
		return false
	}
	t.UseContactTrigger = !t.UseContactTrigger
	return true
}

// ConsumeContactTrigger spends one trigger if the toggle is on, reporting whether the shot is armed.
func (t *Tank) ConsumeContactTrigger() bool {
	if t == nil || !t.UseContactTrigger || t.ContactTriggers <= 0 {
		return false
	}
	t.ContactTriggers--
	if t.ContactTriggers == 0 {
		t.UseContactTrigger = false
	}
	return true
}

// Muzzle returns the barrel tip for the current weapon, the point projectiles spawn from.
func (t *Tank) Muzzle() (float64, float64) {
	if t == nil {
		return 0, 0
	}
	length := gameplay.BarrelLength(t.CurrentWeapon)
	rad := t.Angle * math.Pi / 180
	return t.X + math.Cos(rad)*length, t.Y + math.Sin(rad)*length
}

// Distance returns the euclidean distance between the tank and a point.
func (t *Tank) Distance(x, y float64) float64 {
	if t == nil {
		return math.Inf(1)
	}
	return math.Hypot(t.X-x, t.Y-y)
}

func clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

package gameplay

import (
	"encoding/json"
	"sync"

	_ "embed"
)

// WeaponID identifies a weapon in the catalogue.
type WeaponID string

const (
	WeaponNormal      WeaponID = "normal"
	WeaponNapalm      WeaponID = "napalm"
	WeaponMIRV        WeaponID = "mirv"
	WeaponFunky       WeaponID = "funky"
	WeaponLaser       WeaponID = "laser"
	WeaponDigger      WeaponID = "digger"
	WeaponBabyDigger  WeaponID = "babydigger"
	WeaponNuke        WeaponID = "nuke"
	WeaponBlackHole   WeaponID = "blackhole"
	WeaponRoller      WeaponID = "roller"
	WeaponBabyRoller  WeaponID = "babyroller"
	WeaponDirtClod    WeaponID = "dirtclod"
	WeaponDirtBall    WeaponID = "dirtball"
	WeaponRiotCharge  WeaponID = "riotcharge"
	WeaponTracer      WeaponID = "tracer"
	DefaultWeaponID            = WeaponNormal
	fallbackDamage             = 30.0
	fallbackRadius             = 30.0
	fallbackWeaponColor        = "#333333"
)

// ShopItemID identifies a purchasable upgrade.
type ShopItemID string

const (
	ShopShield         ShopItemID = "shield"
	ShopRepair         ShopItemID = "repair"
	ShopContactTrigger ShopItemID = "contact_trigger"
)

// WeaponConfig is one row of the weapon table.
type WeaponConfig struct {
	Name        string   `json:"name"`
	Value       WeaponID `json:"value"`
	Cost        int      `json:"cost"`
	Damage      float64  `json:"damage"`
	Radius      float64  `json:"radius"`
	Color       string   `json:"color"`
	Description string   `json:"description"`
}

// ShopItemConfig is one row of the shop table.
type ShopItemConfig struct {
	Name        string     `json:"name"`
	Value       ShopItemID `json:"value"`
	Cost        int        `json:"cost"`
	Effect      string     `json:"effect"`
	Description string     `json:"description"`
}

// Catalog mirrors the structure of weapons.json.
type Catalog struct {
	Weapons   []WeaponConfig   `json:"weapons"`
	ShopItems []ShopItemConfig `json:"shopItems"`
}

// Clone produces a copy that callers may mutate freely.
func (c Catalog) Clone() Catalog {
	clone := Catalog{
		Weapons:   make([]WeaponConfig, len(c.Weapons)),
		ShopItems: make([]ShopItemConfig, len(c.ShopItems)),
	}
	copy(clone.Weapons, c.Weapons)
	copy(clone.ShopItems, c.ShopItems)
	return clone
}

// Weapon returns the row for id.
func (c Catalog) Weapon(id WeaponID) (WeaponConfig, bool) {
	for _, weapon := range c.Weapons {
		if weapon.Value == id {
			return weapon, true
		}
	}
	return WeaponConfig{}, false
}

// ShopItem returns the row for id.
func (c Catalog) ShopItem(id ShopItemID) (ShopItemConfig, bool) {
	for _, item := range c.ShopItems {
		if item.Value == id {
			return item, true
		}
	}
	return ShopItemConfig{}, false
}

// Damage returns the base damage for id, falling back to the default shell payload.
func (c Catalog) Damage(id WeaponID) float64 {
	if weapon, ok := c.Weapon(id); ok {
		return weapon.Damage
	}
	return fallbackDamage
}

// Radius returns the blast radius for id, falling back to the default shell payload.
func (c Catalog) Radius(id WeaponID) float64 {
	if weapon, ok := c.Weapon(id); ok {
		return weapon.Radius
	}
	return fallbackRadius
}

// Cost returns the purchase cost of id, or zero for unknown identifiers.
func (c Catalog) Cost(id WeaponID) int {
	if weapon, ok := c.Weapon(id); ok {
		return weapon.Cost
	}
	return 0
}

// Color returns the explosion palette entry for id.
func (c Catalog) Color(id WeaponID) string {
	if weapon, ok := c.Weapon(id); ok && weapon.Color != "" {
		return weapon.Color
	}
	return fallbackWeaponColor
}

// Next returns the weapon after id in catalogue order, wrapping around. Step may be negative.
func (c Catalog) Next(id WeaponID, step int) WeaponID {
	if len(c.Weapons) == 0 {
		return DefaultWeaponID
	}
	index := 0
	for i, weapon := range c.Weapons {
		if weapon.Value == id {
			index = i
			break
		}
	}
	n := len(c.Weapons)
	index = ((index+step)%n + n) % n
	return c.Weapons[index].Value
}

// IsValid reports whether id names a known weapon.
func (c Catalog) IsValid(id WeaponID) bool {
	_, ok := c.Weapon(id)
	return ok
}

var (
	catalogOnce sync.Once
	catalogData Catalog
	catalogErr  error
)

//go:embed weapons.json
var catalogPayload []byte

// DefaultCatalog exposes the parsed weapon and shop tables.
func DefaultCatalog() Catalog {
	catalogOnce.Do(func() {
		//1.- Parse the embedded JSON payload once so concurrent callers share the same data.
		catalogErr = json.Unmarshal(catalogPayload, &catalogData)
	})
	//2.- A broken table is a build defect, surface it immediately.
	if catalogErr != nil {
		panic(catalogErr)
	}
	//3.- Return a clone so callers cannot mutate the cached catalogue.
	return catalogData.Clone()
}

// IsDirtWeapon reports whether id adds terrain instead of removing it.
func IsDirtWeapon(id WeaponID) bool {
	return id == WeaponDirtClod || id == WeaponDirtBall
}

// IsTracer reports whether id is the non-destructive targeting shot.
func IsTracer(id WeaponID) bool {
	return id == WeaponTracer
}

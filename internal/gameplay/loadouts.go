package gameplay

import (
	"encoding/json"
	"sync"

	_ "embed"
)

// TurretConfig describes the barrel geometry rendered and fired from for a weapon.
type TurretConfig struct {
	TurretSize   float64 `json:"turretSize"`
	BarrelLength float64 `json:"barrelLength"`
	BarrelWidth  float64 `json:"barrelWidth"`
}

type turretFile struct {
	Default TurretConfig              `json:"default"`
	Turrets map[WeaponID]TurretConfig `json:"turrets"`
}

//go:embed turrets.json
var turretPayload []byte

var (
	turretOnce sync.Once
	turretData turretFile
	turretErr  error
)

func turrets() turretFile {
	turretOnce.Do(func() {
		//1.- Parse the embedded turret table in a thread-safe manner.
		turretErr = json.Unmarshal(turretPayload, &turretData)
	})
	//2.- Surface configuration errors eagerly to avoid divergent muzzle positions.
	if turretErr != nil {
		panic(turretErr)
	}
	return turretData
}

// Turret returns the barrel geometry for the weapon, using the default turret for unlisted weapons.
func Turret(id WeaponID) TurretConfig {
	table := turrets()
	if turret, ok := table.Turrets[id]; ok {
		return turret
	}
	return table.Default
}

// BarrelLength is the muzzle distance from the turret pivot for the weapon.
func BarrelLength(id WeaponID) float64 {
	return Turret(id).BarrelLength
}

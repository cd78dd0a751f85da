package replay

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"tankduel/engine/internal/environment"
	"tankduel/engine/internal/projectile"
	"tankduel/engine/internal/tank"
	"tankduel/engine/internal/terrain"
)

// ErrMalformedFrame is returned when a frame payload cannot be decoded.
var ErrMalformedFrame = errors.New("malformed replay frame")

// Field numbers of the frame wire format. They must never be reused.
const (
	frameTick        protowire.Number = 1
	frameClock       protowire.Number = 2
	frameRound       protowire.Number = 3
	frameWind        protowire.Number = 4
	frameHeights     protowire.Number = 5
	frameTanks       protowire.Number = 6
	frameProjectiles protowire.Number = 7

	tankName   protowire.Number = 1
	tankX      protowire.Number = 2
	tankY      protowire.Number = 3
	tankHealth protowire.Number = 4
	tankShield protowire.Number = 5
	tankAngle  protowire.Number = 6
	tankPower  protowire.Number = 7

	shellWeapon protowire.Number = 1
	shellX      protowire.Number = 2
	shellY      protowire.Number = 3
)

// TankFrame is a tank as captured in a frame.
type TankFrame struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health float64 `json:"health"`
	Shield float64 `json:"shield"`
	Angle  float64 `json:"angle"`
	Power  float64 `json:"power"`
}

// ProjectileFrame is a shell in flight as captured in a frame.
type ProjectileFrame struct {
	Weapon string  `json:"weapon"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// TerrainFrame is a snapshot of the field: the heightmap plus everything standing on it.
type TerrainFrame struct {
	Tick        uint64            `json:"tick"`
	Clock       float64           `json:"clock"`
	Round       int               `json:"round"`
	Wind        float64           `json:"wind"`
	Heights     []float64         `json:"heights"`
	Tanks       []TankFrame       `json:"tanks"`
	Projectiles []ProjectileFrame `json:"projectiles"`
}

// Source is the live game a frame is captured from.
type Source interface {
	Clock() float64
	Round() int
	Terrain() *terrain.Terrain
	Tanks() []*tank.Tank
	Projectiles() []*projectile.Projectile
	Environment() *environment.Environment
}

// CaptureFrame snapshots src at tick.
func CaptureFrame(tick uint64, src Source) TerrainFrame {
	frame := TerrainFrame{Tick: tick}
	if src == nil {
		return frame
	}
	frame.Clock = src.Clock()
	frame.Round = src.Round()
	_, frame.Wind = src.Environment().Snapshot()
	if ground := src.Terrain(); ground != nil {
		frame.Heights = ground.Heights()
	}
	for _, t := range src.Tanks() {
		frame.Tanks = append(frame.Tanks, TankFrame{Name: t.Name, X: t.X, Y: t.Y, Health: t.Health, Shield: t.Shield, Angle: t.Angle, Power: t.Power})
	}
	for _, p := range src.Projectiles() {
		frame.Projectiles = append(frame.Projectiles, ProjectileFrame{Weapon: string(p.Weapon), X: p.X, Y: p.Y})
	}
	return frame
}

// EncodeTerrainFrame serialises a frame in protobuf wire format.
func EncodeTerrainFrame(frame TerrainFrame) []byte {
	b := make([]byte, 0, 32+len(frame.Heights)*8)
	b = protowire.AppendTag(b, frameTick, protowire.VarintType)
	b = protowire.AppendVarint(b, frame.Tick)
	b = appendDouble(b, frameClock, frame.Clock)
	b = protowire.AppendTag(b, frameRound, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(frame.Round))
	b = appendDouble(b, frameWind, frame.Wind)

	//1.- Heights are a packed run of doubles.
	if len(frame.Heights) > 0 {
		packed := make([]byte, 0, len(frame.Heights)*8)
		for _, h := range frame.Heights {
			packed = protowire.AppendFixed64(packed, math.Float64bits(h))
		}
		b = protowire.AppendTag(b, frameHeights, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}

	//2.- Tanks and shells are embedded messages.
	for _, t := range frame.Tanks {
		var msg []byte
		msg = protowire.AppendTag(msg, tankName, protowire.BytesType)
		msg = protowire.AppendString(msg, t.Name)
		msg = appendDouble(msg, tankX, t.X)
		msg = appendDouble(msg, tankY, t.Y)
		msg = appendDouble(msg, tankHealth, t.Health)
		msg = appendDouble(msg, tankShield, t.Shield)
		msg = appendDouble(msg, tankAngle, t.Angle)
		msg = appendDouble(msg, tankPower, t.Power)
		b = protowire.AppendTag(b, frameTanks, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}
	for _, p := range frame.Projectiles {
		var msg []byte
		msg = protowire.AppendTag(msg, shellWeapon, protowire.BytesType)
		msg = protowire.AppendString(msg, p.Weapon)
		msg = appendDouble(msg, shellX, p.X)
		msg = appendDouble(msg, shellY, p.Y)
		b = protowire.AppendTag(b, frameProjectiles, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}
	return b
}

// DecodeTerrainFrame parses a payload produced by EncodeTerrainFrame. Unknown fields are skipped.
func DecodeTerrainFrame(b []byte) (TerrainFrame, error) {
	var frame TerrainFrame
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, value []byte, scalar uint64) error {
		switch {
		case num == frameTick && typ == protowire.VarintType:
			frame.Tick = scalar
		case num == frameClock && typ == protowire.Fixed64Type:
			frame.Clock = math.Float64frombits(scalar)
		case num == frameRound && typ == protowire.VarintType:
			frame.Round = int(scalar)
		case num == frameWind && typ == protowire.Fixed64Type:
			frame.Wind = math.Float64frombits(scalar)
		case num == frameHeights && typ == protowire.BytesType:
			if len(value)%8 != 0 {
				return fmt.Errorf("%w: heights length %d", ErrMalformedFrame, len(value))
			}
			for len(value) > 0 {
				bits, n := protowire.ConsumeFixed64(value)
				if n < 0 {
					return fmt.Errorf("%w: %v", ErrMalformedFrame, protowire.ParseError(n))
				}
				frame.Heights = append(frame.Heights, math.Float64frombits(bits))
				value = value[n:]
			}
		case num == frameTanks && typ == protowire.BytesType:
			t, err := decodeTank(value)
			if err != nil {
				return err
			}
			frame.Tanks = append(frame.Tanks, t)
		case num == frameProjectiles && typ == protowire.BytesType:
			p, err := decodeProjectile(value)
			if err != nil {
				return err
			}
			frame.Projectiles = append(frame.Projectiles, p)
		}
		return nil
	})
	return frame, err
}

func decodeTank(b []byte) (TankFrame, error) {
	var t TankFrame
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, value []byte, scalar uint64) error {
		if num == tankName && typ == protowire.BytesType {
			t.Name = string(value)
			return nil
		}
		if typ != protowire.Fixed64Type {
			return nil
		}
		v := math.Float64frombits(scalar)
		switch num {
		case tankX:
			t.X = v
		case tankY:
			t.Y = v
		case tankHealth:
			t.Health = v
		case tankShield:
			t.Shield = v
		case tankAngle:
			t.Angle = v
		case tankPower:
			t.Power = v
		}
		return nil
	})
	return t, err
}

func decodeProjectile(b []byte) (ProjectileFrame, error) {
	var p ProjectileFrame
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, value []byte, scalar uint64) error {
		switch {
		case num == shellWeapon && typ == protowire.BytesType:
			p.Weapon = string(value)
		case num == shellX && typ == protowire.Fixed64Type:
			p.X = math.Float64frombits(scalar)
		case num == shellY && typ == protowire.Fixed64Type:
			p.Y = math.Float64frombits(scalar)
		}
		return nil
	})
	return p, err
}

// walkFields visits every field of a message. Scalar carries varint and fixed64 values,
// value carries length-delimited payloads.
func walkFields(b []byte, visit func(num protowire.Number, typ protowire.Type, value []byte, scalar uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedFrame, protowire.ParseError(n))
		}
		b = b[n:]
		var (
			value  []byte
			scalar uint64
		)
		switch typ {
		case protowire.VarintType:
			scalar, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			scalar, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			value, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformedFrame, num, protowire.ParseError(n))
		}
		b = b[n:]
		if err := visit(num, typ, value, scalar); err != nil {
			return err
		}
	}
	return nil
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// Package aircon stores saved air-conditioning states in SQLite.
//
// A saved state captures every setting needed to put a unit back into a known
// configuration. Room presets refer to one by ID (RoomState.ac_state_id).
// Talking to the units themselves is outside this package.
package aircon

import (
	"fmt"

	"github.com/nerrad567/homecontrol-core/internal/mapping"
)

// Mode is an operating mode.
type Mode int64

// Operating modes, numbered as the units report them.
const (
	ModeAuto Mode = 1
	ModeCool Mode = 2
	ModeDry  Mode = 3
	ModeHeat Mode = 4
	ModeFan  Mode = 5
)

// FanSpeed is a fan speed setting.
type FanSpeed int64

// Fan speeds, numbered as the units report them.
const (
	FanSilent FanSpeed = 20
	FanLow    FanSpeed = 40
	FanMedium FanSpeed = 80
	FanFull   FanSpeed = 100
	FanAuto   FanSpeed = 102
)

// SwingMode is a louvre swing setting.
type SwingMode int64

// Swing modes, numbered as the units report them.
const (
	SwingOff        SwingMode = 0
	SwingHorizontal SwingMode = 3
	SwingVertical   SwingMode = 12
	SwingBoth       SwingMode = 15
)

// Target temperature bounds per unit.
const (
	minTargetC = 16
	maxTargetC = 30
	minTargetF = 60
	maxTargetF = 86
)

// State describes the settings of a unit.
var State = mapping.MustSchema("ACState",
	mapping.F("power", mapping.Bool),
	mapping.F("prompt_tone", mapping.Bool),
	mapping.F("target", mapping.Int),
	mapping.F("mode", mapping.Int),
	mapping.F("fan", mapping.Int),
	mapping.F("swing", mapping.Int),
	mapping.F("eco", mapping.Bool),
	mapping.F("turbo", mapping.Bool),
	mapping.F("fahrenheit", mapping.Bool),
)

// SavedState is a named State stored for later recall.
var SavedState = mapping.MustSchema("ACSavedState",
	mapping.F("id", mapping.String),
	mapping.F("name", mapping.String),
	mapping.F("state", mapping.Nested(State)),
)

// RegisterSchemas registers SavedState, and through it State, with reg.
func RegisterSchemas(reg *mapping.Registry) error {
	return reg.Register(SavedState)
}

// Settings is the typed form of a State object.
type Settings struct {
	Power      bool
	PromptTone bool
	Target     int64
	Mode       Mode
	Fan        FanSpeed
	Swing      SwingMode
	Eco        bool
	Turbo      bool
	Fahrenheit bool
}

// SettingsFrom reads a complete State object. Every field must be set and
// hold a value the units accept.
func SettingsFrom(obj *mapping.Object) (Settings, error) {
	if obj == nil || obj.Schema() != State {
		return Settings{}, fmt.Errorf("%w: state is required", ErrInvalidState)
	}
	for _, f := range State.Fields() {
		if !obj.IsSet(f.Name) {
			return Settings{}, fmt.Errorf("%w: state.%s is required", ErrInvalidState, f.Name)
		}
	}

	var s Settings
	s.Power, _ = obj.Bool("power")
	s.PromptTone, _ = obj.Bool("prompt_tone")
	s.Target, _ = obj.Int("target")
	mode, _ := obj.Int("mode")
	fan, _ := obj.Int("fan")
	swing, _ := obj.Int("swing")
	s.Mode, s.Fan, s.Swing = Mode(mode), FanSpeed(fan), SwingMode(swing)
	s.Eco, _ = obj.Bool("eco")
	s.Turbo, _ = obj.Bool("turbo")
	s.Fahrenheit, _ = obj.Bool("fahrenheit")

	return s, s.Validate()
}

// Validate checks enumerated settings and the target range for the unit in use.
func (s Settings) Validate() error {
	switch s.Mode {
	case ModeAuto, ModeCool, ModeDry, ModeHeat, ModeFan:
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidState, s.Mode)
	}
	switch s.Fan {
	case FanSilent, FanLow, FanMedium, FanFull, FanAuto:
	default:
		return fmt.Errorf("%w: unknown fan speed %d", ErrInvalidState, s.Fan)
	}
	switch s.Swing {
	case SwingOff, SwingHorizontal, SwingVertical, SwingBoth:
	default:
		return fmt.Errorf("%w: unknown swing mode %d", ErrInvalidState, s.Swing)
	}

	lo, hi, unit := int64(minTargetC), int64(maxTargetC), "C"
	if s.Fahrenheit {
		lo, hi, unit = minTargetF, maxTargetF, "F"
	}
	if s.Target < lo || s.Target > hi {
		return fmt.Errorf("%w: target %d%s outside %d-%d", ErrInvalidState, s.Target, unit, lo, hi)
	}
	return nil
}

// Object returns s as a State object with every field set.
func (s Settings) Object() *mapping.Object {
	obj := mapping.New(State)
	obj.MustSet("power", s.Power)
	obj.MustSet("prompt_tone", s.PromptTone)
	obj.MustSet("target", s.Target)
	obj.MustSet("mode", int64(s.Mode))
	obj.MustSet("fan", int64(s.Fan))
	obj.MustSet("swing", int64(s.Swing))
	obj.MustSet("eco", s.Eco)
	obj.MustSet("turbo", s.Turbo)
	obj.MustSet("fahrenheit", s.Fahrenheit)
	return obj
}

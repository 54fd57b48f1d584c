package hue

import (
	"github.com/nerrad567/homecontrol-core/internal/mapping"
)

// LightState is a simplified light or light-group state. Nil fields are left
// untouched when the state is applied.
type LightState struct {
	On          *bool    `json:"on,omitempty"`
	Brightness  *float64 `json:"brightness,omitempty"`
	Colour      *XY      `json:"colour,omitempty"`
	ColourTempK *int     `json:"colour_temp_k,omitempty"`
}

// IsEmpty reports whether no field is set.
func (s LightState) IsEmpty() bool {
	return s.On == nil && s.Brightness == nil && s.Colour == nil && s.ColourTempK == nil
}

// ToLightPut builds a LightPut object with only the given fields set.
func (s LightState) ToLightPut() (*mapping.Object, error) {
	return s.build(LightPut)
}

// ToGroupedLightPut builds a GroupedLightPut object with only the given
// fields set.
func (s LightState) ToGroupedLightPut() (*mapping.Object, error) {
	return s.build(GroupedLightPut)
}

func (s LightState) build(schema *mapping.Schema) (*mapping.Object, error) {
	obj := mapping.New(schema)

	if s.On != nil {
		if err := obj.Set("on", map[string]any{"on": *s.On}); err != nil {
			return nil, err
		}
	}
	if s.Brightness != nil {
		if err := obj.Set("dimming", map[string]any{"brightness": *s.Brightness}); err != nil {
			return nil, err
		}
	}
	if s.Colour != nil {
		xy := map[string]any{"x": s.Colour.X, "y": s.Colour.Y}
		if err := obj.Set("color", map[string]any{"xy": xy}); err != nil {
			return nil, err
		}
	}
	if s.ColourTempK != nil {
		mirek := KelvinToMirek(*s.ColourTempK)
		if err := obj.Set("color_temperature", map[string]any{"mirek": mirek}); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// LightStateFromObject extracts the simplified state from any light-like
// object (LightGet, LightPut, GroupedLightGet, GroupedLightPut).
func LightStateFromObject(obj *mapping.Object) LightState {
	var s LightState

	if v, ok := obj.Lookup("on.on"); ok {
		if b, isBool := v.(bool); isBool {
			s.On = &b
		}
	}
	if v, ok := obj.Lookup("dimming.brightness"); ok {
		if f, isFloat := v.(float64); isFloat {
			s.Brightness = &f
		}
	}
	x, xok := obj.Lookup("color.xy.x")
	y, yok := obj.Lookup("color.xy.y")
	if xok && yok {
		xf, xIsFloat := x.(float64)
		yf, yIsFloat := y.(float64)
		if xIsFloat && yIsFloat {
			s.Colour = &XY{X: xf, Y: yf}
		}
	}
	if v, ok := obj.Lookup("color_temperature.mirek"); ok {
		if m, isInt := v.(int64); isInt && m > 0 {
			k := MirekToKelvin(int(m))
			s.ColourTempK = &k
		}
	}
	return s
}

// Fields returns the set values as telemetry fields.
func (s LightState) Fields() map[string]any {
	fields := make(map[string]any, 5)
	if s.On != nil {
		fields["on"] = *s.On
	}
	if s.Brightness != nil {
		fields["brightness"] = *s.Brightness
	}
	if s.Colour != nil {
		fields["x"] = s.Colour.X
		fields["y"] = s.Colour.Y
	}
	if s.ColourTempK != nil {
		fields["colour_temp_k"] = *s.ColourTempK
	}
	return fields
}

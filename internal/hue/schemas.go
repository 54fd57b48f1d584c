package hue

import (
	"fmt"

	"github.com/nerrad567/homecontrol-core/internal/mapping"
)

// Resource types exposed by the CLIP v2 API.
const (
	ResourceRoom         = "room"
	ResourceLight        = "light"
	ResourceGroupedLight = "grouped_light"
	ResourceScene        = "scene"
)

// Shorthand for schema declarations below.
var (
	f      = mapping.F
	str    = mapping.String
	num    = mapping.Float
	integ  = mapping.Int
	flag   = mapping.Bool
	nested = mapping.Nested
	seq    = mapping.SequenceOf
)

// Shared building blocks.
var (
	ResourceIdentifier = mapping.MustSchema("ResourceIdentifier",
		f("rid", str),
		f("rtype", str),
	)
	Metadata = mapping.MustSchema("Metadata",
		f("archetype", str),
		f("name", str),
	)
	On = mapping.MustSchema("On",
		f("on", flag),
	)
	Dimming = mapping.MustSchema("Dimming",
		f("brightness", num),
	)
	ColorXY = mapping.MustSchema("ColorXY",
		f("x", num),
		f("y", num),
	)
	Color = mapping.MustSchema("Color",
		f("xy", nested(ColorXY)),
	)
	ColorTemperature = mapping.MustSchema("ColorTemperature",
		f("mirek", integ),
	)
	GradientPoint = mapping.MustSchema("GradientPoint",
		f("color", nested(Color)),
	)
	Gradient = mapping.MustSchema("Gradient",
		f("points", seq(nested(GradientPoint))),
	)
	Effects = mapping.MustSchema("Effects",
		f("effect", str),
	)
	Dynamics = mapping.MustSchema("Dynamics",
		f("duration", integ),
	)
	Alert = mapping.MustSchema("Alert",
		f("action_values", seq(str)),
	)
	DimmingDelta = mapping.MustSchema("DimmingDelta",
		f("action", str),
		f("brightness_delta", num),
	)
	ColorTemperatureDelta = mapping.MustSchema("ColorTemperatureDelta",
		f("action", str),
		f("mirek_delta", integ),
	)
)

// Scene building blocks.
var (
	Action = mapping.MustSchema("Action",
		f("on", nested(On)),
		f("dimming", nested(Dimming)),
		f("color", nested(Color)),
		f("color_temperature", nested(ColorTemperature)),
		f("gradient", nested(Gradient)),
		f("effects", nested(Effects)),
		f("dynamics", nested(Dynamics)),
	)
	ActionItem = mapping.MustSchema("ActionItem",
		f("target", nested(ResourceIdentifier)),
		f("action", nested(Action)),
	)
	SceneMetadata = mapping.MustSchema("SceneMetadata",
		f("name", str),
		f("image", nested(ResourceIdentifier)),
	)
	Recall = mapping.MustSchema("Recall",
		f("action", str),
		f("status", str),
		f("duration", integ),
		f("dimming", nested(Dimming)),
	)
	ColorPalette = mapping.MustSchema("ColorPalette",
		f("color", nested(Color)),
		f("dimming", nested(Dimming)),
	)
	ColorTemperaturePalette = mapping.MustSchema("ColorTemperaturePalette",
		f("color_temperature", nested(ColorTemperature)),
		f("dimming", nested(Dimming)),
	)
	Palette = mapping.MustSchema("Palette",
		f("color", seq(nested(ColorPalette))),
		f("dimming", seq(nested(Dimming))),
		f("color_temperature", seq(nested(ColorTemperaturePalette))),
	)
)

// Light read-only detail.
var (
	LightDimming = mapping.MustSchema("LightDimming",
		f("brightness", num),
		f("min_dim_level", num),
	)
	MirekSchema = mapping.MustSchema("MirekSchema",
		f("mirek_minimum", integ),
		f("mirek_maximum", integ),
	)
	LightColorTemperature = mapping.MustSchema("LightColorTemperature",
		f("mirek", integ),
		f("mirek_valid", flag),
		f("mirek_schema", nested(MirekSchema)),
	)
	Gamut = mapping.MustSchema("Gamut",
		f("red", nested(ColorXY)),
		f("green", nested(ColorXY)),
		f("blue", nested(ColorXY)),
	)
	LightColor = mapping.MustSchema("LightColor",
		f("xy", nested(ColorXY)),
		f("gamut", nested(Gamut)),
		f("gamut_type", str),
	)
	LightDynamics = mapping.MustSchema("LightDynamics",
		f("status", str),
		f("status_values", seq(str)),
		f("speed", num),
		f("speed_valid", flag),
	)
	LightGradient = mapping.MustSchema("LightGradient",
		f("points", seq(nested(GradientPoint))),
		f("points_capable", integ),
	)
	LightEffects = mapping.MustSchema("LightEffects",
		f("effect", str),
		f("status_values", seq(str)),
		f("status", str),
		f("effect_values", seq(str)),
	)
	LightTimedEffects = mapping.MustSchema("LightTimedEffects",
		f("effect", str),
		f("duration", integ),
		f("status_values", seq(str)),
		f("status", str),
		f("effect_values", seq(str)),
	)
	LightPutDynamics = mapping.MustSchema("LightPutDynamics",
		f("duration", integ),
		f("speed", num),
	)
	LightPutAlert = mapping.MustSchema("LightPutAlert",
		f("action", str),
	)
	LightPutTimedEffects = mapping.MustSchema("LightPutTimedEffects",
		f("effect", str),
		f("duration", integ),
	)
)

// Read/write resource pairs.
var (
	RoomGet = mapping.MustSchema("RoomGet",
		f("type", str),
		f("id", str),
		f("id_v1", str),
		f("metadata", nested(Metadata)),
		f("services", seq(nested(ResourceIdentifier))),
		f("children", seq(nested(ResourceIdentifier))),
	)
	RoomPut = mapping.MustSchema("RoomPut",
		f("type", str),
		f("metadata", nested(Metadata)),
		f("children", seq(nested(ResourceIdentifier))),
	)

	LightGet = mapping.MustSchema("LightGet",
		f("type", str),
		f("id", str),
		f("id_v1", str),
		f("owner", nested(ResourceIdentifier)),
		f("metadata", nested(Metadata)),
		f("on", nested(On)),
		f("dimming", nested(LightDimming)),
		f("color_temperature", nested(LightColorTemperature)),
		f("color", nested(LightColor)),
		f("dynamics", nested(LightDynamics)),
		f("alert", nested(Alert)),
		f("mode", str),
		f("gradient", nested(LightGradient)),
		f("effects", nested(LightEffects)),
		f("timed_effects", nested(LightTimedEffects)),
	)
	LightPut = mapping.MustSchema("LightPut",
		f("type", str),
		f("on", nested(On)),
		f("dimming", nested(Dimming)),
		f("dimming_delta", nested(DimmingDelta)),
		f("color_temperature", nested(ColorTemperature)),
		f("color_temperature_delta", nested(ColorTemperatureDelta)),
		f("color", nested(Color)),
		f("dynamics", nested(LightPutDynamics)),
		f("alert", nested(LightPutAlert)),
		f("gradient", nested(Gradient)),
		f("effects", nested(Effects)),
		f("timed_effects", nested(LightPutTimedEffects)),
	)

	GroupedLightGet = mapping.MustSchema("GroupedLightGet",
		f("type", str),
		f("id", str),
		f("id_v1", str),
		f("owner", nested(ResourceIdentifier)),
		f("on", nested(On)),
		f("dimming", nested(Dimming)),
		f("color", nested(Color)),
		f("color_temperature", nested(ColorTemperature)),
		f("alert", nested(Alert)),
	)
	GroupedLightPut = mapping.MustSchema("GroupedLightPut",
		f("type", str),
		f("on", nested(On)),
		f("dimming", nested(Dimming)),
		f("dimming_delta", nested(DimmingDelta)),
		f("color_temperature", nested(ColorTemperature)),
		f("color_temperature_delta", nested(ColorTemperatureDelta)),
		f("color", nested(Color)),
		f("alert", nested(LightPutAlert)),
		f("dynamics", nested(Dynamics)),
	)

	SceneGet = mapping.MustSchema("SceneGet",
		f("type", str),
		f("id", str),
		f("id_v1", str),
		f("metadata", nested(SceneMetadata)),
		f("group", nested(ResourceIdentifier)),
		f("actions", seq(nested(ActionItem))),
		f("palette", nested(Palette)),
		f("speed", num),
		f("auto_dynamic", flag),
	)
	ScenePut = mapping.MustSchema("ScenePut",
		f("type", str),
		f("metadata", nested(SceneMetadata)),
		f("actions", seq(nested(ActionItem))),
		f("recall", nested(Recall)),
		f("palette", nested(Palette)),
		f("speed", num),
		f("auto_dynamic", flag),
	)
)

// resourceSchemas maps a resource type to its read and write schemas.
var resourceSchemas = map[string]struct{ get, put *mapping.Schema }{
	ResourceRoom:         {RoomGet, RoomPut},
	ResourceLight:        {LightGet, LightPut},
	ResourceGroupedLight: {GroupedLightGet, GroupedLightPut},
	ResourceScene:        {SceneGet, ScenePut},
}

// ResourceTypes returns the supported resource types.
func ResourceTypes() []string {
	return []string{ResourceRoom, ResourceLight, ResourceGroupedLight, ResourceScene}
}

// GetSchema returns the schema used to decode resources of rtype.
func GetSchema(rtype string) (*mapping.Schema, error) {
	s, ok := resourceSchemas[rtype]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, rtype)
	}
	return s.get, nil
}

// PutSchema returns the schema used to encode writes to resources of rtype.
func PutSchema(rtype string) (*mapping.Schema, error) {
	s, ok := resourceSchemas[rtype]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, rtype)
	}
	return s.put, nil
}

// RegisterSchemas registers every Hue resource schema, and the schemas they
// reference, with reg.
func RegisterSchemas(reg *mapping.Registry) error {
	for _, rtype := range ResourceTypes() {
		s := resourceSchemas[rtype]
		if err := reg.Register(s.get); err != nil {
			return fmt.Errorf("registering %s: %w", s.get.Name(), err)
		}
		if err := reg.Register(s.put); err != nil {
			return fmt.Errorf("registering %s: %w", s.put.Name(), err)
		}
	}
	return nil
}

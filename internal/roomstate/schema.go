package roomstate

import (
	"github.com/nerrad567/homecontrol-core/internal/mapping"
)

// Schema describes a stored room state: a named preset that pairs a Hue
// scene with the air-conditioning and infrared actions to apply alongside it.
var Schema = mapping.MustSchema("RoomState",
	mapping.F("id", mapping.String),
	mapping.F("name", mapping.String),
	mapping.F("icon", mapping.String),
	mapping.F("room_name", mapping.String),
	mapping.F("ac_device_name", mapping.String),
	mapping.F("ac_state_id", mapping.String),
	mapping.F("hue_scene_id", mapping.String),
	mapping.F("broadlink_device_name", mapping.String),
	mapping.F("broadlink_actions", mapping.SequenceOf(mapping.String)),
)

// RegisterSchemas registers Schema with reg.
func RegisterSchemas(reg *mapping.Registry) error {
	return reg.Register(Schema)
}

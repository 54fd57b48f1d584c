// Package home builds the household view of rooms from Hue bridge resources
// and stored room presets.
package home

import (
	"sort"

	"github.com/nerrad567/homecontrol-core/internal/hue"
	"github.com/nerrad567/homecontrol-core/internal/mapping"
)

// Room is one room of the home: its Hue room, the grouped light that
// controls it, the lights inside it, and the air-conditioning unit named by
// its presets.
var Room = mapping.MustSchema("HomeRoom",
	mapping.F("name", mapping.String),
	mapping.F("hue_room_id", mapping.String),
	mapping.F("hue_light_group", mapping.String),
	mapping.F("hue_lights", mapping.SequenceOf(mapping.String)),
	mapping.F("ac_device_name", mapping.String),
)

// RegisterSchemas registers Room with reg.
func RegisterSchemas(reg *mapping.Registry) error {
	return reg.Register(Room)
}

// BuildRooms joins bridge rooms (RoomGet), lights (LightGet) and room states
// (RoomState) into Room objects.
//
// A room's lights are its light children plus the lights owned by its device
// children. When several grouped_light services are listed the last one wins.
// Room states contribute ac_device_name to the room matching their
// room_name; a room_name with no Hue room yields a Room with only name and
// ac_device_name. Bridge rooms keep bridge order and the rest follow sorted
// by name.
func BuildRooms(hueRooms, lights, states []*mapping.Object) []*mapping.Object {
	lightsByOwner := make(map[string][]string)
	for _, l := range lights {
		id, _ := l.String("id")
		owner, _ := l.Lookup("owner.rid")
		if ownerID, ok := owner.(string); ok && id != "" {
			lightsByOwner[ownerID] = append(lightsByOwner[ownerID], id)
		}
	}

	rooms := make([]*mapping.Object, 0, len(hueRooms))
	byName := make(map[string]*mapping.Object, len(hueRooms))

	for _, hr := range hueRooms {
		name, _ := hr.Lookup("metadata.name")
		nameStr, _ := name.(string)
		if _, dup := byName[nameStr]; dup {
			continue
		}

		room := mapping.New(Room)
		room.MustSet("name", nameStr)
		if id, ok := hr.String("id"); ok {
			room.MustSet("hue_room_id", id)
		}
		if group := lightGroup(hr); group != "" {
			room.MustSet("hue_light_group", group)
		}
		room.MustSet("hue_lights", roomLights(hr, lightsByOwner))

		rooms = append(rooms, room)
		byName[nameStr] = room
	}

	var extra []*mapping.Object
	for _, st := range states {
		roomName, _ := st.String("room_name")
		device, _ := st.String("ac_device_name")
		if roomName == "" || device == "" {
			continue
		}
		room, ok := byName[roomName]
		if !ok {
			room = mapping.New(Room).MustSet("name", roomName)
			byName[roomName] = room
			extra = append(extra, room)
		}
		if !room.IsSet("ac_device_name") {
			room.MustSet("ac_device_name", device)
		}
	}

	sort.Slice(extra, func(i, j int) bool {
		a, _ := extra[i].String("name")
		b, _ := extra[j].String("name")
		return a < b
	})
	return append(rooms, extra...)
}

// lightGroup returns the rid of the room's grouped_light service.
func lightGroup(hr *mapping.Object) string {
	services, _ := hr.Objects("services")
	group := ""
	for _, svc := range services {
		if rtype, _ := svc.String("rtype"); rtype == hue.ResourceGroupedLight {
			group, _ = svc.String("rid")
		}
	}
	return group
}

// roomLights lists the light IDs under a room, without duplicates.
func roomLights(hr *mapping.Object, lightsByOwner map[string][]string) []string {
	children, _ := hr.Objects("children")
	seen := make(map[string]bool)
	out := []string{}
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, child := range children {
		rid, _ := child.String("rid")
		switch rtype, _ := child.String("rtype"); rtype {
		case hue.ResourceLight:
			add(rid)
		case "device":
			for _, id := range lightsByOwner[rid] {
				add(id)
			}
		}
	}
	return out
}

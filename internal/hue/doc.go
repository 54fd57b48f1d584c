// Package hue is a client for Philips Hue bridges speaking the CLIP v2 API.
//
// Resources are not modelled as Go structs. Each resource type has a read
// schema and a write schema (RoomGet/RoomPut, LightGet/LightPut, ...)
// declared with package mapping, and responses are decoded into
// *mapping.Object values. Writes send only the fields set on the object, so
// a partial update never resets unrelated state on the bridge.
//
// Bridge certificates are issued for the bridge ID, not its address, so
// each client verifies TLS against the configured CA with ServerName set to
// the bridge identifier.
package hue

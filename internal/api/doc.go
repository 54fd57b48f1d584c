// Package api implements the HTTP REST API and WebSocket server for homecontrol.
//
// This package provides:
//   - REST endpoints for Hue bridge resources (rooms, lights, grouped lights, scenes)
//   - Stored room state and saved air-conditioning state CRUD
//   - The home view of rooms (GET /home/rooms?bridge_name=) and GET /info
//   - Declarative filtering of every collection via ?filters=<json>
//   - WebSocket hub broadcasting hue.state_changed events
//   - JWT and static API key authentication
//
// # Filters
//
// Collections accept a JSON object whose keys are field[operator]:
//
//	GET /api/v1/hue/upstairs/rooms?filters={"metadata.name[eq]":"Lounge"}
//
// Filter and payload mapping errors are returned as 400 with the codes
// filter_syntax, unknown_operator, unknown_field and mapping_error.
// An unknown bridge is 404; a failing bridge is 502.
//
// # State Flow
//
// A successful write is published as retained state on
// homecontrol/state/hue/{bridge}/{rtype}/{id}. The server subscribes to
// homecontrol/state/# and relays those messages to WebSocket clients. Without
// MQTT the server broadcasts writes to WebSocket clients itself.
//
// # Security
//
// Protected routes take "Authorization: Bearer <token>" from POST /auth/login,
// or X-Api-Key when security.api_keys is enabled. WebSocket connections use
// single-use tickets from POST /auth/ws-ticket to keep tokens out of URLs.
// Room state and air-conditioning state changes require the admin group.
package api

// Package influxdb writes homecontrol telemetry to InfluxDB v2.
//
// It wraps influxdb-client-go with connection management and a non-blocking,
// batched write path. Two measurements are written:
//
//   - hue_state: the light state sent to a Hue resource (tags bridge, rtype, id)
//   - api_requests: per-request latency and status (tags method, route)
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without telemetry
//	}
//	defer client.Close()
//
//	client.WriteLightState("upstairs", "light", id, state.Fields())
//
// Batching follows influxdb.batch_size and influxdb.flush_interval.
package influxdb

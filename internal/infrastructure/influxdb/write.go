package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by homecontrol.
const (
	MeasurementHueState = "hue_state"
	MeasurementAPI      = "api_requests"
)

// WriteLightState records the state written to a Hue resource.
//
// bridge, rtype and id become tags; fields carry the values (on, brightness,
// x, y, colour_temp_k). Points with no fields are dropped. The write is
// non-blocking and batched.
//
//	client.WriteLightState("upstairs", "grouped_light", "9b1e",
//	    map[string]any{"on": true, "brightness": 40.0})
func (c *Client) WriteLightState(bridge, rtype, id string, fields map[string]any) {
	if len(fields) == 0 {
		return
	}
	c.WritePoint(MeasurementHueState, map[string]string{
		"bridge": bridge,
		"rtype":  rtype,
		"id":     id,
	}, fields)
}

// WriteRequestMetric records one API request: route pattern and status as
// tags, latency in milliseconds as a field.
func (c *Client) WriteRequestMetric(method, route string, status int, latency time.Duration) {
	c.WritePoint(MeasurementAPI, map[string]string{
		"method": method,
		"route":  route,
	}, map[string]any{
		"status":     status,
		"latency_ms": float64(latency.Microseconds()) / 1000,
	})
}

// WritePoint writes a point timestamped now.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a point with an explicit timestamp.
// It is a no-op while disconnected.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, ts))
}

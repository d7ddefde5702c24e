package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementLightState is the measurement every light point is written to.
const MeasurementLightState = "light_state"

// LightPoint is the state of one light after an operation.
type LightPoint struct {
	Light       string
	Address     string
	Operation   string
	On          bool
	Brightness  int
	Temperature int // Kelvin
	Time        time.Time
}

// WriteLightState queues one light_state point. The write is non-blocking;
// a zero Time means now.
func (c *Client) WriteLightState(p LightPoint) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(lightStatePoint(p))
}

// lightStatePoint builds the point for p.
func lightStatePoint(p LightPoint) *write.Point {
	ts := p.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	tags := map[string]string{
		"light":   p.Light,
		"address": p.Address,
	}
	if p.Operation != "" {
		tags["operation"] = p.Operation
	}

	return write.NewPoint(
		MeasurementLightState,
		tags,
		map[string]interface{}{
			"on":            p.On,
			"brightness":    p.Brightness,
			"temperature_k": p.Temperature,
		},
		ts,
	)
}

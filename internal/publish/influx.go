package publish

import (
	"context"

	"github.com/wassimk/elgato-light/internal/executor"
	"github.com/wassimk/elgato-light/internal/infrastructure/influxdb"
)

// PointWriter is the subset of *influxdb.Client the InfluxDB sink uses.
type PointWriter interface {
	WriteLightState(p influxdb.LightPoint)
}

// InfluxObserver writes one light_state point per successful outcome.
type InfluxObserver struct {
	writer PointWriter
}

// NewInfluxObserver returns an observer writing through w.
func NewInfluxObserver(w PointWriter) *InfluxObserver {
	return &InfluxObserver{writer: w}
}

// Observe implements executor.Observer.
func (i *InfluxObserver) Observe(_ context.Context, r executor.Report) {
	for _, o := range r.Outcomes {
		if !o.OK() {
			continue
		}
		i.writer.WriteLightState(influxdb.LightPoint{
			Light:       o.Target.Name,
			Address:     o.Target.HostPort(),
			Operation:   r.Operation.Name(),
			On:          o.State.On,
			Brightness:  o.State.Brightness,
			Temperature: o.State.Kelvin(),
			Time:        r.StartedAt,
		})
	}
}

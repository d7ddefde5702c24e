// Package influxdb records light state changes in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Each successful light
// operation becomes one point in the light_state measurement:
//
//	light_state,light=<name>,address=<ip:port>,operation=<op> on=<bool>,brightness=<int>,temperature_k=<int>
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close() // flushes pending points
//
//	client.WriteLightState(influxdb.LightPoint{Light: "Key Light", On: true, Brightness: 40})
//
// # Error Handling
//
// Writes are non-blocking and batched. Batch failures are delivered to the
// callback registered with SetOnError. Connection errors are returned directly.
package influxdb

// Package publish forwards executor reports to the optional sinks: the
// command history database, an MQTT broker and InfluxDB.
//
// Every sink is an executor.Observer. Sink failures are logged and never
// change a command's result.
package publish

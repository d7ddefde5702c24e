// Package logging provides structured logging for elgato-light.
//
// This package wraps Go's standard log/slog package so every component
// logs through the same handler with the same default fields.
//
// # Features
//
//   - Text output when writing to a terminal, JSON otherwise ("auto")
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// Command results are printed on stdout by the CLI; logs default to stderr
// at warn level so they never interleave with output meant for scripts.
//
// # Configuration
//
//	logging:
//	  level: "warn"      # debug, info, warn, error
//	  format: "auto"     # auto, json, text
//	  output: "stderr"   # stderr, stdout
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Debug("browsing", "service", "_elg._tcp")
//
// Never log MQTT passwords or InfluxDB tokens.
package logging

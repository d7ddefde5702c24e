// Package config handles loading and validating elgato-light configuration.
//
// This package manages:
//   - Loading configuration from YAML or TOML files (chosen by extension)
//   - Overriding with environment variables
//   - Validation of value ranges
//   - Default value handling, including per-user cache and config paths
//
// A configuration file is optional. When no path is given and the default
// file does not exist, the built-in defaults are used unchanged.
//
// Security Considerations:
//   - MQTT passwords and InfluxDB tokens should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Discovery.Timeout)
package config

// elgato-light controls Elgato Key Light family lights on the local network.
//
// Lights are selected by address (--ip), by name (--name) or, with neither,
// every light found by mDNS discovery. Discovery results are cached so later
// commands do not wait for the browse window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/wassimk/elgato-light/internal/infrastructure/config"
	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// configEnv names the environment variable holding the config file path.
const configEnv = "ELGATO_LIGHT_CONFIG"

const usageText = `usage: elgato-light [--config <path>] <command> [flags]

Light commands (select lights with -i/--ip <a,b,c> or -n/--name <substring>):
  on [-b 0..100] [-t 2900..7000]   turn on (default brightness 10, temperature 3000K)
  off                              turn off
  brightness <-100..100>           change brightness by a relative amount
  temperature <2900..7000>         set colour temperature in Kelvin
  status                           show power, brightness and temperature

Other commands:
  discover [--timeout 3s]          find lights on the network and cache them
  list                             show cached lights
  clear-cache                      forget cached lights
  history [-n 20] [--light name]   show recent command results
  version                          print version information

Light commands also accept --timeout <duration> for discovery on a cache miss.
ELGATO_LIGHT_IP sets default addresses when neither --ip nor --name is given.
`

func main() {
	// Cancel discovery and in-flight requests on Ctrl+C or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run parses args, executes one command and returns the exit code.
//
// Parameters:
//   - ctx: Cancelled on interrupt
//   - args: Command line without the program name
//   - out: Destination for command output
//   - errOut: Destination for errors and per-light failures
//
// Returns:
//   - int: 0 on success, 1 on any failure, 2 on a usage error
func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "configuration file (YAML or TOML)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(out, usageText)
			return exitOK
		}
		return usageError(errOut, err)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprint(errOut, usageText)
		return exitUsage
	}

	command, cmdArgs := rest[0], rest[1:]
	switch command {
	case "version":
		fmt.Fprintf(out, "%s %s (commit %s, built %s)\n", config.AppName, version, commit, date)
		return exitOK
	case "help":
		fmt.Fprint(out, usageText)
		return exitOK
	}

	handler, ok := commands[command]
	if !ok {
		return usageError(errOut, fmt.Errorf("unknown command %q", command))
	}

	cfg, err := loadConfig(*configPath, logging.Default())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitFailure
	}

	log := logging.New(cfg.Logging, version)
	log.Debug("configuration loaded", "command", command, "commit", commit)

	a := newApp(cfg, log, out, errOut)
	defer a.close()

	return handler(ctx, a, cmdArgs)
}

// loadConfig reads the file named by --config or ELGATO_LIGHT_CONFIG. With
// neither, the per-user default file is used if it exists. log is the
// pre-configuration logger.
func loadConfig(path string, log *logging.Logger) (*config.Config, error) {
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path != "" {
		log.Debug("loading configuration", "path", path)
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	log.Debug("loading configuration", "path", config.DefaultPath(), "optional", true)
	cfg, err := config.LoadOptional(config.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func usageError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n\n%s", err, usageText)
	return exitUsage
}

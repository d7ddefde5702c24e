package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/wassimk/elgato-light/internal/discovery"
	"github.com/wassimk/elgato-light/internal/executor"
	"github.com/wassimk/elgato-light/internal/history"
	"github.com/wassimk/elgato-light/internal/light"
	"github.com/wassimk/elgato-light/internal/resolver"
)

// commandFunc runs one subcommand and returns the exit code.
type commandFunc func(ctx context.Context, a *app, args []string) int

var commands = map[string]commandFunc{
	"on":          cmdOn,
	"off":         cmdOff,
	"brightness":  cmdBrightness,
	"temperature": cmdTemperature,
	"status":      cmdStatus,
	"discover":    cmdDiscover,
	"list":        cmdList,
	"clear-cache": cmdClearCache,
	"history":     cmdHistory,
}

// selection holds the light selection flags shared by light commands.
type selection struct {
	addresses string
	name      string
	timeout   time.Duration
}

func newLightFlags(command string, a *app, sel *selection) *flag.FlagSet {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&sel.addresses, "i", "", "comma-separated light addresses")
	fs.StringVar(&sel.addresses, "ip", "", "comma-separated light addresses")
	fs.StringVar(&sel.name, "n", "", "select lights whose name contains this text")
	fs.StringVar(&sel.name, "name", "", "select lights whose name contains this text")
	fs.DurationVar(&sel.timeout, "timeout", a.cfg.Discovery.Timeout, "discovery window on a cache miss")
	return fs
}

func cmdOn(ctx context.Context, a *app, args []string) int {
	var sel selection
	fs := newLightFlags("on", a, &sel)
	var op executor.TurnOn
	fs.IntVar(&op.Brightness, "b", light.DefaultBrightness, "brightness percent")
	fs.IntVar(&op.Brightness, "brightness", light.DefaultBrightness, "brightness percent")
	fs.IntVar(&op.Kelvin, "t", light.DefaultKelvin, "colour temperature in Kelvin")
	fs.IntVar(&op.Kelvin, "temperature", light.DefaultKelvin, "colour temperature in Kelvin")

	if code, ok := parseNoArgs(a, fs, args); !ok {
		return code
	}
	return a.runOperation(ctx, sel, op)
}

func cmdOff(ctx context.Context, a *app, args []string) int {
	var sel selection
	if code, ok := parseNoArgs(a, newLightFlags("off", a, &sel), args); !ok {
		return code
	}
	return a.runOperation(ctx, sel, executor.TurnOff{})
}

func cmdStatus(ctx context.Context, a *app, args []string) int {
	var sel selection
	if code, ok := parseNoArgs(a, newLightFlags("status", a, &sel), args); !ok {
		return code
	}
	return a.runOperation(ctx, sel, executor.QueryStatus{})
}

func cmdBrightness(ctx context.Context, a *app, args []string) int {
	var sel selection
	delta, code, ok := parseIntArg(a, newLightFlags("brightness", a, &sel), args, "brightness change")
	if !ok {
		return code
	}
	return a.runOperation(ctx, sel, executor.AdjustBrightness{Delta: delta})
}

func cmdTemperature(ctx context.Context, a *app, args []string) int {
	var sel selection
	kelvin, code, ok := parseIntArg(a, newLightFlags("temperature", a, &sel), args, "temperature")
	if !ok {
		return code
	}
	return a.runOperation(ctx, sel, executor.SetTemperature{Kelvin: kelvin})
}

// runOperation resolves the selected lights, applies op and prints the
// report.
func (a *app) runOperation(ctx context.Context, sel selection, op executor.Operation) int {
	if err := op.Validate(); err != nil {
		return usageError(a.errOut, err)
	}

	addresses := sel.addresses
	if addresses == "" && sel.name == "" {
		addresses = a.cfg.DefaultAddresses
	}

	targets, err := a.resolver.Resolve(ctx, resolver.Request{
		Addresses: addresses,
		Filter:    sel.name,
		Timeout:   sel.timeout,
	})
	if err != nil {
		fmt.Fprintf(a.errOut, "error: %v\n", err)
		return exitFailure
	}

	report := a.newExecutor(ctx).Apply(ctx, targets, op)
	printReport(a.out, a.errOut, report)

	if err := report.Err(); err != nil {
		a.log.Debug("operation failed on some lights", "operation", report.Operation.Name(), "error", err)
		return exitFailure
	}
	return exitOK
}

func cmdDiscover(ctx context.Context, a *app, args []string) int {
	fs := flag.NewFlagSet("discover", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	timeout := fs.Duration("timeout", a.cfg.Discovery.Timeout, "browse window")
	if code, ok := parseNoArgs(a, fs, args); !ok {
		return code
	}

	found, err := a.resolver.Rediscover(ctx, *timeout)
	if err != nil {
		fmt.Fprintf(a.errOut, "error: %v\n", err)
		return exitFailure
	}

	printTargets(a.out, found)
	fmt.Fprintf(a.out, "Found %s\n", plural(len(found), "light"))
	return exitOK
}

func cmdList(ctx context.Context, a *app, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if code, ok := parseNoArgs(a, fs, args); !ok {
		return code
	}

	cached, ok := a.resolver.Cached(ctx)
	if !ok {
		if discovery.Supported(a.discoverer) {
			fmt.Fprintln(a.errOut, "No cached lights; run discover to find them")
		} else {
			fmt.Fprintln(a.errOut, "No cached lights and discovery is not available here; use --ip to specify light addresses")
		}
		return exitOK
	}
	printTargets(a.out, cached)
	return exitOK
}

func cmdClearCache(ctx context.Context, a *app, args []string) int {
	fs := flag.NewFlagSet("clear-cache", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if code, ok := parseNoArgs(a, fs, args); !ok {
		return code
	}

	a.resolver.ClearCache(ctx)
	fmt.Fprintln(a.out, "Cache cleared")
	return exitOK
}

func cmdHistory(ctx context.Context, a *app, args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.Int("n", history.DefaultLimit, "number of records")
	lightName := fs.String("light", "", "only records for this light name")
	if code, ok := parseNoArgs(a, fs, args); !ok {
		return code
	}
	if *limit <= 0 {
		return usageError(a.errOut, fmt.Errorf("-n must be positive, got %d", *limit))
	}

	path := a.cfg.HistoryPath()
	if path == "" {
		fmt.Fprintln(a.errOut, "error: no history database path available; set history.path")
		return exitFailure
	}

	repo, err := history.Open(ctx, path)
	if err != nil {
		fmt.Fprintf(a.errOut, "error: %v\n", err)
		return exitFailure
	}
	defer repo.Close()

	records, err := repo.List(ctx, history.Filter{TargetName: *lightName, Limit: *limit})
	if err != nil {
		fmt.Fprintf(a.errOut, "error: %v\n", err)
		return exitFailure
	}
	if len(records) == 0 {
		fmt.Fprintln(a.errOut, "No history recorded yet")
		return exitOK
	}

	printHistory(a.out, records)
	return exitOK
}

// parseNoArgs parses flags and rejects positional arguments.
func parseNoArgs(a *app, fs *flag.FlagSet, args []string) (int, bool) {
	positional, err := parseArgs(fs, args)
	if err != nil {
		return usageError(a.errOut, err), false
	}
	if len(positional) > 0 {
		return usageError(a.errOut, fmt.Errorf("%s: unexpected argument %q", fs.Name(), positional[0])), false
	}
	return exitOK, true
}

// parseIntArg parses flags and exactly one integer argument.
func parseIntArg(a *app, fs *flag.FlagSet, args []string, what string) (int, int, bool) {
	positional, err := parseArgs(fs, args)
	if err != nil {
		return 0, usageError(a.errOut, err), false
	}
	if len(positional) != 1 {
		return 0, usageError(a.errOut, fmt.Errorf("%s: expected one %s value", fs.Name(), what)), false
	}

	v, err := strconv.Atoi(positional[0])
	if err != nil {
		return 0, usageError(a.errOut, fmt.Errorf("%s: %q is not a whole number", fs.Name(), positional[0])), false
	}
	return v, exitOK, true
}

// parseArgs separates flags from positional arguments so flags may follow
// the value and negative numbers are not taken for flags.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case arg == "-" || !strings.HasPrefix(arg, "-") || isNumber(arg):
			positional = append(positional, arg)
		default:
			flags = append(flags, arg)
			if takesValue(fs, arg) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		}
	}

	if err := fs.Parse(flags); err != nil {
		return nil, err
	}
	return positional, nil
}

// takesValue reports whether arg names a defined non-boolean flag given
// without an inline "=value".
func takesValue(fs *flag.FlagSet, arg string) bool {
	name := strings.TrimLeft(arg, "-")
	if strings.Contains(name, "=") {
		return false
	}
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return false
	}
	return true
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

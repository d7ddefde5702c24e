package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/wassimk/elgato-light/internal/executor"
	"github.com/wassimk/elgato-light/internal/history"
	"github.com/wassimk/elgato-light/internal/target"
)

// printReport writes successful outcomes to out and failures to errOut.
// With more than one light every line is prefixed by the light's name.
func printReport(out, errOut io.Writer, r executor.Report) {
	for _, o := range r.Outcomes {
		prefix := ""
		if r.Mode() == executor.Multi {
			prefix = o.Target.Name + ": "
		}

		if !o.OK() {
			fmt.Fprintf(errOut, "%serror: %v\n", prefix, o.Err)
			continue
		}
		for _, line := range outcomeLines(r.Operation, o) {
			fmt.Fprintf(out, "%s%s\n", prefix, line)
		}
	}
}

// outcomeLines renders a successful outcome.
func outcomeLines(op executor.Operation, o executor.Outcome) []string {
	switch op := op.(type) {
	case executor.TurnOn:
		return []string{fmt.Sprintf("Light on (brightness: %d%%, temperature: %dK)", op.Brightness, op.Kelvin)}
	case executor.TurnOff:
		return []string{"Light off"}
	case executor.AdjustBrightness:
		return []string{fmt.Sprintf("Brightness: %d%%", o.State.Brightness)}
	case executor.SetTemperature:
		return []string{fmt.Sprintf("Temperature: %dK", op.Kelvin)}
	case executor.QueryStatus:
		power := "Off"
		if o.State.On {
			power = "On"
		}
		return []string{
			"Power:       " + power,
			fmt.Sprintf("Brightness:  %d%%", o.State.Brightness),
			fmt.Sprintf("Temperature: %dK", o.State.Kelvin()),
		}
	default:
		return nil
	}
}

func printTargets(out io.Writer, targets []target.Target) {
	for _, t := range targets {
		fmt.Fprintln(out, t.String())
	}
}

func printHistory(out io.Writer, records []history.Record) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCOMMAND\tLIGHT\tRESULT")
	for _, rec := range records {
		command := strings.TrimSpace(rec.Operation + " " + rec.Argument)
		result := "error: " + rec.Error
		if rec.Success {
			power := "off"
			if rec.On {
				power = "on"
			}
			result = fmt.Sprintf("ok (%s, %d%%, %dK)", power, rec.Brightness, rec.TemperatureKelvin)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"), command, rec.TargetName, result)
	}
	w.Flush() //nolint:errcheck // Output to terminal
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

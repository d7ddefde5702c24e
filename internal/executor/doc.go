// Package executor applies one light operation to every resolved target and
// reports a per-target outcome.
//
// Operations form a closed set: TurnOn, TurnOff, AdjustBrightness,
// SetTemperature and QueryStatus. Read-modify-write operations fetch the
// current state, compute the new one and write it back. Any brightness or
// temperature change also powers the light on.
//
// A failing target never stops the others. The Report keeps outcomes in
// target order whether the fan-out ran in parallel or sequentially.
package executor

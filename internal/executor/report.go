package executor

import (
	"time"

	"go.uber.org/multierr"

	"github.com/wassimk/elgato-light/internal/light"
	"github.com/wassimk/elgato-light/internal/target"
)

// Mode tells the caller whether output needs per-target attribution.
type Mode int

const (
	// Single means exactly one target; output is undecorated.
	Single Mode = iota
	// Multi means zero or several targets; output is prefixed by name.
	Multi
)

func (m Mode) String() string {
	if m == Single {
		return "single"
	}
	return "multi"
}

// Outcome is the result of applying an operation to one target.
type Outcome struct {
	Target target.Target

	// State is the light's state after the operation. Zero when Err is set.
	State light.State

	Err error
}

// OK reports whether the operation succeeded on this target.
func (o Outcome) OK() bool { return o.Err == nil }

// TargetError attributes a failure to the light it happened on.
type TargetError struct {
	Target target.Target
	Err    error
}

func (e *TargetError) Error() string {
	return e.Target.Name + ": " + e.Err.Error()
}

func (e *TargetError) Unwrap() error { return e.Err }

// Report collects the outcomes of one Apply call.
type Report struct {
	// ID identifies this invocation in history and published events.
	ID string

	Operation Operation

	// Outcomes is in the same order as the targets passed to Apply.
	Outcomes []Outcome

	StartedAt time.Time
	Duration  time.Duration
}

// Mode returns Single for exactly one outcome and Multi otherwise.
func (r Report) Mode() Mode {
	if len(r.Outcomes) == 1 {
		return Single
	}
	return Multi
}

// Failed returns the outcomes that carry an error, in target order.
func (r Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err combines every failure as a *TargetError, or returns nil when all
// targets succeeded. Use multierr.Errors to split the result.
func (r Report) Err() error {
	var err error
	for _, o := range r.Failed() {
		err = multierr.Append(err, &TargetError{Target: o.Target, Err: o.Err})
	}
	return err
}

package publish

import (
	"errors"
	"time"

	"go.uber.org/multierr"

	"github.com/wassimk/elgato-light/internal/executor"
)

// StateMessage is the retained per-light state.
// Topic: {prefix}/light/{slug}/state
type StateMessage struct {
	// Light is the advertised light name.
	Light string `json:"light"`

	// Address is "ip:port".
	Address string `json:"address"`

	On         bool `json:"on"`
	Brightness int  `json:"brightness"`

	// TemperatureK is the colour temperature in Kelvin.
	TemperatureK int `json:"temperature_k"`

	// Operation is the command that produced this state ("on", "status", ...).
	Operation string `json:"operation"`

	// InvocationID correlates the message with history records.
	InvocationID string `json:"invocation_id"`

	// Timestamp is when the command started (UTC).
	Timestamp time.Time `json:"timestamp"`
}

// InvocationMessage summarises one command across all its lights.
// Topic: {prefix}/invocation
type InvocationMessage struct {
	ID         string         `json:"id"`
	Operation  string         `json:"operation"`
	Argument   string         `json:"argument,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	DurationMS int64          `json:"duration_ms"`
	Targets    int            `json:"targets"`
	Failed     []FailedTarget `json:"failed,omitempty"`
}

// FailedTarget names a light the command did not succeed on.
type FailedTarget struct {
	Light string `json:"light"`
	Error string `json:"error"`
}

// NewStateMessage builds the state message for a successful outcome.
func NewStateMessage(r executor.Report, o executor.Outcome) StateMessage {
	return StateMessage{
		Light:        o.Target.Name,
		Address:      o.Target.HostPort(),
		On:           o.State.On,
		Brightness:   o.State.Brightness,
		TemperatureK: o.State.Kelvin(),
		Operation:    r.Operation.Name(),
		InvocationID: r.ID,
		Timestamp:    r.StartedAt.UTC(),
	}
}

// NewInvocationMessage summarises r.
func NewInvocationMessage(r executor.Report) InvocationMessage {
	msg := InvocationMessage{
		ID:         r.ID,
		Operation:  r.Operation.Name(),
		Argument:   r.Operation.Argument(),
		Timestamp:  r.StartedAt.UTC(),
		DurationMS: r.Duration.Milliseconds(),
		Targets:    len(r.Outcomes),
	}
	for _, err := range multierr.Errors(r.Err()) {
		var te *executor.TargetError
		if !errors.As(err, &te) {
			continue
		}
		msg.Failed = append(msg.Failed, FailedTarget{Light: te.Target.Name, Error: te.Err.Error()})
	}
	return msg
}

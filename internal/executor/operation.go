package executor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/wassimk/elgato-light/internal/light"
	"github.com/wassimk/elgato-light/internal/target"
)

// DeviceClient reads and writes light state. *light.Client satisfies it.
type DeviceClient interface {
	GetStatus(ctx context.Context, t target.Target) (light.State, error)
	SetStatus(ctx context.Context, t target.Target, s light.State) error
}

// Operation is one of TurnOn, TurnOff, AdjustBrightness, SetTemperature or
// QueryStatus. The set is closed; apply is unexported.
type Operation interface {
	// Name is the CLI command the operation corresponds to.
	Name() string

	// Argument renders the operation's parameters, or "" when it has none.
	Argument() string

	// Validate checks user-supplied parameters.
	Validate() error

	apply(ctx context.Context, c DeviceClient, t target.Target) (light.State, error)
}

// TurnOn powers the light on at an absolute brightness and temperature.
type TurnOn struct {
	Brightness int
	Kelvin     int
}

// TurnOff powers the light off, keeping its brightness and temperature.
type TurnOff struct{}

// AdjustBrightness changes brightness by Delta, saturating at 0 and 100.
type AdjustBrightness struct {
	Delta int
}

// SetTemperature sets the colour temperature in Kelvin.
type SetTemperature struct {
	Kelvin int
}

// QueryStatus reads the light's state without changing it.
type QueryStatus struct{}

// DefaultTurnOn returns TurnOn with the default brightness and temperature.
func DefaultTurnOn() TurnOn {
	return TurnOn{Brightness: light.DefaultBrightness, Kelvin: light.DefaultKelvin}
}

func (TurnOn) Name() string           { return "on" }
func (TurnOff) Name() string          { return "off" }
func (AdjustBrightness) Name() string { return "brightness" }
func (SetTemperature) Name() string   { return "temperature" }
func (QueryStatus) Name() string      { return "status" }

func (o TurnOn) Argument() string {
	return fmt.Sprintf("brightness=%d temperature=%dK", o.Brightness, o.Kelvin)
}
func (TurnOff) Argument() string { return "" }
func (o AdjustBrightness) Argument() string {
	if o.Delta >= 0 {
		return "+" + strconv.Itoa(o.Delta)
	}
	return strconv.Itoa(o.Delta)
}
func (o SetTemperature) Argument() string { return strconv.Itoa(o.Kelvin) + "K" }
func (QueryStatus) Argument() string      { return "" }

func (o TurnOn) Validate() error {
	if err := light.ValidateBrightness(o.Brightness); err != nil {
		return err
	}
	return light.ValidateKelvin(o.Kelvin)
}
func (TurnOff) Validate() error            { return nil }
func (o AdjustBrightness) Validate() error { return light.ValidateBrightnessDelta(o.Delta) }
func (o SetTemperature) Validate() error   { return light.ValidateKelvin(o.Kelvin) }
func (QueryStatus) Validate() error        { return nil }

func (o TurnOn) apply(ctx context.Context, c DeviceClient, t target.Target) (light.State, error) {
	s := light.State{
		On:         true,
		Brightness: o.Brightness,
		Mireds:     light.KelvinToMireds(o.Kelvin),
	}
	if err := c.SetStatus(ctx, t, s); err != nil {
		return light.State{}, err
	}
	return s, nil
}

// TurnOff writes back the brightness and temperature it reads, so a light
// that cannot be read is not turned off.
func (TurnOff) apply(ctx context.Context, c DeviceClient, t target.Target) (light.State, error) {
	return update(ctx, c, t, func(s *light.State) {
		s.On = false
	})
}

func (o AdjustBrightness) apply(ctx context.Context, c DeviceClient, t target.Target) (light.State, error) {
	return update(ctx, c, t, func(s *light.State) {
		s.On = true
		s.Brightness = light.ClampBrightness(s.Brightness + o.Delta)
	})
}

func (o SetTemperature) apply(ctx context.Context, c DeviceClient, t target.Target) (light.State, error) {
	return update(ctx, c, t, func(s *light.State) {
		s.On = true
		s.Mireds = light.KelvinToMireds(o.Kelvin)
	})
}

func (QueryStatus) apply(ctx context.Context, c DeviceClient, t target.Target) (light.State, error) {
	return c.GetStatus(ctx, t)
}

// update reads t's state, applies mutate and writes the result back.
func update(ctx context.Context, c DeviceClient, t target.Target, mutate func(*light.State)) (light.State, error) {
	s, err := c.GetStatus(ctx, t)
	if err != nil {
		return light.State{}, err
	}
	mutate(&s)
	if err := c.SetStatus(ctx, t, s); err != nil {
		return light.State{}, err
	}
	return s, nil
}

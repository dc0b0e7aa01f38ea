package expose

import (
	"errors"
	"fmt"

	"zigbee-things/internal/convert"
	"zigbee-things/internal/zcl"
)

// ErrUnknownEnumValue is returned when an enumerated value has no mapping.
var ErrUnknownEnumValue = errors.New("unknown enum value")

// Transcoder converts between bridge values and property values.
type Transcoder interface {
	FromDevice(v any) (any, error)
	ToDevice(v any) (any, error)
}

type identity struct{}

func (identity) FromDevice(v any) (any, error) { return v, nil }
func (identity) ToDevice(v any) (any, error)   { return v, nil }

// onOff maps "ON"/"OFF" to booleans.
type onOff struct{}

func (onOff) FromDevice(v any) (any, error) {
	switch v {
	case "ON":
		return true, nil
	case "OFF":
		return false, nil
	}
	return nil, fmt.Errorf("on/off %v: %w", v, ErrUnknownEnumValue)
}

func (onOff) ToDevice(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("on/off value %v (%T) is not boolean", v, v)
	}
	if b {
		return "ON", nil
	}
	return "OFF", nil
}

// binary maps arbitrary on/off values to booleans.
type binary struct {
	on, off any
}

func binaryTranscoder(on, off any) Transcoder {
	if on == nil && off == nil {
		return binary{on: true, off: false}
	}
	return binary{on: on, off: off}
}

func (t binary) FromDevice(v any) (any, error) {
	switch v {
	case t.on:
		return true, nil
	case t.off:
		return false, nil
	}
	return nil, fmt.Errorf("binary %v: %w", v, ErrUnknownEnumValue)
}

func (t binary) ToDevice(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("binary value %v (%T) is not boolean", v, v)
	}
	if b {
		return t.on, nil
	}
	return t.off, nil
}

// invert negates a boolean transcoder, e.g. contact to open.
type invert struct {
	Transcoder
}

func (t invert) FromDevice(v any) (any, error) {
	r, err := t.Transcoder.FromDevice(v)
	if err != nil {
		return nil, err
	}
	b, ok := r.(bool)
	if !ok {
		return nil, fmt.Errorf("inverted value %v (%T) is not boolean", r, r)
	}
	return !b, nil
}

func (t invert) ToDevice(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("inverted value %v (%T) is not boolean", v, v)
	}
	return t.Transcoder.ToDevice(!b)
}

func number(v any) (float64, error) {
	f, ok := zcl.Numeric(v)
	if !ok {
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
	return f, nil
}

// brightness scales [0, max] to a percentage.
type brightness struct {
	max float64
}

func (t brightness) FromDevice(v any) (any, error) {
	n, err := number(v)
	if err != nil {
		return nil, err
	}
	return convert.LevelToPercent(n, t.max), nil
}

func (t brightness) ToDevice(v any) (any, error) {
	n, err := number(v)
	if err != nil {
		return nil, err
	}
	return convert.PercentToLevel(n, t.max), nil
}

// colorTemp converts mireds to kelvin and back.
type colorTemp struct{}

func (colorTemp) FromDevice(v any) (any, error) {
	n, err := number(v)
	if err != nil {
		return nil, err
	}
	return convert.Reciprocal(n)
}

func (colorTemp) ToDevice(v any) (any, error) {
	n, err := number(v)
	if err != nil {
		return nil, err
	}
	return convert.Reciprocal(n)
}

func roundReciprocal(v float64) int {
	n, _ := convert.Reciprocal(v)
	return n
}

// runMode maps the thermostat running state.
type runMode struct{}

var runModes = map[string]string{
	"idle": "off",
	"heat": "heating",
	"cool": "cooling",
}

func (runMode) FromDevice(v any) (any, error) {
	s, _ := v.(string)
	if m, ok := runModes[s]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("running state %v: %w", v, ErrUnknownEnumValue)
}

func (runMode) ToDevice(v any) (any, error) {
	for dev, prop := range runModes {
		if prop == v {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("run mode %v: %w", v, ErrUnknownEnumValue)
}

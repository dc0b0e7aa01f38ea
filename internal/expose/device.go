package expose

import (
	"errors"
	"fmt"

	"zigbee-things/internal/thing"
)

// BridgeDevice is one entry of the bridge/devices message.
type BridgeDevice struct {
	IEEEAddress        string      `json:"ieee_address"`
	FriendlyName       string      `json:"friendly_name"`
	Type               string      `json:"type"`
	Supported          bool        `json:"supported"`
	Disabled           bool        `json:"disabled"`
	InterviewCompleted bool        `json:"interview_completed"`
	Definition         *Definition `json:"definition"`
}

// Definition is the bridge's description of a supported device model.
type Definition struct {
	Model       string   `json:"model"`
	Vendor      string   `json:"vendor"`
	Description string   `json:"description"`
	Exposes     []Expose `json:"exposes"`
}

// Usable reports whether the device can be compiled.
func (d BridgeDevice) Usable() bool {
	return d.Type != "Coordinator" && !d.Disabled && d.Definition != nil
}

// Bound is a device compiled from its exposes, with a transcoder per
// property and the bridge state key of each property.
type Bound struct {
	Device      *thing.Device
	Transcoders map[string]Transcoder
	keys        map[string]string
}

// PropertyFor returns the property bound to a bridge state key.
func (b *Bound) PropertyFor(key string) *thing.Property {
	name, ok := b.keys[key]
	if !ok {
		return nil
	}
	return b.Device.Property(name)
}

// deviceTypes picks the device type from the first matching tag.
var deviceTypes = []struct{ tag, typ string }{
	{"Thermostat", "thermostat"},
	{"Light", "light"},
	{"Lock", "doorLock"},
	{"EnergyMonitor", "smartPlug"},
	{"OnOffSwitch", "switch"},
	{"MotionSensor", "motionSensor"},
	{"DoorSensor", "doorSensor"},
	{"LeakSensor", "leakSensor"},
	{"SmokeSensor", "smokeSensor"},
	{"TemperatureSensor", "temperatureSensor"},
	{"HumiditySensor", "humiditySensor"},
	{"BarometricPressureSensor", "pressureSensor"},
}

// CompileDevice compiles every expose of a bridged device.
func CompileDevice(bd BridgeDevice) (*Bound, error) {
	if bd.Definition == nil {
		return nil, fmt.Errorf("device %s has no definition", bd.FriendlyName)
	}
	compiled, err := CompileAll(bd.Definition.Exposes)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", bd.FriendlyName, err)
	}

	dev := thing.NewDevice(bd.IEEEAddress, bd.Definition.Model)
	b := &Bound{
		Device:      dev,
		Transcoders: make(map[string]Transcoder, len(compiled)),
		keys:        make(map[string]string, len(compiled)),
	}
	for _, c := range compiled {
		if err := c.Property.Validate(); err != nil {
			return nil, fmt.Errorf("device %s: %w", bd.FriendlyName, err)
		}
		dev.AddProperty(c.Property)
		b.Transcoders[c.Property.Name] = c.Transcoder
		b.keys[c.Property.Expose.Property] = c.Property.Name
		for _, t := range c.Tags {
			dev.AddTag(t)
		}
	}
	for _, dt := range deviceTypes {
		if dev.HasTag(dt.tag) {
			dev.Type = dt.typ
			break
		}
	}
	return b, nil
}

// ApplyState decodes a bridge state message into the bound properties.
// Keys without a property are ignored; a failing key does not stop the rest.
func (b *Bound) ApplyState(state map[string]any) ([]*thing.Property, error) {
	var (
		updated []*thing.Property
		errs    []error
	)
	for key, raw := range state {
		p := b.PropertyFor(key)
		if p == nil {
			continue
		}
		if obj, ok := raw.(map[string]any); ok && key == "color" {
			if bri, ok := state["brightness"]; ok {
				merged := make(map[string]any, len(obj)+1)
				for k, v := range obj {
					merged[k] = v
				}
				merged["brightness"] = bri
				raw = merged
			}
		}
		v, err := b.Transcoders[p.Name].FromDevice(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		if err := b.Device.SetValue(p.Name, v); err != nil {
			errs = append(errs, err)
			continue
		}
		updated = append(updated, p)
	}
	return updated, errors.Join(errs...)
}

// Encode transcodes a property write into the bridge's {key: value} form.
func (b *Bound) Encode(name string, v any) (map[string]any, error) {
	p := b.Device.Property(name)
	if p == nil {
		return nil, fmt.Errorf("%s: %w", name, thing.ErrUnknownProperty)
	}
	if p.Schema.ReadOnly {
		return nil, fmt.Errorf("%s: %w", name, thing.ErrReadOnly)
	}
	dv, err := b.Transcoders[name].ToDevice(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return map[string]any{p.Expose.Property: dv}, nil
}

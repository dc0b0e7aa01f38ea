// Package expose compiles zigbee2mqtt expose descriptors into properties
// with bidirectional transcoders between bridge values and property values.
package expose

import (
	"fmt"
	"strings"
	"unicode"

	"zigbee-things/internal/thing"
)

// Access bits of an expose.
const (
	AccessWritable = 0b010
	AccessReadable = 0b100
)

// Expose is one facet of a bridged device as published in bridge/devices.
// Composite exposes (light, switch, climate, composite) carry Features.
type Expose struct {
	Type        string   `json:"type"`
	Name        string   `json:"name,omitempty"`
	Property    string   `json:"property,omitempty"`
	Label       string   `json:"label,omitempty"`
	Description string   `json:"description,omitempty"`
	Access      int      `json:"access,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	ValueMin    *float64 `json:"value_min,omitempty"`
	ValueMax    *float64 `json:"value_max,omitempty"`
	ValueStep   *float64 `json:"value_step,omitempty"`
	Values      []string `json:"values,omitempty"`
	ValueOn     any      `json:"value_on,omitempty"`
	ValueOff    any      `json:"value_off,omitempty"`
	Endpoint    string   `json:"endpoint,omitempty"`
	Features    []Expose `json:"features,omitempty"`
}

// Readable reports whether the value can be fetched on demand.
func (e Expose) Readable() bool { return e.Access&AccessReadable != 0 }

// Writable reports whether the value can be set.
func (e Expose) Writable() bool { return e.Access&AccessWritable != 0 }

// Compiled is a property compiled from an expose, its transcoder, and the
// tags it contributes to the owning device.
type Compiled struct {
	Property   *thing.Property
	Transcoder Transcoder
	Tags       []string
}

var units = map[string]string{
	"°C":  "degree celsius",
	"°F":  "degree fahrenheit",
	"%":   "percent",
	"W":   "watt",
	"kWh": "kilowatt hour",
	"V":   "volt",
	"A":   "ampere",
	"lx":  "lux",
	"hPa": "hectopascal",
	"K":   "kelvin",
}

type semantics struct {
	name     string
	semantic string
	tag      string
}

// byName maps well-known expose properties to property names, semantic
// types and device tags.
var byName = map[string]semantics{
	"state":                     {"on", "OnOffProperty", "OnOffSwitch"},
	"brightness":                {"level", "BrightnessProperty", "Light"},
	"color_temp":                {"colorTemperature", "ColorTemperatureProperty", "ColorControl"},
	"color":                     {"color", "ColorProperty", "ColorControl"},
	"occupancy":                 {"motion", "MotionProperty", "MotionSensor"},
	"power":                     {"instantaneousPower", "InstantaneousPowerProperty", "EnergyMonitor"},
	"voltage":                   {"voltage", "VoltageProperty", "EnergyMonitor"},
	"current":                   {"current", "CurrentProperty", "EnergyMonitor"},
	"energy":                    {"energy", "", "EnergyMonitor"},
	"local_temperature":         {"localTemperature", "TemperatureProperty", ""},
	"temperature":               {"temperature", "TemperatureProperty", "TemperatureSensor"},
	"occupied_heating_setpoint": {"heatTarget", "TargetTemperatureProperty", "Thermostat"},
	"occupied_cooling_setpoint": {"coolTarget", "TargetTemperatureProperty", "Thermostat"},
	"system_mode":               {"hvacMode", "ThermostatModeProperty", "Thermostat"},
	"running_state":             {"runMode", "HeatingCoolingProperty", "Thermostat"},
	"humidity":                  {"humidity", "HumidityProperty", "HumiditySensor"},
	"pressure":                  {"pressure", "BarometricPressureProperty", "BarometricPressureSensor"},
	"smoke":                     {"smoke", "SmokeProperty", "SmokeSensor"},
	"contact":                   {"open", "OpenProperty", "DoorSensor"},
	"water_leak":                {"leak", "LeakProperty", "LeakSensor"},
	"tamper":                    {"tamper", "TamperProperty", ""},
	"battery_low":               {"lowBattery", "BooleanProperty", ""},
	"battery":                   {"batteryLevel", "LevelProperty", ""},
}

// Compile builds the property for a single non-composite expose. Composite
// exposes other than color are flattened by CompileAll.
func Compile(e Expose) (*Compiled, error) {
	key := e.Property
	if key == "" {
		key = e.Name
	}
	if key == "" {
		return nil, fmt.Errorf("expose of type %q has neither name nor property", e.Type)
	}

	sem, known := byName[e.Name]
	if !known {
		sem = semantics{name: camelCase(key)}
	} else if e.Endpoint != "" {
		sem.name += "_" + e.Endpoint
	}

	schema := thing.Schema{
		SemanticType: sem.semantic,
		Title:        title(e),
		ReadOnly:     !e.Writable(),
		Minimum:      e.ValueMin,
		Maximum:      e.ValueMax,
	}
	if u, ok := units[e.Unit]; ok {
		schema.Unit = u
	} else {
		schema.Unit = e.Unit
	}
	if schema.Unit == "percent" && schema.SemanticType == "" {
		schema.SemanticType = "LevelProperty"
	}

	var tc Transcoder = identity{}
	switch e.Type {
	case "numeric":
		schema.Type = thing.TypeNumber
		if e.ValueStep != nil && *e.ValueStep == 1 {
			schema.Type = thing.TypeInteger
		}
	case "enum":
		schema.Type = thing.TypeString
		schema.Enum = append([]string(nil), e.Values...)
	case "binary":
		schema.Type = thing.TypeBoolean
		tc = binaryTranscoder(e.ValueOn, e.ValueOff)
	case "text":
		schema.Type = thing.TypeString
	case "composite":
		if !isColor(e) {
			return nil, fmt.Errorf("expose %s: composite %q cannot be compiled to one property", key, e.Name)
		}
		sem = byName["color"]
		schema.SemanticType = sem.semantic
		schema.Type = thing.TypeString
		schema.Minimum, schema.Maximum = nil, nil
		tc = colorXY{}
	default:
		return nil, fmt.Errorf("expose %s: unsupported type %q", key, e.Type)
	}

	switch e.Name {
	case "state":
		if e.Type == "binary" && e.ValueOn == "ON" && e.ValueOff == "OFF" {
			tc = onOff{}
		}
	case "brightness":
		top := 100.0
		if e.ValueMax != nil {
			top = *e.ValueMax
		}
		tc = brightness{max: top}
		schema.Type = thing.TypeInteger
		schema.Unit = "percent"
		schema.Minimum, schema.Maximum = thing.Float(0), thing.Float(100)
	case "color_temp":
		tc = colorTemp{}
		schema.Type = thing.TypeInteger
		schema.Unit = "kelvin"
		schema.Minimum, schema.Maximum = reciprocalRange(e.ValueMin, e.ValueMax)
	case "running_state":
		tc = runMode{}
		schema.Enum = []string{"off", "heating", "cooling"}
	case "contact":
		tc = invert{tc}
	}

	p := &thing.Property{
		Name:              sem.name,
		Schema:            schema,
		Expose:            &thing.ExposeBinding{Expose: e.Name, Property: key},
		FireAndForget:     e.Access&0b001 == 0,
		InitialReadNeeded: e.Readable(),
	}
	c := &Compiled{Property: p, Transcoder: tc}
	if sem.tag != "" {
		c.Tags = append(c.Tags, sem.tag)
	}
	return c, nil
}

// parentTags are added to every property compiled from the features of a
// specific expose.
var parentTags = map[string]string{
	"light":   "Light",
	"switch":  "OnOffSwitch",
	"lock":    "Lock",
	"climate": "Thermostat",
}

func isColor(e Expose) bool {
	return e.Type == "composite" && e.Name == "color_xy"
}

// CompileAll compiles a list of exposes, descending into the features of
// composite exposes.
func CompileAll(exposes []Expose) ([]*Compiled, error) {
	var out []*Compiled
	for _, e := range exposes {
		if len(e.Features) > 0 && !isColor(e) {
			sub, err := CompileAll(e.Features)
			if err != nil {
				return nil, err
			}
			if tag, ok := parentTags[e.Type]; ok {
				for _, c := range sub {
					c.Tags = append(c.Tags, tag)
				}
			}
			out = append(out, sub...)
			continue
		}
		c, err := Compile(e)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func title(e Expose) string {
	if e.Label != "" {
		return e.Label
	}
	s := strings.ReplaceAll(e.Name, "_", " ")
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func camelCase(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		r := []rune(parts[i])
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	return strings.Join(parts, "")
}

// reciprocalRange converts a mired range to a kelvin range. The bounds swap.
func reciprocalRange(minMired, maxMired *float64) (lo, hi *float64) {
	if maxMired != nil && *maxMired > 0 {
		lo = thing.Float(float64(roundReciprocal(*maxMired)))
	}
	if minMired != nil && *minMired > 0 {
		hi = thing.Float(float64(roundReciprocal(*minMired)))
	}
	return lo, hi
}

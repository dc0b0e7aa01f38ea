package expose

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zigbee-things/internal/thing"
)

func f(v float64) *float64 { return &v }

func TestCompileNumericTypes(t *testing.T) {
	c, err := Compile(Expose{Type: "numeric", Name: "linkquality", Property: "linkquality", Access: 1, ValueStep: f(1)})
	require.NoError(t, err)
	assert.Equal(t, thing.TypeInteger, c.Property.Schema.Type)
	assert.Equal(t, "linkquality", c.Property.Name)
	assert.True(t, c.Property.Schema.ReadOnly)

	c, err = Compile(Expose{Type: "numeric", Name: "temperature", Property: "temperature", Access: 5, Unit: "°C", ValueStep: f(0.1)})
	require.NoError(t, err)
	assert.Equal(t, thing.TypeNumber, c.Property.Schema.Type)
	assert.Equal(t, "degree celsius", c.Property.Schema.Unit)
	assert.Equal(t, "TemperatureProperty", c.Property.Schema.SemanticType)
	assert.Equal(t, []string{"TemperatureSensor"}, c.Tags)
	assert.True(t, c.Property.InitialReadNeeded)
	assert.False(t, c.Property.FireAndForget)

	c, err = Compile(Expose{Type: "numeric", Name: "local_temperature", Property: "local_temperature", Access: 5, Unit: "°C"})
	require.NoError(t, err)
	assert.Equal(t, "localTemperature", c.Property.Name)
	assert.Equal(t, "TemperatureProperty", c.Property.Schema.SemanticType)
	assert.Empty(t, c.Tags)
}

func TestCompilePercentIsLevel(t *testing.T) {
	c, err := Compile(Expose{Type: "numeric", Name: "valve_position", Property: "valve_position", Access: 1, Unit: "%"})
	require.NoError(t, err)
	assert.Equal(t, "valvePosition", c.Property.Name)
	assert.Equal(t, "percent", c.Property.Schema.Unit)
	assert.Equal(t, "LevelProperty", c.Property.Schema.SemanticType)
}

func TestCompileAccessBits(t *testing.T) {
	tests := []struct {
		access        int
		readOnly      bool
		initialRead   bool
		fireAndForget bool
	}{
		{0b001, true, false, false},
		{0b011, false, false, false},
		{0b101, true, true, false},
		{0b111, false, true, false},
		{0b110, false, true, true},
	}
	for _, tt := range tests {
		c, err := Compile(Expose{Type: "binary", Name: "child_lock", Property: "child_lock", Access: tt.access, ValueOn: "LOCK", ValueOff: "UNLOCK"})
		require.NoError(t, err)
		assert.Equal(t, tt.readOnly, c.Property.Schema.ReadOnly, "access %03b", tt.access)
		assert.Equal(t, tt.initialRead, c.Property.InitialReadNeeded, "access %03b", tt.access)
		assert.Equal(t, tt.fireAndForget, c.Property.FireAndForget, "access %03b", tt.access)
		assert.NoError(t, c.Property.Validate())
	}
}

func TestCompileEnumAndRunMode(t *testing.T) {
	c, err := Compile(Expose{Type: "enum", Name: "system_mode", Property: "system_mode", Access: 7, Values: []string{"off", "heat", "auto"}})
	require.NoError(t, err)
	assert.Equal(t, thing.TypeString, c.Property.Schema.Type)
	assert.Equal(t, []string{"off", "heat", "auto"}, c.Property.Schema.Enum)
	assert.Equal(t, "hvacMode", c.Property.Name)

	c, err = Compile(Expose{Type: "enum", Name: "running_state", Property: "running_state", Access: 5, Values: []string{"idle", "heat", "cool"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"off", "heating", "cooling"}, c.Property.Schema.Enum)
	v, err := c.Transcoder.FromDevice("heat")
	require.NoError(t, err)
	assert.Equal(t, "heating", v)
}

func TestCompileUnsupported(t *testing.T) {
	_, err := Compile(Expose{Type: "list", Name: "schedule", Property: "schedule"})
	assert.Error(t, err)
	_, err = Compile(Expose{Type: "numeric"})
	assert.Error(t, err)
}

const lightExposes = `[
  {"type": "light", "features": [
    {"type": "binary", "name": "state", "property": "state", "access": 7, "value_on": "ON", "value_off": "OFF", "value_toggle": "TOGGLE"},
    {"type": "numeric", "name": "brightness", "property": "brightness", "access": 7, "value_min": 0, "value_max": 254},
    {"type": "numeric", "name": "color_temp", "property": "color_temp", "access": 7, "unit": "mired", "value_min": 153, "value_max": 500},
    {"type": "composite", "name": "color_xy", "property": "color", "access": 7, "features": [
      {"type": "numeric", "name": "x", "property": "x", "access": 7},
      {"type": "numeric", "name": "y", "property": "y", "access": 7}
    ]}
  ]},
  {"type": "numeric", "name": "linkquality", "property": "linkquality", "access": 1, "unit": "lqi", "value_min": 0, "value_max": 255}
]`

func TestCompileAllLight(t *testing.T) {
	var exposes []Expose
	require.NoError(t, json.Unmarshal([]byte(lightExposes), &exposes))

	compiled, err := CompileAll(exposes)
	require.NoError(t, err)
	var names []string
	for _, c := range compiled {
		names = append(names, c.Property.Name)
	}
	assert.Equal(t, []string{"on", "level", "colorTemperature", "color", "linkquality"}, names)

	for _, c := range compiled[:4] {
		assert.Contains(t, c.Tags, "Light", c.Property.Name)
	}

	ct := compiled[2].Property
	assert.Equal(t, "kelvin", ct.Schema.Unit)
	assert.Equal(t, 2000.0, *ct.Schema.Minimum)
	assert.Equal(t, 6536.0, *ct.Schema.Maximum)

	level, err := compiled[1].Transcoder.FromDevice(254.0)
	require.NoError(t, err)
	assert.Equal(t, 100, level)
}

func TestCompileDeviceAndState(t *testing.T) {
	var exposes []Expose
	require.NoError(t, json.Unmarshal([]byte(lightExposes), &exposes))
	bd := BridgeDevice{
		IEEEAddress:  "0x0017880100000001",
		FriendlyName: "kitchen",
		Type:         "Router",
		Definition:   &Definition{Model: "LCT015", Vendor: "Philips", Exposes: exposes},
	}
	require.True(t, bd.Usable())

	b, err := CompileDevice(bd)
	require.NoError(t, err)
	assert.Equal(t, "light", b.Device.Type)
	assert.Contains(t, b.Device.Tags, "ColorControl")

	updated, err := b.ApplyState(map[string]any{
		"state":      "ON",
		"brightness": 127.0,
		"color":      map[string]any{"x": 0.3127, "y": 0.3290},
		"unknown":    1.0,
	})
	require.NoError(t, err)
	assert.Len(t, updated, 3)
	assert.Equal(t, true, b.Device.Property("on").Value)
	assert.Equal(t, 50, b.Device.Property("level").Value)
	assert.Equal(t, "#bbbbbb", b.Device.Property("color").Value)

	_, err = b.ApplyState(map[string]any{"state": "MAYBE", "brightness": 254.0})
	assert.ErrorIs(t, err, ErrUnknownEnumValue)
	assert.Equal(t, 100, b.Device.Property("level").Value)

	msg, err := b.Encode("colorTemperature", 2703)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color_temp": 370}, msg)

	_, err = b.Encode("linkquality", 3)
	assert.ErrorIs(t, err, thing.ErrReadOnly)
	_, err = b.Encode("nope", 3)
	assert.ErrorIs(t, err, thing.ErrUnknownProperty)
}

func TestCoordinatorIsNotUsable(t *testing.T) {
	assert.False(t, BridgeDevice{Type: "Coordinator", Definition: &Definition{}}.Usable())
	assert.False(t, BridgeDevice{Type: "EndDevice"}.Usable())
}

func TestCompileDeviceNameTagging(t *testing.T) {
	tests := []struct {
		expose   Expose
		name     string
		semantic string
		tag      string
		devType  string
		state    any
		want     any
	}{
		{Expose{Type: "binary", Name: "occupancy", Property: "occupancy", Access: 1, ValueOn: true, ValueOff: false},
			"motion", "MotionProperty", "MotionSensor", "motionSensor", true, true},
		{Expose{Type: "numeric", Name: "humidity", Property: "humidity", Access: 1, Unit: "%"},
			"humidity", "HumidityProperty", "HumiditySensor", "humiditySensor", 45.5, 45.5},
		{Expose{Type: "numeric", Name: "pressure", Property: "pressure", Access: 1, Unit: "hPa"},
			"pressure", "BarometricPressureProperty", "BarometricPressureSensor", "pressureSensor", 1013.0, 1013.0},
		{Expose{Type: "binary", Name: "smoke", Property: "smoke", Access: 1, ValueOn: true, ValueOff: false},
			"smoke", "SmokeProperty", "SmokeSensor", "smokeSensor", false, false},
		{Expose{Type: "binary", Name: "contact", Property: "contact", Access: 1, ValueOn: true, ValueOff: false},
			"open", "OpenProperty", "DoorSensor", "doorSensor", true, false},
		{Expose{Type: "numeric", Name: "power", Property: "power", Access: 1, Unit: "W"},
			"instantaneousPower", "InstantaneousPowerProperty", "EnergyMonitor", "smartPlug", 12.5, 12.5},
		{Expose{Type: "numeric", Name: "voltage", Property: "voltage", Access: 1, Unit: "V"},
			"voltage", "VoltageProperty", "EnergyMonitor", "smartPlug", 230.0, 230.0},
		{Expose{Type: "numeric", Name: "current", Property: "current", Access: 1, Unit: "A"},
			"current", "CurrentProperty", "EnergyMonitor", "smartPlug", 0.05, 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.expose.Name, func(t *testing.T) {
			b, err := CompileDevice(BridgeDevice{
				IEEEAddress:  "0x00158d0001a2b3c4",
				FriendlyName: "sensor",
				Type:         "EndDevice",
				Definition:   &Definition{Model: "test", Exposes: []Expose{tt.expose}},
			})
			require.NoError(t, err)

			p := b.PropertyFor(tt.expose.Property)
			require.NotNil(t, p)
			assert.Equal(t, tt.name, p.Name)
			assert.Equal(t, tt.semantic, p.Schema.SemanticType)
			assert.True(t, b.Device.HasTag(tt.tag), "tags %v", b.Device.Tags)
			assert.Equal(t, tt.devType, b.Device.Type)

			_, err = b.ApplyState(map[string]any{tt.expose.Property: tt.state})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Value)
		})
	}
}

func TestContactRoundTripsInverted(t *testing.T) {
	b, err := CompileDevice(BridgeDevice{
		FriendlyName: "door",
		Definition: &Definition{Exposes: []Expose{
			{Type: "binary", Name: "contact", Property: "contact", Access: 1, ValueOn: true, ValueOff: false},
		}},
	})
	require.NoError(t, err)

	_, err = b.ApplyState(map[string]any{"contact": false})
	require.NoError(t, err)
	assert.Equal(t, true, b.Device.Property("open").Value)

	v, err := b.Transcoders["open"].ToDevice(true)
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

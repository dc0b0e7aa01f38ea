package expose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnOff(t *testing.T) {
	v, err := onOff{}.FromDevice("ON")
	require.NoError(t, err)
	assert.Equal(t, true, v)
	v, err = onOff{}.FromDevice("OFF")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = onOff{}.ToDevice(true)
	require.NoError(t, err)
	assert.Equal(t, "ON", v)

	_, err = onOff{}.FromDevice("TOGGLE")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)
	_, err = onOff{}.ToDevice("ON")
	assert.Error(t, err)
}

func TestBrightnessRoundTrip(t *testing.T) {
	tc := brightness{max: 254}
	v, err := tc.FromDevice(254.0)
	require.NoError(t, err)
	assert.Equal(t, 100, v)

	v, err = tc.ToDevice(100)
	require.NoError(t, err)
	assert.InDelta(t, 254, v, 1)

	v, err = brightness{max: 100}.FromDevice(37.0)
	require.NoError(t, err)
	assert.Equal(t, 37, v)
}

func TestColorTemperatureRoundTrip(t *testing.T) {
	v, err := colorTemp{}.FromDevice(370.0)
	require.NoError(t, err)
	assert.Equal(t, 2703, v)

	v, err = colorTemp{}.ToDevice(2703)
	require.NoError(t, err)
	assert.InDelta(t, 370, v, 1)

	_, err = colorTemp{}.FromDevice(0.0)
	assert.Error(t, err)
}

func TestRunMode(t *testing.T) {
	tests := map[string]string{
		"heat": "heating",
		"cool": "cooling",
		"idle": "off",
	}
	for in, want := range tests {
		v, err := runMode{}.FromDevice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, v)

		back, err := runMode{}.ToDevice(want)
		require.NoError(t, err, want)
		assert.Equal(t, in, back)
	}

	for _, bad := range []any{"fan_only", "", 3.0, nil} {
		_, err := runMode{}.FromDevice(bad)
		assert.ErrorIs(t, err, ErrUnknownEnumValue, "%v", bad)
	}
	_, err := runMode{}.ToDevice("defrosting")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)
}

func TestColorXY(t *testing.T) {
	v, err := colorXY{}.FromDevice(map[string]any{"x": 0.3127, "y": 0.3290})
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", v)

	v, err = colorXY{}.FromDevice(map[string]any{"x": 0.3127, "y": 0.3290, "brightness": 0.0})
	require.NoError(t, err)
	assert.Equal(t, "#000000", v)

	v, err = colorXY{}.ToDevice("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"r": 255, "g": 128, "b": 0}, v)

	_, err = colorXY{}.FromDevice("red")
	assert.Error(t, err)
	_, err = colorXY{}.FromDevice(map[string]any{"x": 0.3})
	assert.Error(t, err)
	_, err = colorXY{}.ToDevice("#12")
	assert.Error(t, err)
}

func TestBinaryAndInvert(t *testing.T) {
	tc := binaryTranscoder("LOCK", "UNLOCK")
	v, err := tc.FromDevice("LOCK")
	require.NoError(t, err)
	assert.Equal(t, true, v)
	v, err = tc.ToDevice(false)
	require.NoError(t, err)
	assert.Equal(t, "UNLOCK", v)

	contact := invert{binaryTranscoder(true, false)}
	v, err = contact.FromDevice(true)
	require.NoError(t, err)
	assert.Equal(t, false, v, "contact closed means not open")
	v, err = contact.ToDevice(true)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = binaryTranscoder(nil, nil).FromDevice("maybe")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)
}

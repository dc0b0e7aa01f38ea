package expose

import (
	"fmt"

	"zigbee-things/internal/convert"
)

// colorXY converts the bridge's {"x", "y"} color object to an sRGB hex
// string. A "brightness" member in [0, 255] darkens the result; without it
// full brightness is assumed. Writes send the RGB triple and leave the
// chromaticity mapping to the device.
type colorXY struct{}

func (colorXY) FromDevice(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("color value %v (%T) is not an object", v, v)
	}
	x, err := number(m["x"])
	if err != nil {
		return nil, fmt.Errorf("color x: %w", err)
	}
	y, err := number(m["y"])
	if err != nil {
		return nil, fmt.Errorf("color y: %w", err)
	}
	bri := 255.0
	if b, ok := m["brightness"]; ok {
		if bri, err = number(b); err != nil {
			return nil, fmt.Errorf("color brightness: %w", err)
		}
	}
	return convert.XYToRGB(x, y, bri).Hex(), nil
}

func (colorXY) ToDevice(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("color value %v (%T) is not a string", v, v)
	}
	c, err := convert.ParseHex(s)
	if err != nil {
		return nil, err
	}
	return map[string]any{"r": int(c.R), "g": int(c.G), "b": int(c.B)}, nil
}

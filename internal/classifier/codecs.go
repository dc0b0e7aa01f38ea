package classifier

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"zigbee-things/internal/convert"
	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

const maxLevel = 254

func number(v any) (float64, error) {
	f, ok := zcl.Numeric(v)
	if !ok {
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
	return f, nil
}

var boolCodec = thing.Codec{
	Decode: func(raw []any) (any, error) {
		if b, ok := raw[0].(bool); ok {
			return b, nil
		}
		n, err := number(raw[0])
		if err != nil {
			return nil, err
		}
		return n != 0, nil
	},
	Encode: func(v any) ([]any, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("value %v (%T) is not boolean", v, v)
		}
		return []any{b}, nil
	},
}

// scaled divides the device value by div, e.g. centi-degrees to degrees.
func scaled(div float64) thing.Codec {
	return thing.Codec{
		Decode: func(raw []any) (any, error) {
			n, err := number(raw[0])
			if err != nil {
				return nil, err
			}
			return n / div, nil
		},
		Encode: func(v any) ([]any, error) {
			n, err := number(v)
			if err != nil {
				return nil, err
			}
			return []any{math.Round(n * div)}, nil
		},
	}
}

// metered scales a value by the multiplier and divisor bound after it.
// Missing factors count as 1.
var metered = thing.Codec{
	Decode: func(raw []any) (any, error) {
		if raw[0] == nil {
			return nil, nil
		}
		n, err := number(raw[0])
		if err != nil {
			return nil, err
		}
		mul, div := 1.0, 1.0
		if len(raw) > 1 && raw[1] != nil {
			if mul, err = number(raw[1]); err != nil {
				return nil, err
			}
		}
		if len(raw) > 2 && raw[2] != nil {
			if div, err = number(raw[2]); err != nil {
				return nil, err
			}
		}
		if div == 0 {
			div = 1
		}
		return n * mul / div, nil
	},
}

var levelCodec = thing.Codec{
	Decode: func(raw []any) (any, error) {
		n, err := number(raw[0])
		if err != nil {
			return nil, err
		}
		return convert.LevelToPercent(n, maxLevel), nil
	},
	Encode: func(v any) ([]any, error) {
		n, err := number(v)
		if err != nil {
			return nil, err
		}
		return []any{convert.PercentToLevel(n, maxLevel)}, nil
	},
}

var kelvinCodec = thing.Codec{
	Decode: func(raw []any) (any, error) {
		n, err := number(raw[0])
		if err != nil {
			return nil, err
		}
		return convert.Reciprocal(n)
	},
	Encode: func(v any) ([]any, error) {
		n, err := number(v)
		if err != nil {
			return nil, err
		}
		m, err := convert.Reciprocal(n)
		if err != nil {
			return nil, err
		}
		return []any{m}, nil
	},
}

// illuminanceCodec converts the logarithmic MeasuredValue to lux.
var illuminanceCodec = thing.Codec{
	Decode: func(raw []any) (any, error) {
		n, err := number(raw[0])
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return 0.0, nil
		}
		return math.Round(math.Pow(10, (n-1)/10000)), nil
	},
}

func pair(raw []any) (a, b float64, ok bool, err error) {
	if raw[0] == nil || raw[1] == nil {
		return 0, 0, false, nil
	}
	if a, err = number(raw[0]); err != nil {
		return 0, 0, false, err
	}
	if b, err = number(raw[1]); err != nil {
		return 0, 0, false, err
	}
	return a, b, true, nil
}

func hexValue(v any) (convert.RGB, error) {
	s, ok := v.(string)
	if !ok {
		return convert.RGB{}, fmt.Errorf("value %v (%T) is not a color string", v, v)
	}
	return convert.ParseHex(s)
}

// hueSatCodec binds CurrentHue and CurrentSaturation.
var hueSatCodec = thing.Codec{
	Decode: func(raw []any) (any, error) {
		h, s, ok, err := pair(raw)
		if !ok {
			return nil, err
		}
		return convert.HSVToRGB(h*360/maxLevel, s/maxLevel, 1).Hex(), nil
	},
	Encode: func(v any) ([]any, error) {
		c, err := hexValue(v)
		if err != nil {
			return nil, err
		}
		h, s, _ := convert.RGBToHSV(c)
		return []any{math.Round(h * maxLevel / 360), math.Round(s * maxLevel)}, nil
	},
}

// xyCodec binds CurrentX and CurrentY.
var xyCodec = thing.Codec{
	Decode: func(raw []any) (any, error) {
		x, y, ok, err := pair(raw)
		if !ok {
			return nil, err
		}
		return convert.XYToRGB(x/65535, y/65535, 255).Hex(), nil
	},
	Encode: func(v any) ([]any, error) {
		c, err := hexValue(v)
		if err != nil {
			return nil, err
		}
		x, y := convert.RGBToXY(c)
		return []any{math.Round(x * 65535), math.Round(y * 65535)}, nil
	},
}

// enumCodec maps enumeration values to names.
func enumCodec(names map[uint64]string) thing.Codec {
	return thing.Codec{
		Decode: func(raw []any) (any, error) {
			n, err := number(raw[0])
			if err != nil {
				return nil, err
			}
			if s, ok := names[uint64(n)]; ok {
				return s, nil
			}
			return nil, fmt.Errorf("unknown enumeration value %v", n)
		},
		Encode: func(v any) ([]any, error) {
			for k, s := range names {
				if s == v {
					return []any{k}, nil
				}
			}
			return nil, fmt.Errorf("unknown enumeration name %v", v)
		},
	}
}

func enumNames(names map[uint64]string) []string {
	keys := make([]uint64, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = names[k]
	}
	return out
}

const transitionTime = 0

func onOffCommand(v any) (string, []byte, error) {
	b, ok := v.(bool)
	if !ok {
		return "", nil, fmt.Errorf("value %v (%T) is not boolean", v, v)
	}
	if b {
		return "On", nil, nil
	}
	return "Off", nil, nil
}

func levelCommand(v any) (string, []byte, error) {
	enc, err := levelCodec.Encode(v)
	if err != nil {
		return "", nil, err
	}
	level := enc[0].(int)
	payload := binary.LittleEndian.AppendUint16([]byte{uint8(level)}, transitionTime)
	return "MoveToLevelWithOnOff", payload, nil
}

func hueSatCommand(v any) (string, []byte, error) {
	enc, err := hueSatCodec.Encode(v)
	if err != nil {
		return "", nil, err
	}
	h, s := enc[0].(float64), enc[1].(float64)
	payload := binary.LittleEndian.AppendUint16([]byte{uint8(h), uint8(s)}, transitionTime)
	return "MoveToHueAndSaturation", payload, nil
}

func xyCommand(v any) (string, []byte, error) {
	enc, err := xyCodec.Encode(v)
	if err != nil {
		return "", nil, err
	}
	payload := binary.LittleEndian.AppendUint16(nil, uint16(enc[0].(float64)))
	payload = binary.LittleEndian.AppendUint16(payload, uint16(enc[1].(float64)))
	payload = binary.LittleEndian.AppendUint16(payload, transitionTime)
	return "MoveToColor", payload, nil
}

func colorTempCommand(v any) (string, []byte, error) {
	enc, err := kelvinCodec.Encode(v)
	if err != nil {
		return "", nil, err
	}
	payload := binary.LittleEndian.AppendUint16(nil, uint16(enc[0].(int)))
	payload = binary.LittleEndian.AppendUint16(payload, transitionTime)
	return "MoveToColorTemperature", payload, nil
}

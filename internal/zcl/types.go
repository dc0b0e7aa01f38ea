package zcl

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ZCL data type IDs
const (
	TypeNoData   uint8 = 0x00
	TypeBool     uint8 = 0x10
	TypeBitmap8  uint8 = 0x18
	TypeBitmap16 uint8 = 0x19
	TypeBitmap32 uint8 = 0x1B
	TypeUint8    uint8 = 0x20
	TypeUint16   uint8 = 0x21
	TypeUint24   uint8 = 0x22
	TypeUint32   uint8 = 0x23
	TypeUint48   uint8 = 0x25
	TypeInt8     uint8 = 0x28
	TypeInt16    uint8 = 0x29
	TypeInt24    uint8 = 0x2A
	TypeInt32    uint8 = 0x2B
	TypeEnum8    uint8 = 0x30
	TypeEnum16   uint8 = 0x31
	TypeFloat32  uint8 = 0x39
	TypeCharStr  uint8 = 0x42
	TypeEUI64    uint8 = 0xF0
	TypeUTC      uint8 = 0xE2
)

// intType describes a fixed-width little-endian integer encoding.
type intType struct {
	name   string
	width  int
	signed bool
}

var intTypes = map[uint8]intType{
	TypeBitmap8:  {"map8", 1, false},
	TypeBitmap16: {"map16", 2, false},
	TypeBitmap32: {"map32", 4, false},
	TypeUint8:    {"uint8", 1, false},
	TypeUint16:   {"uint16", 2, false},
	TypeUint24:   {"uint24", 3, false},
	TypeUint32:   {"uint32", 4, false},
	TypeUint48:   {"uint48", 6, false},
	TypeInt8:     {"int8", 1, true},
	TypeInt16:    {"int16", 2, true},
	TypeInt24:    {"int24", 3, true},
	TypeInt32:    {"int32", 4, true},
	TypeEnum8:    {"enum8", 1, false},
	TypeEnum16:   {"enum16", 2, false},
	TypeUTC:      {"UTC", 4, false},
}

// TypeName returns a human-readable name for a ZCL type.
func TypeName(typeID uint8) string {
	if it, ok := intTypes[typeID]; ok {
		return it.name
	}
	switch typeID {
	case TypeNoData:
		return "nodata"
	case TypeBool:
		return "bool"
	case TypeFloat32:
		return "float32"
	case TypeCharStr:
		return "string"
	case TypeEUI64:
		return "EUI64"
	}
	return fmt.Sprintf("0x%02X", typeID)
}

// DecodeValue decodes a ZCL typed value from raw bytes, returning the Go value
// and bytes consumed. Integers decode to int64 (signed types) or uint64.
func DecodeValue(typeID uint8, data []byte) (any, int, error) {
	if it, ok := intTypes[typeID]; ok {
		if len(data) < it.width {
			return nil, 0, fmt.Errorf("zcl: not enough data for %s: need %d, have %d", it.name, it.width, len(data))
		}
		var u uint64
		for i := it.width - 1; i >= 0; i-- {
			u = u<<8 | uint64(data[i])
		}
		if it.signed {
			shift := 64 - 8*it.width
			return int64(u<<shift) >> shift, it.width, nil
		}
		return u, it.width, nil
	}

	switch typeID {
	case TypeNoData:
		return nil, 0, nil
	case TypeBool:
		if len(data) < 1 {
			return nil, 0, fmt.Errorf("zcl: not enough data for bool")
		}
		return data[0] != 0, 1, nil
	case TypeFloat32:
		if len(data) < 4 {
			return nil, 0, fmt.Errorf("zcl: not enough data for float32")
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data))), 4, nil
	case TypeCharStr:
		if len(data) < 1 {
			return nil, 0, fmt.Errorf("zcl: no length byte for string type")
		}
		n := int(data[0])
		if n == 0xFF {
			return nil, 1, nil // invalid
		}
		if len(data) < 1+n {
			return nil, 0, fmt.Errorf("zcl: string truncated: need %d, have %d", n, len(data)-1)
		}
		return string(data[1 : 1+n]), 1 + n, nil
	case TypeEUI64:
		if len(data) < 8 {
			return nil, 0, fmt.Errorf("zcl: not enough data for EUI64")
		}
		return binary.LittleEndian.Uint64(data), 8, nil
	}
	return nil, 0, fmt.Errorf("zcl: unsupported type 0x%02X", typeID)
}

// EncodeValue encodes a Go value into ZCL wire format.
func EncodeValue(typeID uint8, val any) ([]byte, error) {
	if it, ok := intTypes[typeID]; ok {
		f, ok := Numeric(val)
		if !ok {
			return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, it.name)
		}
		n := int64(math.Round(f))
		bits := uint(8 * it.width)
		if it.signed {
			lo, hi := -(int64(1) << (bits - 1)), int64(1)<<(bits-1)-1
			if n < lo || n > hi {
				return nil, fmt.Errorf("zcl: value %d overflows %s", n, it.name)
			}
		} else if n < 0 || (bits < 64 && uint64(n) > uint64(1)<<bits-1) {
			return nil, fmt.Errorf("zcl: value %d overflows %s", n, it.name)
		}
		buf := make([]byte, it.width)
		u := uint64(n)
		for i := range buf {
			buf[i] = byte(u >> (8 * i))
		}
		return buf, nil
	}

	switch typeID {
	case TypeBool:
		b, ok := val.(bool)
		if !ok {
			f, isNum := Numeric(val)
			if !isNum {
				return nil, fmt.Errorf("zcl: cannot convert %T to bool", val)
			}
			b = f != 0
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case TypeFloat32:
		f, ok := Numeric(val)
		if !ok {
			return nil, fmt.Errorf("zcl: cannot convert %T to float32", val)
		}
		return binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(f))), nil
	case TypeCharStr:
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("zcl: cannot convert %T to string", val)
		}
		if len(s) > 0xFE {
			return nil, fmt.Errorf("zcl: string too long (%d bytes)", len(s))
		}
		return append([]byte{byte(len(s))}, s...), nil
	}
	return nil, fmt.Errorf("zcl: unsupported type 0x%02X", typeID)
}

// IsDiscrete reports whether a type carries no reportable change in a
// Configure Reporting record.
func IsDiscrete(typeID uint8) bool {
	switch typeID {
	case TypeBool, TypeBitmap8, TypeBitmap16, TypeBitmap32, TypeEnum8, TypeEnum16, TypeCharStr, TypeEUI64:
		return true
	}
	return false
}

// Numeric converts any Go numeric value (and bool) to float64.
func Numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

package halide

import (
	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// FromFloat32 converts v to the element type H.
// Integer types truncate toward zero; the half precision types round to nearest.
func FromFloat32[H Element](v float32) H {
	var out H
	switch p := any(&out).(type) {
	case *int8:
		*p = int8(v)
	case *int16:
		*p = int16(v)
	case *int32:
		*p = int32(v)
	case *int64:
		*p = int64(v)
	case *uint8:
		*p = uint8(v)
	case *uint16:
		*p = uint16(v)
	case *uint32:
		*p = uint32(v)
	case *uint64:
		*p = uint64(v)
	case *float32:
		*p = v
	case *float64:
		*p = float64(v)
	case *float16.Float16:
		*p = float16.Fromfloat32(v)
	case *bfloat16.BF16:
		*p = bfloat16.FromFloat32(v)
	}
	return out
}

// ToFloat32 widens v to float32.
func ToFloat32[H Element](v H) float32 {
	switch x := any(v).(type) {
	case int8:
		return float32(x)
	case int16:
		return float32(x)
	case int32:
		return float32(x)
	case int64:
		return float32(x)
	case uint8:
		return float32(x)
	case uint16:
		return float32(x)
	case uint32:
		return float32(x)
	case uint64:
		return float32(x)
	case float32:
		return x
	case float64:
		return float32(x)
	case float16.Float16:
		return x.Float32()
	case bfloat16.BF16:
		return bfloat16.ToFloat32(x)
	}
	return 0
}

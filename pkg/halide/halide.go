// Package halide describes the scalar element types stored in foreign tensor buffers.
//
// The engine tags every buffer with a runtime descriptor (type code, bit width and lane
// count). Go code names element types statically through the Element constraint; Of maps
// a static type to the descriptor the engine would attach to it.
package halide

import (
	"fmt"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// Code is the scalar kind of an element type.
type Code uint8

const (
	Int    Code = 0
	UInt   Code = 1
	Float  Code = 2
	Handle Code = 3
	BFloat Code = 4
)

func (c Code) String() string {
	switch c {
	case Int:
		return "int"
	case UInt:
		return "uint"
	case Float:
		return "float"
	case Handle:
		return "handle"
	case BFloat:
		return "bfloat"
	default:
		return fmt.Sprintf("code(%d)", uint8(c))
	}
}

// Type is the runtime element type descriptor attached to a foreign buffer.
type Type struct {
	Code  Code
	Bits  uint8
	Lanes uint16
}

// Bytes returns the storage size of one lane, rounded up to whole bytes.
func (t Type) Bytes() int {
	return (int(t.Bits) + 7) / 8
}

func (t Type) String() string {
	s := fmt.Sprintf("%s%d", t.Code, t.Bits)
	if t.Lanes > 1 {
		s += fmt.Sprintf("x%d", t.Lanes)
	}
	return s
}

// Element is the closed set of Go types a tensor handle may be parameterized with.
type Element interface {
	int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64 |
		float16.Float16 | bfloat16.BF16
}

// Of returns the descriptor for the static element type H.
func Of[H Element]() Type {
	var zero H
	switch any(zero).(type) {
	case int8:
		return Type{Code: Int, Bits: 8, Lanes: 1}
	case int16:
		return Type{Code: Int, Bits: 16, Lanes: 1}
	case int32:
		return Type{Code: Int, Bits: 32, Lanes: 1}
	case int64:
		return Type{Code: Int, Bits: 64, Lanes: 1}
	case uint8:
		return Type{Code: UInt, Bits: 8, Lanes: 1}
	case uint16:
		return Type{Code: UInt, Bits: 16, Lanes: 1}
	case uint32:
		return Type{Code: UInt, Bits: 32, Lanes: 1}
	case uint64:
		return Type{Code: UInt, Bits: 64, Lanes: 1}
	case float32:
		return Type{Code: Float, Bits: 32, Lanes: 1}
	case float64:
		return Type{Code: Float, Bits: 64, Lanes: 1}
	case float16.Float16:
		return Type{Code: Float, Bits: 16, Lanes: 1}
	case bfloat16.BF16:
		return Type{Code: BFloat, Bits: 16, Lanes: 1}
	default:
		panic(fmt.Sprintf("halide: unsupported element type %T", zero))
	}
}

// Name returns the Go name of H, used in type mismatch reports.
func Name[H Element]() string {
	var zero H
	return fmt.Sprintf("%T", zero)
}

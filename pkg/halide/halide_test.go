package halide

import (
	"testing"

	"github.com/d4l3k/go-bfloat16"
	"github.com/stretchr/testify/assert"
	"github.com/x448/float16"
)

func TestOf(t *testing.T) {
	assert.Equal(t, Type{Code: Float, Bits: 32, Lanes: 1}, Of[float32]())
	assert.Equal(t, Type{Code: Int, Bits: 8, Lanes: 1}, Of[int8]())
	assert.Equal(t, Type{Code: UInt, Bits: 16, Lanes: 1}, Of[uint16]())
	assert.Equal(t, Type{Code: Float, Bits: 16, Lanes: 1}, Of[float16.Float16]())
	assert.Equal(t, Type{Code: BFloat, Bits: 16, Lanes: 1}, Of[bfloat16.BF16]())

	// uint16 and float16 share storage but not a descriptor.
	assert.NotEqual(t, Of[uint16](), Of[float16.Float16]())
}

func TestTypeBytes(t *testing.T) {
	assert.Equal(t, 4, Of[int32]().Bytes())
	assert.Equal(t, 8, Of[float64]().Bytes())
	assert.Equal(t, 2, Of[bfloat16.BF16]().Bytes())
	assert.Equal(t, 1, Type{Code: UInt, Bits: 1, Lanes: 1}.Bytes())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "float32", Of[float32]().String())
	assert.Equal(t, "bfloat16", Of[bfloat16.BF16]().String())
	assert.Equal(t, "int8x4", Type{Code: Int, Bits: 8, Lanes: 4}.String())
}

func TestName(t *testing.T) {
	assert.Equal(t, "int32", Name[int32]())
	assert.Equal(t, "float16.Float16", Name[float16.Float16]())
}

func TestFloat32RoundTrip(t *testing.T) {
	assert.Equal(t, float32(1.5), ToFloat32(FromFloat32[float32](1.5)))
	assert.Equal(t, float32(1.5), ToFloat32(FromFloat32[float16.Float16](1.5)))
	assert.Equal(t, float32(1.5), ToFloat32(FromFloat32[bfloat16.BF16](1.5)))
	assert.Equal(t, int32(2), FromFloat32[int32](2.9))
	assert.Equal(t, float32(7), ToFloat32(uint8(7)))
}

package tensor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNewTensorShape(t *testing.T) {
	grid := []struct {
		Dims    []int32
		Want    []int32
		Storage [MaxRank]int32
	}{
		{Dims: nil, Want: []int32{}, Storage: [MaxRank]int32{1, 1, 1, 1}},
		{Dims: []int32{5}, Want: []int32{5}, Storage: [MaxRank]int32{5, 1, 1, 1}},
		{Dims: []int32{1, 2, 3}, Want: []int32{1, 2, 3}, Storage: [MaxRank]int32{1, 2, 3, 1}},
		{Dims: []int32{1, 2, 3, 4}, Want: []int32{1, 2, 3, 4}, Storage: [MaxRank]int32{1, 2, 3, 4}},
		{Dims: []int32{12, 23, 34, 45, 67}, Want: []int32{12, 23, 34, 45}, Storage: [MaxRank]int32{12, 23, 34, 45}},
	}
	for _, g := range grid {
		s := NewTensorShape(g.Dims...)
		if diff := cmp.Diff(g.Want, s.Dims()); diff != "" {
			t.Errorf("NewTensorShape(%v) mismatch (-want +got):\n%s", g.Dims, diff)
		}
		assert.Equal(t, len(g.Want), s.Len())
		assert.Equal(t, g.Storage, s.Storage())
		for i := range g.Want {
			assert.Equal(t, g.Dims[i], s.At(i))
		}
	}
}

func TestTensorShapeIdentity(t *testing.T) {
	s := Shape{2, 3}.TensorShape()
	assert.Equal(t, s, s.TensorShape())
	assert.Equal(t, s, NewTensorShape(s.Dims()...))
}

func TestTensorShapeAtOutOfRange(t *testing.T) {
	s := NewTensorShape(1, 2)
	assert.Panics(t, func() { s.At(2) })
}

func TestTensorShapeElementCount(t *testing.T) {
	assert.Equal(t, 6, NewTensorShape(1, 2, 3).ElementCount())
	assert.Equal(t, 1, NewTensorShape().ElementCount())
	assert.Equal(t, 0, NewTensorShape(1, -1, 3).ElementCount())
	assert.True(t, NewTensorShape(1, -1, 3).IsDynamic())
	assert.False(t, NewTensorShape(1, 2, 3).IsDynamic())
}

func TestTensorShapeString(t *testing.T) {
	assert.Equal(t, "[1 2 3]", NewTensorShape(1, 2, 3).String())
	assert.Equal(t, "[]", NewTensorShape().String())
}

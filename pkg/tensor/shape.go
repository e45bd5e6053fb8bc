package tensor

import "fmt"

// MaxRank is the largest rank the engine supports.
const MaxRank = 4

// TensorShape is a shape of at most MaxRank extents. An extent of -1 is dynamic.
// Unused slots hold 1.
type TensorShape struct {
	shape [MaxRank]int32
	size  int
}

// AsTensorShape is anything that normalizes to a TensorShape.
type AsTensorShape interface {
	TensorShape() TensorShape
}

// Shape is a dimension list, normalized with NewTensorShape.
type Shape []int32

func (s Shape) TensorShape() TensorShape {
	return NewTensorShape(s...)
}

// NewTensorShape normalizes dims. Beyond MaxRank only the first MaxRank extents are kept.
func NewTensorShape(dims ...int32) TensorShape {
	s := TensorShape{shape: [MaxRank]int32{1, 1, 1, 1}}
	s.size = copy(s.shape[:], dims)
	return s
}

func (s TensorShape) TensorShape() TensorShape {
	return s
}

// Len is the rank.
func (s TensorShape) Len() int {
	return s.size
}

// At returns extent i. It panics if i is not below Len.
func (s TensorShape) At(i int) int32 {
	return s.shape[:s.size][i]
}

// Dims returns the extents as a new slice of length Len.
func (s TensorShape) Dims() []int32 {
	dims := make([]int32, s.size)
	copy(dims, s.shape[:s.size])
	return dims
}

// Storage returns all slots, including the padding.
func (s TensorShape) Storage() [MaxRank]int32 {
	return s.shape
}

func (s TensorShape) IsDynamic() bool {
	for _, d := range s.shape[:s.size] {
		if d == -1 {
			return true
		}
	}
	return false
}

// ElementCount is the product of the extents, or 0 for a dynamic shape.
func (s TensorShape) ElementCount() int {
	n := 1
	for _, d := range s.shape[:s.size] {
		if d < 0 {
			return 0
		}
		n *= int(d)
	}
	return n
}

func (s TensorShape) String() string {
	return fmt.Sprint(s.shape[:s.size])
}

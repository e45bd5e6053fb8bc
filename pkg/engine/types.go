package engine

import "fmt"

// DimensionType is the axis layout of a tensor.
// The values match the engine's own enumeration.
type DimensionType int32

const (
	// TensorFlow is NHWC.
	TensorFlow DimensionType = 0
	// Caffe is NCHW.
	Caffe DimensionType = 1
	// CaffeC4 is NCHW with channels packed in groups of 4 (NC4HW4).
	CaffeC4 DimensionType = 2
)

const (
	NHWC   = TensorFlow
	NCHW   = Caffe
	NC4HW4 = CaffeC4
)

func (d DimensionType) String() string {
	switch d {
	case TensorFlow:
		return "NHWC"
	case Caffe:
		return "NCHW"
	case CaffeC4:
		return "NC4HW4"
	default:
		return fmt.Sprintf("DimensionType(%d)", int32(d))
	}
}

// MapType selects the synchronization point for Wait.
type MapType int32

const (
	MapTensorWrite MapType = 0
	MapTensorRead  MapType = 1
)

func (m MapType) String() string {
	switch m {
	case MapTensorWrite:
		return "write"
	case MapTensorRead:
		return "read"
	default:
		return fmt.Sprintf("MapType(%d)", int32(m))
	}
}

// Status is the result code of an engine copy.
// The native engine reports 1 for success and 0 for failure; other engines may use
// negative codes to say why a copy was rejected.
type Status int32

const (
	StatusFailed Status = 0
	StatusOK     Status = 1
)

func (s Status) OK() bool {
	return s > 0
}

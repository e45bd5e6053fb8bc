package engine

import (
	"io"
	"unsafe"

	"github.com/justinsb/mnntensor/pkg/halide"
)

// Ptr is an opaque pointer to a tensor owned by the foreign engine.
// A nil Ptr is the null pointer.
type Ptr unsafe.Pointer

// Engine is the narrow surface of the foreign inference engine that tensor handles consume.
// Implementations do no ownership bookkeeping of their own: callers decide when Destroy is
// called, and calling it twice for one pointer is undefined.
type Engine interface {
	io.Closer

	// Name identifies the implementation, e.g. "fallback" or "mnn".
	Name() string

	// Create allocates a host tensor. When data is non-nil the tensor wraps that memory
	// instead of allocating, and destroying it leaves the memory untouched.
	Create(shape []int32, t halide.Type, data unsafe.Pointer, layout DimensionType) Ptr
	// CreateDevice allocates a tensor in device memory.
	CreateDevice(shape []int32, t halide.Type, layout DimensionType) Ptr
	Destroy(p Ptr)
	// Clone deep-copies p into a new tensor in the same memory space.
	Clone(p Ptr) Ptr

	Shape(p Ptr) []int32
	Dimensions(p Ptr) int
	Width(p Ptr) int
	Height(p Ptr) int
	Channel(p Ptr) int
	Batch(p Ptr) int
	// ElementSize is the number of elements.
	ElementSize(p Ptr) int
	// Size is the storage size in bytes.
	Size(p Ptr) int
	DimensionType(p Ptr) DimensionType
	Type(p Ptr) halide.Type
	IsTypeOf(p Ptr, t halide.Type) bool
	DeviceID(p Ptr) uint64

	// CopyFromHostTensor copies the contents of the host tensor src into dst.
	CopyFromHostTensor(dst, src Ptr) Status
	// CopyToHostTensor copies the contents of src into the host tensor dst.
	CopyToHostTensor(src, dst Ptr) Status
	// Host returns the host storage of p, or nil when p is not host addressable.
	Host(p Ptr) unsafe.Pointer

	// Wait blocks until pending device work on p reaches the requested point.
	// finish requests a full flush of the device pipeline.
	Wait(p Ptr, mapType MapType, finish bool)
}

package tensor

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/justinsb/mnntensor/pkg/engine"
	"github.com/justinsb/mnntensor/pkg/halide"
	"k8s.io/klog/v2"
)

// Tensor is a handle to an engine tensor with capability C and element type H.
type Tensor[C TensorType, H halide.Element] struct {
	eng engine.Engine
	ptr engine.Ptr

	// wrapper is set when ptr wraps caller memory; Free destroys the wrapper but not the memory.
	wrapper bool
	pinner  *runtime.Pinner
}

// New allocates a tensor of capability C. It panics if the engine cannot allocate.
func New[C OwnedTensorType[H], H halide.Element](eng engine.Engine, shape AsTensorShape, layout engine.DimensionType) *Tensor[C, H] {
	var c C
	s := shape.TensorShape()
	t := halide.Of[H]()

	var p engine.Ptr
	if c.OnHost() {
		p = eng.Create(s.Dims(), t, nil, layout)
	} else {
		p = eng.CreateDevice(s.Dims(), t, layout)
	}
	if p == nil {
		panic(fmt.Sprintf("tensor: engine %s failed to allocate %s tensor of shape %v", eng.Name(), t, s))
	}
	klog.V(4).InfoS("created tensor", "engine", eng.Name(), "shape", s, "type", t, "layout", layout, "host", c.OnHost())
	return &Tensor[C, H]{eng: eng, ptr: p}
}

// NewHost allocates an owned host tensor.
func NewHost[H halide.Element](eng engine.Engine, shape AsTensorShape, layout engine.DimensionType) *Tensor[Host[H], H] {
	return New[Host[H], H](eng, shape, layout)
}

// NewDevice allocates an owned device tensor.
func NewDevice[H halide.Element](eng engine.Engine, shape AsTensorShape, layout engine.DimensionType) *Tensor[Device[H], H] {
	return New[Device[H], H](eng, shape, layout)
}

// Borrowed wraps data as a read-only host tensor in NCHW layout. data must not be
// modified while the handle is in use and must hold at least as many elements as shape.
// data stays pinned until Free, which must be called.
func Borrowed[H halide.Element](eng engine.Engine, shape AsTensorShape, data []H) *Tensor[Ref[Host[H]], H] {
	p, pinner := wrap(eng, shape, data)
	return &Tensor[Ref[Host[H]], H]{eng: eng, ptr: p, wrapper: true, pinner: pinner}
}

// BorrowedMut wraps data as a writable host tensor in NCHW layout. Writes through the
// handle are visible in data. The caller must not access data while the handle is in use.
func BorrowedMut[H halide.Element](eng engine.Engine, shape AsTensorShape, data []H) *Tensor[RefMut[Host[H]], H] {
	p, pinner := wrap(eng, shape, data)
	return &Tensor[RefMut[Host[H]], H]{eng: eng, ptr: p, wrapper: true, pinner: pinner}
}

func wrap[H halide.Element](eng engine.Engine, shape AsTensorShape, data []H) (engine.Ptr, *runtime.Pinner) {
	s := shape.TensorShape()
	if n := s.ElementCount(); len(data) < n {
		panic(fmt.Sprintf("tensor: borrowed buffer of %d elements is too small for shape %v", len(data), s))
	}

	pinner := &runtime.Pinner{}
	var base unsafe.Pointer
	if len(data) > 0 {
		pinner.Pin(&data[0])
		base = unsafe.Pointer(&data[0])
	}
	p := eng.Create(s.Dims(), halide.Of[H](), base, engine.Caffe)
	if p == nil {
		pinner.Unpin()
		panic(fmt.Sprintf("tensor: engine %s failed to wrap buffer of shape %v", eng.Name(), s))
	}
	klog.V(4).InfoS("wrapped caller memory", "engine", eng.Name(), "shape", s, "type", halide.Of[H]())
	return p, pinner
}

// FromPtrUnchecked adopts a pointer issued by the engine. The caller guarantees that p
// is live, holds elements of type H, and that C matches its location and ownership.
// It panics if p is nil.
func FromPtrUnchecked[C AnyTensorType[H], H halide.Element](eng engine.Engine, p engine.Ptr) *Tensor[C, H] {
	if p == nil {
		panic("tensor: adopting nil tensor pointer")
	}
	klog.V(4).InfoS("adopted tensor", "engine", eng.Name(), "ptr", p)
	return &Tensor[C, H]{eng: eng, ptr: p}
}

// Clone deep-copies t into a new tensor in the same memory space.
func Clone[C OwnedTensorType[H], H halide.Element](t *Tensor[C, H]) *Tensor[C, H] {
	p := t.eng.Clone(t.p())
	if p == nil {
		panic(fmt.Sprintf("tensor: engine %s failed to clone tensor of shape %v", t.eng.Name(), t.Shape()))
	}
	klog.V(4).InfoS("cloned tensor", "engine", t.eng.Name(), "shape", t.Shape())
	return &Tensor[C, H]{eng: t.eng, ptr: p}
}

// AsRef returns a read-only view of t. The view must not be used after t is freed.
func AsRef[C OwnedTensorType[H], H halide.Element](t *Tensor[C, H]) *Tensor[Ref[C], H] {
	return &Tensor[Ref[C], H]{eng: t.eng, ptr: t.p()}
}

// AsMut returns a writable view of t. The view must not be used after t is freed.
func AsMut[C OwnedTensorType[H], H halide.Element](t *Tensor[C, H]) *Tensor[RefMut[C], H] {
	return &Tensor[RefMut[C], H]{eng: t.eng, ptr: t.p()}
}

// IsTypeOf reports whether t holds elements of type G.
func IsTypeOf[G halide.Element, C TensorType, H halide.Element](t *Tensor[C, H]) bool {
	return t.IsType(halide.Of[G]())
}

// Free releases the engine tensor if t owns it. Borrowed handles release nothing; handles
// over caller memory release only the engine's wrapper. t is unusable afterwards.
// Calling Free again does nothing.
func (t *Tensor[C, H]) Free() {
	if t.ptr == nil {
		return
	}
	var c C
	if c.Owned() || t.wrapper {
		t.eng.Destroy(t.ptr)
		klog.V(4).InfoS("freed tensor", "engine", t.eng.Name(), "wrapper", t.wrapper)
	}
	if t.pinner != nil {
		t.pinner.Unpin()
		t.pinner = nil
	}
	t.ptr = nil
}

func (t *Tensor[C, H]) p() engine.Ptr {
	if t.ptr == nil {
		panic("tensor: use of freed tensor")
	}
	return t.ptr
}

// Ptr returns the engine pointer, for passing to engine calls the handle does not cover.
func (t *Tensor[C, H]) Ptr() engine.Ptr {
	return t.p()
}

func (t *Tensor[C, H]) Engine() engine.Engine {
	return t.eng
}

// Shape returns the shape, truncated to MaxRank.
func (t *Tensor[C, H]) Shape() TensorShape {
	return NewTensorShape(t.eng.Shape(t.p())...)
}

func (t *Tensor[C, H]) Dimensions() int {
	return t.eng.Dimensions(t.p())
}

// Batch, Channel, Height and Width read the axis named by the layout. Axes the tensor
// does not have read as 1.

func (t *Tensor[C, H]) Batch() int {
	return t.eng.Batch(t.p())
}

func (t *Tensor[C, H]) Channel() int {
	return t.eng.Channel(t.p())
}

func (t *Tensor[C, H]) Height() int {
	return t.eng.Height(t.p())
}

func (t *Tensor[C, H]) Width() int {
	return t.eng.Width(t.p())
}

// ElementSize is the number of elements.
func (t *Tensor[C, H]) ElementSize() int {
	return t.eng.ElementSize(t.p())
}

// Size is the storage size in bytes.
func (t *Tensor[C, H]) Size() int {
	return t.eng.Size(t.p())
}

func (t *Tensor[C, H]) DimensionType() engine.DimensionType {
	return t.eng.DimensionType(t.p())
}

// Type is the runtime element type of the buffer, which may differ from H for adopted pointers.
func (t *Tensor[C, H]) Type() halide.Type {
	return t.eng.Type(t.p())
}

func (t *Tensor[C, H]) IsType(ht halide.Type) bool {
	return t.eng.IsTypeOf(t.p(), ht)
}

func (t *Tensor[C, H]) DeviceID() uint64 {
	return t.eng.DeviceID(t.p())
}

// IsDynamic reports whether any extent is unresolved.
func (t *Tensor[C, H]) IsDynamic() bool {
	for _, d := range t.eng.Shape(t.p()) {
		if d == -1 {
			return true
		}
	}
	return false
}

func (t *Tensor[C, H]) String() string {
	if t.ptr == nil {
		return "Tensor(freed)"
	}
	var c C
	location := "device"
	if c.OnHost() {
		location = "host"
	}
	return fmt.Sprintf("Tensor(%s %s %v %s)", location, t.Type(), t.eng.Shape(t.ptr), t.DimensionType())
}

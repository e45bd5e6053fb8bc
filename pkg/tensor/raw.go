package tensor

import (
	"github.com/justinsb/mnntensor/pkg/engine"
	"github.com/justinsb/mnntensor/pkg/halide"
	"k8s.io/klog/v2"
)

// RawTensor owns an engine tensor whose capability is not known yet. It exposes only
// introspection; ReifyUnchecked turns it into a typed handle.
type RawTensor struct {
	eng engine.Engine
	ptr engine.Ptr
}

// NewRawTensor takes ownership of p. It panics if p is nil.
func NewRawTensor(eng engine.Engine, p engine.Ptr) *RawTensor {
	if p == nil {
		panic("tensor: adopting nil tensor pointer")
	}
	return &RawTensor{eng: eng, ptr: p}
}

func (r *RawTensor) p() engine.Ptr {
	if r.ptr == nil {
		panic("tensor: use of freed tensor")
	}
	return r.ptr
}

func (r *RawTensor) Shape() TensorShape {
	return NewTensorShape(r.eng.Shape(r.p())...)
}

func (r *RawTensor) Dimensions() int {
	return r.eng.Dimensions(r.p())
}

func (r *RawTensor) Batch() int {
	return r.eng.Batch(r.p())
}

func (r *RawTensor) Channel() int {
	return r.eng.Channel(r.p())
}

func (r *RawTensor) Height() int {
	return r.eng.Height(r.p())
}

func (r *RawTensor) Width() int {
	return r.eng.Width(r.p())
}

func (r *RawTensor) Type() halide.Type {
	return r.eng.Type(r.p())
}

func (r *RawTensor) DimensionType() engine.DimensionType {
	return r.eng.DimensionType(r.p())
}

// DeviceID is 0 for host tensors.
func (r *RawTensor) DeviceID() uint64 {
	return r.eng.DeviceID(r.p())
}

// Free destroys the tensor. Calling Free again, or after ReifyUnchecked, does nothing.
func (r *RawTensor) Free() {
	if r.ptr == nil {
		return
	}
	r.eng.Destroy(r.ptr)
	r.ptr = nil
}

// ReifyUnchecked moves the tensor out of r into an owned handle of capability C.
// Nothing checks that C and H match the tensor. r is unusable afterwards.
func ReifyUnchecked[C OwnedTensorType[H], H halide.Element](r *RawTensor) *Tensor[C, H] {
	p := r.p()
	r.ptr = nil
	klog.V(4).InfoS("reified raw tensor", "engine", r.eng.Name(), "type", halide.Of[H]())
	return &Tensor[C, H]{eng: r.eng, ptr: p}
}

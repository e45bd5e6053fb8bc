//go:build mnn

// Package mnn adapts the MNN C wrapper to engine.Engine.
package mnn

import (
	"unsafe"

	"github.com/justinsb/mnntensor/pkg/engine"
	"github.com/justinsb/mnntensor/pkg/halide"
	mnnc "github.com/justinsb/mnntensor/third_party/mnn"
	"k8s.io/klog/v2"
)

const Name = "mnn"

func init() {
	engine.Register(Name, func() (engine.Engine, error) {
		return &Engine{}, nil
	})
}

// Engine calls straight into MNN. It holds no state: MNN owns every tensor it creates.
type Engine struct{}

var _ engine.Engine = (*Engine)(nil)

func (e *Engine) Name() string {
	return Name
}

func (e *Engine) Close() error {
	return nil
}

func ptr(t mnnc.Tensor) engine.Ptr {
	return engine.Ptr(t)
}

func raw(p engine.Ptr) mnnc.Tensor {
	return mnnc.Tensor(p)
}

func toMNN(t halide.Type) mnnc.HalideType {
	return mnnc.HalideType{Code: uint8(t.Code), Bits: t.Bits, Lanes: t.Lanes}
}

func fromMNN(t mnnc.HalideType) halide.Type {
	return halide.Type{Code: halide.Code(t.Code), Bits: t.Bits, Lanes: t.Lanes}
}

func (e *Engine) Create(shape []int32, t halide.Type, data unsafe.Pointer, layout engine.DimensionType) engine.Ptr {
	p := mnnc.CreateWith(shape, toMNN(t), data, mnnc.DimensionType(layout))
	if p == nil {
		klog.ErrorS(nil, "Tensor_createWith returned nil", "shape", shape, "type", t, "layout", layout)
	}
	return ptr(p)
}

func (e *Engine) CreateDevice(shape []int32, t halide.Type, layout engine.DimensionType) engine.Ptr {
	p := mnnc.CreateDevice(shape, toMNN(t), mnnc.DimensionType(layout))
	if p == nil {
		klog.ErrorS(nil, "Tensor_createDevice returned nil", "shape", shape, "type", t, "layout", layout)
	}
	return ptr(p)
}

func (e *Engine) Destroy(p engine.Ptr) {
	mnnc.Destroy(raw(p))
}

func (e *Engine) Clone(p engine.Ptr) engine.Ptr {
	return ptr(mnnc.Clone(raw(p)))
}

func (e *Engine) Shape(p engine.Ptr) []int32 {
	return mnnc.Shape(raw(p))
}

func (e *Engine) Dimensions(p engine.Ptr) int {
	return mnnc.Dimensions(raw(p))
}

func (e *Engine) Width(p engine.Ptr) int {
	return mnnc.Width(raw(p))
}

func (e *Engine) Height(p engine.Ptr) int {
	return mnnc.Height(raw(p))
}

func (e *Engine) Channel(p engine.Ptr) int {
	return mnnc.Channel(raw(p))
}

func (e *Engine) Batch(p engine.Ptr) int {
	return mnnc.Batch(raw(p))
}

func (e *Engine) ElementSize(p engine.Ptr) int {
	return mnnc.ElementSize(raw(p))
}

func (e *Engine) Size(p engine.Ptr) int {
	return mnnc.Size(raw(p))
}

func (e *Engine) DimensionType(p engine.Ptr) engine.DimensionType {
	return engine.DimensionType(mnnc.GetDimensionType(raw(p)))
}

func (e *Engine) Type(p engine.Ptr) halide.Type {
	return fromMNN(mnnc.GetType(raw(p)))
}

func (e *Engine) IsTypeOf(p engine.Ptr, t halide.Type) bool {
	return mnnc.IsTypeOf(raw(p), toMNN(t))
}

func (e *Engine) DeviceID(p engine.Ptr) uint64 {
	return mnnc.DeviceID(raw(p))
}

func (e *Engine) CopyFromHostTensor(dst, src engine.Ptr) engine.Status {
	return engine.Status(mnnc.CopyFromHostTensor(raw(dst), raw(src)))
}

func (e *Engine) CopyToHostTensor(src, dst engine.Ptr) engine.Status {
	return engine.Status(mnnc.CopyToHostTensor(raw(src), raw(dst)))
}

// Host returns nil for tensors without host storage; MNN reports those as a null host pointer.
func (e *Engine) Host(p engine.Ptr) unsafe.Pointer {
	return mnnc.HostMut(raw(p))
}

func (e *Engine) Wait(p engine.Ptr, mapType engine.MapType, finish bool) {
	mnnc.Wait(raw(p), mnnc.MapType(mapType), finish)
}

package tensor

import (
	"fmt"

	"github.com/justinsb/mnntensor/pkg/engine"
	"github.com/justinsb/mnntensor/pkg/halide"
	"k8s.io/klog/v2"
)

// CopyFromHostTensor copies the contents of the host tensor src into the device tensor dst.
// The engine checks that the two are compatible; a rejected copy returns a *CopyFailedError.
func CopyFromHostTensor[C MutableDeviceTensorType[H], S HostTensorType[H], H halide.Element](dst *Tensor[C, H], src *Tensor[S, H]) error {
	return dst.copyFromHost(src.p())
}

// CopyToHostTensor copies the contents of the device tensor src into the host tensor dst.
func CopyToHostTensor[C DeviceTensorType[H], D MutableHostTensorType[H], H halide.Element](src *Tensor[C, H], dst *Tensor[D, H]) error {
	return src.copyToHost(dst.p())
}

// Wait blocks until pending engine work on t reaches the point selected by mapType.
// finish flushes the whole device pipeline. It cannot be cancelled.
func Wait[C DeviceTensorType[H], H halide.Element](t *Tensor[C, H], mapType engine.MapType, finish bool) {
	klog.V(5).InfoS("waiting for device tensor", "engine", t.eng.Name(), "map", mapType, "finish", finish)
	t.eng.Wait(t.p(), mapType, finish)
}

// CreateHostTensorFromDevice allocates a host tensor with the shape and layout of t.
// With copyData the contents of t are copied into it; otherwise it is uninitialized and
// must be written before it is read. The result must be freed by the caller.
func CreateHostTensorFromDevice[C DeviceTensorType[H], H halide.Element](t *Tensor[C, H], copyData bool) (*Tensor[Host[H], H], error) {
	host := t.hostTwin()
	if copyData {
		if err := t.copyToHost(host.p()); err != nil {
			host.Free()
			return nil, err
		}
	}
	return host, nil
}

// hostTwin allocates an owned host tensor with the full shape and layout of t.
func (t *Tensor[C, H]) hostTwin() *Tensor[Host[H], H] {
	p := t.p()
	shape := t.eng.Shape(p)
	layout := t.eng.DimensionType(p)

	host := t.eng.Create(shape, halide.Of[H](), nil, layout)
	if host == nil {
		panic(fmt.Sprintf("tensor: engine %s failed to allocate host tensor of shape %v", t.eng.Name(), shape))
	}
	klog.V(5).InfoS("allocated host staging tensor", "engine", t.eng.Name(), "shape", shape, "layout", layout)
	return &Tensor[Host[H], H]{eng: t.eng, ptr: host}
}

func (t *Tensor[C, H]) copyFromHost(src engine.Ptr) error {
	if status := t.eng.CopyFromHostTensor(t.p(), src); !status.OK() {
		return &CopyFailedError{Code: status}
	}
	return nil
}

func (t *Tensor[C, H]) copyToHost(dst engine.Ptr) error {
	if status := t.eng.CopyToHostTensor(t.p(), dst); !status.OK() {
		return &CopyFailedError{Code: status}
	}
	return nil
}

package tensor

import (
	"fmt"
	"unsafe"

	"github.com/justinsb/mnntensor/pkg/halide"
)

// TryHostData returns the elements of t. The slice aliases engine storage and must not be
// modified or used after t is freed. It returns a *TypeMismatchError if t does not hold H.
func TryHostData[C HostTensorType[H], H halide.Element](t *Tensor[C, H]) ([]H, error) {
	return t.hostData()
}

// HostData is TryHostData for callers that know the element type. It panics on mismatch.
func HostData[C HostTensorType[H], H halide.Element](t *Tensor[C, H]) []H {
	data, err := t.hostData()
	if err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return data
}

// TryHostDataMut returns the elements of t for writing.
// It returns a *TypeMismatchError if t does not hold H.
func TryHostDataMut[C MutableHostTensorType[H], H halide.Element](t *Tensor[C, H]) ([]H, error) {
	return t.hostData()
}

// HostDataMut is TryHostDataMut for callers that know the element type. It panics on mismatch.
func HostDataMut[C MutableHostTensorType[H], H halide.Element](t *Tensor[C, H]) []H {
	data, err := t.hostData()
	if err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return data
}

func (t *Tensor[C, H]) hostData() ([]H, error) {
	p := t.p()
	want := halide.Of[H]()
	if !t.eng.IsTypeOf(p, want) {
		return nil, &TypeMismatchError{Requested: halide.Name[H](), Actual: t.eng.Type(p)}
	}

	n := t.eng.ElementSize(p)
	if n == 0 {
		return []H{}, nil
	}
	base := t.eng.Host(p)
	if base == nil {
		panic(fmt.Sprintf("tensor: engine %s returned no host storage for %v", t.eng.Name(), t))
	}
	return unsafe.Slice((*H)(base), n), nil
}

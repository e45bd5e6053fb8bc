package tensor

import (
	"fmt"

	"github.com/justinsb/mnntensor/pkg/halide"
)

// Fill sets every element of t to v. Device tensors are filled through a temporary host
// tensor. Fill panics if t does not hold H or if the engine rejects the device copy.
func Fill[C MutableTensorType[H], H halide.Element](t *Tensor[C, H], v H) {
	var c C
	if c.OnHost() {
		fillHost(t, v)
		return
	}

	staging := t.hostTwin()
	defer staging.Free()

	fillHost(staging, v)
	if err := t.copyFromHost(staging.p()); err != nil {
		panic(fmt.Sprintf("tensor: filling device tensor: %v", err))
	}
}

func fillHost[C TensorType, H halide.Element](t *Tensor[C, H], v H) {
	data, err := t.hostData()
	if err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	for i := range data {
		data[i] = v
	}
}

// Package enginetests checks that an engine.Engine behaves the way tensor handles expect.
package enginetests

import (
	"math"
	"slices"
	"testing"
	"unsafe"

	"github.com/justinsb/mnntensor/pkg/engine"
	"github.com/justinsb/mnntensor/pkg/halide"
)

// Run runs the conformance tests against engines returned by open, except those named in skip.
// open is called once per subtest; the engine is closed when the subtest ends.
func Run(t *testing.T, open func(t *testing.T) engine.Engine, skip ...string) {
	tests := []struct {
		name string
		fn   func(t *testing.T, e engine.Engine)
	}{
		{"HostRoundTrip", testHostRoundTrip},
		{"DeviceRoundTrip", testDeviceRoundTrip},
		{"WrapCallerMemory", testWrapCallerMemory},
		{"Introspection", testIntrospection},
		{"Clone", testClone},
		{"CopyRejected", testCopyRejected},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if slices.Contains(skip, tc.name) {
				t.Skipf("%s is not supported by this engine", tc.name)
			}
			e := open(t)
			defer func() {
				if err := e.Close(); err != nil {
					t.Errorf("failed to close engine: %v", err)
				}
			}()
			tc.fn(t, e)
		})
	}
}

var f32 = halide.Of[float32]()

func hostFloats(t *testing.T, e engine.Engine, p engine.Ptr) []float32 {
	t.Helper()
	base := e.Host(p)
	if base == nil {
		t.Fatalf("engine returned no host storage")
	}
	return unsafe.Slice((*float32)(base), e.ElementSize(p))
}

func mustCreate(t *testing.T, p engine.Ptr) engine.Ptr {
	t.Helper()
	if p == nil {
		t.Fatalf("engine failed to allocate tensor")
	}
	return p
}

func testHostRoundTrip(t *testing.T, e engine.Engine) {
	p := mustCreate(t, e.Create([]int32{1, 2, 3}, f32, nil, engine.Caffe))
	defer e.Destroy(p)

	values := hostFloats(t, e, p)
	if len(values) != 6 {
		t.Fatalf("expected 6 values, got %d", len(values))
	}
	for i := range values {
		values[i] = float32(i) / 3
	}
	expected := []float32{0, 0.33333334, 0.6666667, 1, 1.3333334, 1.6666666}
	if !FloatingPointEqual(hostFloats(t, e, p), expected) {
		t.Errorf("expected %+v, got %+v", expected, values)
	}
}

func testDeviceRoundTrip(t *testing.T, e engine.Engine) {
	shape := []int32{1, 4, 2, 2}
	src := mustCreate(t, e.Create(shape, f32, nil, engine.Caffe))
	defer e.Destroy(src)
	dev := mustCreate(t, e.CreateDevice(shape, f32, engine.Caffe))
	defer e.Destroy(dev)
	dst := mustCreate(t, e.Create(shape, f32, nil, engine.Caffe))
	defer e.Destroy(dst)

	in := hostFloats(t, e, src)
	for i := range in {
		in[i] = float32(i)
	}

	if status := e.CopyFromHostTensor(dev, src); !status.OK() {
		t.Fatalf("copy to device failed (status %d)", status)
	}
	e.Wait(dev, engine.MapTensorRead, true)
	if status := e.CopyToHostTensor(dev, dst); !status.OK() {
		t.Fatalf("copy from device failed (status %d)", status)
	}

	if out := hostFloats(t, e, dst); !FloatingPointEqual(in, out) {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func testWrapCallerMemory(t *testing.T, e engine.Engine) {
	data := []float32{1, 2, 3, 4}
	p := mustCreate(t, e.Create([]int32{4}, f32, unsafe.Pointer(&data[0]), engine.Caffe))

	values := hostFloats(t, e, p)
	values[2] = 30
	if data[2] != 30 {
		t.Errorf("write through wrapper not visible in caller memory, got %v", data)
	}

	e.Destroy(p)
	if !FloatingPointEqual(data, []float32{1, 2, 30, 4}) {
		t.Errorf("caller memory changed by destroy: %v", data)
	}
}

func testIntrospection(t *testing.T, e engine.Engine) {
	grid := []struct {
		Layout                        engine.DimensionType
		Batch, Channel, Height, Width int
	}{
		{Layout: engine.Caffe, Batch: 2, Channel: 3, Height: 4, Width: 5},
		{Layout: engine.TensorFlow, Batch: 2, Height: 3, Width: 4, Channel: 5},
	}
	for _, g := range grid {
		p := mustCreate(t, e.Create([]int32{2, 3, 4, 5}, halide.Of[int32](), nil, g.Layout))

		if got := e.Dimensions(p); got != 4 {
			t.Errorf("%v: expected 4 dimensions, got %d", g.Layout, got)
		}
		if b, c, h, w := e.Batch(p), e.Channel(p), e.Height(p), e.Width(p); b != g.Batch || c != g.Channel || h != g.Height || w != g.Width {
			t.Errorf("%v: expected b=%d c=%d h=%d w=%d, got b=%d c=%d h=%d w=%d", g.Layout, g.Batch, g.Channel, g.Height, g.Width, b, c, h, w)
		}
		if got := e.ElementSize(p); got != 120 {
			t.Errorf("%v: expected 120 elements, got %d", g.Layout, got)
		}
		if got := e.DimensionType(p); got != g.Layout {
			t.Errorf("expected layout %v, got %v", g.Layout, got)
		}
		if !e.IsTypeOf(p, halide.Of[int32]()) || e.IsTypeOf(p, f32) {
			t.Errorf("%v: unexpected type check result for %v", g.Layout, e.Type(p))
		}
		if got := e.Type(p); got != halide.Of[int32]() {
			t.Errorf("expected type int32, got %v", got)
		}

		e.Destroy(p)
	}
}

func testClone(t *testing.T, e engine.Engine) {
	p := mustCreate(t, e.Create([]int32{3}, f32, nil, engine.Caffe))
	defer e.Destroy(p)
	copy(hostFloats(t, e, p), []float32{1, 2, 3})

	c := mustCreate(t, e.Clone(p))
	defer e.Destroy(c)
	hostFloats(t, e, c)[0] = 10

	if got := hostFloats(t, e, p); !FloatingPointEqual(got, []float32{1, 2, 3}) {
		t.Errorf("clone shares storage with original: %v", got)
	}
}

func testCopyRejected(t *testing.T, e engine.Engine) {
	dev := mustCreate(t, e.CreateDevice([]int32{4}, f32, engine.Caffe))
	defer e.Destroy(dev)
	small := mustCreate(t, e.Create([]int32{2}, f32, nil, engine.Caffe))
	defer e.Destroy(small)

	if status := e.CopyToHostTensor(dev, small); status.OK() {
		t.Errorf("expected copy into a smaller tensor to fail, got status %d", status)
	}
}

func FloatingPointEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i, value := range a {
		if math.Abs(float64(value-b[i])) > 0.00001 {
			return false
		}
	}
	return true
}

// Package tensor provides typed handles over tensors owned by a foreign inference engine.
//
// A handle is parameterized by a capability C and an element type H. The capability says
// where the storage lives (host or device) and whether the handle owns it, borrows it, or
// borrows it mutably. Operations that only make sense for some capabilities are generic
// functions constrained by the matching union, so misuse fails to compile:
//
//	t := tensor.NewHost[float32](eng, tensor.Shape{1, 2, 3}, engine.Caffe)
//	defer t.Free()
//	tensor.Fill(t, 1.5)
//	data := tensor.HostData(t)
//
// The engine tags every buffer with its runtime element type. Host access compares that
// tag against H before handing out a typed slice.
//
// Owned handles must be freed exactly once with Free. Borrowed handles must not outlive
// the memory or tensor they borrow from.
package tensor

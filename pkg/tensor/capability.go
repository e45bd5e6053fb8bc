package tensor

import "github.com/justinsb/mnntensor/pkg/halide"

// TensorType is implemented by the capability markers of this package only.
type TensorType interface {
	Owned() bool
	Borrowed() bool
	OnHost() bool
	OnDevice() bool
	Mutable() bool

	sealed()
}

// Host is an owned tensor in host memory.
type Host[H halide.Element] struct{}

func (h Host[H]) Owned() bool    { return true }
func (h Host[H]) Borrowed() bool { return false }
func (h Host[H]) OnHost() bool   { return true }
func (h Host[H]) OnDevice() bool { return false }
func (h Host[H]) Mutable() bool  { return true }
func (h Host[H]) sealed()        {}

// Device is an owned tensor in device memory.
type Device[H halide.Element] struct{}

func (d Device[H]) Owned() bool    { return true }
func (d Device[H]) Borrowed() bool { return false }
func (d Device[H]) OnHost() bool   { return false }
func (d Device[H]) OnDevice() bool { return true }
func (d Device[H]) Mutable() bool  { return true }
func (d Device[H]) sealed()        {}

// Ref is an immutable borrow of a T. It keeps the location of T.
type Ref[T TensorType] struct{}

func (r Ref[T]) Owned() bool    { return false }
func (r Ref[T]) Borrowed() bool { return true }
func (r Ref[T]) OnHost() bool   { var t T; return t.OnHost() }
func (r Ref[T]) OnDevice() bool { var t T; return t.OnDevice() }
func (r Ref[T]) Mutable() bool  { return false }
func (r Ref[T]) sealed()        {}

// RefMut is a mutable borrow of a T. It keeps the location of T.
type RefMut[T TensorType] struct{}

func (r RefMut[T]) Owned() bool    { return false }
func (r RefMut[T]) Borrowed() bool { return true }
func (r RefMut[T]) OnHost() bool   { var t T; return t.OnHost() }
func (r RefMut[T]) OnDevice() bool { var t T; return t.OnDevice() }
func (r RefMut[T]) Mutable() bool  { return true }
func (r RefMut[T]) sealed()        {}

// Dyn forwards every predicate to T. Handles adopted at engine boundaries use it.
type Dyn[T TensorType] struct{}

func (d Dyn[T]) Owned() bool    { var t T; return t.Owned() }
func (d Dyn[T]) Borrowed() bool { var t T; return t.Borrowed() }
func (d Dyn[T]) OnHost() bool   { var t T; return t.OnHost() }
func (d Dyn[T]) OnDevice() bool { var t T; return t.OnDevice() }
func (d Dyn[T]) Mutable() bool  { var t T; return t.Mutable() }
func (d Dyn[T]) sealed()        {}

// The constraints below list the capabilities each operation admits. Borrows nest one
// level deep: Ref[Host[H]] is admitted, Ref[Ref[Host[H]]] is not.

type OwnedTensorType[H halide.Element] interface {
	TensorType
	Host[H] | Device[H] | Dyn[Host[H]] | Dyn[Device[H]]
}

type RefTensorType[H halide.Element] interface {
	TensorType
	Ref[Host[H]] | Ref[Device[H]] | RefMut[Host[H]] | RefMut[Device[H]]
}

type HostTensorType[H halide.Element] interface {
	TensorType
	Host[H] | Ref[Host[H]] | RefMut[Host[H]] | Dyn[Host[H]]
}

type DeviceTensorType[H halide.Element] interface {
	TensorType
	Device[H] | Ref[Device[H]] | RefMut[Device[H]] | Dyn[Device[H]]
}

type MutableTensorType[H halide.Element] interface {
	TensorType
	Host[H] | Device[H] | RefMut[Host[H]] | RefMut[Device[H]] | Dyn[Host[H]] | Dyn[Device[H]]
}

type MutableHostTensorType[H halide.Element] interface {
	TensorType
	Host[H] | RefMut[Host[H]] | Dyn[Host[H]]
}

type MutableDeviceTensorType[H halide.Element] interface {
	TensorType
	Device[H] | RefMut[Device[H]] | Dyn[Device[H]]
}

type AnyTensorType[H halide.Element] interface {
	TensorType
	Host[H] | Device[H] |
		Ref[Host[H]] | Ref[Device[H]] |
		RefMut[Host[H]] | RefMut[Device[H]] |
		Dyn[Host[H]] | Dyn[Device[H]]
}

//go:build mnn

// Package mnn binds the tensor functions of the MNN C wrapper (Tensor_c.h).
package mnn

// #cgo CFLAGS: -O3 -DNDEBUG -I MNN/include -I mnn_c
// #cgo LDFLAGS: -L MNN/build -L mnn_c/build -l mnn_c -l MNN -l stdc++ -l m
// #include <stdlib.h>
// #include "Tensor_c.h"
//
// static halide_type_t mk_type(int code, int bits, int lanes) {
//   halide_type_t t;
//   t.code = code;
//   t.bits = bits;
//   t.lanes = lanes;
//   return t;
// }
//
// static int type_code(halide_type_t t) { return t.code; }
// static int type_bits(halide_type_t t) { return t.bits; }
// static int type_lanes(halide_type_t t) { return t.lanes; }
import "C"

import (
	"unsafe"
)

// Tensor is a pointer to an MNN::Tensor.
type Tensor = unsafe.Pointer

// DimensionType values match MNN::Tensor::DimensionType.
type DimensionType int32

// MapType values match MNN::Tensor::MapType.
type MapType int32

// HalideType mirrors halide_type_t.
type HalideType struct {
	Code  uint8
	Bits  uint8
	Lanes uint16
}

func toC(t HalideType) C.halide_type_t {
	return C.mk_type(C.int(t.Code), C.int(t.Bits), C.int(t.Lanes))
}

func fromC(t C.halide_type_t) HalideType {
	return HalideType{
		Code:  uint8(C.type_code(t)),
		Bits:  uint8(C.type_bits(t)),
		Lanes: uint16(C.type_lanes(t)),
	}
}

func cTensor(t Tensor) *C.Tensor {
	return (*C.Tensor)(t)
}

func shapePtr(shape []int32) *C.int {
	if len(shape) == 0 {
		return nil
	}
	return (*C.int)(unsafe.Pointer(&shape[0]))
}

// CreateWith creates a host tensor. When data is non-nil the tensor uses it as storage.
// data must stay valid (and pinned, if it is Go memory) until the tensor is destroyed.
func CreateWith(shape []int32, t HalideType, data unsafe.Pointer, layout DimensionType) Tensor {
	return Tensor(C.Tensor_createWith(shapePtr(shape), C.size_t(len(shape)), toC(t), data, C.DimensionType(layout)))
}

func CreateDevice(shape []int32, t HalideType, layout DimensionType) Tensor {
	return Tensor(C.Tensor_createDevice(shapePtr(shape), C.size_t(len(shape)), toC(t), C.DimensionType(layout)))
}

func Destroy(t Tensor) {
	C.Tensor_destroy(cTensor(t))
}

func Clone(t Tensor) Tensor {
	return Tensor(C.Tensor_clone(cTensor(t)))
}

// Shape returns at most four extents; the C wrapper cannot report more.
func Shape(t Tensor) []int32 {
	s := C.Tensor_shape(cTensor(t))
	n := int(s.size)
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(s.shape[i])
	}
	return out
}

func Dimensions(t Tensor) int {
	return int(C.Tensor_dimensions(cTensor(t)))
}

func Width(t Tensor) int {
	return int(C.Tensor_width(cTensor(t)))
}

func Height(t Tensor) int {
	return int(C.Tensor_height(cTensor(t)))
}

func Channel(t Tensor) int {
	return int(C.Tensor_channel(cTensor(t)))
}

func Batch(t Tensor) int {
	return int(C.Tensor_batch(cTensor(t)))
}

// Size is the storage size in bytes.
func Size(t Tensor) int {
	return int(C.Tensor_usize(cTensor(t)))
}

func ElementSize(t Tensor) int {
	return int(C.Tensor_elementSize(cTensor(t)))
}

func GetDimensionType(t Tensor) DimensionType {
	return DimensionType(C.Tensor_getDimensionType(cTensor(t)))
}

func GetType(t Tensor) HalideType {
	return fromC(C.Tensor_getType(cTensor(t)))
}

func IsTypeOf(t Tensor, ht HalideType) bool {
	return bool(C.Tensor_isTypeOf(cTensor(t), toC(ht)))
}

func DeviceID(t Tensor) uint64 {
	return uint64(C.Tensor_deviceId(cTensor(t)))
}

// CopyFromHostTensor returns the MNN status: non-zero on success.
func CopyFromHostTensor(dst, src Tensor) int {
	return int(C.Tensor_copyFromHostTensor(cTensor(dst), cTensor(src)))
}

func CopyToHostTensor(src, dst Tensor) int {
	return int(C.Tensor_copyToHostTensor(cTensor(src), cTensor(dst)))
}

func HostMut(t Tensor) unsafe.Pointer {
	return C.Tensor_host_mut(cTensor(t))
}

func Wait(t Tensor, mapType MapType, finish bool) {
	f := 0
	if finish {
		f = 1
	}
	C.Tensor_wait(cTensor(t), C.MapType(mapType), C.int(f))
}

package main

import (
	"testing"

	"github.com/d4l3k/go-bfloat16"
	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	"github.com/justinsb/mnntensor/pkg/engine/fallback"
	"github.com/justinsb/mnntensor/pkg/tensor"
	"github.com/x448/float16"
)

func TestParseShape(t *testing.T) {
	shape, err := parseShape("1, 3,4")
	if err != nil {
		t.Fatalf("failed to parse shape: %v", err)
	}
	if diff := cmp.Diff(tensor.Shape{1, 3, 4}, shape); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}

	if _, err := parseShape("1,x"); err == nil {
		t.Errorf("expected error for non-numeric extent")
	}
	if _, err := parseShape("1,2,3,4,5"); err == nil {
		t.Errorf("expected error for rank 5")
	}
}

func TestRoundTrip(t *testing.T) {
	eng, err := fallback.New(fallback.Options{DeviceID: 1})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer eng.Close()

	shape := tensor.Shape{1, 3, 4, 4}
	if err := roundTrip[float32](logr.Discard(), eng, shape, 1.5); err != nil {
		t.Errorf("float32: %v", err)
	}
	if err := roundTrip[float16.Float16](logr.Discard(), eng, shape, 1.5); err != nil {
		t.Errorf("float16: %v", err)
	}
	if err := roundTrip[bfloat16.BF16](logr.Discard(), eng, shape, 1.5); err != nil {
		t.Errorf("bfloat16: %v", err)
	}
	if err := roundTrip[int32](logr.Discard(), eng, shape, 7); err != nil {
		t.Errorf("int32: %v", err)
	}

	if live := eng.Stats().Live; live != 0 {
		t.Errorf("expected all tensors released, %d still live", live)
	}
}

package engine

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestRegistry(t *testing.T) {
	Register("test-ok", func() (Engine, error) { return nil, nil })
	Register("test-broken", func() (Engine, error) { return nil, errors.New("no device") })

	names := Names()
	if !slices.Contains(names, "test-ok") || !slices.Contains(names, "test-broken") {
		t.Fatalf("registered engines missing from %v", names)
	}
	if !slices.IsSorted(names) {
		t.Errorf("expected sorted names, got %v", names)
	}

	if _, err := New("test-ok"); err != nil {
		t.Errorf("failed to open engine: %v", err)
	}

	_, err := New("test-broken")
	if err == nil || !strings.Contains(err.Error(), "no device") {
		t.Errorf("expected factory error to be wrapped, got %v", err)
	}

	_, err = New("test-missing")
	if err == nil || !strings.Contains(err.Error(), "test-ok") {
		t.Errorf("expected unknown engine error listing registered engines, got %v", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("test-dup", func() (Engine, error) { return nil, nil })
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	Register("test-dup", func() (Engine, error) { return nil, nil })
}

func TestDefaultUsesEnvironment(t *testing.T) {
	Register("test-default", func() (Engine, error) { return nil, errors.New("opened test-default") })

	t.Setenv("MNNTENSOR_ENGINE", " 'test-default' ")
	if got := EngineName(); got != "test-default" {
		t.Fatalf("expected engine name test-default, got %q", got)
	}
	if _, err := Default(); err == nil || !strings.Contains(err.Error(), "opened test-default") {
		t.Errorf("expected Default to open test-default, got %v", err)
	}

	t.Setenv("MNNTENSOR_ENGINE", "")
	if got := EngineName(); got != DefaultEngineName {
		t.Errorf("expected default engine name, got %q", got)
	}
}

func TestUint(t *testing.T) {
	read := Uint("MNNTENSOR_TEST_UINT", 5)

	t.Setenv("MNNTENSOR_TEST_UINT", "")
	if got := read(); got != 5 {
		t.Errorf("unset: expected 5, got %d", got)
	}
	t.Setenv("MNNTENSOR_TEST_UINT", "\"42\"")
	if got := read(); got != 42 {
		t.Errorf("quoted: expected 42, got %d", got)
	}
	t.Setenv("MNNTENSOR_TEST_UINT", "-3")
	if got := read(); got != 5 {
		t.Errorf("invalid: expected default 5, got %d", got)
	}
}

func TestStatus(t *testing.T) {
	if !StatusOK.OK() || StatusFailed.OK() || Status(-2).OK() {
		t.Errorf("unexpected Status.OK results")
	}
	if CaffeC4.String() != "NC4HW4" || NHWC != TensorFlow {
		t.Errorf("unexpected DimensionType naming")
	}
}

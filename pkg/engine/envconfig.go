package engine

import (
	"os"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

const DefaultEngineName = "fallback"

// clean returns the environment value of key with quotes and spaces trimmed.
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

// EngineName is the engine Default opens. Set via MNNTENSOR_ENGINE.
func EngineName() string {
	if s := clean("MNNTENSOR_ENGINE"); s != "" {
		return s
	}
	return DefaultEngineName
}

// Uint returns a function reading key as an unsigned integer, falling back to
// defaultValue when unset or malformed.
func Uint(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		s := clean(key)
		if s == "" {
			return defaultValue
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			klog.ErrorS(err, "invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			return defaultValue
		}
		return n
	}
}

var (
	// DeviceID is the device id the fallback engine reports. Set via MNNTENSOR_DEVICE_ID.
	DeviceID = Uint("MNNTENSOR_DEVICE_ID", 1)
	// MemoryLimit caps fallback engine allocations in bytes, 0 for no cap.
	// Set via MNNTENSOR_MEMORY_LIMIT.
	MemoryLimit = Uint("MNNTENSOR_MEMORY_LIMIT", 0)
)

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/d4l3k/go-bfloat16"
	"github.com/go-logr/logr"
	"github.com/justinsb/mnntensor/pkg/engine"
	_ "github.com/justinsb/mnntensor/pkg/engine/fallback"
	"github.com/justinsb/mnntensor/pkg/halide"
	"github.com/justinsb/mnntensor/pkg/tensor"
	"github.com/x448/float16"
	"k8s.io/klog/v2"
)

func main() {
	ctx := context.Background()
	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	engineName := engine.EngineName()
	flag.StringVar(&engineName, "engine", engineName, "engine to use (one of "+strings.Join(engine.Names(), ", ")+")")
	shapeFlag := "1,3,4,4"
	flag.StringVar(&shapeFlag, "shape", shapeFlag, "comma separated tensor shape")
	value := 1.5
	flag.Float64Var(&value, "value", value, "value to fill the tensor with")
	elementType := "float32"
	flag.StringVar(&elementType, "type", elementType, "element type: float32, float16, bfloat16 or int32")

	klog.InitFlags(nil)
	flag.Parse()

	log := klog.FromContext(ctx)

	shape, err := parseShape(shapeFlag)
	if err != nil {
		return err
	}

	eng, err := engine.New(engineName)
	if err != nil {
		return err
	}
	defer eng.Close()

	log.Info("Starting tensor-smoke", "engine", eng.Name(), "shape", shape, "type", elementType, "value", value)

	v := float32(value)
	switch elementType {
	case "float32":
		err = roundTrip[float32](log, eng, shape, v)
	case "float16":
		err = roundTrip[float16.Float16](log, eng, shape, v)
	case "bfloat16":
		err = roundTrip[bfloat16.BF16](log, eng, shape, v)
	case "int32":
		err = roundTrip[int32](log, eng, shape, v)
	default:
		return fmt.Errorf("unsupported element type %q", elementType)
	}
	if err != nil {
		return err
	}
	log.Info("Round trip succeeded")
	return nil
}

func parseShape(s string) (tensor.Shape, error) {
	var shape tensor.Shape
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid shape %q: %w", s, err)
		}
		shape = append(shape, int32(n))
	}
	if len(shape) > tensor.MaxRank {
		return nil, fmt.Errorf("shape %q has rank %d, at most %d is supported", s, len(shape), tensor.MaxRank)
	}
	return shape, nil
}

// roundTrip fills a device tensor, copies it back to the host and checks every element.
func roundTrip[H halide.Element](log logr.Logger, eng engine.Engine, shape tensor.Shape, value float32) error {
	want := halide.FromFloat32[H](value)

	d := tensor.NewDevice[H](eng, shape, engine.Caffe)
	defer d.Free()
	log.Info("Allocated device tensor", "tensor", d.String(), "deviceID", d.DeviceID(), "bytes", d.Size())

	tensor.Fill(d, want)
	tensor.Wait(d, engine.MapTensorRead, true)

	h, err := tensor.CreateHostTensorFromDevice(d, true)
	if err != nil {
		return fmt.Errorf("failed to copy tensor to host: %w", err)
	}
	defer h.Free()

	data, err := tensor.TryHostData(h)
	if err != nil {
		return fmt.Errorf("failed to read host tensor: %w", err)
	}
	for i, got := range data {
		if got != want {
			return fmt.Errorf("element %d is %v, expected %v", i, halide.ToFloat32(got), halide.ToFloat32(want))
		}
	}
	log.Info("Verified host tensor", "tensor", h.String(), "elements", len(data))
	return nil
}

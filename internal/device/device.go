package device

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Device is the compute target the speech model runs on.
type Device string

const (
	CPU  Device = "cpu"
	CUDA Device = "cuda"
)

// Prober answers whether a compute capability is usable on this host. It is
// an explicit query at the system boundary so callers can inject fakes.
type Prober interface {
	Name() string
	Available(ctx context.Context) bool
}

type Capability struct {
	Name      string
	Available bool
}

type cudaProber struct{}

func (cudaProber) Name() string { return string(CUDA) }

func (cudaProber) Available(ctx context.Context) bool {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return exec.CommandContext(probeCtx, "nvidia-smi", "-L").Run() == nil
}

func DefaultProber() Prober {
	return cudaProber{}
}

// Select picks the compute device for the requested selector. An explicit
// request wins; "auto" falls back to CPU when no GPU is detected. Requesting
// an unavailable device is a terminal error, not a silent fallback.
func Select(ctx context.Context, requested string, cuda Prober) (Device, error) {
	if cuda == nil {
		cuda = DefaultProber()
	}

	switch strings.TrimSpace(strings.ToLower(requested)) {
	case "", "auto":
		if cuda.Available(ctx) {
			return CUDA, nil
		}
		return CPU, nil
	case "cpu":
		return CPU, nil
	case "cuda", "gpu":
		if !cuda.Available(ctx) {
			return "", fmt.Errorf("device %q requested but no usable CUDA GPU detected", requested)
		}
		return CUDA, nil
	default:
		return "", fmt.Errorf("unknown device %q (supported: auto, cpu, cuda)", requested)
	}
}

// Capabilities reports every known compute target and its availability.
// The CPU is always usable.
func Capabilities(ctx context.Context, cuda Prober) []Capability {
	if cuda == nil {
		cuda = DefaultProber()
	}

	return []Capability{
		{Name: string(CPU), Available: true},
		{Name: cuda.Name(), Available: cuda.Available(ctx)},
	}
}

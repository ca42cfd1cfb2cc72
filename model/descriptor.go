package model

import "fmt"

// ProcessKind identifies the runtime hosting an evaluator process
type ProcessKind string

const (
	ProcessJVM    ProcessKind = "jvm"
	ProcessCLR    ProcessKind = "clr"
	ProcessPython ProcessKind = "python"
)

// Platform identifies the evaluator operating system
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformWindows Platform = "windows"
)

// Descriptor describes the capacity and location of an allocated evaluator.
// It is a value type: once attached to an evaluator it is only ever copied.
type Descriptor struct {
	Memory      int         `json:"memory" yaml:"memory"` // MB
	Cores       int         `json:"cores" yaml:"cores"`
	Host        string      `json:"host,omitempty" yaml:"host,omitempty"`
	Rack        string      `json:"rack,omitempty" yaml:"rack,omitempty"`
	RuntimeName string      `json:"runtimeName,omitempty" yaml:"runtimeName,omitempty"`
	Process     ProcessKind `json:"process" yaml:"process"`
	Platform    Platform    `json:"platform" yaml:"platform"`
}

// String returns a short human readable form used in logs
func (d Descriptor) String() string {
	return fmt.Sprintf("%s/%s %dMB x%d@%s", d.Process, d.Platform, d.Memory, d.Cores, d.Host)
}

// EvaluatorRequest asks the allocator for a number of evaluators
type EvaluatorRequest struct {
	Number      int         `json:"number"`
	Memory      int         `json:"memory,omitempty"`
	Cores       int         `json:"cores,omitempty"`
	Rack        string      `json:"rack,omitempty"`
	Process     ProcessKind `json:"process,omitempty"`
	RuntimeName string      `json:"runtimeName,omitempty"`
}

// Validate checks the request bounds
func (r *EvaluatorRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: evaluator request was nil", ErrInvalidArgument)
	}
	if r.Number <= 0 {
		return fmt.Errorf("%w: evaluator number must be > 0, but had: %d", ErrInvalidArgument, r.Number)
	}
	if r.Memory < 0 {
		return fmt.Errorf("%w: evaluator memory must be >= 0, but had: %d", ErrInvalidArgument, r.Memory)
	}
	if r.Cores < 0 {
		return fmt.Errorf("%w: evaluator cores must be >= 0, but had: %d", ErrInvalidArgument, r.Cores)
	}
	return nil
}

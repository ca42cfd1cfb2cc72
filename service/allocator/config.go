package allocator

import (
	"fmt"

	"github.com/viant/evalrt/model"
)

// Config represents allocator configuration
type Config struct {
	// IDPrefix prefixes generated evaluator identifiers
	IDPrefix string `json:"idPrefix,omitempty" yaml:"idPrefix,omitempty"`
	// MaxEvaluators caps the number of evaluators ever allocated; 0 means unlimited
	MaxEvaluators int               `json:"maxEvaluators,omitempty" yaml:"maxEvaluators,omitempty"`
	Memory        int               `json:"memory,omitempty" yaml:"memory,omitempty"`
	Cores         int               `json:"cores,omitempty" yaml:"cores,omitempty"`
	Process       model.ProcessKind `json:"process,omitempty" yaml:"process,omitempty"`
	Platform      model.Platform    `json:"platform,omitempty" yaml:"platform,omitempty"`
	RuntimeName   string            `json:"runtimeName,omitempty" yaml:"runtimeName,omitempty"`
	Host          string            `json:"host,omitempty" yaml:"host,omitempty"`
}

// DefaultConfig returns the default allocator configuration
func DefaultConfig() Config {
	return Config{
		IDPrefix:    "evaluator-",
		Memory:      512,
		Cores:       1,
		Process:     model.ProcessJVM,
		Platform:    model.PlatformLinux,
		RuntimeName: "local",
		Host:        "localhost",
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.MaxEvaluators < 0 {
		return fmt.Errorf("allocator.maxEvaluators must be >= 0")
	}
	if c.Memory <= 0 {
		return fmt.Errorf("allocator.memory must be > 0")
	}
	if c.Cores <= 0 {
		return fmt.Errorf("allocator.cores must be > 0")
	}
	switch c.Process {
	case model.ProcessJVM, model.ProcessCLR, model.ProcessPython:
	default:
		return fmt.Errorf("allocator.process unsupported: %q", c.Process)
	}
	switch c.Platform {
	case model.PlatformLinux, model.PlatformWindows:
	default:
		return fmt.Errorf("allocator.platform unsupported: %q", c.Platform)
	}
	return nil
}

package evalrt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/viant/afs"
	"github.com/viant/evalrt/service/allocator"
	"github.com/viant/evalrt/service/dao/registry"
	"github.com/viant/evalrt/service/journal"
	"github.com/viant/evalrt/service/messaging"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the runtime configuration. It
// can be populated from JSON or YAML. Zero sections inherit package defaults
// when loaded with LoadConfig.
type Config struct {
	Driver    DriverConfig     `json:"driver" yaml:"driver"`
	Allocator allocator.Config `json:"allocator" yaml:"allocator"`
	Telemetry TelemetryConfig  `json:"telemetry" yaml:"telemetry"`
	Log       LogConfig        `json:"log" yaml:"log"`
	Tracing   TracingConfig    `json:"tracing" yaml:"tracing"`
}

// DriverConfig selects the intent queue, registry and journal backends
type DriverConfig struct {
	QueueVendor    messaging.Vendor `json:"queueVendor" yaml:"queueVendor"`
	QueuePath      string           `json:"queuePath,omitempty" yaml:"queuePath,omitempty"`
	MaxRetries     int              `json:"maxRetries" yaml:"maxRetries"`
	RegistryVendor registry.Vendor  `json:"registryVendor" yaml:"registryVendor"`
	RegistryPath   string           `json:"registryPath,omitempty" yaml:"registryPath,omitempty"`
	JournalVendor  journal.Vendor   `json:"journalVendor" yaml:"journalVendor"`
	JournalPath    string           `json:"journalPath,omitempty" yaml:"journalPath,omitempty"`
	PollIntervalMs int              `json:"pollIntervalMs" yaml:"pollIntervalMs"`
}

// TelemetryConfig controls metric sinking
type TelemetryConfig struct {
	// Threshold is the number of metric changes that triggers sinks
	Threshold int  `json:"threshold" yaml:"threshold"`
	LogSink   bool `json:"logSink" yaml:"logSink"`
}

// LogConfig controls the default logger
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// TracingConfig controls OpenTelemetry tracing
type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	OutputFile  string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config backed entirely by in-memory components.
func DefaultConfig() *Config {
	return &Config{
		Driver: DriverConfig{
			QueueVendor:    messaging.VendorMemory,
			MaxRetries:     3,
			RegistryVendor: registry.VendorMemory,
			JournalVendor:  journal.VendorMemory,
			PollIntervalMs: 50,
		},
		Allocator: allocator.DefaultConfig(),
		Telemetry: TelemetryConfig{Threshold: 1, LogSink: true},
		Log:       LogConfig{Level: "info", Format: "text"},
		Tracing:   TracingConfig{ServiceName: "evalrt"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	switch c.Driver.QueueVendor {
	case messaging.VendorMemory:
	case messaging.VendorFS:
		if c.Driver.QueuePath == "" {
			errs = append(errs, fmt.Errorf("driver.queuePath is required for %v queue", c.Driver.QueueVendor))
		}
	default:
		errs = append(errs, fmt.Errorf("driver.queueVendor unsupported: %q", c.Driver.QueueVendor))
	}
	if c.Driver.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("driver.maxRetries must be >= 0"))
	}
	switch c.Driver.RegistryVendor {
	case registry.VendorMemory:
	case registry.VendorFS:
		if c.Driver.RegistryPath == "" {
			errs = append(errs, fmt.Errorf("driver.registryPath is required for %v registry", c.Driver.RegistryVendor))
		}
	default:
		errs = append(errs, fmt.Errorf("driver.registryVendor unsupported: %q", c.Driver.RegistryVendor))
	}
	switch c.Driver.JournalVendor {
	case journal.VendorMemory:
	case journal.VendorSQLite:
		if c.Driver.JournalPath == "" {
			errs = append(errs, fmt.Errorf("driver.journalPath is required for %v journal", c.Driver.JournalVendor))
		}
	default:
		errs = append(errs, fmt.Errorf("driver.journalVendor unsupported: %q", c.Driver.JournalVendor))
	}
	if c.Driver.PollIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("driver.pollIntervalMs must be > 0"))
	}
	if c.Telemetry.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("telemetry.threshold must be > 0"))
	}
	if err := c.Allocator.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML (or JSON) configuration from URL on top of
// DefaultConfig. ${env.KEY} expressions are replaced with environment values.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal([]byte(expandEnv(string(data))), ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}

// expandEnv replaces ${env.KEY} with the value of environment variable KEY
// (empty when unset). Expressions whose key is not made of letters, digits
// or '_' are kept literally.
func expandEnv(text string) string {
	const prefix = "${env."
	var out strings.Builder
	for {
		start := strings.Index(text, prefix)
		if start < 0 {
			break
		}
		rest := text[start+len(prefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			break
		}
		key := rest[:end]
		if !isEnvKey(key) {
			out.WriteString(text[:start+len(prefix)])
			text = rest
			continue
		}
		out.WriteString(text[:start])
		out.WriteString(os.Getenv(key))
		text = rest[end+1:]
	}
	out.WriteString(text)
	return out.String()
}

func isEnvKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

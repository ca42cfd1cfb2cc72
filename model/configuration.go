package model

import (
	"fmt"
	"strings"

	"github.com/viant/toolbox"
)

// Well-known configuration keys
const (
	ContextIdentifier = "context.identifier"
	TaskIdentifier    = "task.identifier"
	ServiceNames      = "service.names"
)

// Configuration is a flat key/value configuration supplied with a submission.
type Configuration map[string]interface{}

// NewContextConfiguration returns a configuration binding a context identifier
func NewContextConfiguration(id string) Configuration {
	return Configuration{ContextIdentifier: id}
}

// NewTaskConfiguration returns a configuration binding a task identifier
func NewTaskConfiguration(id string) Configuration {
	return Configuration{TaskIdentifier: id}
}

// NewServiceConfiguration returns a configuration binding service names
func NewServiceConfiguration(names ...string) Configuration {
	return Configuration{ServiceNames: names}
}

// Set binds a value and returns the configuration for chaining
func (c Configuration) Set(key string, value interface{}) Configuration {
	c[key] = value
	return c
}

// Identifier returns the non-blank identifier bound under key
func (c Configuration) Identifier(key string) (string, error) {
	value, ok := c[key]
	if !ok || value == nil {
		return "", fmt.Errorf("%w: %v was not bound", ErrInvalidArgument, key)
	}
	id := strings.TrimSpace(toolbox.AsString(value))
	if id == "" {
		return "", fmt.Errorf("%w: %v was blank", ErrInvalidArgument, key)
	}
	return id, nil
}

// Services returns the distinct service descriptors bound under ServiceNames.
// A comma separated string is accepted as well as a list.
func (c Configuration) Services() []*Service {
	var names []string
	switch actual := c[ServiceNames].(type) {
	case nil:
		return nil
	case []string:
		names = actual
	case []interface{}:
		for _, item := range actual {
			names = append(names, toolbox.AsString(item))
		}
	case string:
		names = strings.Split(actual, ",")
	default:
		names = []string{toolbox.AsString(actual)}
	}
	var result []*Service
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, &Service{Name: name})
	}
	return result
}

// Service describes an auxiliary service hosted by a context.
type Service struct {
	Name string `json:"name" yaml:"name"`
}

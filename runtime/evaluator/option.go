package evaluator

import (
	"log/slog"

	"github.com/viant/evalrt/model"
)

// Option configures an Evaluator
type Option func(e *Evaluator)

// WithResultProvider sets the provider passed through CreateContextAndTask intents
func WithResultProvider(provider model.ResultProvider) Option {
	return func(e *Evaluator) {
		e.result = provider
	}
}

// WithLogger sets the evaluator logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/viant/afs"
	"github.com/viant/evalrt"
	"github.com/viant/evalrt/service/status"
)

// Launcher starts an evaluator runtime configured from job submission parameters
type Launcher struct {
	decoder         *Decoder
	config          *evalrt.Config
	options         []evalrt.Option
	statusAddr      string
	shutdownTimeout time.Duration
	logger          *slog.Logger
	started         func(rt *evalrt.Runtime)
}

// Option configures the Launcher
type Option func(l *Launcher)

// WithConfig sets the base runtime configuration
func WithConfig(config *evalrt.Config) Option {
	return func(l *Launcher) {
		l.config = config
	}
}

// WithOptions appends runtime service options
func WithOptions(options ...evalrt.Option) Option {
	return func(l *Launcher) {
		l.options = append(l.options, options...)
	}
}

// WithStatusAddr serves the status API on addr while the runtime is up
func WithStatusAddr(addr string) Option {
	return func(l *Launcher) {
		l.statusAddr = addr
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFs sets the file system used to read parameters
func WithFs(fs afs.Service) Option {
	return func(l *Launcher) {
		l.decoder = NewDecoder(fs)
	}
}

// WithStarted registers a callback invoked once the runtime is running
func WithStarted(fn func(rt *evalrt.Runtime)) Option {
	return func(l *Launcher) {
		l.started = fn
	}
}

// Launch validates args, builds the runtime from the parameters file and runs
// it until ctx is done.
func (l *Launcher) Launch(ctx context.Context, args []string) error {
	if err := ValidateArgs(args); err != nil {
		l.logger.Error("bootstrap failed", "error", err)
		return err
	}
	l.logger.Info("entering bootstrap launcher", "parameters", args[0])
	params, err := l.decoder.Decode(ctx, args[0])
	if err != nil {
		l.logger.Error("bootstrap failed", "error", err)
		return err
	}

	config := *evalrt.DefaultConfig()
	if l.config != nil {
		config = *l.config
	}
	config.Allocator.RuntimeName = RuntimeName
	config.Allocator.Platform = params.Platform()
	options := append([]evalrt.Option{
		evalrt.WithConfig(&config),
		evalrt.WithLogger(l.logger),
		evalrt.WithRuntimeConfiguration(NewRuntimeConfig(params)),
	}, l.options...)
	srv, err := evalrt.New(options...)
	if err != nil {
		return fmt.Errorf("unable to configure runtime: %w", err)
	}
	rt := srv.Runtime()
	if err = rt.Start(ctx); err != nil {
		return fmt.Errorf("unable to start runtime: %w", err)
	}

	var server *http.Server
	serveErr := make(chan error, 1)
	if l.statusAddr != "" {
		server = &http.Server{
			Addr:    l.statusAddr,
			Handler: status.New(rt, status.WithLogger(l.logger), status.WithVersion(evalrt.Version)),
		}
		go func() {
			l.logger.Info("status api listening", "addr", l.statusAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()
	}
	if l.started != nil {
		l.started(rt)
	}

	select {
	case <-ctx.Done():
	case err = <-serveErr:
		l.logger.Error("status api failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer cancel()
	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	if server != nil {
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			errs = append(errs, shutdownErr)
		}
	}
	if shutdownErr := rt.Shutdown(shutdownCtx); shutdownErr != nil {
		errs = append(errs, shutdownErr)
	}
	l.logger.Info("exiting bootstrap launcher")
	return errors.Join(errs...)
}

// New creates a launcher
func New(opts ...Option) *Launcher {
	ret := &Launcher{
		logger:          slog.Default(),
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.decoder == nil {
		ret.decoder = NewDecoder(nil)
	}
	ret.logger = ret.logger.With("component", "bootstrap")
	return ret
}

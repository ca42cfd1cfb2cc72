package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/viant/evalrt"
	"github.com/viant/evalrt/internal/logging"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the evalrt CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "evalrt",
		Short: "evalrt: evaluator lifecycle runtime",
		Long:  "evalrt allocates evaluators, drains their context and task submissions and bootstraps batch drivers.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Runtime configuration URL (yaml)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newBootstrapCmd(),
		newHelloCmd(),
	)
	return root
}

// loadConfig returns the --config file or the default configuration
func loadConfig(ctx context.Context) (*evalrt.Config, error) {
	if flagConfig == "" {
		return evalrt.DefaultConfig(), nil
	}
	return evalrt.LoadConfig(ctx, flagConfig)
}

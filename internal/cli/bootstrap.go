package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/viant/evalrt/service/bootstrap"
)

func newBootstrapCmd() *cobra.Command {
	var statusAddr string
	cmd := &cobra.Command{
		Use:   "bootstrap <job-submission-params.json>",
		Short: "Run a batch driver configured from job submission parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			config, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			launcher := bootstrap.New(
				bootstrap.WithConfig(config),
				bootstrap.WithLogger(logger),
				bootstrap.WithStatusAddr(statusAddr))
			return launcher.Launch(ctx, args)
		},
	}
	cmd.Flags().StringVar(&statusAddr, "status-addr", "", "Serve the status API on this address, e.g. :8080")
	return cmd
}

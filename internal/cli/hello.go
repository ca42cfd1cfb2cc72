package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/evalrt"
	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/service/event"
	"github.com/viant/evalrt/telemetry"
)

func newHelloCmd() *cobra.Command {
	var count int
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "hello",
		Short: "Allocate evaluators, run a hello task on each and close them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			config, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			return runHello(ctx, cmd, config, count)
		},
	}
	cmd.Flags().IntVarP(&count, "evaluators", "n", 2, "Number of evaluators to allocate")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Maximum run time")
	return cmd
}

func runHello(ctx context.Context, cmd *cobra.Command, config *evalrt.Config, count int) error {
	hello := model.ResultFunc(func(ctx context.Context, task *model.Task) ([]byte, error) {
		return []byte("Hello, REEF! from " + task.ID), nil
	})
	srv, err := evalrt.New(evalrt.WithConfig(config), evalrt.WithLogger(logger), evalrt.WithResultProvider(hello))
	if err != nil {
		return err
	}
	rt := srv.Runtime()
	out := cmd.OutOrStdout()
	rt.Handle(event.TypeEvaluatorAllocated, func(ctx context.Context, anEvent *event.Event) error {
		return anEvent.Allocated.SubmitTask(ctx, model.NewTaskConfiguration("HelloTask-"+anEvent.Allocated.ID()))
	})
	rt.Handle(event.TypeTaskRunning, func(ctx context.Context, anEvent *event.Event) error {
		_, err := rt.CompleteTask(ctx, anEvent.Context.EvaluatorID, anEvent.Task.ID)
		return err
	})
	rt.Handle(event.TypeTaskCompleted, func(ctx context.Context, anEvent *event.Event) error {
		fmt.Fprintf(out, "%s: %s\n", anEvent.Context.EvaluatorID, anEvent.Result)
		return anEvent.Allocated.Close(ctx)
	})

	if err = rt.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if shutdownErr := rt.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("shutdown failed", "error", shutdownErr)
		}
	}()
	if _, err = rt.Allocate(ctx, &model.EvaluatorRequest{Number: count}); err != nil {
		return err
	}
	// every evaluator drains a submission and a close intent
	if err = awaitDrained(ctx, rt, 2*count); err != nil {
		return err
	}

	entries, err := rt.Journal(ctx, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-5s  %-22s  %-36s  %s\n", "SEQ", "KIND", "EVALUATOR", "ERROR")
	for _, entry := range entries {
		fmt.Fprintf(out, "%-5d  %-22s  %-36s  %s\n", entry.Seq, entry.Kind, entry.EvaluatorID, entry.Error)
	}
	return nil
}

func awaitDrained(ctx context.Context, rt *evalrt.Runtime, expect int) error {
	drained, _ := rt.Metrics().Get(telemetry.IntentsDrained)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for drained.Int() < expect {
		select {
		case <-ctx.Done():
			return fmt.Errorf("drained %d of %d intents: %w", drained.Int(), expect, ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}

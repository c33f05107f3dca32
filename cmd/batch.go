package main

import (
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchConcurrency int
	batchLimit       int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process all pending and errored companies",
	Long: "Drains the screening queue with a bounded worker pool. SIGINT/SIGTERM stops\n" +
		"dispatching new companies; workers already in flight run to completion so no\n" +
		"run is left half-persisted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initScreen(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}

		sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var stop atomic.Bool
		go func() {
			<-sigCtx.Done()
			if ctx.Err() == nil {
				stop.Store(true)
				zap.L().Warn("stop requested, finishing in-flight companies")
			}
		}()

		summary, err := env.Runner.ProcessPending(ctx, batchLimit, concurrency, &stop)
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "worker pool size (default from config)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "maximum companies to process (0 = all)")
}

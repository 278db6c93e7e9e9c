package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labcert/internal/async"
	"github.com/joseph-ayodele/labcert/internal/ingest"
	"github.com/joseph-ayodele/labcert/internal/pipeline"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var (
		dir         string
		initialScan bool
		debounce    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Evaluate extraction files as they appear in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				return fmt.Errorf("--dir is required")
			}
			if abs, err := filepath.Abs(dir); err == nil {
				dir = abs
			}
			ctx, cancel := root.context(cmd)
			defer cancel()
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := root.runtime(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			w := cmd.OutOrStdout()
			queue := async.NewProcessorQueue(rt.Processor, rt.Logger,
				async.WithWorkers(rt.Config.Worker.Workers),
				async.WithQueueSize(rt.Config.Worker.QueueSize),
				async.WithProcessTimeout(rt.Config.Worker.ProcessTimeout),
				async.WithResultFunc(func(job async.Job, out pipeline.Outcome, err error) {
					printResults(w, dir, []ingest.IngestionResult{{
						SourcePath:   job.Path,
						Product:      out.Report.Product,
						NonCompliant: out.Report.NonCompliant,
						Err:          errString(err),
					}})
				}),
			)

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       []string{dir},
				InitialScan: initialScan,
				Debounce:    debounce,
				Logger:      rt.Logger,
			})
			if err != nil {
				queue.Shutdown(ctx)
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", dir)

			for events != nil || errs != nil {
				select {
				case path, ok := <-events:
					if !ok {
						events = nil
						continue
					}
					job := async.Job{Path: path, Product: root.product, SubmittedAt: time.Now()}
					if err := queue.Enqueue(ctx, job); err != nil {
						rt.Logger.Warn("enqueue failed", "path", path, "error", err)
					}
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
				}
			}

			done, cancelDone := context.WithTimeout(context.Background(), rt.Config.Worker.ProcessTimeout+5*time.Second)
			defer cancelDone()
			queue.Shutdown(done)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory to watch recursively (required)")
	cmd.Flags().BoolVar(&initialScan, "initial-scan", true, "evaluate files already present")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "coalesce bursts of file events")
	return cmd
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
)

var (
	queueWorkersFlag int
	queueDrainFlag   bool
)

// deliver is the notification sink: messages end up in the structured log
// (and in Mongo when LOG_MONGO_URI is set).
func deliver(ctx context.Context, m queue.Message) error {
	logger.Component(ctx, "notifications").Info(m.Body, "kind", m.Kind, "id", m.ID, "enqueued_at", m.EnqueuedAt)
	return nil
}

// storefront queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if queueDrainFlag {
			n, err := app.Queue.Drain(ctx, deliver)
			if err != nil {
				return err
			}
			color.Green("Drained %d message(s).", n)
			return nil
		}

		workers := max(queueWorkersFlag, 1)
		color.Cyan("Queue worker started (%d workers). Press Ctrl+C to stop.", workers)
		app.Queue.Work(ctx, workers, deliver)
		fmt.Println()
		color.Yellow("Queue worker stopped.")
		return nil
	},
}

// storefront schedule:run
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run order reconciliation every RECONCILE_INTERVAL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		s := schedule.New()
		s.Every(app.Settings.ReconcileInterval).Name("orders:reconcile").WithoutOverlapping().Run(func(ctx context.Context) error {
			report, err := app.Reconciler.Run(ctx)
			if err != nil {
				return err
			}
			logger.Info("scheduled reconciliation finished",
				"scanned", report.Scanned, "repaired", report.Repaired,
				"skipped", report.Skipped, "failed", report.Failed)
			return nil
		})

		fmt.Println("Registered scheduled tasks:")
		for _, t := range s.List() {
			fmt.Println("  •", t)
		}
		color.Cyan("Scheduler started. Press Ctrl+C to stop.")
		s.Run(ctx)
		fmt.Println()
		color.Yellow("Scheduler stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 2, "Number of concurrent workers")
	queueWorkCmd.Flags().BoolVar(&queueDrainFlag, "drain", false, "Process what is queued now, then exit")
}

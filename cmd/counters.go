package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/employee-management/internal/core/events"
	"github.com/frahmantamala/employee-management/internal/counter"
	"github.com/frahmantamala/employee-management/internal/metrics"
)

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Maintain the derived headcount counters",
}

var reconcileWorkers int

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recount every company and department",
	Long:  `Recount department and employee totals for every company with a pool of workers, repairing any drift.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, lg := mustLoad()

		db, sqlDB, err := initDB(cfg.Database, lg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to init db: %v\n", err)
			os.Exit(1)
		}
		defer sqlDB.Close()

		workers := getIntFlag(reconcileWorkers, cfg.Counters.ReconcileWorkers)

		bus := events.NewEventBus(lg)
		registerEventHandlers(bus, lg)
		m := metrics.New()
		recounter := counter.NewRecounter(lg, m, bus)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		lg.Info("starting counter reconciliation", "workers", workers)
		report, err := counter.NewReconciler(db, recounter, m, lg, workers).Run(ctx)
		bus.Wait()
		if err != nil {
			lg.Error("reconciliation interrupted", "error", err)
		}
		if report == nil {
			os.Exit(1)
		}

		fmt.Printf("companies=%d departments=%d drifted=%d skipped=%d failed=%d\n",
			report.Companies, report.Departments, len(report.Drifted), len(report.Skipped), len(report.Failed))
		if err != nil || len(report.Failed) > 0 {
			os.Exit(1)
		}
	},
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	reconcileCmd.Flags().IntVar(&reconcileWorkers, "workers", 0, "Number of workers (overrides config)")

	countersCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(countersCmd)
}

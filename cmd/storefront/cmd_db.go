package main

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the records and failed-message tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Booting a gorm-backed kernel migrates both tables.
		app, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if app.DB == nil {
			return errors.New("migrate: RECORD_STORE is " + app.Settings.RecordStore + "; only gorm has tables")
		}
		color.Green("Migrated records and failed-message tables (%s).", app.Settings.DBDriver)
		return nil
	},
}

// storefront reconcile
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair stored order totals once",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		report, err := app.Reconciler.Run(cmd.Context())
		if err != nil {
			return err
		}

		color.Green("Repaired %d order record(s).", report.Repaired)
		color.White("Scanned %d, skipped %d.", report.Scanned, report.Skipped)
		if report.Failed > 0 {
			color.Red("%d order(s) could not be written; rerun to retry.", report.Failed)
		}
		return nil
	},
}

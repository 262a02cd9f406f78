package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront order ledger",
	Long:          "Storefront serves the catalogue, customer and order API and runs its background jobs.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)

	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(scheduleRunCmd)

	rootCmd.AddCommand(tokenIssueCmd)
}

// boot loads settings, lets adjust override them, and boots the kernel.
func boot(ctx context.Context, adjust ...func(*config.Settings)) (*kernel.App, error) {
	s, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	for _, fn := range adjust {
		fn(&s)
	}
	app, err := kernel.Boot(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}
	return app, nil
}

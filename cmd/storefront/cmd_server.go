package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/server"
)

// storefront serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		handler, err := app.Handler()
		if err != nil {
			return err
		}
		return server.Run(ctx, server.Config{
			HTTPAddr: ":" + app.Settings.AppPort,
			GRPCAddr: ":" + app.Settings.GRPCPort,
		}, handler, app.Store)
	},
}

// storefront route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The table does not depend on the backends; boot against memory.
		app, err := boot(cmd.Context(), func(s *config.Settings) {
			s.RecordStore = "memory"
			s.StorageDisk = "memory"
			s.QueueDriver = "memory"
			s.RedisAddr = ""
			s.LogMongoURI = ""
			if s.JWTSecret == "" {
				s.JWTSecret = "route-list"
			}
		})
		if err != nil {
			return err
		}
		defer app.Close()

		r, err := app.Router()
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, bold.Sprint("METHOD")+"\t"+bold.Sprint("PATH")+"\t"+bold.Sprint("NAME"))
		for _, ri := range r.Routes() {
			method := color.GreenString(ri.Method)
			if ri.Method != "GET" {
				method = color.YellowString(ri.Method)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

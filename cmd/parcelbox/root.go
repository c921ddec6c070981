package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/BearBump/ParcelBox/config"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var checkOnce bool

	rootCmd := &cobra.Command{
		Use:           "parcelbox",
		Short:         "Gmail parcel tracker with a terminal dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := configFlag
			if cfgPath == "" {
				cfgPath = os.Getenv("PARCELBOX_CONFIG")
			}
			if cfgPath == "" {
				cfgPath = "config.yaml"
			}
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if checkOnce {
				return RunCheckOnce(ctx, cfg, defaultFactories(), os.Stdout)
			}
			return RunDaemon(ctx, cfg, defaultFactories(), os.Stdout)
		},
	}

	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().BoolVar(&checkOnce, "check-once", false, "Run a single reconcile cycle, render the dashboard and exit")

	return rootCmd
}

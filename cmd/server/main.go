package main

import (
	"fmt"
	"os"

	"salarydash/internal/config"
	"salarydash/internal/logger"

	"github.com/spf13/cobra"
)

var cfg = config.Load()

var Cmd = &cobra.Command{
	Use:           "salarydash",
	Short:         "Salary dashboard backend for data-industry salary records",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger.Init(cfg.LoggerOptions())
		return nil
	},
	RunE: runServe,
}

func init() {
	pf := Cmd.PersistentFlags()
	pf.StringVar(&cfg.DatasetURL, "dataset-url", cfg.DatasetURL, "http(s) location of the salary CSV")
	pf.StringVar(&cfg.DatasetPath, "dataset-path", cfg.DatasetPath, "local salary CSV (overrides --dataset-url)")
	pf.DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "timeout for the dataset download")
	pf.IntVar(&cfg.Bins, "bins", cfg.Bins, "salary histogram bins")
	pf.IntVar(&cfg.TopRoles, "top-roles", cfg.TopRoles, "roles kept in the top-by-salary chart")
	pf.StringVar(&cfg.FocusRole, "focus-role", cfg.FocusRole, "role used for the per-country salary map")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace|debug|info|warn|error")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console|json")

	Cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")

	Cmd.AddCommand(serveCmd, reportCmd)
}

func main() {
	if err := Cmd.Execute(); err != nil {
		logger.Get().Error().Stack().Err(err).Msg("salarydash failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package main provides the docdiff binary entry point.
// docdiff compares documents produced by a reference system with the
// documents a candidate system produces for the same entities, and writes
// every difference to a report.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "docdiff"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every sub-command
type globalFlags struct {
	configPath  string
	logLevel    string
	metricsFile string
	workers     int
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Compare reference & candidate documents",
		Long: `docdiff compares documents produced by a reference system ("wcs") with
the documents a candidate system ("microservice") produces for the same
entities, and reports every structural difference.

It compares:
- XML files listed in a work-list (files)
- XML documents stored in a database (db)
- JSON or YAML files listed in a work-list (json)
- every file of two directories (dirs)

Run without a sub-command to pick a mode interactively.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := pickMode(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if mode == "" {
				return nil
			}
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			return a.runMode(cmd.Context(), mode)
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&g.metricsFile, "metrics-file", "", "Write batch metrics to this file in prometheus text format")
	cmd.PersistentFlags().IntVar(&g.workers, "workers", 0, "Pairs compared at once (overrides batch.workers)")

	cmd.AddCommand(
		filesCmd(g),
		dbCmd(g),
		jsonCmd(g),
		dirsCmd(g),
		configCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"n8nexplorer/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		follow      bool
		lines       int
		correlation string
		grep        string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the n8nexplorer log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogFile()
			if path == "" {
				return errors.New("file logging is disabled; set paths.log_dir")
			}

			// Console lines carry only the first 8 characters of the id.
			if len(correlation) > 8 {
				correlation = correlation[:8]
			}
			needles := []string{grep, correlation}

			var (
				found  []string
				offset int64
			)
			if lines <= 0 {
				found, offset, err = logs.Since(path, 0)
			} else {
				found, offset, err = logs.Last(path, lines)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			found = logs.Filter(found, needles...)
			for _, line := range found {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(found) == 0 {
					fmt.Fprintln(out, "No log entries available")
				}
				return nil
			}

			signalCtx, cancel := signal.NotifyContext(commandContextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return logs.Follow(signalCtx, path, offset, logs.DefaultPollInterval, func(line string) {
				if logs.Match(line, needles...) {
					fmt.Fprintln(out, line)
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	cmd.Flags().StringVar(&correlation, "correlation", "", "Only show entries for one refresh correlation id")
	cmd.Flags().StringVar(&grep, "grep", "", "Only show entries containing this text")
	return cmd
}

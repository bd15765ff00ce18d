package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"n8nexplorer/internal/api"
	"n8nexplorer/internal/colors"
	"n8nexplorer/internal/explorer"
	"n8nexplorer/internal/logging"
)

const minWatchInterval = 10 * time.Second

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var (
		output   string
		links    bool
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch workflows from n8n and print the folder tree",
		Long: "Fetch the workflow list, store it as the offline snapshot and print the tag folder tree.\n" +
			"When the instance cannot be reached the last snapshot is shown instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			if watch && interval < minWatchInterval {
				return fmt.Errorf("--interval must be at least %s", minWatchInterval)
			}
			return ctx.withServices(func(svc *services) error {
				runCtx := commandContextOf(cmd)
				if !watch {
					return syncOnce(runCtx, cmd, svc, format, links)
				}
				signalCtx, cancel := signal.NotifyContext(runCtx, syscall.SIGINT, syscall.SIGTERM)
				defer cancel()
				return watchSync(signalCtx, cmd, svc, format, links, interval)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&links, "links", false, "Show editor links next to workflows")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep syncing on an interval until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "Time between syncs with --watch")
	return cmd
}

func syncOnce(ctx context.Context, cmd *cobra.Command, svc *services, format string, links bool) error {
	outcome, err := svc.controller.Refresh(ctx)
	if err != nil {
		return refreshError(err)
	}
	if err := printOutcome(ctx, cmd, svc, outcome, format, links); err != nil {
		return err
	}
	if outcome.State == explorer.StateEmpty {
		return describeFetchError("sync failed", outcome.Err)
	}
	return nil
}

func watchSync(ctx context.Context, cmd *cobra.Command, svc *services, format string, links bool, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		outcome, err := svc.controller.Refresh(ctx)
		if ctx.Err() != nil {
			// Interrupted mid-fetch; the partial outcome is not a sync failure.
			return nil
		}
		switch {
		case errors.Is(err, explorer.ErrNotConfigured):
			return refreshError(err)
		case err != nil:
			logging.WarnWithContext(svc.logger, "watch refresh skipped", "watch_refresh_skipped",
				logging.Error(err),
				logging.String(logging.FieldImpact, "the tree is refreshed on the next tick"))
		default:
			svc.monitor.Observe(ctx, outcome)
			if err := printOutcome(ctx, cmd, svc, outcome, format, links); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func refreshError(err error) error {
	if errors.Is(err, explorer.ErrNotConfigured) {
		return fmt.Errorf("%w; run `n8nexplorer login` or set N8N_API_URL and N8N_API_KEY", err)
	}
	return err
}

func printOutcome(ctx context.Context, cmd *cobra.Command, svc *services, outcome explorer.Outcome, format string, links bool) error {
	resp := treeResponse(ctx, svc, outcome)
	if format != outputText {
		return writeStructured(cmd, format, resp)
	}
	out := cmd.OutOrStdout()
	_, err := fmt.Fprint(out, renderTree(resp, treeOptions{links: links, colorize: shouldColorize(out)}))
	return err
}

func treeResponse(ctx context.Context, svc *services, outcome explorer.Outcome) api.TreeResponse {
	assignments := svc.colors.All(ctx)
	lookup := func(path string) colors.Color {
		if color, ok := assignments[path]; ok && color.Valid() {
			return color
		}
		return colors.Default
	}
	return api.FromOutcome(outcome, lookup, svc.settings.Credentials(ctx).BaseURL)
}

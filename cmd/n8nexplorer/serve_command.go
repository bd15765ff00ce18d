package main

import (
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"n8nexplorer/internal/api"
	"n8nexplorer/internal/explorer"
	"n8nexplorer/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var (
		bind           string
		schedule       string
		refreshOnStart bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the folder tree over a local HTTP API",
		Long: "Serve the folder tree, folder colors and preferences as JSON for a UI renderer.\n" +
			"With a refresh schedule the workflow list is synced on a cron spec while serving.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				signalCtx, cancel := signal.NotifyContext(commandContextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				address := strings.TrimSpace(bind)
				if address == "" {
					address = svc.cfg.Serve.Bind
				}
				spec := strings.TrimSpace(schedule)
				if spec == "" {
					spec = svc.cfg.Serve.RefreshSchedule
				}

				var scheduler *api.Scheduler
				if spec != "" {
					var err error
					scheduler, err = api.NewScheduler(svc.controller, spec, svc.logger, api.WithObserver(svc.monitor))
					if err != nil {
						return err
					}
				}

				if refreshOnStart {
					outcome, err := svc.controller.Refresh(signalCtx)
					switch {
					case errors.Is(err, explorer.ErrNotConfigured):
						logging.WarnWithContext(svc.logger, "initial refresh skipped", "initial_refresh_skipped",
							logging.Error(err),
							logging.String(logging.FieldErrorHint, "run n8nexplorer login"),
							logging.String(logging.FieldImpact, "the tree is served from the last snapshot"))
					case err != nil:
						return err
					case signalCtx.Err() != nil:
						return nil
					default:
						svc.monitor.Observe(signalCtx, outcome)
					}
				}

				server := api.NewServer(svc.controller, svc.colors, svc.settings, svc.logger, api.WithToken(svc.cfg.Serve.Token))
				if err := server.Start(signalCtx, address); err != nil {
					return err
				}
				defer server.Stop()

				if scheduler != nil {
					if err := scheduler.Start(signalCtx); err != nil {
						return err
					}
					defer scheduler.Stop()
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", server.Addr())
				<-signalCtx.Done()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from serve.bind)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron spec for scheduled refreshes (default from serve.refresh_schedule)")
	cmd.Flags().BoolVar(&refreshOnStart, "refresh", false, "Sync once before serving")
	return cmd
}

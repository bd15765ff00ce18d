package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"n8nexplorer/internal/config"
	"n8nexplorer/internal/hierarchy"
	"n8nexplorer/internal/notifications"
	"n8nexplorer/internal/settings"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show credentials, store and snapshot status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				runCtx := commandContextOf(cmd)
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				var lines []string
				lines = append(lines, renderSectionHeader("n8n", colorize)...)
				creds := svc.settings.Credentials(runCtx)
				if creds.Configured() {
					lines = append(lines,
						renderStatusLine("Instance", statusOK, creds.BaseURL, colorize),
						renderStatusLine("API key", statusInfo, fmt.Sprintf("%s (from %s)", creds.MaskedKey(), credentialSourceLabel(creds.Source)), colorize))
				} else {
					lines = append(lines, renderStatusLine("Instance", statusWarn, "not configured; run `n8nexplorer login`", colorize))
				}

				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("State", colorize)...)
				lines = append(lines, renderStatusLine("Store", statusInfo, storeDescription(svc.cfg), colorize))
				if snap, ok := svc.snapshots.Load(runCtx); ok {
					result := hierarchy.Organize(snap.Workflows)
					lines = append(lines, renderStatusLine("Last sync", statusOK,
						fmt.Sprintf("%s (%s ago)", snap.SyncedAt.Local().Format(time.DateTime), time.Since(snap.SyncedAt).Round(time.Second)), colorize))
					lines = append(lines, renderStatusLine("Snapshot", statusInfo,
						fmt.Sprintf("%d workflows, %d folders, %d untagged, %d archived",
							len(snap.Workflows), result.FolderCount(), len(result.Untagged), len(result.Archived)), colorize))
				} else {
					lines = append(lines, renderStatusLine("Last sync", statusWarn, "never; run `n8nexplorer sync`", colorize))
				}
				lines = append(lines,
					renderStatusLine("Folder colors", statusInfo, fmt.Sprintf("%d assigned", len(svc.colors.All(runCtx))), colorize),
					renderStatusLine("Dark mode", statusInfo, yesNo(svc.settings.DarkMode(runCtx)), colorize))

				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Serve", colorize)...)
				schedule := svc.cfg.Serve.RefreshSchedule
				if schedule == "" {
					schedule = "off"
				}
				lines = append(lines,
					renderStatusLine("Bind", statusInfo, svc.cfg.Serve.Bind, colorize),
					renderStatusLine("Refresh schedule", statusInfo, schedule, colorize),
					renderStatusLine("API token", statusInfo, yesNo(svc.cfg.Serve.Token != ""), colorize),
					renderStatusLine("Notifications", statusInfo, yesNo(notifications.Enabled(svc.cfg)), colorize))

				_, err := fmt.Fprintln(out, strings.Join(lines, "\n"))
				return err
			})
		},
	}
}

func credentialSourceLabel(source string) string {
	switch source {
	case settings.SourceStore:
		return "saved login"
	case settings.SourceConfig:
		return "config/environment"
	default:
		return source
	}
}

func storeDescription(cfg *config.Config) string {
	if cfg.Store.Backend == config.StoreBackendMemory {
		return "memory (not persisted)"
	}
	return fmt.Sprintf("%s at %s", cfg.Store.Backend, cfg.Store.Path)
}

package main

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"n8nexplorer/internal/explorer"
	"n8nexplorer/internal/n8n"
)

// launcher opens a URL in the desktop browser. Tests replace it.
var launcher = func(ctx context.Context, url string) error {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	return exec.CommandContext(ctx, name, url).Start()
}

func newOpenCommand(ctx *commandContext) *cobra.Command {
	var launch bool

	cmd := &cobra.Command{
		Use:   "open <workflow-id>",
		Short: "Print (or open) the editor link of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return fmt.Errorf("workflow id is required")
			}
			return ctx.withServices(func(svc *services) error {
				runCtx := commandContextOf(cmd)
				creds := svc.settings.Credentials(runCtx)
				if creds.BaseURL == "" {
					return refreshError(explorer.ErrNotConfigured)
				}
				link := n8n.WorkflowURL(creds.BaseURL, id)
				out := cmd.OutOrStdout()
				if snap, ok := svc.snapshots.Load(runCtx); ok {
					for _, wf := range snap.Workflows {
						if wf.ID == id {
							fmt.Fprintf(out, "%s\n", wf.Name)
							break
						}
					}
				}
				fmt.Fprintln(out, link)
				if launch {
					if err := launcher(runCtx, link); err != nil {
						return fmt.Errorf("open browser: %w", err)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&launch, "launch", false, "Open the link in the default browser")
	return cmd
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"n8nexplorer/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, the state store and the n8n connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				runCtx := commandContextOf(cmd)
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				results := preflight.RunAll(runCtx, svc.cfg, svc.settings.Credentials(runCtx), svc.client)
				for _, line := range renderSectionHeader("Doctor", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, result := range results {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}
				if preflight.Failed(results) {
					return errors.New("one or more checks failed")
				}
				fmt.Fprintln(out, "All checks passed")
				return nil
			})
		},
	}
}

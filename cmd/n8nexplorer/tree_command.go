package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTreeCommand(ctx *commandContext) *cobra.Command {
	var (
		output string
		links  bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the folder tree from the last sync without contacting n8n",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			return ctx.withServices(func(svc *services) error {
				runCtx := commandContextOf(cmd)
				outcome, ok := svc.controller.Cached(runCtx)
				if !ok {
					return fmt.Errorf("no workflows have been synced yet; run `n8nexplorer sync`")
				}
				return printOutcome(runCtx, cmd, svc, outcome, format, links)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&links, "links", false, "Show editor links next to workflows")
	return cmd
}

package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"n8nexplorer/internal/colors"
)

func newColorsCommand(ctx *commandContext) *cobra.Command {
	colorsCmd := &cobra.Command{
		Use:   "colors",
		Short: "Manage folder colors",
	}

	colorsCmd.AddCommand(newColorsGetCommand(ctx))
	colorsCmd.AddCommand(newColorsSetCommand(ctx))
	colorsCmd.AddCommand(newColorsResetCommand(ctx))
	colorsCmd.AddCommand(newColorsListCommand(ctx))
	return colorsCmd
}

func newColorsGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <folder-path>",
		Short: "Show the color of a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				color := svc.colors.Get(commandContextOf(cmd), args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", args[0], color, color.Hex())
				return nil
			})
		},
	}
}

func newColorsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <folder-path> <color>",
		Short: "Assign a color to a folder",
		Long:  "Assign a color to a folder path such as Sales/EU. Colors are kept across syncs.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			color, err := colors.Parse(args[1])
			if err != nil {
				return err
			}
			return ctx.withServices(func(svc *services) error {
				if err := svc.colors.Set(commandContextOf(cmd), args[0], color); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], color.Label())
				return nil
			})
		},
	}
}

func newColorsResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <folder-path>",
		Short: "Restore the default color of a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				if err := svc.colors.Reset(commandContextOf(cmd), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s reset to %s\n", args[0], colors.Default.Label())
				return nil
			})
		},
	}
}

func newColorsListCommand(ctx *commandContext) *cobra.Command {
	var palette bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List folder color assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if palette {
				rows := make([][]string, 0, len(colors.All()))
				for _, c := range colors.All() {
					rows = append(rows, []string{c.String(), c.Label(), c.Hex()})
				}
				fmt.Fprintln(out, renderTable([]string{"Token", "Label", "Hex"}, rows, nil))
				return nil
			}
			return ctx.withServices(func(svc *services) error {
				assignments := svc.colors.All(commandContextOf(cmd))
				if len(assignments) == 0 {
					fmt.Fprintln(out, "No folder colors assigned")
					return nil
				}
				paths := make([]string, 0, len(assignments))
				for path := range assignments {
					paths = append(paths, path)
				}
				slices.Sort(paths)
				rows := make([][]string, 0, len(paths))
				for _, path := range paths {
					c := assignments[path]
					rows = append(rows, []string{path, c.Label(), c.Hex()})
				}
				fmt.Fprintln(out, renderTable([]string{"Folder", "Color", "Hex"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&palette, "palette", false, "List the available colors instead")
	return cmd
}

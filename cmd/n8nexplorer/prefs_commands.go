package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPrefsCommand(ctx *commandContext) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Display preferences shared with the web UI",
	}
	prefsCmd.AddCommand(newDarkModeCommand(ctx))
	return prefsCmd
}

func newDarkModeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "dark-mode [on|off|toggle]",
		Short:     "Show or change the dark mode preference",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				runCtx := commandContextOf(cmd)
				var (
					enabled bool
					err     error
				)
				action := ""
				if len(args) == 1 {
					action = strings.ToLower(strings.TrimSpace(args[0]))
				}
				switch action {
				case "":
					enabled = svc.settings.DarkMode(runCtx)
				case "on", "off":
					enabled = action == "on"
					err = svc.settings.SetDarkMode(runCtx, enabled)
				case "toggle":
					enabled, err = svc.settings.ToggleDarkMode(runCtx)
				default:
					return fmt.Errorf("unknown dark mode action %q (use on, off or toggle)", args[0])
				}
				if err != nil {
					return err
				}
				state := "off"
				if enabled {
					state = "on"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dark mode: %s\n", state)
				return nil
			})
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"n8nexplorer/internal/settings"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var (
		baseURL string
		apiKey  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Test and save n8n credentials",
		Long: "Test the connection to an n8n instance and save the URL and API key.\n" +
			"Nothing is saved when the connection test fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(baseURL) == "" || strings.TrimSpace(apiKey) == "" {
				return settings.ErrMissingCredentials
			}
			return ctx.withServices(func(svc *services) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Testing connection...")
				creds, err := svc.settings.SaveCredentials(commandContextOf(cmd), baseURL, apiKey)
				switch {
				case errors.Is(err, settings.ErrMissingCredentials), errors.Is(err, settings.ErrInvalidURL):
					return err
				case err != nil:
					return describeFetchError("connection failed", err)
				}
				fmt.Fprintf(out, "Connected to %s; credentials saved (key %s)\n", creds.BaseURL, creds.MaskedKey())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "Base URL of the n8n instance, e.g. https://n8n.example.com")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "n8n API key")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove saved n8n credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				runCtx := commandContextOf(cmd)
				if err := svc.settings.ClearCredentials(runCtx); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Saved credentials removed")
				if creds := svc.settings.Credentials(runCtx); creds.Configured() {
					fmt.Fprintf(out, "Credentials from the config file or environment still point at %s\n", creds.BaseURL)
				}
				return nil
			})
		},
	}
}

package cmd

import (
	"fmt"

	"github.com/BDNK1/sflowg-marketplace/plugins/marketplace"
	"github.com/spf13/cobra"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Inspect and test stored credentials",
}

var credentialsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Call the health endpoint with the stored " + marketplace.CredentialTypeName + " credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		raw, err := s.cfg.Credentials.Credential(ctx, marketplace.CredentialTypeName)
		if err != nil {
			return err
		}
		if raw == nil {
			return fmt.Errorf("no %s credentials configured", marketplace.CredentialTypeName)
		}

		payload, err := s.plugin.TestCredentials(ctx, raw)
		if err != nil {
			return fmt.Errorf("credential test failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Credentials OK")
		return printJSON(cmd.OutOrStdout(), payload)
	},
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured credential types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		for _, name := range s.cfg.Credentials.Types() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsTestCmd)
	credentialsCmd.AddCommand(credentialsListCmd)
}

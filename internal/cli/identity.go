package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage the locally stored player identity",
	}

	cmd.AddCommand(newIdentityShowCmd())
	cmd.AddCommand(newIdentitySetCmd())

	return cmd
}

func newIdentityShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := cfg.LoadIdentity()
			if err != nil {
				return err
			}
			if stored == nil {
				return fmt.Errorf("no identity stored in %s; run 'chinquiz identity set --name <name>'", cfg.IdentityFile)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(*stored)
			return nil
		},
	}
}

func newIdentitySetCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the display name, keeping the existing user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			stored, err := cfg.LoadIdentity()
			if err != nil {
				return err
			}
			identity := StoredIdentity{UserID: uuid.NewString(), DisplayName: name}
			if stored != nil {
				identity.UserID = stored.UserID
			}

			if err := cfg.SaveIdentity(identity); err != nil {
				return fmt.Errorf("failed to save identity: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type profileClient struct {
	deps *deps
}

func newProfileCmd(d *deps) *cobra.Command {
	p := &profileClient{deps: d}
	cmd := &cobra.Command{Use: "profile", Short: "Manage your profile"}
	cmd.AddCommand(&cobra.Command{Use: "show", Short: "Show profile", RunE: p.show})
	cmd.AddCommand(&cobra.Command{Use: "set-name", Short: "Change display name", Args: cobra.ExactArgs(1), RunE: p.setName})
	cmd.AddCommand(&cobra.Command{Use: "set-password", Short: "Change password", RunE: p.setPassword})
	return cmd
}

func (p *profileClient) show(cmd *cobra.Command, args []string) error {
	user, err := p.deps.client().UserDetails(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch user data: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Display name:", user.DisplayName)
	fmt.Fprintln(cmd.OutOrStdout(), "Email:       ", user.Email)
	return nil
}

func (p *profileClient) setName(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("display name is required")
	}
	answer := p.deps.promptLine(cmd, "Are you sure you want to change your display name? [y/N] ")
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}
	if err := p.deps.client().UpdateDisplayName(cmd.Context(), name); err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Display name updated.")
	return nil
}

func (p *profileClient) setPassword(cmd *cobra.Command, args []string) error {
	oldPassword, err := p.deps.promptPassword(cmd, "Old password: ")
	if err != nil {
		return err
	}
	newPassword, err := p.deps.promptPassword(cmd, "New password: ")
	if err != nil {
		return err
	}
	confirm, err := p.deps.promptPassword(cmd, "Confirm new password: ")
	if err != nil {
		return err
	}
	if string(newPassword) != string(confirm) {
		return fmt.Errorf("new passwords do not match")
	}
	if !passwordAcceptable(string(newPassword)) {
		return fmt.Errorf("password must be at least 8 characters long, include a number and an uppercase letter")
	}
	if err := p.deps.client().UpdatePassword(cmd.Context(), string(oldPassword), string(newPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Password updated.")
	return nil
}

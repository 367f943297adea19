package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cryptopay/internal/client/api"
	"cryptopay/internal/client/session"
)

type authClient struct {
	deps *deps
}

func newAuthCmd(d *deps) *cobra.Command {
	a := &authClient{deps: d}
	cmd := &cobra.Command{Use: "auth", Short: "Authentication commands"}
	cmd.AddCommand(&cobra.Command{Use: "register", Short: "Register a new account and log in", RunE: a.register})
	cmd.AddCommand(&cobra.Command{Use: "login", Short: "Log in and store the session", RunE: a.login})
	cmd.AddCommand(&cobra.Command{Use: "logout", Short: "Invalidate the session", RunE: a.logout})
	cmd.AddCommand(&cobra.Command{Use: "whoami", Short: "Show the logged-in user", RunE: a.whoami})
	return cmd
}

func (a *authClient) register(cmd *cobra.Command, args []string) error {
	email := a.deps.promptLine(cmd, "Email: ")
	displayName := a.deps.promptLine(cmd, "Display name: ")
	password, err := a.deps.promptPassword(cmd, "Password: ")
	if err != nil {
		return err
	}
	if !passwordAcceptable(string(password)) {
		return fmt.Errorf("password must be at least 8 characters long, include a number and an uppercase letter")
	}
	confirm, err := a.deps.promptPassword(cmd, "Confirm password: ")
	if err != nil {
		return err
	}
	if string(password) != string(confirm) {
		return fmt.Errorf("passwords do not match")
	}

	ctx := cmd.Context()
	if err := a.deps.client().Register(ctx, email, string(password), displayName); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	if err := a.storeSession(cmd, email, string(password)); err != nil {
		return fmt.Errorf("registered, but login failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Registered and logged in")
	return nil
}

func (a *authClient) login(cmd *cobra.Command, args []string) error {
	email := a.deps.promptLine(cmd, "Email: ")
	password, err := a.deps.promptPassword(cmd, "Password: ")
	if err != nil {
		return err
	}
	if err := a.storeSession(cmd, email, string(password)); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
	return nil
}

// storeSession logs in, then resolves the user id so later list calls do not
// need an extra round trip. Tokens are persisted as one unit.
func (a *authClient) storeSession(cmd *cobra.Command, email, password string) error {
	ctx := cmd.Context()
	tokens, err := a.deps.client().Login(ctx, email, password)
	if err != nil {
		return err
	}
	sess := session.Session{AccessToken: tokens.JWTToken, RefreshToken: tokens.RefreshToken}
	if err := a.deps.session().Set(sess); err != nil {
		return err
	}
	user, err := a.deps.client().UserDetails(ctx)
	if err != nil {
		return err
	}
	sess.UserID = user.ID
	return a.deps.session().Set(sess)
}

// logout drops the local session no matter what the gateway says: an
// unreachable or failing server must not leave tokens on disk.
func (a *authClient) logout(cmd *cobra.Command, args []string) error {
	err := a.deps.client().Logout(cmd.Context())
	if clearErr := a.deps.session().Clear(); clearErr != nil {
		return clearErr
	}
	if err != nil && !errors.Is(err, api.ErrAuthentication) {
		fmt.Fprintln(cmd.OutOrStdout(), "Warning: gateway logout failed:", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func (a *authClient) whoami(cmd *cobra.Command, args []string) error {
	user, err := a.deps.client().UserDetails(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %s)\n", user.DisplayName, user.Email, user.ID)
	return nil
}

// passwordAcceptable mirrors the registration policy: at least 8 characters
// with a digit and an uppercase letter.
func passwordAcceptable(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasDigit, hasUpper bool
	for _, r := range password {
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasDigit && hasUpper
}

func (d *deps) promptLine(cmd *cobra.Command, prompt string) string {
	line, _ := d.promptLineErr(cmd, prompt)
	return line
}

func (d *deps) promptLineErr(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := d.reader(cmd).ReadString('\n')
	line = strings.TrimSpace(line)
	if line != "" {
		return line, nil
	}
	return "", err
}

func (d *deps) promptPassword(cmd *cobra.Command, prompt string) ([]byte, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pass, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		return pass, err
	}
	// Non-terminal input (tests, pipes) falls back to a plain line read.
	line, _ := d.reader(cmd).ReadString('\n')
	return []byte(strings.TrimSpace(line)), nil
}

package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basekit-io/basekit/internal/common"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and cache the session in the OS keyring",
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	// Reset flags for reuse in tests.
	defer func() { loginEmail, loginPassword = "", "" }()

	cfg := loadConfig()
	_, mgr := newSession(cfg)

	if loginEmail == "" {
		v, err := GetSimpleText(bufio.NewReader(cmd.InOrStdin()), "Email", cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("error reading email: %w", err)
		}
		loginEmail = v
	}
	if loginPassword == "" {
		pw, err := GetPassword(cmd.OutOrStdout(), "Password: ")
		if err != nil {
			return fmt.Errorf("error reading password: %w", err)
		}
		defer common.WipeByteArray(pw)
		loginPassword = string(pw)
	}

	sess, err := mgr.SignIn(cmd.Context(), loginEmail, loginPassword)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Logged in as %s (%s)\n", sess.Email, sess.Role)
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basekit-io/basekit/internal/common"
)

var resetAccountType string

var resetRequestCmd = &cobra.Command{
	Use:   "reset-request <email>",
	Short: "Request a password-reset email",
	Long:  "Request a password-reset email. The server answers the same way whether or not the address is registered.",
	Args:  cobra.ExactArgs(1),
	RunE:  runResetRequest,
}

var resetPassword string

var resetConfirmCmd = &cobra.Command{
	Use:   "reset-confirm <token>",
	Short: "Redeem a password-reset token and set a new password",
	Args:  cobra.ExactArgs(1),
	RunE:  runResetConfirm,
}

func init() {
	resetRequestCmd.Flags().StringVar(&resetAccountType, "type", common.AccountTypeUser, "account type")
	resetConfirmCmd.Flags().StringVar(&resetPassword, "password", "", "new password (prompted when omitted)")
	rootCmd.AddCommand(resetRequestCmd)
	rootCmd.AddCommand(resetConfirmCmd)
}

func runResetRequest(cmd *cobra.Command, args []string) error {
	// Reset flags for reuse in tests.
	defer func() { resetAccountType = common.AccountTypeUser }()

	cfg := loadConfig()
	client := clientFactory(cfg)

	if err := client.RequestReset(cmd.Context(), args[0], resetAccountType); err != nil {
		return fmt.Errorf("reset request failed: %w", err)
	}

	cmd.Println("If the address is registered, a reset link is on its way.")
	return nil
}

func runResetConfirm(cmd *cobra.Command, args []string) error {
	// Reset flags for reuse in tests.
	defer func() { resetPassword = "" }()

	cfg := loadConfig()
	client := clientFactory(cfg)

	if resetPassword == "" {
		pw, err := GetPassword(cmd.OutOrStdout(), "New password: ")
		if err != nil {
			return fmt.Errorf("error reading password: %w", err)
		}
		defer common.WipeByteArray(pw)
		resetPassword = string(pw)
	}

	if err := client.ConfirmReset(cmd.Context(), args[0], resetPassword); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	cmd.Println("Password updated. You can log in now.")
	return nil
}

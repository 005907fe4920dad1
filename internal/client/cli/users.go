package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/basekit-io/basekit/internal/client/api"
)

var (
	usersPage    int
	usersPerPage int
	usersQuery   string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Administer user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts (admin)",
	RunE:  runUsersList,
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one account",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersGet,
}

var usersDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate an account (admin)",
	Long:  "Deactivate an account. Any live session for it is revoked through the change feed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDeactivate,
}

func init() {
	usersListCmd.Flags().IntVar(&usersPage, "page", 1, "page number")
	usersListCmd.Flags().IntVar(&usersPerPage, "per-page", 20, "items per page")
	usersListCmd.Flags().StringVar(&usersQuery, "query", "", "match against email and name")
	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersDeactivateCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	// Reset flags for reuse in tests.
	defer func() { usersPage, usersPerPage, usersQuery = 1, 20, "" }()

	cfg := loadConfig()
	client, mgr := newSession(cfg)
	if _, err := requireSession(cmd.Context(), mgr); err != nil {
		return err
	}

	page, err := client.ListUsers(cmd.Context(), usersPage, usersPerPage, usersQuery)
	if err != nil {
		return fmt.Errorf("error listing users: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tACTIVE")
	for _, u := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Email, u.Name, u.Role, u.IsActive)
	}
	tw.Flush()
	cmd.Printf("page %d, %d users total\n", page.Page, page.Total)
	return nil
}

func runUsersGet(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	client, mgr := newSession(cfg)
	if _, err := requireSession(cmd.Context(), mgr); err != nil {
		return err
	}

	user, err := client.User(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("error fetching user: %w", err)
	}

	printUser(cmd.OutOrStdout(), user)
	return nil
}

func runUsersDeactivate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	client, mgr := newSession(cfg)
	if _, err := requireSession(cmd.Context(), mgr); err != nil {
		return err
	}

	inactive := false
	user, err := client.UpdateUser(cmd.Context(), args[0], api.UserPatch{IsActive: &inactive})
	if err != nil {
		return fmt.Errorf("error deactivating user: %w", err)
	}

	cmd.Printf("Deactivated %s\n", user.Email)
	return nil
}

func printUser(w io.Writer, u *api.User) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", u.ID)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "Role:\t%s\n", u.Role)
	fmt.Fprintf(tw, "Active:\t%t\n", u.IsActive)
	fmt.Fprintf(tw, "Verified:\t%t\n", u.Verified)
	tw.Flush()
}

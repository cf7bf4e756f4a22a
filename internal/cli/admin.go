package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative commands (admin accounts only)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "users",
			Short: "List every user",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				users, err := newAPIClient().AdminUsers()
				if err != nil {
					return fmt.Errorf("listing users: %w", err)
				}
				return output(cmd.OutOrStdout(), users, func(w io.Writer) error { return printUserTable(w, users) })
			},
		},
		&cobra.Command{
			Use:   "delete-user <id>",
			Short: "Delete a user",
			Long:  "Delete a user account. Their properties, bids and contracts are left in place.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := newAPIClient().AdminDeleteUser(args[0]); err != nil {
					return fmt.Errorf("deleting user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ User %s deleted.\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "bids",
			Short: "List every bid",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				bids, err := newAPIClient().AdminBids()
				if err != nil {
					return fmt.Errorf("listing bids: %w", err)
				}
				return output(cmd.OutOrStdout(), bids, func(w io.Writer) error { return printBidTable(w, bids) })
			},
		},
		&cobra.Command{
			Use:   "contracts",
			Short: "List every contract",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				contracts, err := newAPIClient().AdminContracts()
				if err != nil {
					return fmt.Errorf("listing contracts: %w", err)
				}
				return output(cmd.OutOrStdout(), contracts, func(w io.Writer) error { return printContractTable(w, contracts) })
			},
		},
	)

	return cmd
}

package cli

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long:  "Create a user account. Run 'hb login' afterwards to get a token.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				password, err = prompt(cmd, bufio.NewReader(cmd.InOrStdin()), "Password: ")
				if err != nil {
					return err
				}
			}

			id, err := newAPIClient().Register(username, email, password)
			if err != nil {
				return fmt.Errorf("registering: %w", err)
			}
			return output(cmd.OutOrStdout(), map[string]string{"user_id": id}, func(w io.Writer) error {
				fmt.Fprintf(w, "✓ Registered %s (%s).\n", username, id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")

	return cmd
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/evcraddock/homebid/internal/bid"
)

func newBidsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bids",
		Aliases: []string{"bid"},
		Short:   "Place and review bids",
	}

	cmd.AddCommand(
		newBidsPlaceCmd(),
		newBidsListCmd(),
		newBidsStatusCmd(),
	)

	return cmd
}

func newBidsPlaceCmd() *cobra.Command {
	var amount float64
	var message string

	cmd := &cobra.Command{
		Use:   "place <property-id>",
		Short: "Place a bid on a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bid.Input{PropertyID: &args[0]}
			if cmd.Flags().Changed("amount") {
				in.Amount = &amount
			}
			if cmd.Flags().Changed("message") {
				in.Message = &message
			}

			id, err := newAPIClient().PlaceBid(in)
			if err != nil {
				return fmt.Errorf("placing bid: %w", err)
			}
			return output(cmd.OutOrStdout(), map[string]string{"bid_id": id}, func(w io.Writer) error {
				fmt.Fprintf(w, "✓ Bid %s placed for $%s.\n", id, formatPrice(amount))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "bid amount (required)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "note to the owner")

	return cmd
}

func newBidsListCmd() *cobra.Command {
	var propertyID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your bids, or the bids on a property",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient()
			var bids []*bid.Bid
			var err error
			if propertyID != "" {
				bids, err = c.ListPropertyBids(propertyID)
			} else {
				bids, err = c.ListMyBids()
			}
			if err != nil {
				return fmt.Errorf("listing bids: %w", err)
			}
			return output(cmd.OutOrStdout(), bids, func(w io.Writer) error { return printBidTable(w, bids) })
		},
	}

	cmd.Flags().StringVar(&propertyID, "property", "", "list every bid on this property instead of your own")

	return cmd
}

func newBidsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <bid-id> <status>",
		Short: "Set a bid's status (property owner only)",
		Long:  "Set a bid's status, for example accepted or rejected. Only the owner of the property or an admin may do this.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient().SetBidStatus(args[0], args[1]); err != nil {
				return fmt.Errorf("updating bid: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Bid %s is now %s.\n", args[0], args[1])
			return nil
		},
	}
}

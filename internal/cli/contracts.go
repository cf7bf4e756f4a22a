package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/evcraddock/homebid/internal/contract"
)

func newContractsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contracts",
		Aliases: []string{"contract"},
		Short:   "Manage agency contracts",
	}

	cmd.AddCommand(
		newContractsCreateCmd(),
		newContractsListCmd(),
		newContractsStatusCmd(),
	)

	return cmd
}

func newContractsCreateCmd() *cobra.Command {
	var agentID, start, end string
	var commission float64

	cmd := &cobra.Command{
		Use:   "create <property-id>",
		Short: "Create a contract with an agent for a property you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			in := contract.Input{PropertyID: &args[0]}
			if fs.Changed("agent") {
				in.AgentID = &agentID
			}
			if fs.Changed("commission") {
				in.Commission = &commission
			}
			if fs.Changed("start") {
				in.StartDate = &start
			}
			if fs.Changed("end") {
				in.EndDate = &end
			}

			id, err := newAPIClient().CreateContract(in)
			if err != nil {
				return fmt.Errorf("creating contract: %w", err)
			}
			return output(cmd.OutOrStdout(), map[string]string{"contract_id": id}, func(w io.Writer) error {
				fmt.Fprintf(w, "✓ Contract %s created.\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&agentID, "agent", "", "agent user id (required)")
	cmd.Flags().Float64Var(&commission, "commission", 0, "commission percentage (required)")
	cmd.Flags().StringVar(&start, "start", "", "start date, YYYY-MM-DD or RFC 3339 (required)")
	cmd.Flags().StringVar(&end, "end", "", "end date, YYYY-MM-DD or RFC 3339 (required)")

	return cmd
}

func newContractsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contracts where you are the owner or the agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contracts, err := newAPIClient().ListMyContracts()
			if err != nil {
				return fmt.Errorf("listing contracts: %w", err)
			}
			return output(cmd.OutOrStdout(), contracts, func(w io.Writer) error { return printContractTable(w, contracts) })
		},
	}
}

func newContractsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <contract-id> <status>",
		Short: "Set a contract's status (owner or agent only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient().SetContractStatus(args[0], args[1]); err != nil {
				return fmt.Errorf("updating contract: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Contract %s is now %s.\n", args[0], args[1])
			return nil
		},
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"

	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/vm"
)

func newCounterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Drive the counter program",
	}
	cmd.AddCommand(newCounterIncrementCmd(), newCounterShowCmd())
	return cmd
}

func newCounterIncrementCmd() *cobra.Command {
	var program string
	cmd := &cobra.Command{
		Use:   "increment <address>",
		Short: "Increments the counter stored in an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseID(args[0])
			if err != nil {
				return err
			}
			programID, err := parseID(program)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cli := client()
			receipt, err := cli.Invoke(ctx, vm.Invocation{
				ProgramID: programID,
				Accounts:  []ids.ID{addr},
			})
			if err != nil {
				return err
			}
			if err := printReceipt(receipt); err != nil {
				return err
			}
			count, err := cli.Counter(ctx, addr)
			if err != nil {
				return err
			}
			fmt.Printf("count=%d\n", count)
			return nil
		},
	}
	cmd.Flags().StringVar(&program, "program", consts.CounterProgramName, "counter program id or name")
	return cmd
}

func newCounterShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <address>",
		Short: "Prints the counter stored in an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			count, err := client().Counter(ctx, addr)
			if err != nil {
				return err
			}
			fmt.Printf("count=%d\n", count)
			return nil
		},
	}
}

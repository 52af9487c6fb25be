package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/storage"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Create and inspect accounts",
	}
	cmd.AddCommand(newAccountCreateCmd(), newAccountShowCmd())
	return cmd
}

func newAccountCreateCmd() *cobra.Command {
	var (
		address    string
		owner      string
		capacity   int
		recordSize int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Allocates a zero-filled account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := randomID()
			if err != nil {
				return err
			}
			if address != "" {
				if addr, err = parseID(address); err != nil {
					return err
				}
			}
			ownerID, err := parseID(owner)
			if err != nil {
				return err
			}
			if recordSize > 0 {
				capacity = storage.RequiredCapacity(recordSize)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			acct, err := client().CreateAccount(ctx, addr, ownerID, capacity)
			if err != nil {
				return err
			}
			fmt.Printf("address=%s owner=%s capacity=%d\n", acct.Address, acct.Owner, acct.Capacity)
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "account address (random when empty)")
	cmd.Flags().StringVar(&owner, "owner", consts.CounterProgramName, "owning program id or name")
	cmd.Flags().IntVar(&capacity, "capacity", 4, "data capacity in bytes")
	cmd.Flags().IntVar(&recordSize, "record-size", 0, "size the account for an encoded record of this many bytes")
	return cmd
}

func newAccountShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <address>",
		Short: "Prints an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			acct, err := client().Account(ctx, addr)
			if err != nil {
				return err
			}
			fmt.Printf("address=%s owner=%s capacity=%d\n", acct.Address, acct.Owner, acct.Capacity)
			fmt.Printf("data=%s\n", hex.EncodeToString(acct.Data))
			return nil
		},
	}
}

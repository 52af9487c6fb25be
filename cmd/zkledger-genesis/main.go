package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/spf13/cobra"

	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/genesis"
	"github.com/thesecretlab-dev/zkledger/schema"
)

var (
	counterStart    uint32
	counterCapacity int
	encoding        string
)

var rootCmd = &cobra.Command{
	Use:   "zkledger-genesis",
	Short: "Prints a default genesis with a fresh counter account",
	RunE:  runFunc,
}

func init() {
	rootCmd.Flags().Uint32Var(&counterStart, "counter", 0, "initial counter value")
	rootCmd.Flags().IntVar(&counterCapacity, "capacity", 16, "counter account capacity")
	rootCmd.Flags().StringVar(&encoding, "encoding", schema.PackedName, "account encoding (packed|borsh)")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "vm-id",
		Short: "Prints the zkledger id",
		Run: func(*cobra.Command, []string) {
			fmt.Println(consts.ID.String())
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zkledger-genesis failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func runFunc(*cobra.Command, []string) error {
	enc, err := schema.ByName(encoding)
	if err != nil {
		return err
	}
	var addr ids.ID
	if _, err := rand.Read(addr[:]); err != nil {
		return fmt.Errorf("failed to generate address: %w", err)
	}
	counter, err := enc.EncodeCounter(schema.Counter{Count: counterStart})
	if err != nil {
		return err
	}
	data, err := formatting.Encode(formatting.HexNC, counter)
	if err != nil {
		return err
	}

	g := genesis.Default()
	g.Accounts = append(g.Accounts, &genesis.Account{
		Address:  addr,
		Owner:    consts.CounterProgramID,
		Capacity: counterCapacity,
		Data:     data,
	})
	if err := g.Validate(); err != nil {
		return err
	}
	b, err := g.Marshal()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "=== zkledger genesis ===\n")
	fmt.Fprintf(os.Stderr, "Counter program: %s\n", consts.CounterProgramID)
	fmt.Fprintf(os.Stderr, "Record program:  %s\n", consts.RecordStoreProgramID)
	fmt.Fprintf(os.Stderr, "Counter account: %s\n", addr)
	fmt.Println(string(b))
	return nil
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thesecretlab-dev/zkledger/schema"
	"github.com/thesecretlab-dev/zkledger/vm"
)

const defaultURI = "http://127.0.0.1:9650"

var (
	uri      string
	encoding string
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "zkledger-cli",
	Short: "Talks to a zkledger node over JSON-RPC",
}

func init() {
	cobra.EnablePrefixMatching = true
}

func init() {
	rootCmd.PersistentFlags().StringVar(&uri, "uri", defaultURI, "node base URI")
	rootCmd.PersistentFlags().StringVar(&encoding, "encoding", schema.PackedName, "account encoding used by the node (packed|borsh)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(
		newAccountCmd(),
		newCounterCmd(),
		newRecordCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zkledger-cli failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func client() *vm.JSONRPCClient {
	return vm.NewJSONRPCClient(uri)
}

func selectedEncoding() (schema.Encoding, error) {
	return schema.ByName(encoding)
}

func printReceipt(r *vm.Receipt) error {
	if r.Success() {
		fmt.Printf("ok program=%s account=%s\n", r.ProgramID, r.Account)
		return nil
	}
	return fmt.Errorf("rejected with %s (%d): %s", r.Code, uint32(r.Code), r.Error)
}

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"

	"github.com/thesecretlab-dev/zkledger/actions"
	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/schema"
	"github.com/thesecretlab-dev/zkledger/vm"
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Drive the record store program",
	}
	cmd.AddCommand(newRecordStoreCmd(), newRecordShowCmd())
	return cmd
}

type recordFiles struct {
	payload string
	proof   string
	vk      string
	witness string
}

// load returns the instruction payload, either read verbatim or built from
// the three field files.
func (f recordFiles) load(enc schema.Encoding) ([]byte, error) {
	if f.payload != "" {
		return os.ReadFile(f.payload)
	}
	if f.proof == "" || f.vk == "" || f.witness == "" {
		return nil, errors.New("either --payload or all of --proof, --vk and --witness are required")
	}
	var (
		r   schema.ProofRecord
		err error
	)
	if r.Proof, err = os.ReadFile(f.proof); err != nil {
		return nil, err
	}
	if r.VerifyingKey, err = os.ReadFile(f.vk); err != nil {
		return nil, err
	}
	if r.PublicWitness, err = os.ReadFile(f.witness); err != nil {
		return nil, err
	}
	return actions.BuildProofRecordPayload(enc, r)
}

func newRecordStoreCmd() *cobra.Command {
	var (
		program string
		files   recordFiles
	)
	cmd := &cobra.Command{
		Use:   "store <address>",
		Short: "Stores a proof record in an account",
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
			enc, err := selectedEncoding()
			if err != nil {
				return err
			}
			payload, err := files.load(enc)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			receipt, err := client().Invoke(ctx, vm.Invocation{
				ProgramID: programID,
				Accounts:  []ids.ID{addr},
				Data:      payload,
			})
			if err != nil {
				return err
			}
			if err := printReceipt(receipt); err != nil {
				return err
			}
			fmt.Printf("payload=%d bytes\n", len(payload))
			return nil
		},
	}
	cmd.Flags().StringVar(&program, "program", consts.RecordStoreProgramName, "record store program id or name")
	cmd.Flags().StringVar(&files.payload, "payload", "", "file holding an encoded record payload")
	cmd.Flags().StringVar(&files.proof, "proof", "", "file holding the proof bytes")
	cmd.Flags().StringVar(&files.vk, "vk", "", "file holding the verifying key bytes")
	cmd.Flags().StringVar(&files.witness, "witness", "", "file holding the public witness bytes")
	return cmd
}

func newRecordShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <address>",
		Short: "Prints the proof record stored in an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			r, err := client().Record(ctx, addr)
			if err != nil {
				return err
			}
			fmt.Printf("size=%d digest=%s\n", r.Size, r.Digest)
			fmt.Printf("proof=%s\n", hex.EncodeToString(r.Proof))
			fmt.Printf("verifyingKey=%s\n", hex.EncodeToString(r.VerifyingKey))
			fmt.Printf("publicWitness=%s\n", hex.EncodeToString(r.PublicWitness))
			return nil
		},
	}
}

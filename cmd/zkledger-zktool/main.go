package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thesecretlab-dev/zkledger/actions"
	"github.com/thesecretlab-dev/zkledger/schema"
	"github.com/thesecretlab-dev/zkledger/storage"
	"github.com/thesecretlab-dev/zkledger/zk"
)

var (
	outDir       string
	writeKeyPair bool
	birthYear    uint32
	maxBirthYear uint32
)

var rootCmd = &cobra.Command{
	Use:   "zkledger-zktool",
	Short: "Generates sample age proofs as proof record payloads",
	RunE:  runFunc,
}

func init() {
	rootCmd.Flags().StringVar(&outDir, "out", "./zk-fixture", "output directory")
	rootCmd.Flags().BoolVar(&writeKeyPair, "keys", true, "write groth16 proving/verifying key artifacts")
	rootCmd.Flags().Uint32Var(&birthYear, "birth-year", 1990, "private birth year")
	rootCmd.Flags().Uint32Var(&maxBirthYear, "max-birth-year", 2008, "public maximum birth year")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zkledger-zktool failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func runFunc(*cobra.Command, []string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", outDir, err)
	}

	prover, err := zk.NewProver()
	if err != nil {
		return err
	}
	if writeKeyPair {
		pk, err := prover.ProvingKeyBytes()
		if err != nil {
			return err
		}
		if err := writeFile("groth16_age_pk.bin", pk); err != nil {
			return err
		}
	}

	rec, err := prover.Prove(birthYear, maxBirthYear)
	if err != nil {
		return err
	}
	if err := writeFile("sample_age_proof.bin", rec.Proof); err != nil {
		return err
	}
	if err := writeFile("sample_age_vk.bin", rec.VerifyingKey); err != nil {
		return err
	}
	if err := writeFile("sample_age_public_witness.bin", rec.PublicWitness); err != nil {
		return err
	}

	for _, enc := range []schema.Encoding{schema.Packed, schema.Borsh} {
		payload, err := actions.BuildProofRecordPayload(enc, rec)
		if err != nil {
			return fmt.Errorf("%s payload: %w", enc.Name(), err)
		}
		if err := writeFile("sample_age_record_"+enc.Name()+".bin", payload); err != nil {
			return err
		}
	}

	size := rec.EncodedSize()
	fmt.Printf("ZK fixture generated in %s\n", outDir)
	fmt.Printf("  record size:        %d bytes\n", size)
	fmt.Printf("  suggested capacity: %d bytes\n", storage.RequiredCapacity(size))
	fmt.Println("Store it with:")
	fmt.Printf("  zkledger-cli account create --owner record --record-size %d\n", size)
	fmt.Printf("  zkledger-cli record store <address> --payload %s\n", filepath.Join(outDir, "sample_age_record_packed.bin"))
	return nil
}

func writeFile(name string, b []byte) error {
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

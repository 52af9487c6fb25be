package zk

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"

	"github.com/thesecretlab-dev/zkledger/schema"
	"github.com/thesecretlab-dev/zkledger/storage"
)

func TestProveAgeRecord(t *testing.T) {
	p, err := NewProver()
	if err != nil {
		t.Fatalf("new prover: %v", err)
	}
	rec, err := p.Prove(1990, 2008)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if len(rec.Proof) == 0 || len(rec.VerifyingKey) == 0 || len(rec.PublicWitness) == 0 {
		t.Fatalf("empty record field: proof=%d vk=%d witness=%d", len(rec.Proof), len(rec.VerifyingKey), len(rec.PublicWitness))
	}

	// the record carries everything an off-chain verifier needs
	proof := groth16.NewProof(Curve)
	if _, err := proof.ReadFrom(bytes.NewReader(rec.Proof)); err != nil {
		t.Fatalf("read proof: %v", err)
	}
	vk := groth16.NewVerifyingKey(Curve)
	if _, err := vk.ReadFrom(bytes.NewReader(rec.VerifyingKey)); err != nil {
		t.Fatalf("read verifying key: %v", err)
	}
	publicWitness, err := witness.New(Curve.ScalarField())
	if err != nil {
		t.Fatalf("new witness: %v", err)
	}
	if err := publicWitness.UnmarshalBinary(rec.PublicWitness); err != nil {
		t.Fatalf("unmarshal public witness: %v", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		t.Fatalf("verify: %v", err)
	}

	for _, enc := range []schema.Encoding{schema.Packed, schema.Borsh} {
		b, err := enc.EncodeRecord(rec)
		if err != nil {
			t.Fatalf("%s encode: %v", enc.Name(), err)
		}
		if len(b) != rec.EncodedSize() {
			t.Fatalf("%s encoded size: got=%d expected=%d", enc.Name(), len(b), rec.EncodedSize())
		}
		if c := storage.RequiredCapacity(len(b)); c < len(b) {
			t.Fatalf("required capacity %d below encoded size %d", c, len(b))
		}
	}
}

func TestProveRejectsTooYoung(t *testing.T) {
	p, err := NewProver()
	if err != nil {
		t.Fatalf("new prover: %v", err)
	}
	if _, err := p.Prove(2010, 2008); err == nil {
		t.Fatalf("expected error for birth year after max")
	}
}

func TestProverKeysSerialize(t *testing.T) {
	p, err := NewProver()
	if err != nil {
		t.Fatalf("new prover: %v", err)
	}
	pk, err := p.ProvingKeyBytes()
	if err != nil {
		t.Fatalf("proving key: %v", err)
	}
	vk, err := p.VerifyingKeyBytes()
	if err != nil {
		t.Fatalf("verifying key: %v", err)
	}
	if len(pk) == 0 || len(vk) == 0 {
		t.Fatalf("empty key material")
	}
}

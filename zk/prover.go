package zk

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/thesecretlab-dev/zkledger/schema"
)

const Curve = ecc.BN254

var ErrInvalidBirthYear = errors.New("invalid birth year")

// AgeCircuit proves BirthYear <= MaxBirthYear without revealing BirthYear.
//
// BirthYear is private witness material. MaxBirthYear is public.
type AgeCircuit struct {
	BirthYear    frontend.Variable
	MaxBirthYear frontend.Variable `gnark:",public"`
}

func (c *AgeCircuit) Define(api frontend.API) error {
	api.AssertIsLessOrEqual(c.BirthYear, c.MaxBirthYear)
	return nil
}

func NewAgeAssignment(birthYear, maxBirthYear uint32) *AgeCircuit {
	return &AgeCircuit{
		BirthYear:    birthYear,
		MaxBirthYear: maxBirthYear,
	}
}

// Prover holds a compiled AgeCircuit and its groth16 keys. Setup runs once
// per Prover, so every proof it emits shares one verifying key.
type Prover struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

func NewProver() (*Prover, error) {
	ccs, err := frontend.Compile(Curve.ScalarField(), r1cs.NewBuilder, &AgeCircuit{})
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	return &Prover{ccs: ccs, pk: pk, vk: vk}, nil
}

// Prove produces a proof record whose fields hold the gnark binary
// serializations of the proof, the verifying key and the public witness.
func (p *Prover) Prove(birthYear, maxBirthYear uint32) (schema.ProofRecord, error) {
	if birthYear > maxBirthYear {
		return schema.ProofRecord{}, fmt.Errorf("%w: %d > %d", ErrInvalidBirthYear, birthYear, maxBirthYear)
	}
	fullWitness, err := frontend.NewWitness(NewAgeAssignment(birthYear, maxBirthYear), Curve.ScalarField())
	if err != nil {
		return schema.ProofRecord{}, fmt.Errorf("build witness: %w", err)
	}
	publicWitness, err := fullWitness.Public()
	if err != nil {
		return schema.ProofRecord{}, fmt.Errorf("extract public witness: %w", err)
	}
	publicWitnessBytes, err := publicWitness.MarshalBinary()
	if err != nil {
		return schema.ProofRecord{}, fmt.Errorf("marshal public witness: %w", err)
	}
	proof, err := groth16.Prove(p.ccs, p.pk, fullWitness)
	if err != nil {
		return schema.ProofRecord{}, fmt.Errorf("prove: %w", err)
	}
	proofBytes, err := writerToBytes(proof)
	if err != nil {
		return schema.ProofRecord{}, fmt.Errorf("serialize proof: %w", err)
	}
	vkBytes, err := p.VerifyingKeyBytes()
	if err != nil {
		return schema.ProofRecord{}, err
	}
	return schema.ProofRecord{
		Proof:         proofBytes,
		VerifyingKey:  vkBytes,
		PublicWitness: publicWitnessBytes,
	}, nil
}

func (p *Prover) VerifyingKeyBytes() ([]byte, error) {
	b, err := writerToBytes(p.vk)
	if err != nil {
		return nil, fmt.Errorf("serialize verifying key: %w", err)
	}
	return b, nil
}

func (p *Prover) ProvingKeyBytes() ([]byte, error) {
	b, err := writerToBytes(p.pk)
	if err != nil {
		return nil, fmt.Errorf("serialize proving key: %w", err)
	}
	return b, nil
}

func writerToBytes(obj io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := obj.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

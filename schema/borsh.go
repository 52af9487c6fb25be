package schema

import (
	"encoding/binary"
	"fmt"

	"github.com/near/borsh-go"
)

// borshCounter and borshRecord mirror the account structs of the Solana
// programs this layout is shared with.
type borshCounter struct {
	Counter uint32
}

type borshRecord struct {
	Proof         []byte
	VerifyingKey  []byte
	PublicWitness []byte
}

// borshEncoding is the little-endian Borsh layout.
type borshEncoding struct{}

func (borshEncoding) Name() string { return BorshName }

func (borshEncoding) EncodeCounter(c Counter) ([]byte, error) {
	return borsh.Serialize(borshCounter{Counter: c.Count})
}

func (borshEncoding) DecodeCounter(b []byte) (Counter, error) {
	if len(b) < CounterSize {
		return Counter{}, fmt.Errorf("%w: got %d bytes", ErrCounterTooShort, len(b))
	}
	var c borshCounter
	if err := borsh.Deserialize(&c, b[:CounterSize]); err != nil {
		return Counter{}, fmt.Errorf("%w: %v", ErrCounterTooShort, err)
	}
	return Counter{Count: c.Counter}, nil
}

func (borshEncoding) EncodeRecord(r ProofRecord) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	out, err := borsh.Serialize(borshRecord{
		Proof:         r.Proof,
		VerifyingKey:  r.VerifyingKey,
		PublicWitness: r.PublicWitness,
	})
	if err != nil {
		return nil, err
	}
	if len(out) != r.EncodedSize() {
		return nil, fmt.Errorf("%w: got=%d want=%d", errEncodingMismatch, len(out), r.EncodedSize())
	}
	return out, nil
}

func (e borshEncoding) DecodeRecord(b []byte) (ProofRecord, error) {
	return decodeExact(e, b)
}

func (borshEncoding) DecodeRecordPrefix(b []byte) (ProofRecord, int, error) {
	// Walk the prefixes before handing the bytes to the reflective decoder so
	// that a forged length never drives an allocation.
	n, err := frameLength(b, binary.LittleEndian)
	if err != nil {
		return ProofRecord{}, 0, err
	}
	var r borshRecord
	if err := borsh.Deserialize(&r, b[:n]); err != nil {
		return ProofRecord{}, 0, fmt.Errorf("%w: %v", ErrFieldOverrun, err)
	}
	return ProofRecord{
		Proof:         cloneBytes(r.Proof),
		VerifyingKey:  cloneBytes(r.VerifyingKey),
		PublicWitness: cloneBytes(r.PublicWitness),
	}, n, nil
}

// frameLength returns the number of bytes spanned by the three
// length-prefixed fields at the start of b.
func frameLength(b []byte, order binary.ByteOrder) (int, error) {
	offset := 0
	for i := 0; i < RecordFieldCount; i++ {
		if len(b)-offset < LengthPrefixSize {
			return 0, fmt.Errorf("%w: field %d prefix truncated at offset %d", ErrFieldOverrun, i, offset)
		}
		size := uint64(order.Uint32(b[offset : offset+LengthPrefixSize]))
		offset += LengthPrefixSize
		if size > uint64(len(b)-offset) {
			return 0, fmt.Errorf("%w: field %d claims %d bytes, %d remain", ErrFieldOverrun, i, size, len(b)-offset)
		}
		offset += int(size)
	}
	return offset, nil
}

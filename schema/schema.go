// Package schema defines the fixed byte layouts stored in accounts.
//
// Counter state is a single fixed-width uint32 with no length prefix. A proof
// record is three length-prefixed byte fields in the order proof, verifying
// key, public witness:
//
//	len(4) | proof | len(4) | verifying_key | len(4) | public_witness
//
// The byte order of every integer is fixed by the Encoding.
package schema

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	CounterSize      = 4
	LengthPrefixSize = 4
	RecordFieldCount = 3
	RecordHeaderSize = RecordFieldCount * LengthPrefixSize

	MaxFieldSize = math.MaxUint32
)

var (
	ErrCounterTooShort  = errors.New("counter state shorter than 4 bytes")
	ErrFieldOverrun     = errors.New("length prefix overruns input")
	ErrTrailingBytes    = errors.New("trailing bytes after record")
	ErrFieldTooLarge    = errors.New("field exceeds maximum encodable length")
	ErrUnknownEncoding  = errors.New("unknown encoding")
	errEncodingMismatch = errors.New("encoded length mismatch")
)

type Counter struct {
	Count uint32
}

// Next returns the successor state. The increment wraps to zero at MaxUint32.
func (c Counter) Next() Counter {
	return Counter{Count: c.Count + 1}
}

type ProofRecord struct {
	Proof         []byte
	VerifyingKey  []byte
	PublicWitness []byte
}

// EncodedSize is the exact number of bytes the record occupies once encoded.
func (r ProofRecord) EncodedSize() int {
	return RecordHeaderSize + len(r.Proof) + len(r.VerifyingKey) + len(r.PublicWitness)
}

func (r ProofRecord) fields() [RecordFieldCount][]byte {
	return [RecordFieldCount][]byte{r.Proof, r.VerifyingKey, r.PublicWitness}
}

func (r ProofRecord) validate() error {
	for i, f := range r.fields() {
		if uint64(len(f)) > MaxFieldSize {
			return fmt.Errorf("%w: field %d has %d bytes", ErrFieldTooLarge, i, len(f))
		}
	}
	return nil
}

// Encoding converts counters and proof records to and from bytes.
type Encoding interface {
	Name() string

	EncodeCounter(Counter) ([]byte, error)
	// DecodeCounter reads the first CounterSize bytes of b. Anything after
	// them is ignored.
	DecodeCounter(b []byte) (Counter, error)

	EncodeRecord(ProofRecord) ([]byte, error)
	// DecodeRecord requires b to hold exactly one record.
	DecodeRecord(b []byte) (ProofRecord, error)
	// DecodeRecordPrefix decodes a record at the start of b and reports how
	// many bytes it consumed. Bytes after the record are ignored.
	DecodeRecordPrefix(b []byte) (ProofRecord, int, error)
}

const (
	PackedName = "packed"
	BorshName  = "borsh"
)

var (
	Packed Encoding = packedEncoding{}
	Borsh  Encoding = borshEncoding{}
)

// Default is the encoding used when none is configured.
var Default = Packed

func ByName(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PackedName:
		return Packed, nil
	case BorshName:
		return Borsh, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

func decodeExact(enc Encoding, b []byte) (ProofRecord, error) {
	r, n, err := enc.DecodeRecordPrefix(b)
	if err != nil {
		return ProofRecord{}, err
	}
	if n != len(b) {
		return ProofRecord{}, fmt.Errorf("%w: %d of %d bytes consumed", ErrTrailingBytes, n, len(b))
	}
	return r, nil
}

// cloneBytes detaches b from its backing array. The result is never nil.
func cloneBytes(b []byte) []byte {
	return append(make([]byte, 0, len(b)), b...)
}

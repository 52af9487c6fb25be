package schema

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/wrappers"
)

// packedEncoding is the big-endian layout produced by wrappers.Packer.
type packedEncoding struct{}

func (packedEncoding) Name() string { return PackedName }

func (packedEncoding) EncodeCounter(c Counter) ([]byte, error) {
	p := &wrappers.Packer{
		Bytes:   make([]byte, 0, CounterSize),
		MaxSize: CounterSize,
	}
	p.PackInt(c.Count)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Bytes, nil
}

func (packedEncoding) DecodeCounter(b []byte) (Counter, error) {
	p := &wrappers.Packer{Bytes: b}
	count := p.UnpackInt()
	if p.Err != nil {
		return Counter{}, fmt.Errorf("%w: got %d bytes", ErrCounterTooShort, len(b))
	}
	return Counter{Count: count}, nil
}

func (packedEncoding) EncodeRecord(r ProofRecord) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	size := r.EncodedSize()
	p := &wrappers.Packer{
		Bytes:   make([]byte, 0, size),
		MaxSize: size,
	}
	for _, f := range r.fields() {
		p.PackBytes(f)
	}
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Bytes, nil
}

func (e packedEncoding) DecodeRecord(b []byte) (ProofRecord, error) {
	return decodeExact(e, b)
}

func (packedEncoding) DecodeRecordPrefix(b []byte) (ProofRecord, int, error) {
	p := &wrappers.Packer{Bytes: b}
	proof := p.UnpackBytes()
	vk := p.UnpackBytes()
	witness := p.UnpackBytes()
	if p.Err != nil {
		return ProofRecord{}, 0, fmt.Errorf("%w: %v", ErrFieldOverrun, p.Err)
	}
	return ProofRecord{
		Proof:         cloneBytes(proof),
		VerifyingKey:  cloneBytes(vk),
		PublicWitness: cloneBytes(witness),
	}, p.Offset, nil
}

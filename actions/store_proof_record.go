package actions

import (
	"fmt"

	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/schema"
)

var _ Program = (*StoreProofRecord)(nil)

// StoreProofRecord replaces the account contents with the proof record
// carried by the payload. Prior account contents are not read.
type StoreProofRecord struct{}

func (*StoreProofRecord) GetTypeID() uint8 {
	return consts.RecordStoreID
}

func (*StoreProofRecord) Name() string {
	return consts.RecordStoreProgramName
}

func (*StoreProofRecord) Execute(enc schema.Encoding, _ []byte, payload []byte) ([]byte, error) {
	r, err := enc.DecodeRecord(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return enc.EncodeRecord(r)
}

// BuildProofRecordPayload encodes r as a StoreProofRecord instruction payload.
func BuildProofRecordPayload(enc schema.Encoding, r schema.ProofRecord) ([]byte, error) {
	return enc.EncodeRecord(r)
}

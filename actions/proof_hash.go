package actions

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/thesecretlab-dev/zkledger/schema"
)

const RecordDigestDomainTag = "ZKLEDGER_RECORD_V1"

// BuildRecordDigestPreimage canonicalizes a stored record into a byte
// preimage independent of the account encoding.
func BuildRecordDigestPreimage(account ids.ID, r schema.ProofRecord) []byte {
	preimage := make([]byte, 0, len(RecordDigestDomainTag)+ids.IDLen+r.EncodedSize())
	preimage = append(preimage, RecordDigestDomainTag...)
	preimage = append(preimage, account[:]...)

	var scratch [4]byte
	for _, field := range [][]byte{r.Proof, r.VerifyingKey, r.PublicWitness} {
		binary.BigEndian.PutUint32(scratch[:], uint32(len(field)))
		preimage = append(preimage, scratch[:]...)
		preimage = append(preimage, field...)
	}
	return preimage
}

// ComputeRecordDigest binds a record to the account holding it.
func ComputeRecordDigest(account ids.ID, r schema.ProofRecord) [32]byte {
	return sha256.Sum256(BuildRecordDigestPreimage(account, r))
}

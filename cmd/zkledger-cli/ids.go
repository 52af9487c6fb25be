package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/mr-tron/base58"

	"github.com/thesecretlab-dev/zkledger/consts"
)

var errInvalidID = errors.New("invalid id")

// parseID accepts cb58 ids, plain base58 32-byte keys and the well-known
// program names.
func parseID(s string) (ids.ID, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case consts.CounterProgramName:
		return consts.CounterProgramID, nil
	case consts.RecordStoreProgramName:
		return consts.RecordStoreProgramID, nil
	}
	if id, err := ids.FromString(s); err == nil {
		return id, nil
	}
	b, err := base58.Decode(s)
	if err != nil {
		return ids.Empty, fmt.Errorf("%w: %q: %w", errInvalidID, s, err)
	}
	if len(b) != ids.IDLen {
		return ids.Empty, fmt.Errorf("%w: %q decodes to %d bytes", errInvalidID, s, len(b))
	}
	return ids.ToID(b)
}

func randomID() (ids.ID, error) {
	var id ids.ID
	if _, err := rand.Read(id[:]); err != nil {
		return ids.Empty, err
	}
	return id, nil
}

package main

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"github.com/thesecretlab-dev/zkledger/consts"
)

func TestParseID(t *testing.T) {
	require := require.New(t)

	id := ids.GenerateTestID()

	got, err := parseID(id.String())
	require.NoError(err)
	require.Equal(id, got)

	got, err = parseID(base58.Encode(id[:]))
	require.NoError(err)
	require.Equal(id, got)

	got, err = parseID(" Counter ")
	require.NoError(err)
	require.Equal(consts.CounterProgramID, got)

	got, err = parseID("record")
	require.NoError(err)
	require.Equal(consts.RecordStoreProgramID, got)

	_, err = parseID(base58.Encode([]byte{1, 2, 3}))
	require.ErrorIs(err, errInvalidID)

	_, err = parseID("0OIl")
	require.ErrorIs(err, errInvalidID)
}

func TestRecordFilesRequireInputs(t *testing.T) {
	_, err := recordFiles{proof: "p"}.load(nil)
	require.Error(t, err)
}

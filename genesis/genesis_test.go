package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/stretchr/testify/require"

	"github.com/thesecretlab-dev/zkledger/actions"
	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/storage"
)

func TestDefault(t *testing.T) {
	require := require.New(t)

	g := Default()
	require.NoError(g.Validate())
	require.Len(g.Programs, 2)
	require.Equal(consts.CounterProgramID, g.Programs[0].ID)
	require.Equal(consts.RecordStoreProgramID, g.Programs[1].ID)
	require.Empty(g.Accounts)
}

func TestMarshalParse(t *testing.T) {
	require := require.New(t)

	enforce := false
	data, err := formatting.Encode(formatting.HexNC, []byte{0, 0, 0, 5})
	require.NoError(err)

	g := Default()
	g.Programs[0].EnforceOwnership = &enforce
	g.Accounts = []*Account{{
		Address:  ids.GenerateTestID(),
		Owner:    consts.CounterProgramID,
		Capacity: 16,
		Data:     data,
	}}

	b, err := g.Marshal()
	require.NoError(err)
	parsed, err := Parse(b)
	require.NoError(err)
	require.Equal(g, parsed)

	raw, err := parsed.Accounts[0].Bytes()
	require.NoError(err)
	require.Equal([]byte{0, 0, 0, 5}, raw)
}

func TestLoad(t *testing.T) {
	require := require.New(t)

	b, err := Default().Marshal()
	require.NoError(err)
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(os.WriteFile(path, b, 0o600))

	g, err := Load(path)
	require.NoError(err)
	require.Equal(Default(), g)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(err)
}

func TestValidate(t *testing.T) {
	addr := ids.GenerateTestID()
	tests := []struct {
		name    string
		genesis *Genesis
		wantErr error
	}{
		{
			name: "duplicate program",
			genesis: &Genesis{Programs: []*Program{
				{ID: consts.CounterProgramID, Kind: "counter"},
				{ID: consts.CounterProgramID, Kind: "record"},
			}},
			wantErr: ErrDuplicateProgram,
		},
		{
			name:    "unknown kind",
			genesis: &Genesis{Programs: []*Program{{ID: ids.GenerateTestID(), Kind: "escrow"}}},
			wantErr: actions.ErrUnknownProgram,
		},
		{
			name: "duplicate account",
			genesis: &Genesis{Accounts: []*Account{
				{Address: addr, Capacity: 4},
				{Address: addr, Capacity: 4},
			}},
			wantErr: ErrDuplicateAccount,
		},
		{
			name:    "zero capacity",
			genesis: &Genesis{Accounts: []*Account{{Address: addr}}},
			wantErr: storage.ErrInvalidCapacity,
		},
		{
			name:    "data too large",
			genesis: &Genesis{Accounts: []*Account{{Address: addr, Capacity: 1, Data: "0x0102"}}},
			wantErr: ErrDataTooLarge,
		},
		{
			name:    "bad hex",
			genesis: &Genesis{Accounts: []*Account{{Address: addr, Capacity: 8, Data: "0xzz"}}},
			wantErr: ErrInvalidData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.genesis.Validate(), tt.wantErr)
		})
	}
}

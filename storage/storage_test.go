package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetAccount(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := memdb.New()

	addr := ids.GenerateTestID()
	owner := ids.GenerateTestID()
	acct, err := CreateAccount(ctx, db, addr, owner, 16)
	require.NoError(err)
	require.Equal(16, acct.Capacity())
	require.Equal(make([]byte, 16), acct.Data)

	got, err := GetAccount(ctx, db, addr)
	require.NoError(err)
	require.Equal(acct, got)

	_, err = CreateAccount(ctx, db, addr, owner, 16)
	require.ErrorIs(err, ErrAccountExists)

	_, err = GetAccount(ctx, db, ids.GenerateTestID())
	require.ErrorIs(err, ErrAccountNotFound)
}

func TestCreateAccountCapacityBounds(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()

	for _, capacity := range []int{-1, 0, MaxAccountCapacity + 1} {
		_, err := CreateAccount(ctx, db, ids.GenerateTestID(), ids.Empty, capacity)
		require.ErrorIs(t, err, ErrInvalidCapacity)
	}
}

func TestPutAccount(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := memdb.New()

	acct, err := CreateAccount(ctx, db, ids.GenerateTestID(), ids.GenerateTestID(), 4)
	require.NoError(err)

	next := acct.Clone()
	copy(next.Data, []byte{0, 0, 0, 1})
	require.NoError(PutAccount(ctx, db, next))

	got, err := GetAccount(ctx, db, acct.Address)
	require.NoError(err)
	require.Equal([]byte{0, 0, 0, 1}, got.Data)

	grown := got.Clone()
	grown.Data = append(grown.Data, 0)
	require.ErrorIs(PutAccount(ctx, db, grown), ErrCapacityChanged)

	stolen := got.Clone()
	stolen.Owner = ids.GenerateTestID()
	require.ErrorIs(PutAccount(ctx, db, stolen), ErrOwnerChanged)

	missing := got.Clone()
	missing.Address = ids.GenerateTestID()
	require.ErrorIs(PutAccount(ctx, db, missing), ErrAccountNotFound)
}

func TestCloneDoesNotAlias(t *testing.T) {
	acct := &Account{Data: []byte{1, 2, 3}}
	cp := acct.Clone()
	cp.Data[0] = 9
	require.Equal(t, []byte{1, 2, 3}, acct.Data)
}

func TestAccountKeyLayout(t *testing.T) {
	var addr ids.ID
	for i := range addr {
		addr[i] = byte(i + 1)
	}
	k := AccountKey(addr)
	require.Len(t, k, 1+ids.IDLen+2)
	require.Equal(t, accountPrefix, k[0])
	require.Equal(t, addr[:], k[1:1+ids.IDLen])
	require.Equal(t, []byte{0, 1}, k[1+ids.IDLen:])
}

func TestRequiredCapacity(t *testing.T) {
	tests := []struct {
		encodedLen int
		want       int
	}{
		{encodedLen: 0, want: 2048},
		{encodedLen: 13, want: 2048},
		{encodedLen: 1000, want: 2048},
		{encodedLen: 1001, want: 3056},
		{encodedLen: 5000, want: 7048},
		{encodedLen: 10_001, want: 15_008},
		{encodedLen: 20_000, want: 30_000},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, RequiredCapacity(tt.encodedLen), tt.encodedLen)
	}
}

type closableDB interface {
	database.KeyValueReaderWriter
	Close() error
}

func TestOnDiskBackends(t *testing.T) {
	backends := []struct {
		name string
		open func(path string) (closableDB, error)
	}{
		{"leveldb", func(path string) (closableDB, error) { return OpenLevelDB(path) }},
		{"bolt", func(path string) (closableDB, error) { return OpenBoltDB(path) }},
	}
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "accounts")

			db, err := b.open(path)
			require.NoError(err)

			addr := ids.GenerateTestID()
			_, err = GetAccount(ctx, db, addr)
			require.ErrorIs(err, ErrAccountNotFound)

			acct, err := CreateAccount(ctx, db, addr, ids.GenerateTestID(), 8)
			require.NoError(err)
			acct.Data[0] = 7
			require.NoError(PutAccount(ctx, db, acct))
			require.NoError(db.Close())

			db, err = b.open(path)
			require.NoError(err)
			defer db.Close()

			got, err := GetAccount(ctx, db, addr)
			require.NoError(err)
			require.Equal(acct, got)

			has, err := db.Has(AccountKey(addr))
			require.NoError(err)
			require.True(has)
		})
	}
}

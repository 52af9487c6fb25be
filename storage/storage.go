package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/thesecretlab-dev/zkledger/consts"
)

// State
//
// 0x0/ (account)
//
//	-> [address] => owner | data
const (
	accountPrefix byte = 0x0
)

const (
	AccountChunks uint16 = 1
)

// MaxAccountCapacity bounds the data buffer of a single account (10 MiB).
const MaxAccountCapacity = 10 * 1024 * 1024

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrInvalidCapacity = errors.New("invalid account capacity")
	ErrCapacityChanged = errors.New("account capacity cannot change")
	ErrOwnerChanged    = errors.New("account owner cannot change")
	ErrInvalidAccount  = errors.New("invalid account encoding")
)

// Account is a fixed-capacity byte buffer tagged with the identity of its
// owner. len(Data) is the capacity and never changes after creation.
type Account struct {
	Address ids.ID
	Owner   ids.ID
	Data    []byte
}

func (a *Account) Capacity() int {
	return len(a.Data)
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	return &Account{
		Address: a.Address,
		Owner:   a.Owner,
		Data:    append(make([]byte, 0, len(a.Data)), a.Data...),
	}
}

func AccountKey(addr ids.ID) []byte {
	k := make([]byte, 1+ids.IDLen+consts.Uint16Len)
	k[0] = accountPrefix
	copy(k[1:], addr[:])
	binary.BigEndian.PutUint16(k[1+ids.IDLen:], AccountChunks)
	return k
}

func CreateAccount(
	ctx context.Context,
	db database.KeyValueReaderWriter,
	addr ids.ID,
	owner ids.ID,
	capacity int,
) (*Account, error) {
	if capacity <= 0 || capacity > MaxAccountCapacity {
		return nil, fmt.Errorf("%w: %d (max=%d)", ErrInvalidCapacity, capacity, MaxAccountCapacity)
	}
	exists, err := db.Has(AccountKey(addr))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	acct := &Account{
		Address: addr,
		Owner:   owner,
		Data:    make([]byte, capacity),
	}
	if err := putAccount(ctx, db, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

func GetAccount(ctx context.Context, db database.KeyValueReader, addr ids.ID) (*Account, error) {
	v, err := db.Get(AccountKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if err != nil {
		return nil, err
	}
	return parseAccount(addr, v)
}

// PutAccount overwrites the stored data of an existing account. The owner
// and capacity recorded at creation must be preserved.
func PutAccount(ctx context.Context, db database.KeyValueReaderWriter, acct *Account) error {
	prev, err := GetAccount(ctx, db, acct.Address)
	if err != nil {
		return err
	}
	if prev.Owner != acct.Owner {
		return fmt.Errorf("%w: %s", ErrOwnerChanged, acct.Address)
	}
	if prev.Capacity() != acct.Capacity() {
		return fmt.Errorf("%w: %s (%d -> %d)", ErrCapacityChanged, acct.Address, prev.Capacity(), acct.Capacity())
	}
	return putAccount(ctx, db, acct)
}

func putAccount(_ context.Context, db database.KeyValueWriter, acct *Account) error {
	v := make([]byte, 0, ids.IDLen+len(acct.Data))
	v = append(v, acct.Owner[:]...)
	v = append(v, acct.Data...)
	return db.Put(AccountKey(acct.Address), v)
}

func parseAccount(addr ids.ID, v []byte) (*Account, error) {
	if len(v) <= ids.IDLen {
		return nil, fmt.Errorf("%w: %s length %d", ErrInvalidAccount, addr, len(v))
	}
	acct := &Account{
		Address: addr,
		Data:    append([]byte(nil), v[ids.IDLen:]...),
	}
	copy(acct.Owner[:], v[:ids.IDLen])
	return acct, nil
}

// RequiredCapacity suggests an account capacity for an encoded value of
// encodedLen bytes, leaving headroom for larger future writes.
func RequiredCapacity(encodedLen int) int {
	var total int
	switch {
	case encodedLen > 10_000:
		total = encodedLen + encodedLen/2
	case encodedLen > 1_000:
		total = encodedLen + 2048
	default:
		total = encodedLen + 1024
	}
	if rem := total % 8; rem != 0 {
		total += 8 - rem
	}
	if total < 2048 {
		total = 2048
	}
	return total
}

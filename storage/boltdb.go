package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/database"
	"go.etcd.io/bbolt"
)

var _ database.KeyValueReaderWriter = (*BoltDB)(nil)

// boltBucket holds every key of the store.
var boltBucket = []byte("zkledger")

// BoltDB persists accounts in a single bbolt file.
type BoltDB struct {
	db *bbolt.DB
}

func OpenBoltDB(path string) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create dir for BoltDB: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(boltBucket); err != nil {
			return fmt.Errorf("could not create root bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltDB{db: db}, nil
}

func (s *BoltDB) Has(key []byte) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(boltBucket).Get(key) != nil
		return nil
	})
	return ok, err
}

// Get copies the value out of the read transaction.
func (s *BoltDB) Get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(boltBucket).Get(key); v != nil {
			val = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, database.ErrNotFound
	}
	return val, nil
}

func (s *BoltDB) Put(key []byte, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put(key, value)
	})
}

func (s *BoltDB) Close() error {
	return s.db.Close()
}

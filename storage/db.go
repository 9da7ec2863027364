package storage

import (
	"errors"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"
)

// ErrKeyNotFound is returned by Get for absent keys.
var ErrKeyNotFound = errors.New("storage: key not found")

// Database is a generic interface for a key-value store, letting the node
// run against an in-memory backend in tests and a persistent one in
// deployments.
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Iterate(fn func(key, value []byte) error) error
	Close() error
}

// --- In-memory backend ---

type MemDB struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemDB() *MemDB {
	return &MemDB{data: make(map[string][]byte)}
}

func (db *MemDB) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (db *MemDB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, ok := db.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (db *MemDB) Iterate(fn func(key, value []byte) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for key, value := range db.data {
		if err := fn([]byte(key), value); err != nil {
			return err
		}
	}
	return nil
}

func (db *MemDB) Close() error { return nil }

// --- Persistent backend ---

var stateBucket = []byte("state")

// BoltDB is a persistent key-value store backed by bbolt.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB creates or opens a bbolt database at the specified path.
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltDB{db: db}, nil
}

func (b *BoltDB) Put(key []byte, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Put(key, value)
	})
}

func (b *BoltDB) Get(key []byte) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(stateBucket).Get(key)
		if value == nil {
			return ErrKeyNotFound
		}
		out = append([]byte(nil), value...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BoltDB) Iterate(fn func(key, value []byte) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).ForEach(fn)
	})
}

func (b *BoltDB) Close() error { return b.db.Close() }

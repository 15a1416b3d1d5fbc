// Package leveldb persists the mutation journal in a LevelDB key space.
package leveldb

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentVersion = 0x100

// DB wraps a LevelDB handle
type DB struct {
	*leveldb.DB
}

// Open opens or creates the database directory at path
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, &ldb_opt.Options{ErrorIfExist: false})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	return initialise(db)
}

// OpenMemory opens a database backed by memory storage
func OpenMemory() (*DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory journal: %w", err)
	}
	return initialise(db)
}

func initialise(db *leveldb.DB) (*DB, error) {
	version, err := getVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	// ensure no database downgrade
	if version > currentVersion {
		db.Close()
		return nil, fmt.Errorf("journal database version: %d > current version: %d", version, currentVersion)
	}
	if version == 0 {
		if err := putVersion(db, currentVersion); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to tag journal version: %w", err)
		}
	}
	return &DB{db}, nil
}

func getVersion(db *leveldb.DB) (int, error) {
	value, err := db.Get(versionKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(value) != 4 {
		return 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(value))
	}
	return int(binary.BigEndian.Uint32(value)), nil
}

func putVersion(db *leveldb.DB, version int) error {
	value := make([]byte, 4)
	binary.BigEndian.PutUint32(value, uint32(version))
	return db.Put(versionKey, value, nil)
}

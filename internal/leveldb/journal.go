package leveldb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/repository"
)

// key layout:
//
//	J<seq:8 big endian>  JSON journal.Entry
//	0x00 HEAD            JSON journal.Head
const entryPrefix = 'J'

var headKey = []byte{0x00, 'H', 'E', 'A', 'D'}

// JournalStore implements journal.Store on LevelDB
type JournalStore struct {
	db   *DB
	sync bool

	mu sync.Mutex
}

// NewJournalStore creates a JournalStore. When syncWrites is set every
// append is flushed to disk before returning.
func NewJournalStore(db *DB, syncWrites bool) *JournalStore {
	return &JournalStore{db: db, sync: syncWrites}
}

func entryKey(seq uint64) []byte {
	key := make([]byte, 9)
	key[0] = entryPrefix
	binary.BigEndian.PutUint64(key[1:], seq)
	return key
}

// Head returns the current tip, or the zero head for an empty journal
func (s *JournalStore) Head(ctx context.Context) (journal.Head, error) {
	if err := ctx.Err(); err != nil {
		return journal.Head{}, err
	}

	var head journal.Head
	value, err := s.db.Get(headKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return head, nil
	}
	if err != nil {
		return head, fmt.Errorf("failed to read journal head: %w", err)
	}
	if err := json.Unmarshal(value, &head); err != nil {
		return head, fmt.Errorf("failed to decode journal head: %w", err)
	}
	return head, nil
}

// Append writes the entry and the new head in one batch
func (s *JournalStore) Append(ctx context.Context, entry journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, err := s.Head(ctx)
	if err != nil {
		return err
	}
	if entry.Seq != head.Length+1 {
		return repository.ErrConflict
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	headData, err := json.Marshal(head.Advance(entry))
	if err != nil {
		return fmt.Errorf("failed to encode journal head: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put(entryKey(entry.Seq), data)
	batch.Put(headKey, headData)

	if err := s.db.Write(batch, &ldb_opt.WriteOptions{Sync: s.sync}); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	return nil
}

// List returns up to opts.Limit entries after opts.AfterSeq in sequence order
func (s *JournalStore) List(ctx context.Context, opts journal.ListOptions) ([]journal.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := ldb_util.BytesPrefix([]byte{entryPrefix})
	r.Start = entryKey(opts.AfterSeq + 1)

	iter := s.db.NewIterator(r, nil)
	defer iter.Release()

	entries := []journal.Entry{}
	for iter.Next() {
		if opts.Limit > 0 && len(entries) >= opts.Limit {
			break
		}
		var e journal.Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return nil, fmt.Errorf("failed to decode journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal: %w", err)
	}
	return entries, nil
}

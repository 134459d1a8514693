package cache

import (
	"errors"

	cacheentry "github.com/always-cache/cache-entry"
	codec "github.com/always-cache/cache-entry/pkg/entry-codec"

	"github.com/rs/zerolog/log"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelStorage persists entries in a leveldb database on disk. Like
// SQLiteStorage it stores entries by value, so entries read back carry
// heap resources over the stored body bytes.
type LevelStorage struct {
	db *leveldb.DB
}

// NewLevelStorage opens (or creates) a leveldb database at the given path.
func NewLevelStorage(path string) (LevelStorage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return LevelStorage{}, err
	}
	return LevelStorage{db: db}, nil
}

func (l LevelStorage) All(prefix string) ([]KeyedEntry, error) {
	entries := make([]KeyedEntry, 0)
	iter := l.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()
	for iter.Next() {
		entry, err := codec.BytesToEntry(iter.Value())
		if err != nil {
			return entries, err
		}
		entries = append(entries, KeyedEntry{Key: string(iter.Key()), Entry: entry})
	}
	return entries, iter.Error()
}

func (l LevelStorage) Get(key string) (*cacheentry.Entry, bool, error) {
	bytes, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	entry, err := codec.BytesToEntry(bytes)
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

func (l LevelStorage) Put(key string, entry *cacheentry.Entry) error {
	bytes, err := codec.EntryToBytes(entry)
	if err != nil {
		return err
	}
	return l.db.Put([]byte(key), bytes, nil)
}

func (l LevelStorage) Purge(key string) {
	if err := l.db.Delete([]byte(key), nil); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Could not purge entry")
	}
}

func (l LevelStorage) Has(key string) bool {
	ok, err := l.db.Has([]byte(key), nil)
	return err == nil && ok
}

func (l LevelStorage) Keys(prefix string, cb func(string)) {
	iter := l.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()
	for iter.Next() {
		cb(string(iter.Key()))
	}
}

// Close closes the underlying database.
func (l LevelStorage) Close() error {
	return l.db.Close()
}

package cache

import (
	"database/sql"
	"errors"
	"sync"

	cacheentry "github.com/always-cache/cache-entry"
	codec "github.com/always-cache/cache-entry/pkg/entry-codec"

	"github.com/rs/zerolog/log"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStorage persists entries in a sqlite database. Entries are stored
// by value (body bytes included), so the caller keeps ownership of the
// resource it put, and entries read back carry heap resources.
type SQLiteStorage struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStorage creates a new storage with the given filename as the db.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteStorage(filename string) SQLiteStorage {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		response_date INTEGER,
		bytes BLOB
	)`)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS response_date_idx ON entries (response_date)")
	if err != nil {
		panic(err)
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		panic(err)
	}
	return SQLiteStorage{
		db:         db,
		writeMutex: &sync.Mutex{},
	}
}

func (s SQLiteStorage) All(prefix string) ([]KeyedEntry, error) {
	entries := make([]KeyedEntry, 0)
	rows, err := s.db.Query(
		"SELECT key, bytes FROM entries WHERE key LIKE ? ORDER BY key",
		prefix+"%")
	if err != nil {
		return entries, err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var bytes []byte
		if err := rows.Scan(&key, &bytes); err != nil {
			return entries, err
		}
		entry, err := codec.BytesToEntry(bytes)
		if err != nil {
			return entries, err
		}
		entries = append(entries, KeyedEntry{Key: key, Entry: entry})
	}
	return entries, rows.Err()
}

func (s SQLiteStorage) Get(key string) (*cacheentry.Entry, bool, error) {
	var bytes []byte
	err := s.db.QueryRow("SELECT bytes FROM entries WHERE key = ?", key).Scan(&bytes)
	if errors.Is(err, sql.ErrNoRows) {
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

func (s SQLiteStorage) Put(key string, entry *cacheentry.Entry) error {
	bytes, err := codec.EntryToBytes(entry)
	if err != nil {
		return err
	}
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO entries (key, response_date, bytes) VALUES (?, ?, ?)",
		key, entry.ResponseDate().Unix(), bytes)
	return err
}

func (s SQLiteStorage) Purge(key string) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM entries WHERE key = ?", key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Could not purge entry")
	}
}

func (s SQLiteStorage) Has(key string) bool {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM entries WHERE key = ?", key).Scan(&one)
	return err == nil
}

func (s SQLiteStorage) Keys(prefix string, cb func(string)) {
	rows, err := s.db.Query("SELECT key FROM entries WHERE key LIKE ? ORDER BY key", prefix+"%")
	if err != nil {
		return
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return
		}
		cb(key)
	}
}

// Close closes the underlying database.
func (s SQLiteStorage) Close() error {
	return s.db.Close()
}

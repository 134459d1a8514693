package cache

import (
	"strings"
	"sync"

	cacheentry "github.com/always-cache/cache-entry"

	"github.com/rs/zerolog/log"
)

// EntryStorage is an interface for a cache entry storage provider.
// It stores and retrieves entries by cache key. Variant cache keys share a
// common prefix with their parent key, which is why the prefix operations
// exist: resolving a variant map means listing all keys under one prefix.
//
// Implementations must be thread-safe!
type EntryStorage interface {
	// All returns all stored entries whose key has the given prefix.
	All(prefix string) ([]KeyedEntry, error)
	// Get returns the entry stored under the given key, if it exists.
	// It also returns a boolean indicating whether retrieval was successful.
	Get(key string) (*cacheentry.Entry, bool, error)
	// Put stores the entry under the given key. Storing over an existing
	// key displaces the old entry; providers that hold live entries must
	// release the displaced entry's resource.
	Put(key string, entry *cacheentry.Entry) error
	// Purge removes the entry stored under the given key and reclaims
	// whatever storage its body uses.
	Purge(key string)
	// Has checks if the specified key exists.
	Has(key string) bool
	// Keys calls the given callback for each key with the given prefix.
	Keys(prefix string, cb func(string))
}

// KeyedEntry is a stored entry together with the key it lives under.
type KeyedEntry struct {
	Key   string
	Entry *cacheentry.Entry
}

// releaseResource releases the resource of an entry leaving the storage.
// Release is once-only per resource, so a displaced or purged entry is
// never released twice.
func releaseResource(key string, entry *cacheentry.Entry) {
	if err := entry.Resource().Release(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Could not release entry resource")
	}
}

// MemStorage keeps live entries in memory. Since the entries themselves
// are held (not serialized copies), MemStorage owns their resources and
// releases them on purge and displacement.
type MemStorage struct {
	mutex *sync.RWMutex
	db    map[string]*cacheentry.Entry
}

func NewMemStorage() MemStorage {
	return MemStorage{
		mutex: &sync.RWMutex{},
		db:    make(map[string]*cacheentry.Entry),
	}
}

func (m MemStorage) All(prefix string) ([]KeyedEntry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	entries := make([]KeyedEntry, 0)
	for key, entry := range m.db {
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, KeyedEntry{Key: key, Entry: entry})
		}
	}
	return entries, nil
}

func (m MemStorage) Get(key string) (*cacheentry.Entry, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	entry, ok := m.db[key]
	if !ok {
		return nil, false, nil
	}
	return entry, true, nil
}

func (m MemStorage) Put(key string, entry *cacheentry.Entry) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if old, ok := m.db[key]; ok && old != entry {
		releaseResource(key, old)
	}
	m.db[key] = entry
	return nil
}

func (m MemStorage) Purge(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if old, ok := m.db[key]; ok {
		releaseResource(key, old)
	}
	delete(m.db, key)
}

func (m MemStorage) Has(key string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.db[key]
	return ok
}

func (m MemStorage) Keys(prefix string, cb func(string)) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for key := range m.db {
		if strings.HasPrefix(key, prefix) {
			cb(key)
		}
	}
}

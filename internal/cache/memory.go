package cache

// MemoryStore is a Store that lives only for the current run. It backs runs
// invoked without a cache file and keeps tests hermetic.
type MemoryStore struct {
	entries map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *MemoryStore) Put(key, value string) error {
	m.entries[key] = value
	return nil
}

func (m *MemoryStore) Flush() error { return nil }

func (m *MemoryStore) Close() error { return nil }

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int { return len(m.entries) }

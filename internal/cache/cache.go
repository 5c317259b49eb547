package cache

// Store is the persisted key-value cache consulted between runs. Values are
// opaque strings; callers layer JSON, timestamps, or IDs on top via the
// helpers in this package. Implementations are single-process: the pipeline
// is the only reader and writer within a run.
type Store interface {
	// Get returns the cached value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Put stores value under key, replacing any previous value.
	Put(key, value string) error
	// Flush persists any buffered state to durable storage.
	Flush() error
	// Close releases underlying resources. Implies Flush.
	Close() error
}

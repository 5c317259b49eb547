package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GetJSON decodes the cached JSON value for key into v. It reports whether
// the key was present.
func GetJSON(store Store, key string, v any) (bool, error) {
	raw, ok, err := store.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes v as JSON and stores it under key.
func PutJSON(store Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", key, err)
	}
	return store.Put(key, string(data))
}

// GetOrStamp returns the timestamp stored under key, recording now on first
// sight. Subsequent runs observe the original stamp, which is what keeps
// feed timestamps stable across regenerations.
func GetOrStamp(store Store, key string, now time.Time) (time.Time, error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		return time.Time{}, err
	}
	if ok {
		stamp, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse cached timestamp %q: %w", key, err)
		}
		return stamp, nil
	}
	stamp := now.Truncate(time.Second)
	if err := store.Put(key, stamp.Format(time.RFC3339)); err != nil {
		return time.Time{}, err
	}
	return stamp, nil
}

// GetOrNewID returns the identifier stored under key, minting a fresh UUID
// on first sight so every title keeps one stable feed item ID forever.
func GetOrNewID(store Store, key string) (string, error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		return "", err
	}
	if ok {
		return raw, nil
	}
	id := uuid.NewString()
	if err := store.Put(key, id); err != nil {
		return "", err
	}
	return id, nil
}

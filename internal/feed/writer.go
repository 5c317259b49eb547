package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write serializes the feed to path as an indented JSON array. A path of
// "-" writes to stdout. File writes go through a temp file and rename so a
// failed run never leaves a truncated artifact behind.
func Write(f *Feed, path string) error {
	if path == "-" {
		return encode(f, os.Stdout)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if err := encode(f, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Read loads a feed document previously produced by Write.
func Read(path string) (*Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return &Feed{Items: items}, nil
}

func encode(f *Feed, w io.Writer) error {
	items := f.Items
	if items == nil {
		// A feed with nothing upcoming is still a valid (empty) array.
		items = []Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	return nil
}

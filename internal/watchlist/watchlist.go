package watchlist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the two tracked entity categories.
type Kind string

const (
	KindPerson  Kind = "person"
	KindCompany Kind = "company"
)

// EntityRef identifies a tracked person or production company by TMDB ID.
type EntityRef struct {
	Kind Kind
	ID   int64
}

// String renders the canonical "kind:id" form used in logs and cache keys.
func (e EntityRef) String() string {
	return string(e.Kind) + ":" + strconv.FormatInt(e.ID, 10)
}

// Load reads a watchlist file and returns its entries as a sorted,
// deduplicated slice. The format is one positive integer ID per line; a
// trailing "-slug" annotation after the ID is tolerated
// ("6193-leonardo-dicaprio"). Blank lines are skipped. Any other content is
// a fatal parse error. An empty path yields an empty list.
func Load(path string, kind Kind) ([]EntityRef, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s watchlist: %w", kind, err)
	}
	defer file.Close()

	seen := make(map[int64]struct{})
	var refs []EntityRef

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		refs = append(refs, EntityRef{Kind: kind, ID: id})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s watchlist: %w", kind, err)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

// PersonIDs extracts the set of person IDs from a combined entity list.
// Credit rendering uses it to pick out tracked names.
func PersonIDs(entities []EntityRef) map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, entity := range entities {
		if entity.Kind == KindPerson {
			ids[entity.ID] = struct{}{}
		}
	}
	return ids
}

func parseLine(line string) (int64, error) {
	idPart := line
	if idx := strings.IndexByte(line, '-'); idx >= 0 {
		idPart = line[:idx]
	}
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed watchlist line %q: %w", line, err)
	}
	if id <= 0 {
		return 0, errors.New("watchlist IDs must be positive integers")
	}
	return id, nil
}

package feed

import (
	"sort"
	"time"
)

// Source names the watchlist entity that first surfaced an item.
type Source struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// Item is a single upcoming movie or TV show in the published feed.
//
// ReleaseDate is an ISO 8601 date (YYYY-MM-DD) and may be empty when the
// production has no announced date yet. DatePublished records when the
// title was first seen in production; DateModified changes whenever the
// observed status or release estimate changes.
type Item struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Title         string `json:"title"`
	MediaType     string `json:"media_type"`
	ReleaseDate   string `json:"release_date,omitempty"`
	Status        string `json:"status,omitempty"`
	ContentText   string `json:"content_text"`
	DatePublished string `json:"date_published"`
	DateModified  string `json:"date_modified"`
	Source        Source `json:"source"`
}

// Identity is the logical dedupe key: two items describing the same title,
// date, and media type are the same item no matter which entities surfaced
// them.
func (i Item) Identity() string {
	return i.Title + "\x00" + i.ReleaseDate + "\x00" + i.MediaType
}

// Feed is the generated collection of upcoming items. It serializes as a
// top-level JSON array; there is no envelope object.
type Feed struct {
	Items []Item
}

// Sort orders items by release date ascending with ties broken by title.
// Items without a release date sort after all dated items.
func (f *Feed) Sort() {
	sort.SliceStable(f.Items, func(i, j int) bool {
		a, b := f.Items[i], f.Items[j]
		switch {
		case a.ReleaseDate == b.ReleaseDate:
			return a.Title < b.Title
		case a.ReleaseDate == "":
			return false
		case b.ReleaseDate == "":
			return true
		default:
			return a.ReleaseDate < b.ReleaseDate
		}
	})
}

// ParseDate parses an ISO 8601 date string as used in ReleaseDate fields.
// Empty input yields a zero time and no error.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}

package aggregate

import (
	"sort"
	"strings"

	"marquee/internal/feed"
	"marquee/internal/tmdb"
)

// renderContent builds the human-readable summary line for an item, naming
// the director and any tracked people attached to the production.
func renderContent(details *tmdb.Details, peopleIDs map[int64]struct{}) string {
	if details.MediaType == tmdb.MediaTypeTV {
		return renderTVContent(details, peopleIDs)
	}
	return renderMovieContent(details, peopleIDs)
}

func renderMovieContent(details *tmdb.Details, peopleIDs map[int64]struct{}) string {
	var b strings.Builder
	b.WriteString(`"` + details.Title + `"`)

	directorName := "TBA"
	for _, crew := range details.Credits.Crew {
		if crew.Job == "Director" {
			directorName = crew.Name
			break
		}
	}
	b.WriteString(" directed by " + directorName)

	names := trackedNames(details.Credits, peopleIDs)
	names = remove(names, directorName)
	if len(names) > 0 {
		b.WriteString(" along with " + strings.Join(names, ", "))
	}
	b.WriteString(".")

	if premiere, err := feed.ParseDate(details.ReleaseDate); err == nil && !premiere.IsZero() {
		b.WriteString(" Coming " + premiere.Format("January 2006") + ".")
	}
	return b.String()
}

func renderTVContent(details *tmdb.Details, peopleIDs map[int64]struct{}) string {
	var b strings.Builder
	b.WriteString(`"` + details.Name + `"`)

	names := trackedNames(details.Credits, peopleIDs)
	if len(names) > 0 {
		b.WriteString(" with " + strings.Join(names, ", "))
	}
	b.WriteString(".")

	if premiere, err := feed.ParseDate(details.FirstAirDate); err == nil && !premiere.IsZero() {
		b.WriteString(" Coming " + premiere.Format("January 2006") + ".")
	}
	return b.String()
}

// trackedNames collects the names of credited people who appear on the
// person watchlist, sorted for stable output.
func trackedNames(credits tmdb.Credits, peopleIDs map[int64]struct{}) []string {
	seen := make(map[string]struct{})
	for _, cast := range credits.Cast {
		if _, ok := peopleIDs[cast.ID]; ok {
			seen[cast.Name] = struct{}{}
		}
	}
	for _, crew := range credits.Crew {
		if _, ok := peopleIDs[crew.ID]; ok {
			seen[crew.Name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func remove(names []string, target string) []string {
	out := names[:0]
	for _, name := range names {
		if name != target {
			out = append(out, name)
		}
	}
	return out
}

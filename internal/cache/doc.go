// Package cache provides the persistent key-value store that lets feed
// generation skip redundant TMDB calls across runs.
//
// The Store interface is deliberately small (Get/Put/Flush/Close) so the
// backing format can change without touching the pipeline. The default
// backing is an embedded SQLite database; an in-memory store covers runs
// without a cache file. Entries are never evicted; the cache grows with
// the watchlist, which is acceptable at this scale.
//
// Key namespaces:
//
//	discover:<kind>:<id>:<date>   per-entity discovery results, day-scoped
//	media:<type>:<id>:<date>      media detail payloads, day-scoped
//	first_seen_in_production:*    stable date_published stamps
//	details_updated:*             date_modified stamps, keyed by detail state
//	item_id:*                     stable per-title feed item UUIDs
package cache

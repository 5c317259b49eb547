// Package tmdb provides the minimal TMDB API client used during feed
// generation.
//
// It authenticates requests and exposes person combined-credit lookups,
// company-scoped upcoming-movie discovery (pagination fully drained), and
// movie/TV detail retrieval with credits and external IDs appended.
// Responses are strongly typed so the pipeline can filter them. Options
// allow tests to supply custom HTTP clients without modifying production
// code.
package tmdb

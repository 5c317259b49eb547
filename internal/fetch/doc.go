// Package fetch turns watchlist entities into candidate upcoming titles.
//
// For a person it walks the combined TMDB credit list and keeps only
// credits that plausibly represent upcoming work: unreleased, top-billed
// for cast, directing or writing for crew, and never appearances as
// oneself. For a company it discovers unreleased movies attributed to it.
// The fetcher performs no caching and no retries; callers own both.
package fetch

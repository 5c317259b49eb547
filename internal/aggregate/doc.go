// Package aggregate merges per-entity discovery results into the final
// feed. It walks entities in input order, consults the cache store before
// every upstream call, fetches media details, filters to in-production
// titles with IMDb IDs and non-past release dates, deduplicates by logical
// identity, and sorts by release date. Any single failure aborts the run:
// the next scheduled invocation is the retry policy.
package aggregate

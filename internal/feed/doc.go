// Package feed defines the published artifact: a JSON array of upcoming
// items with stable IDs and timestamps, sorted by release date. The writer
// overwrites the target atomically so the static-site publisher never
// observes a partial document.
package feed

// Package watchlist loads the curated person and company ID lists that
// drive feed generation. The files are maintained out-of-band (an append
// plus sort -u automation); this package only reads them.
package watchlist

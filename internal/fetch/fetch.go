package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"marquee/internal/logging"
	"marquee/internal/tmdb"
	"marquee/internal/watchlist"
)

// MediaRef is a candidate upcoming title surfaced for an entity.
type MediaRef struct {
	Type tmdb.MediaType `json:"type"`
	ID   int64          `json:"id"`
}

// Cast credits billed below this order are too minor to track.
const maxBilledOrder = 10

// Crew departments whose credits are worth tracking. Everything else
// (producing, camera, sound, ...) generates far too much noise.
var relevantDepartments = map[string]struct{}{
	"Directing": {},
	"Writing":   {},
}

// Appearances as oneself, archive footage, and the like are not upcoming
// work in any meaningful sense.
var selfCharacterPattern = regexp.MustCompile(`(?i)self|himself|herself|uncredited|interviewee|archive footage`)

// Fetcher surfaces candidate upcoming titles for watchlist entities.
type Fetcher struct {
	api    tmdb.API
	logger *slog.Logger
	today  func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithToday overrides the run-date clock, for tests.
func WithToday(today func() time.Time) Option {
	return func(f *Fetcher) {
		if today != nil {
			f.today = today
		}
	}
}

// New creates a Fetcher backed by the given API client.
func New(api tmdb.API, logger *slog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		api:    api,
		logger: logging.NewComponentLogger(logger, "fetch"),
		today:  time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the candidate media for one entity. An empty result is
// valid; any upstream failure propagates to the caller and aborts the run.
func (f *Fetcher) Fetch(ctx context.Context, entity watchlist.EntityRef) ([]MediaRef, error) {
	switch entity.Kind {
	case watchlist.KindPerson:
		return f.fetchPerson(ctx, entity.ID)
	case watchlist.KindCompany:
		return f.fetchCompany(ctx, entity.ID)
	default:
		return nil, fmt.Errorf("unknown entity kind %q", entity.Kind)
	}
}

func (f *Fetcher) fetchPerson(ctx context.Context, personID int64) ([]MediaRef, error) {
	credits, err := f.api.PersonCombinedCredits(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("person %d: %w", personID, err)
	}

	var refs []MediaRef
	for _, credit := range credits.Cast {
		if f.keepCastCredit(credit) {
			refs = append(refs, MediaRef{Type: credit.MediaType, ID: credit.ID})
		}
	}
	for _, credit := range credits.Crew {
		if f.keepCrewCredit(credit) {
			refs = append(refs, MediaRef{Type: credit.MediaType, ID: credit.ID})
		}
	}
	return refs, nil
}

func (f *Fetcher) fetchCompany(ctx context.Context, companyID int64) ([]MediaRef, error) {
	since := f.today().UTC().Format("2006-01-02")
	movies, err := f.api.DiscoverUpcomingMovies(ctx, companyID, since)
	if err != nil {
		return nil, fmt.Errorf("company %d: %w", companyID, err)
	}

	var refs []MediaRef
	for _, movie := range movies {
		if f.alreadyReleased(movie.ReleaseDate) {
			f.logger.Debug("skip already released", logging.Int64(logging.FieldMediaID, movie.ID))
			continue
		}
		refs = append(refs, MediaRef{Type: tmdb.MediaTypeMovie, ID: movie.ID})
	}
	return refs, nil
}

func (f *Fetcher) keepCastCredit(credit tmdb.PersonCredit) bool {
	if credit.MediaType != tmdb.MediaTypeMovie && credit.MediaType != tmdb.MediaTypeTV {
		f.logger.Warn("unknown credit media type",
			logging.String(logging.FieldMediaType, string(credit.MediaType)),
			logging.Int64(logging.FieldMediaID, credit.ID))
		return false
	}
	if credit.MediaType == tmdb.MediaTypeMovie && credit.Video {
		f.logger.Debug("skip video", logging.Int64(logging.FieldMediaID, credit.ID))
		return false
	}
	if f.alreadyReleased(creditDate(credit)) {
		f.logger.Debug("skip already released", logging.Int64(logging.FieldMediaID, credit.ID))
		return false
	}
	if credit.MediaType == tmdb.MediaTypeMovie && credit.Order > maxBilledOrder {
		f.logger.Debug("skip non-top billed credit", logging.Int64(logging.FieldMediaID, credit.ID))
		return false
	}
	if selfCharacterPattern.MatchString(credit.Character) {
		f.logger.Debug("skip self credit", logging.Int64(logging.FieldMediaID, credit.ID))
		return false
	}
	return true
}

func (f *Fetcher) keepCrewCredit(credit tmdb.PersonCredit) bool {
	if credit.MediaType != tmdb.MediaTypeMovie && credit.MediaType != tmdb.MediaTypeTV {
		f.logger.Warn("unknown credit media type",
			logging.String(logging.FieldMediaType, string(credit.MediaType)),
			logging.Int64(logging.FieldMediaID, credit.ID))
		return false
	}
	if credit.MediaType == tmdb.MediaTypeMovie && credit.Video {
		f.logger.Debug("skip video", logging.Int64(logging.FieldMediaID, credit.ID))
		return false
	}
	if f.alreadyReleased(creditDate(credit)) {
		f.logger.Debug("skip already released", logging.Int64(logging.FieldMediaID, credit.ID))
		return false
	}
	if _, ok := relevantDepartments[credit.Department]; !ok {
		f.logger.Debug("skip not relevant crew department", logging.Int64(logging.FieldMediaID, credit.ID))
		return false
	}
	return true
}

// alreadyReleased reports whether the date string names a day on or before
// today. Unknown dates are treated as unreleased.
func (f *Fetcher) alreadyReleased(date string) bool {
	if date == "" {
		return false
	}
	when, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	today := f.today().UTC().Truncate(24 * time.Hour)
	return !when.After(today)
}

func creditDate(credit tmdb.PersonCredit) string {
	if credit.MediaType == tmdb.MediaTypeTV {
		return credit.FirstAirDate
	}
	return credit.ReleaseDate
}

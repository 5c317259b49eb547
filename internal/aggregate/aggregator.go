package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marquee/internal/cache"
	"marquee/internal/feed"
	"marquee/internal/fetch"
	"marquee/internal/logging"
	"marquee/internal/tmdb"
	"marquee/internal/watchlist"
)

// Aggregator merges per-entity discovery results into a single deduplicated
// feed, consulting the cache store to skip redundant upstream calls.
type Aggregator struct {
	api     tmdb.API
	fetcher *fetch.Fetcher
	store   cache.Store
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithNow overrides the run clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates an Aggregator. The fetcher and the detail lookups share the
// same API client; the store may be in-memory for uncached runs.
func New(api tmdb.API, fetcher *fetch.Fetcher, store cache.Store, logger *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		api:     api,
		fetcher: fetcher,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "aggregate"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type sourcedRef struct {
	ref    fetch.MediaRef
	source watchlist.EntityRef
}

// Aggregate walks the entities in input order and produces the feed. Any
// upstream or cache failure aborts the whole run; there is no partial
// output.
func (a *Aggregator) Aggregate(ctx context.Context, entities []watchlist.EntityRef) (*feed.Feed, error) {
	now := a.now().UTC()
	dateToken := now.Format("2006-01-02")
	runDate := now.Truncate(24 * time.Hour)
	peopleIDs := watchlist.PersonIDs(entities)

	refs, err := a.collectRefs(ctx, entities, dateToken)
	if err != nil {
		return nil, err
	}

	result := &feed.Feed{}
	seen := make(map[string]struct{})
	for _, sr := range refs {
		details, err := a.mediaDetails(ctx, sr.ref, dateToken)
		if err != nil {
			return nil, err
		}

		item, keep, err := a.buildItem(details, sr.source, peopleIDs, now, runDate)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}

		if _, dup := seen[item.Identity()]; dup {
			a.logger.Debug("skip duplicate item", logging.String("title", item.Title))
			continue
		}
		seen[item.Identity()] = struct{}{}
		result.Items = append(result.Items, item)
	}

	result.Sort()
	return result, nil
}

// collectRefs gathers candidate media per entity, cache first, and
// deduplicates across entities keeping the first source in input order.
func (a *Aggregator) collectRefs(ctx context.Context, entities []watchlist.EntityRef, dateToken string) ([]sourcedRef, error) {
	var refs []sourcedRef
	seen := make(map[fetch.MediaRef]struct{})

	for _, entity := range entities {
		key := "discover:" + entity.String() + ":" + dateToken

		var candidates []fetch.MediaRef
		hit, err := cache.GetJSON(a.store, key, &candidates)
		if err != nil {
			return nil, err
		}
		if hit {
			a.logger.Debug("discovery cache hit",
				logging.String(logging.FieldEntity, entity.String()),
				logging.String(logging.FieldCacheKey, key))
		} else {
			fetched, err := a.fetcher.Fetch(ctx, entity)
			if err != nil {
				return nil, fmt.Errorf("fetch %s: %w", entity, err)
			}
			if fetched == nil {
				fetched = []fetch.MediaRef{}
			}
			if err := cache.PutJSON(a.store, key, fetched); err != nil {
				return nil, err
			}
			candidates = fetched
			a.logger.Info("fetched entity",
				logging.String(logging.FieldEntity, entity.String()),
				logging.Int("candidates", len(candidates)))
		}

		for _, ref := range candidates {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, sourcedRef{ref: ref, source: entity})
		}
	}
	return refs, nil
}

// mediaDetails fetches a media object with credits and external IDs,
// consulting the day-scoped cache first.
func (a *Aggregator) mediaDetails(ctx context.Context, ref fetch.MediaRef, dateToken string) (*tmdb.Details, error) {
	key := fmt.Sprintf("media:%s:%d:%s", ref.Type, ref.ID, dateToken)

	var details tmdb.Details
	hit, err := cache.GetJSON(a.store, key, &details)
	if err != nil {
		return nil, err
	}
	if hit {
		return &details, nil
	}

	var fetched *tmdb.Details
	switch ref.Type {
	case tmdb.MediaTypeMovie:
		fetched, err = a.api.MovieDetails(ctx, ref.ID)
	case tmdb.MediaTypeTV:
		fetched, err = a.api.TVDetails(ctx, ref.ID)
	default:
		return nil, fmt.Errorf("unknown media type %q", ref.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("media %s:%d: %w", ref.Type, ref.ID, err)
	}

	if err := cache.PutJSON(a.store, key, fetched); err != nil {
		return nil, err
	}
	return fetched, nil
}

func (a *Aggregator) buildItem(details *tmdb.Details, source watchlist.EntityRef, peopleIDs map[int64]struct{}, now, runDate time.Time) (feed.Item, bool, error) {
	title := details.DisplayTitle()
	if title == "" {
		return feed.Item{}, false, fmt.Errorf("media %s:%d has no title", details.MediaType, details.ID)
	}

	imdbID := details.ExternalIDs.IMDbID
	if imdbID == "" {
		a.logger.Debug("skip missing imdb id", logging.String("title", title))
		return feed.Item{}, false, nil
	}

	if !details.InProduction() {
		a.logger.Debug("skip not in production",
			logging.String("title", title),
			logging.String("status", details.Status))
		return feed.Item{}, false, nil
	}

	releaseDate := details.PremiereDate()
	premiere, err := feed.ParseDate(releaseDate)
	if err != nil {
		return feed.Item{}, false, fmt.Errorf("media %s:%d: bad release date %q: %w", details.MediaType, details.ID, releaseDate, err)
	}
	if !premiere.IsZero() && premiere.Before(runDate) {
		a.logger.Debug("skip past release",
			logging.String("title", title),
			logging.String("release_date", releaseDate))
		return feed.Item{}, false, nil
	}

	firstSeen, err := cache.GetOrStamp(a.store, "first_seen_in_production:"+imdbID, now)
	if err != nil {
		return feed.Item{}, false, err
	}

	var releaseEstimate string
	if details.MediaType == tmdb.MediaTypeMovie && !premiere.IsZero() {
		releaseEstimate = premiere.Format("January 2006")
	}

	detailsKey := fmt.Sprintf("details_updated:%s:%s:%s:%s", imdbID, title, details.Status, releaseEstimate)
	detailsUpdated, err := cache.GetOrStamp(a.store, detailsKey, now)
	if err != nil {
		return feed.Item{}, false, err
	}

	itemID, err := cache.GetOrNewID(a.store, "item_id:"+imdbID)
	if err != nil {
		return feed.Item{}, false, err
	}

	item := feed.Item{
		ID:            itemID,
		URL:           "https://www.imdb.com/title/" + imdbID + "/",
		Title:         title,
		MediaType:     string(details.MediaType),
		ReleaseDate:   releaseDate,
		Status:        details.Status,
		ContentText:   renderContent(details, peopleIDs),
		DatePublished: firstSeen.Format(time.RFC3339),
		DateModified:  detailsUpdated.Format(time.RFC3339),
		Source: feed.Source{
			Kind: string(source.Kind),
			ID:   source.ID,
		},
	}
	return item, true, nil
}

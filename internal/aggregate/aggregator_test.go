package aggregate_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"marquee/internal/aggregate"
	"marquee/internal/cache"
	"marquee/internal/fetch"
	"marquee/internal/tmdb"
	"marquee/internal/watchlist"
)

var runTime = time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

type fakeAPI struct {
	credits  map[int64]*tmdb.PersonCredits
	discover map[int64][]tmdb.DiscoverResult
	details  map[string]*tmdb.Details
	failAll  bool

	creditCalls   map[int64]int
	discoverCalls map[int64]int
	detailCalls   map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		credits:       make(map[int64]*tmdb.PersonCredits),
		discover:      make(map[int64][]tmdb.DiscoverResult),
		details:       make(map[string]*tmdb.Details),
		creditCalls:   make(map[int64]int),
		discoverCalls: make(map[int64]int),
		detailCalls:   make(map[string]int),
	}
}

func (f *fakeAPI) PersonCombinedCredits(_ context.Context, personID int64) (*tmdb.PersonCredits, error) {
	f.creditCalls[personID]++
	if f.failAll {
		return nil, errors.New("network down")
	}
	if credits, ok := f.credits[personID]; ok {
		return credits, nil
	}
	return &tmdb.PersonCredits{}, nil
}

func (f *fakeAPI) DiscoverUpcomingMovies(_ context.Context, companyID int64, _ string) ([]tmdb.DiscoverResult, error) {
	f.discoverCalls[companyID]++
	if f.failAll {
		return nil, errors.New("network down")
	}
	return f.discover[companyID], nil
}

func (f *fakeAPI) MovieDetails(_ context.Context, movieID int64) (*tmdb.Details, error) {
	return f.detailsFor("movie", movieID)
}

func (f *fakeAPI) TVDetails(_ context.Context, showID int64) (*tmdb.Details, error) {
	return f.detailsFor("tv", showID)
}

func (f *fakeAPI) detailsFor(mediaType string, id int64) (*tmdb.Details, error) {
	key := fmt.Sprintf("%s:%d", mediaType, id)
	f.detailCalls[key]++
	if f.failAll {
		return nil, errors.New("network down")
	}
	details, ok := f.details[key]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", key)
	}
	copied := *details
	return &copied, nil
}

func (f *fakeAPI) addMovie(id int64, title, status, releaseDate, imdbID string) {
	f.details[fmt.Sprintf("movie:%d", id)] = &tmdb.Details{
		ID:          id,
		Title:       title,
		Status:      status,
		ReleaseDate: releaseDate,
		ExternalIDs: tmdb.ExternalIDs{IMDbID: imdbID},
	}
}

func (f *fakeAPI) castCredit(personID, mediaID int64, releaseDate string) {
	credits := f.credits[personID]
	if credits == nil {
		credits = &tmdb.PersonCredits{}
		f.credits[personID] = credits
	}
	credits.Cast = append(credits.Cast, tmdb.PersonCredit{
		ID:          mediaID,
		MediaType:   tmdb.MediaTypeMovie,
		ReleaseDate: releaseDate,
		Character:   "Lead",
	})
}

func newAggregator(api *fakeAPI, store cache.Store) *aggregate.Aggregator {
	now := func() time.Time { return runTime }
	fetcher := fetch.New(api, nil, fetch.WithToday(now))
	return aggregate.New(api, fetcher, store, nil, aggregate.WithNow(now))
}

func person(id int64) watchlist.EntityRef {
	return watchlist.EntityRef{Kind: watchlist.KindPerson, ID: id}
}

func company(id int64) watchlist.EntityRef {
	return watchlist.EntityRef{Kind: watchlist.KindCompany, ID: id}
}

func TestAggregateDeduplicatesAcrossKinds(t *testing.T) {
	api := newFakeAPI()
	// Actor 101 stars in movie 7; company 420 produces the same movie.
	api.castCredit(101, 7, "2027-06-01")
	api.discover[420] = []tmdb.DiscoverResult{{ID: 7, Title: "Movie A", ReleaseDate: "2027-06-01"}}
	api.addMovie(7, "Movie A", tmdb.StatusInProduction, "2027-06-01", "tt0000007")

	result, err := newAggregator(api, cache.NewMemory()).Aggregate(context.Background(), []watchlist.EntityRef{person(101), company(420)})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	item := result.Items[0]
	if item.Title != "Movie A" {
		t.Fatalf("unexpected title: %q", item.Title)
	}
	// First source in input order wins.
	if item.Source.Kind != "person" || item.Source.ID != 101 {
		t.Fatalf("unexpected source: %+v", item.Source)
	}
}

func TestAggregateCollapsesExactDuplicateCredits(t *testing.T) {
	api := newFakeAPI()
	// The same movie appears twice in one person's credit list.
	api.castCredit(101, 7, "2027-06-01")
	api.castCredit(101, 7, "2027-06-01")
	api.addMovie(7, "Movie A", tmdb.StatusInProduction, "2027-06-01", "tt0000007")

	result, err := newAggregator(api, cache.NewMemory()).Aggregate(context.Background(), []watchlist.EntityRef{person(101)})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	if api.detailCalls["movie:7"] != 1 {
		t.Fatalf("expected a single detail fetch, got %d", api.detailCalls["movie:7"])
	}
}

func TestAggregateCacheHitSkipsFetcher(t *testing.T) {
	api := newFakeAPI()
	api.castCredit(101, 7, "2027-06-01")
	api.addMovie(7, "Movie A", tmdb.StatusInProduction, "2027-06-01", "tt0000007")

	store := cache.NewMemory()
	agg := newAggregator(api, store)

	if _, err := agg.Aggregate(context.Background(), []watchlist.EntityRef{person(101)}); err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	if api.creditCalls[101] != 1 {
		t.Fatalf("expected 1 credit call after first run, got %d", api.creditCalls[101])
	}

	if _, err := agg.Aggregate(context.Background(), []watchlist.EntityRef{person(101)}); err != nil {
		t.Fatalf("second run returned error: %v", err)
	}
	if api.creditCalls[101] != 1 {
		t.Fatalf("cached entity must not be re-fetched, got %d calls", api.creditCalls[101])
	}
	if api.detailCalls["movie:7"] != 1 {
		t.Fatalf("cached media details must not be re-fetched, got %d calls", api.detailCalls["movie:7"])
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	api := newFakeAPI()
	api.castCredit(101, 7, "2027-06-01")
	api.castCredit(101, 8, "2027-03-01")
	api.addMovie(7, "Movie A", tmdb.StatusInProduction, "2027-06-01", "tt0000007")
	api.addMovie(8, "Movie B", tmdb.StatusPostProduction, "2027-03-01", "tt0000008")

	store := cache.NewMemory()
	agg := newAggregator(api, store)

	first, err := agg.Aggregate(context.Background(), []watchlist.EntityRef{person(101)})
	if err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	second, err := agg.Aggregate(context.Background(), []watchlist.EntityRef{person(101)})
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}

	if !reflect.DeepEqual(first.Items, second.Items) {
		t.Fatalf("runs differ:\nfirst  %#v\nsecond %#v", first.Items, second.Items)
	}
}

func TestAggregateOrdering(t *testing.T) {
	api := newFakeAPI()
	api.castCredit(101, 1, "2027-06-01")
	api.castCredit(101, 2, "2027-03-01")
	api.castCredit(101, 3, "2027-06-01")
	api.castCredit(101, 4, "")
	api.addMovie(1, "Zeta", tmdb.StatusInProduction, "2027-06-01", "tt0000001")
	api.addMovie(2, "Later Alligator", tmdb.StatusInProduction, "2027-03-01", "tt0000002")
	api.addMovie(3, "Alpha", tmdb.StatusInProduction, "2027-06-01", "tt0000003")
	api.addMovie(4, "Dateless", tmdb.StatusInProduction, "", "tt0000004")

	result, err := newAggregator(api, cache.NewMemory()).Aggregate(context.Background(), []watchlist.EntityRef{person(101)})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	titles := make([]string, len(result.Items))
	for i, item := range result.Items {
		titles[i] = item.Title
	}
	want := []string{"Later Alligator", "Alpha", "Zeta", "Dateless"}
	if !reflect.DeepEqual(titles, want) {
		t.Fatalf("unexpected order: %v", titles)
	}
}

func TestAggregateExcludesPastReleases(t *testing.T) {
	api := newFakeAPI()
	// Discovery has a stale cached view; the detail payload carries a date
	// before the run date and must be dropped.
	api.castCredit(101, 7, "2027-06-01")
	api.addMovie(7, "Slipped Backwards", tmdb.StatusPostProduction, "2026-08-24", "tt0000007")

	result, err := newAggregator(api, cache.NewMemory()).Aggregate(context.Background(), []watchlist.EntityRef{person(101)})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(result.Items) != 0 {
		t.Fatalf("expected empty feed, got %v", result.Items)
	}
}

func TestAggregateKeepsSameDayRelease(t *testing.T) {
	api := newFakeAPI()
	api.discover[420] = []tmdb.DiscoverResult{{ID: 7, ReleaseDate: "2026-08-26"}}
	api.addMovie(7, "Today Counts", tmdb.StatusPostProduction, "2026-08-25", "tt0000007")

	result, err := newAggregator(api, cache.NewMemory()).Aggregate(context.Background(), []watchlist.EntityRef{company(420)})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("release on the run date is not past, got %v", result.Items)
	}
}

func TestAggregateSkipsMissingIMDbAndNotInProduction(t *testing.T) {
	api := newFakeAPI()
	api.castCredit(101, 1, "2027-06-01")
	api.castCredit(101, 2, "2027-06-01")
	api.castCredit(101, 3, "2027-06-01")
	api.addMovie(1, "No IMDb", tmdb.StatusInProduction, "2027-06-01", "")
	api.addMovie(2, "Only Rumored", "Rumored", "2027-06-01", "tt0000002")
	api.addMovie(3, "Keeper", tmdb.StatusInProduction, "2027-06-01", "tt0000003")

	result, err := newAggregator(api, cache.NewMemory()).Aggregate(context.Background(), []watchlist.EntityRef{person(101)})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Title != "Keeper" {
		t.Fatalf("unexpected items: %v", result.Items)
	}
}

func TestAggregateFailsFastOnUpstreamError(t *testing.T) {
	api := newFakeAPI()
	api.failAll = true

	if _, err := newAggregator(api, cache.NewMemory()).Aggregate(context.Background(), []watchlist.EntityRef{person(101)}); err == nil {
		t.Fatal("expected aggregation to abort on upstream error")
	}
}

func TestAggregateStableIDsAndTimestamps(t *testing.T) {
	api := newFakeAPI()
	api.castCredit(101, 7, "2027-06-01")
	api.addMovie(7, "Movie A", tmdb.StatusInProduction, "2027-06-01", "tt0000007")

	store := cache.NewMemory()
	agg := newAggregator(api, store)

	first, err := agg.Aggregate(context.Background(), []watchlist.EntityRef{person(101)})
	if err != nil {
		t.Fatalf("first run returned error: %v", err)
	}

	// A later run with a changed status mints a new date_modified but keeps
	// the stable item ID and original date_published.
	api.addMovie(7, "Movie A", tmdb.StatusPostProduction, "2027-06-01", "tt0000007")
	laterTime := runTime.Add(48 * time.Hour)
	later := func() time.Time { return laterTime }
	fetcher := fetch.New(api, nil, fetch.WithToday(later))
	aggLater := aggregate.New(api, fetcher, store, nil, aggregate.WithNow(later))

	second, err := aggLater.Aggregate(context.Background(), []watchlist.EntityRef{person(101)})
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}

	if len(first.Items) != 1 || len(second.Items) != 1 {
		t.Fatalf("expected single items, got %d and %d", len(first.Items), len(second.Items))
	}
	if first.Items[0].ID != second.Items[0].ID {
		t.Fatal("item ID must be stable across runs")
	}
	if first.Items[0].DatePublished != second.Items[0].DatePublished {
		t.Fatal("date_published must be stable across runs")
	}
	if first.Items[0].DateModified == second.Items[0].DateModified {
		t.Fatal("date_modified must change when status changes")
	}
}

func TestAggregateContentText(t *testing.T) {
	api := newFakeAPI()
	api.castCredit(101, 7, "2027-06-01")
	movie := &tmdb.Details{
		ID:          7,
		Title:       "Movie A",
		Status:      tmdb.StatusInProduction,
		ReleaseDate: "2027-06-01",
		ExternalIDs: tmdb.ExternalIDs{IMDbID: "tt0000007"},
		Credits: tmdb.Credits{
			Cast: []tmdb.CastCredit{{ID: 101, Name: "Tracked Star", Character: "Lead", Order: 0}},
			Crew: []tmdb.CrewCredit{{ID: 9000, Name: "Jane Doe", Department: "Directing", Job: "Director"}},
		},
	}
	api.details["movie:7"] = movie

	result, err := newAggregator(api, cache.NewMemory()).Aggregate(context.Background(), []watchlist.EntityRef{person(101)})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	want := `"Movie A" directed by Jane Doe along with Tracked Star. Coming June 2027.`
	if result.Items[0].ContentText != want {
		t.Fatalf("unexpected content text:\n got %q\nwant %q", result.Items[0].ContentText, want)
	}
}

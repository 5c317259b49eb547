package tmdb

// MediaType discriminates movie and TV payloads.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Production statuses reported by TMDB that count as upcoming work.
const (
	StatusInProduction   = "In Production"
	StatusPostProduction = "Post Production"
)

// PersonCredits models the /person/{id}/combined_credits response.
type PersonCredits struct {
	ID   int64          `json:"id"`
	Cast []PersonCredit `json:"cast"`
	Crew []PersonCredit `json:"crew"`
}

// PersonCredit is a single cast or crew entry in a person's combined
// credits. Movie credits carry ReleaseDate and Video; TV credits carry
// FirstAirDate. Cast entries carry Character and Order, crew entries
// Department and Job.
type PersonCredit struct {
	ID           int64     `json:"id"`
	MediaType    MediaType `json:"media_type"`
	ReleaseDate  string    `json:"release_date"`
	FirstAirDate string    `json:"first_air_date"`
	Video        bool      `json:"video"`
	Character    string    `json:"character"`
	Order        int       `json:"order"`
	Department   string    `json:"department"`
	Job          string    `json:"job"`
}

// DiscoverResult is a single entry in a paginated discover response.
type DiscoverResult struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// DiscoverResponse models the paginated /discover/{type} envelope.
type DiscoverResponse struct {
	Page         int              `json:"page"`
	Results      []DiscoverResult `json:"results"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
}

// CastCredit is a cast member on a media object's credit list.
type CastCredit struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewCredit is a crew member on a media object's credit list.
type CrewCredit struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Job        string `json:"job"`
}

// Credits groups the cast and crew of a media object.
type Credits struct {
	Cast []CastCredit `json:"cast"`
	Crew []CrewCredit `json:"crew"`
}

// ExternalIDs carries cross-database identifiers for a media object.
type ExternalIDs struct {
	IMDbID string `json:"imdb_id"`
}

// Details is a movie or TV show fetched with credits and external IDs
// appended. Movies populate Title/ReleaseDate, TV shows Name/FirstAirDate.
type Details struct {
	ID           int64       `json:"id"`
	MediaType    MediaType   `json:"media_type"`
	Title        string      `json:"title"`
	Name         string      `json:"name"`
	Status       string      `json:"status"`
	ReleaseDate  string      `json:"release_date"`
	FirstAirDate string      `json:"first_air_date"`
	Credits      Credits     `json:"credits"`
	ExternalIDs  ExternalIDs `json:"external_ids"`
}

// DisplayTitle returns the human title regardless of media type.
func (d *Details) DisplayTitle() string {
	if d.MediaType == MediaTypeTV {
		return d.Name
	}
	return d.Title
}

// PremiereDate returns the raw release or first-air date string for the
// media type, which may be empty when TMDB has no date yet.
func (d *Details) PremiereDate() string {
	if d.MediaType == MediaTypeTV {
		return d.FirstAirDate
	}
	return d.ReleaseDate
}

// InProduction reports whether the media object counts as upcoming work.
func (d *Details) InProduction() bool {
	return d.Status == StatusInProduction || d.Status == StatusPostProduction
}

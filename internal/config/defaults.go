package config

const (
	defaultPeopleFile     = "~/.config/marquee/people.csv"
	defaultCompaniesFile  = "~/.config/marquee/companies.csv"
	defaultCacheFile      = "~/.cache/marquee/cache.db"
	defaultOutputFile     = "-"
	defaultTMDBBaseURL    = "https://api.themoviedb.org/3"
	defaultTMDBLanguage   = "en-US"
	defaultTMDBTimeoutSec = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			PeopleFile:    defaultPeopleFile,
			CompaniesFile: defaultCompaniesFile,
			CacheFile:     defaultCacheFile,
			OutputFile:    defaultOutputFile,
		},
		TMDB: TMDB{
			BaseURL:        defaultTMDBBaseURL,
			Language:       defaultTMDBLanguage,
			TimeoutSeconds: defaultTMDBTimeoutSec,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

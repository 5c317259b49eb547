package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"marquee/internal/aggregate"
	"marquee/internal/cache"
	"marquee/internal/config"
	"marquee/internal/feed"
	"marquee/internal/fetch"
	"marquee/internal/logging"
	"marquee/internal/tmdb"
	"marquee/internal/watchlist"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var peopleFlag string
	var companiesFlag string
	var outputFlag string
	var cacheFlag string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Query TMDB for every tracked entity and write the upcoming feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "build")

			peoplePath, err := resolvePath(peopleFlag, cfg.Paths.PeopleFile)
			if err != nil {
				return err
			}
			companiesPath, err := resolvePath(companiesFlag, cfg.Paths.CompaniesFile)
			if err != nil {
				return err
			}
			outputPath, err := resolvePath(outputFlag, cfg.Paths.OutputFile)
			if err != nil {
				return err
			}

			people, err := watchlist.Load(peoplePath, watchlist.KindPerson)
			if err != nil {
				return err
			}
			companies, err := watchlist.Load(companiesPath, watchlist.KindCompany)
			if err != nil {
				return err
			}
			entities := make([]watchlist.EntityRef, 0, len(people)+len(companies))
			entities = append(entities, people...)
			entities = append(entities, companies...)
			if len(entities) == 0 {
				logger.Warn("no tracked entities; the feed will be empty")
			}

			store, unlock, err := openStore(ctx, cacheFlag, noCache)
			if err != nil {
				return err
			}
			defer unlock()
			defer store.Close()

			client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
				tmdb.WithTimeout(time.Duration(cfg.TMDB.TimeoutSeconds)*time.Second))
			if err != nil {
				return err
			}

			started := time.Now()
			fetcher := fetch.New(client, logger)
			aggregator := aggregate.New(client, fetcher, store, logger)

			result, err := aggregator.Aggregate(cmd.Context(), entities)
			if err != nil {
				return err
			}
			if err := feed.Write(result, outputPath); err != nil {
				return err
			}
			if err := store.Flush(); err != nil {
				return err
			}

			logger.Info("feed built",
				logging.Int("entities", len(entities)),
				logging.Int("items", len(result.Items)),
				logging.Duration("elapsed", time.Since(started)))
			if outputPath != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d items to %s\n", len(result.Items), outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&peopleFlag, "people-file", "", "Path to the tracked people ID list")
	cmd.Flags().StringVar(&companiesFlag, "companies-file", "", "Path to the tracked company ID list")
	cmd.Flags().StringVarP(&outputFlag, "output-file", "o", "", "Feed destination path, or - for stdout")
	cmd.Flags().StringVar(&cacheFlag, "cache-file", "", "Cache database path")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Run with an in-memory cache only")

	return cmd
}

// openStore opens the configured cache backend and takes the run lock that
// keeps concurrent builds from interleaving writes to the same database.
func openStore(ctx *commandContext, cacheFlag string, noCache bool) (cache.Store, func(), error) {
	if noCache {
		return cache.NewMemory(), func() {}, nil
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	cachePath, err := resolvePath(cacheFlag, cfg.Paths.CacheFile)
	if err != nil {
		return nil, nil, err
	}

	if dir := filepath.Dir(cachePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	lock := flock.New(cachePath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return nil, nil, errors.New("another marquee build is already running against this cache")
	}

	store, err := cache.Open(cachePath)
	if err != nil {
		_ = lock.Unlock()
		return nil, nil, err
	}
	return store, func() { _ = lock.Unlock() }, nil
}

// resolvePath prefers the flag value over the configured default. The stdout
// marker "-" passes through untouched.
func resolvePath(flagValue, configValue string) (string, error) {
	value := strings.TrimSpace(flagValue)
	if value == "" {
		return configValue, nil
	}
	if value == "-" {
		return value, nil
	}
	return config.ExpandPath(value)
}

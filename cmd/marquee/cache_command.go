package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	var cacheFlag string

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the response cache",
	}
	cacheCmd.PersistentFlags().StringVar(&cacheFlag, "cache-file", "", "Cache database path")

	cacheCmd.AddCommand(newCacheStatsCommand(ctx, &cacheFlag))
	cacheCmd.AddCommand(newCacheClearCommand(ctx, &cacheFlag))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext, cacheFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts by namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCacheFile(ctx, *cacheFlag)
			if err != nil {
				return err
			}
			defer store.Close()

			total, err := store.Count()
			if err != nil {
				return err
			}
			namespaces, err := store.Namespaces()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache: %s\n", store.Path())
			fmt.Fprintf(out, "Entries: %d\n", total)
			if len(namespaces) == 0 {
				return nil
			}

			names := make([]string, 0, len(namespaces))
			for name := range namespaces {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name, strconv.FormatInt(namespaces[name], 10)})
			}
			printRows(out, []string{"NAMESPACE", "ENTRIES"}, rows, []columnAlignment{alignLeft, alignRight})
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext, cacheFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCacheFile(ctx, *cacheFlag)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", removed)
			return nil
		},
	}
}

func openCacheFile(ctx *commandContext, cacheFlag string) (*cache.SQLiteStore, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	cachePath, err := resolvePath(cacheFlag, cfg.Paths.CacheFile)
	if err != nil {
		return nil, err
	}
	return cache.Open(cachePath)
}

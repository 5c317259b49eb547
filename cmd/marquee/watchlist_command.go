package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/watchlist"
)

func newWatchlistCommand(ctx *commandContext) *cobra.Command {
	var peopleFlag string
	var companiesFlag string

	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Show the tracked people and companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			peoplePath, err := resolvePath(peopleFlag, cfg.Paths.PeopleFile)
			if err != nil {
				return err
			}
			companiesPath, err := resolvePath(companiesFlag, cfg.Paths.CompaniesFile)
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

			out := cmd.OutOrStdout()
			if len(people)+len(companies) == 0 {
				fmt.Fprintln(out, "No tracked entities")
				return nil
			}

			rows := make([][]string, 0, len(people)+len(companies))
			for _, entity := range people {
				rows = append(rows, []string{string(entity.Kind), strconv.FormatInt(entity.ID, 10)})
			}
			for _, entity := range companies {
				rows = append(rows, []string{string(entity.Kind), strconv.FormatInt(entity.ID, 10)})
			}
			printRows(out, []string{"KIND", "TMDB ID"}, rows, []columnAlignment{alignLeft, alignRight})
			return nil
		},
	}

	cmd.Flags().StringVar(&peopleFlag, "people-file", "", "Path to the tracked people ID list")
	cmd.Flags().StringVar(&companiesFlag, "companies-file", "", "Path to the tracked company ID list")

	return cmd
}

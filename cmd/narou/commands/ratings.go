package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"narou-client/internal/scrapers/rating"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	ratingsCmd.Flags().StringP("format", "f", "text", "Output format: text, json or csv.")
	rootCmd.AddCommand(ratingsCmd)
}

var ratingsCmd = &cobra.Command{
	Use:   "ratings <userid>",
	Short: "Lists every novel a user has rated.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		format, _ := cmd.Flags().GetString("format")
		if outputJSON {
			format = "json"
		}

		f, err := newFetcher()
		if err != nil {
			return err
		}
		entries, err := rating.NewScraper(f, tel).FetchAll(cmd.Context(), uint32(userID))
		if err != nil {
			return err
		}

		switch format {
		case "json":
			return printJSON(entries)
		case "csv":
			w := csv.NewWriter(os.Stdout)
			_ = w.Write([]string{"ncode", "rating_point", "first_rating_date", "last_rating_date"})
			for _, e := range entries {
				last := ""
				if e.LastRatingDate != nil {
					last = *e.LastRatingDate
				}
				_ = w.Write([]string{
					e.Ncode,
					strconv.FormatFloat(float64(e.Point), 'f', 1, 32),
					e.FirstRatingDate,
					last,
				})
			}
			w.Flush()
			return w.Error()
		case "text":
			t := newTable()
			t.AppendHeader(table.Row{"ncode", "point", "first rated", "last rated"})
			for _, e := range entries {
				last := ""
				if e.LastRatingDate != nil {
					last = *e.LastRatingDate
				}
				t.AppendRow(table.Row{e.Ncode, e.Point, e.FirstRatingDate, last})
			}
			t.AppendFooter(table.Row{fmt.Sprintf("%d novels", len(entries))})
			t.Render()
			return nil
		}
		return fmt.Errorf("unknown format %q", format)
	},
}

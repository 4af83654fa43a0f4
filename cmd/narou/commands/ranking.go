package commands

import (
	"fmt"
	"log/slog"
	"time"

	"narou-client/internal/narou"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rankingCmd.Flags().String("rtype", "", "Raw ranking type, ex. 20240102-w. Overrides --date and --period.")
	rankingCmd.Flags().String("date", "", "Ranking date as YYYY-MM-DD, defaults to today.")
	rankingCmd.Flags().String("period", "d", "Ranking period: d, w, m or q.")
	rankingCmd.Flags().Int("gzip", 0, "Gzip level 1-5 requested from the api.")

	rankinCmd.Flags().Int("concurrency", 4, "Maximum number of requests in flight.")
	rankinCmd.Flags().Int("gzip", 0, "Gzip level 1-5 requested from the api.")

	rootCmd.AddCommand(rankingCmd)
	rootCmd.AddCommand(rankinCmd)
}

func rankingTypeFromFlags(cmd *cobra.Command) (string, error) {
	if rtype := stringFlag(cmd, "rtype"); rtype != nil {
		if !narou.ValidRankingType(*rtype) {
			return "", fmt.Errorf("invalid rtype %q, expected YYYYMMDD-d|w|m|q", *rtype)
		}
		return *rtype, nil
	}

	date := time.Now()
	if raw := stringFlag(cmd, "date"); raw != nil {
		parsed, err := time.Parse(time.DateOnly, *raw)
		if err != nil {
			return "", fmt.Errorf("invalid date: %w", err)
		}
		date = parsed
	}
	rawPeriod, _ := cmd.Flags().GetString("period")
	period, err := narou.ParsePeriod(rawPeriod)
	if err != nil {
		return "", err
	}
	return narou.RankingType(date, period)
}

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Prints the ranking of a given day, week, month or quarter.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rtype, err := rankingTypeFromFlags(cmd)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}

		req := narou.NewRankingRequest(rtype)
		req.Gzip = intFlag(cmd, "gzip")
		res, err := client.Ranking(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printItems(res.AllCount, res.Items)
	},
}

var rankinCmd = &cobra.Command{
	Use:   "rankin <ncode>...",
	Short: "Prints the ranking history of one or more novels.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		gzip := intFlag(cmd, "gzip")

		results := client.RankinBatch(cmd.Context(), args, concurrency, func(req *narou.RankinRequest) {
			req.Gzip = gzip
		})

		if outputJSON {
			type result struct {
				Ncode string              `json:"ncode"`
				Items []narou.RankinEntry `json:"items,omitempty"`
				Error string              `json:"error,omitempty"`
			}
			out := make([]result, len(results))
			for i, r := range results {
				out[i] = result{Ncode: r.Ncode, Items: r.Response.Items}
				if r.Err != nil {
					out[i].Error = r.Err.Error()
				}
			}
			return printJSON(out)
		}

		t := newTable()
		t.AppendHeader(table.Row{"ncode", "rtype", "pt", "rank"})
		for _, r := range results {
			if r.Err != nil {
				slog.Error("failed to fetch ranking history", "ncode", r.Ncode, "err", r.Err)
				continue
			}
			for _, entry := range r.Response.Items {
				row := table.Row{r.Ncode, "", "", ""}
				if entry.RType != nil {
					row[1] = *entry.RType
				}
				if entry.Pt != nil {
					row[2] = *entry.Pt
				}
				if entry.Rank != nil {
					row[3] = *entry.Rank
				}
				t.AppendRow(row)
			}
		}
		t.Render()
		return nil
	},
}

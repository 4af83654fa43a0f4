package commands

import (
	"log/slog"

	"narou-client/internal/narou"
	"narou-client/internal/narou/query"

	"github.com/spf13/cobra"
)

func init() {
	for _, cmd := range []*cobra.Command{novelCmd, nocturneCmd, userCmd} {
		cmd.Flags().String("out", "json", "Output format requested from the api (json, yaml, php, atom, jsonp).")
		cmd.Flags().Int("gzip", 0, "Gzip level 1-5 requested from the api, 0 disables compression.")
		cmd.Flags().String("of", "", "Field selector, ex. t-n-w.")
		cmd.Flags().Int("lim", 20, "Maximum number of results.")
		cmd.Flags().Int("st", 1, "Index of the first result.")
		cmd.Flags().String("order", "", "Sort order, ex. new, hyoka, weekly.")
		cmd.Flags().String("word", "", "Words to search for.")
		cmd.Flags().String("notword", "", "Words to exclude.")
	}
	for _, cmd := range []*cobra.Command{novelCmd, nocturneCmd} {
		cmd.Flags().String("ncode", "", "Ncodes separated by '-'.")
		cmd.Flags().Int("title", 0, "1 to search words in titles.")
		cmd.Flags().String("type", "", "Novel type filter: t, r, er, re, ter.")
		cmd.Flags().Bool("pickup", false, "Only novels in the pickup list.")
		cmd.Flags().String("lastup", "", "Last update filter, ex. thisweek.")
	}
	novelCmd.Flags().String("genre", "", "Genres separated by '-'.")
	novelCmd.Flags().String("biggenre", "", "Big genres separated by '-'.")
	novelCmd.Flags().String("userid", "", "Author user ids separated by '-'.")
	novelCmd.Flags().Bool("r15", false, "Only R15 novels.")
	nocturneCmd.Flags().String("nocgenre", "", "Sites separated by '-': 1 nocturne, 2 moonlight, 3 moonlight BL, 4 midnight.")
	nocturneCmd.Flags().String("xid", "", "X ids separated by '-'.")
	userCmd.Flags().Int("userid", 0, "User id.")
	userCmd.Flags().String("name1st", "", "First character of the name's reading.")
	userCmd.Flags().Int("minnovel", 0, "Minimum number of novels.")
	userCmd.Flags().Int("maxnovel", 0, "Maximum number of novels.")

	rootCmd.AddCommand(novelCmd)
	rootCmd.AddCommand(nocturneCmd)
	rootCmd.AddCommand(userCmd)
}

// warnSelector logs the codes of a field selector that the api will not
// understand, with the closest known code if there is one.
func warnSelector(selector *query.Selector, of *string) {
	if selector == nil || of == nil {
		return
	}
	for _, code := range selector.Unknown(*of) {
		suggestion, ok := selector.Suggest(code)
		if ok {
			slog.Warn("unknown field selector code", "code", code, "did_you_mean", suggestion)
			continue
		}
		slog.Warn("unknown field selector code", "code", code)
	}
}

var novelCmd = &cobra.Command{
	Use:   "novel",
	Short: "Searches novels of the general site.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		req := narou.NovelRequest{
			Gzip:     intFlag(cmd, "gzip"),
			Out:      stringFlag(cmd, "out"),
			Of:       stringFlag(cmd, "of"),
			Lim:      intFlag(cmd, "lim"),
			St:       intFlag(cmd, "st"),
			Order:    stringFlag(cmd, "order"),
			Word:     stringFlag(cmd, "word"),
			NotWord:  stringFlag(cmd, "notword"),
			Title:    intFlag(cmd, "title"),
			BigGenre: stringFlag(cmd, "biggenre"),
			Genre:    stringFlag(cmd, "genre"),
			UserID:   stringFlag(cmd, "userid"),
			IsR15:    boolFlag(cmd, "r15"),
			Ncode:    stringFlag(cmd, "ncode"),
			Type:     stringFlag(cmd, "type"),
			LastUp:   stringFlag(cmd, "lastup"),
			IsPickup: boolFlag(cmd, "pickup"),
		}
		if req.Out == nil {
			req.Out = narou.NewNovelRequest().Out
		}
		warnSelector(narou.NovelEndpoint.Selector, req.Of)

		res, err := client.SearchNovels(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printItems(res.AllCount, res.Items)
	},
}

var nocturneCmd = &cobra.Command{
	Use:   "nocturne",
	Short: "Searches novels of the R18 sites.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		req := narou.NocturneRequest{
			Gzip:     intFlag(cmd, "gzip"),
			Out:      stringFlag(cmd, "out"),
			Of:       stringFlag(cmd, "of"),
			Lim:      intFlag(cmd, "lim"),
			St:       intFlag(cmd, "st"),
			Order:    stringFlag(cmd, "order"),
			Word:     stringFlag(cmd, "word"),
			NotWord:  stringFlag(cmd, "notword"),
			Title:    intFlag(cmd, "title"),
			NocGenre: stringFlag(cmd, "nocgenre"),
			XID:      stringFlag(cmd, "xid"),
			Ncode:    stringFlag(cmd, "ncode"),
			Type:     stringFlag(cmd, "type"),
			LastUp:   stringFlag(cmd, "lastup"),
			IsPickup: boolFlag(cmd, "pickup"),
		}
		if req.Out == nil {
			req.Out = narou.NewNocturneRequest().Out
		}
		warnSelector(narou.NocturneEndpoint.Selector, req.Of)

		res, err := client.SearchNocturne(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printItems(res.AllCount, res.Items)
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Searches users.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		req := narou.UserRequest{
			Gzip:     intFlag(cmd, "gzip"),
			Out:      stringFlag(cmd, "out"),
			Of:       stringFlag(cmd, "of"),
			Lim:      intFlag(cmd, "lim"),
			St:       intFlag(cmd, "st"),
			Order:    stringFlag(cmd, "order"),
			Word:     stringFlag(cmd, "word"),
			NotWord:  stringFlag(cmd, "notword"),
			UserID:   intFlag(cmd, "userid"),
			Name1st:  stringFlag(cmd, "name1st"),
			MinNovel: intFlag(cmd, "minnovel"),
			MaxNovel: intFlag(cmd, "maxnovel"),
		}
		if req.Out == nil {
			req.Out = narou.NewUserRequest().Out
		}
		warnSelector(narou.UserEndpoint.Selector, req.Of)

		res, err := client.SearchUsers(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printItems(res.AllCount, res.Items)
	},
}

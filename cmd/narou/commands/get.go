package commands

import (
	"fmt"
	"os"
	"strings"

	"narou-client/internal/fetcher"

	"github.com/spf13/cobra"
)

func init() {
	getCmd.Flags().StringP("mode", "m", "random", "User agent mode: random or fixed.")
	getCmd.Flags().StringP("user-agent", "u", "", "Custom user agent, overrides --mode.")
	getCmd.Flags().StringSliceP("cookie", "c", nil, "Cookies as name=value, repeatable.")
	getCmd.Flags().StringP("output", "o", "", "Write the page to a file instead of stdout.")
	getCmd.Flags().BoolP("info", "i", false, "Only print information about the response.")
	getCmd.Flags().IntP("count", "n", 1, "Number of times to fetch the page, to compare user agents.")

	rootCmd.AddCommand(getCmd)
}

func parseCookies(raw []string) ([]fetcher.Cookie, error) {
	var cookies []fetcher.Cookie
	for _, pair := range raw {
		for _, part := range strings.Split(pair, ";") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, value, ok := strings.Cut(part, "=")
			if !ok || name == "" {
				return nil, fmt.Errorf("invalid cookie %q, expected name=value", part)
			}
			cookies = append(cookies, fetcher.Cookie{Name: name, Value: value})
		}
	}
	return cookies, nil
}

var getCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Fetches a page with the configured user agent and delay policy.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFetcher()
		if err != nil {
			return err
		}

		mode, _ := cmd.Flags().GetString("mode")
		switch mode {
		case "random":
			f.UserAgent().SetRandomMode()
		case "fixed":
			f.UserAgent().SetFixedMode()
		default:
			return fmt.Errorf("unknown user agent mode %q", mode)
		}
		if ua := stringFlag(cmd, "user-agent"); ua != nil {
			err = f.UserAgent().SetUserAgent(*ua)
			if err != nil {
				return err
			}
		}

		rawCookies, _ := cmd.Flags().GetStringSlice("cookie")
		cookies, err := parseCookies(rawCookies)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		info, _ := cmd.Flags().GetBool("info")
		count, _ := cmd.Flags().GetInt("count")

		for i := 0; i < count; i++ {
			html, err := f.FetchWithOptions(cmd.Context(), args[0], fetcher.FetchOptions{
				Cookies: cookies,
			})
			if err != nil {
				return err
			}

			if info || count > 1 {
				current, ok := f.UserAgent().Current()
				if !ok {
					current = "(random per request)"
				}
				fmt.Printf("request %d: %d bytes, mode %s, user agent %s\n", i+1, len(html), f.UserAgent().Mode(), current)
				continue
			}
			if output != "" {
				err = os.WriteFile(output, []byte(html), 0644)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "saved %d bytes to %s\n", len(html), output)
				continue
			}
			fmt.Print(html)
		}
		return nil
	},
}

package commands

import (
	"fmt"
	"os"

	"narou-client/internal/narou"

	"github.com/spf13/cobra"
)

func init() {
	decodeCmd.Flags().StringP("endpoint", "e", "novel", "Endpoint the body came from: novel, nocturne, user, ranking or rankin.")
	decodeCmd.Flags().String("format", "auto", "Body format: auto, json, yaml, php, atom or jsonp.")
	decodeCmd.Flags().Bool("gzip", false, "The body is gzip compressed.")
	decodeCmd.Flags().Bool("skip-invalid", false, "Drop entities that fail to decode instead of failing.")

	rootCmd.AddCommand(decodeCmd)
}

func decodeAndPrint[E any](data []byte, format narou.OutputFormat, gzipped bool, endpoint narou.Endpoint, policy narou.DecodePolicy) error {
	res, err := narou.Decode[E](data, format, gzipped, endpoint, policy)
	if err != nil {
		return err
	}
	if res.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d invalid entities\n", res.Skipped)
	}
	return printItems(res.AllCount, res.Items)
}

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decodes a saved api response the same way the client does.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("endpoint")
		endpoint, ok := narou.Endpoints[name]
		if !ok {
			return fmt.Errorf("unknown endpoint %q", name)
		}
		gzipped, _ := cmd.Flags().GetBool("gzip")
		skip, _ := cmd.Flags().GetBool("skip-invalid")
		policy := narou.AbortBatch
		if skip {
			policy = narou.SkipInvalid
		}

		rawFormat, _ := cmd.Flags().GetString("format")
		var format narou.OutputFormat
		if rawFormat == "auto" {
			body, err := narou.Decompress(data, gzipped)
			if err != nil {
				return err
			}
			format = narou.DetectFormat(body)
		} else {
			format = narou.ParseOutputFormat(rawFormat)
		}

		switch endpoint.Name {
		case narou.NovelEndpoint.Name:
			return decodeAndPrint[narou.NovelInfo](data, format, gzipped, endpoint, policy)
		case narou.NocturneEndpoint.Name:
			return decodeAndPrint[narou.NocturneNovelInfo](data, format, gzipped, endpoint, policy)
		case narou.UserEndpoint.Name:
			return decodeAndPrint[narou.UserInfo](data, format, gzipped, endpoint, policy)
		case narou.RankingEndpoint.Name:
			return decodeAndPrint[narou.RankingEntry](data, format, gzipped, endpoint, policy)
		case narou.RankinEndpoint.Name:
			return decodeAndPrint[narou.RankinEntry](data, format, gzipped, endpoint, policy)
		}
		return fmt.Errorf("unknown endpoint %q", name)
	},
}

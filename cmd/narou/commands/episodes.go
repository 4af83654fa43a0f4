package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"narou-client/internal/fetcher"
	"narou-client/internal/narou"
	"narou-client/internal/scrapers/episode"

	"github.com/spf13/cobra"
)

func init() {
	episodesCmd.Flags().StringP("type", "t", "auto", "Novel type: short, serial or auto to ask the search api.")
	episodesCmd.Flags().IntP("episodes", "e", 0, "Number of episodes, required for serials unless --type is auto.")
	episodesCmd.Flags().StringP("output", "o", "./output", "Output directory.")
	episodesCmd.Flags().Bool("nocturne", false, "Fetch from the R18 site.")
	episodesCmd.Flags().Bool("single-file", false, "Save every episode into one file.")
	episodesCmd.Flags().Bool("text", false, "Save the extracted text instead of the html.")
	episodesCmd.Flags().Int("min-delay", 0, "Minimum delay between requests in milliseconds.")
	episodesCmd.Flags().Int("max-delay", 0, "Maximum delay between requests in milliseconds.")

	rootCmd.AddCommand(episodesCmd)
}

type episodesMetadata struct {
	Ncode        string    `json:"ncode"`
	Type         string    `json:"type"`
	EpisodeCount int       `json:"episode_count"`
	TotalBytes   int       `json:"total_bytes"`
	Nocturne     bool      `json:"nocturne"`
	FetchedAt    time.Time `json:"fetched_at"`
}

func novelTypeFromFlags(cmd *cobra.Command, ncode string, nocturne bool) (episode.NovelType, error) {
	kind, _ := cmd.Flags().GetString("type")
	episodes, _ := cmd.Flags().GetInt("episodes")

	switch kind {
	case "short":
		return episode.ShortStory(), nil
	case "serial":
		if episodes <= 0 {
			return episode.NovelType{}, fmt.Errorf("--episodes is required for serial novels")
		}
		return episode.Serial(episodes), nil
	case "auto":
	default:
		return episode.NovelType{}, fmt.Errorf("unknown novel type %q", kind)
	}

	client, err := newClient()
	if err != nil {
		return episode.NovelType{}, err
	}
	of := "nt-ga"
	if nocturne {
		req := narou.NewNocturneRequest()
		req.Ncode = &ncode
		req.Of = &of
		res, err := client.SearchNocturne(cmd.Context(), req)
		if err != nil {
			return episode.NovelType{}, err
		}
		if len(res.Items) == 0 {
			return episode.NovelType{}, fmt.Errorf("novel %s not found", ncode)
		}
		return episode.NovelTypeOf(res.Items[0].NovelType, res.Items[0].GeneralAllNo)
	}

	req := narou.NewNovelRequest()
	req.Ncode = &ncode
	req.Of = &of
	res, err := client.SearchNovels(cmd.Context(), req)
	if err != nil {
		return episode.NovelType{}, err
	}
	if len(res.Items) == 0 {
		return episode.NovelType{}, fmt.Errorf("novel %s not found", ncode)
	}
	return episode.NovelTypeOf(res.Items[0].NovelType, res.Items[0].GeneralAllNo)
}

func episodeContents(e episode.Episode, text bool) (string, error) {
	if !text {
		return e.HTML, nil
	}
	title, err := e.Title()
	if err != nil {
		return "", err
	}
	body, err := e.Text()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\n\n%s\n", title, body), nil
}

var episodesCmd = &cobra.Command{
	Use:   "episodes <ncode>",
	Short: "Downloads every episode of a novel.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ncode := strings.ToLower(args[0])
		nocturne, _ := cmd.Flags().GetBool("nocturne")
		output, _ := cmd.Flags().GetString("output")
		singleFile, _ := cmd.Flags().GetBool("single-file")
		text, _ := cmd.Flags().GetBool("text")

		novelType, err := novelTypeFromFlags(cmd, ncode, nocturne)
		if err != nil {
			return err
		}

		f, err := newFetcher()
		if err != nil {
			return err
		}
		minDelay, maxDelay := intFlag(cmd, "min-delay"), intFlag(cmd, "max-delay")
		if minDelay != nil || maxDelay != nil {
			current := f.DelayConfig()
			min, max := current.Min, current.Max
			if minDelay != nil {
				min = time.Duration(*minDelay) * time.Millisecond
			}
			if maxDelay != nil {
				max = time.Duration(*maxDelay) * time.Millisecond
			}
			delay, err := fetcher.NewDelayConfig(min, max)
			if err != nil {
				return err
			}
			f.SetDelayConfig(delay)
		}

		scraper := episode.NewScraper(f, tel)
		if nocturne {
			scraper = episode.NewNocturneScraper(f, tel)
			// the R18 site asks for age confirmation otherwise
			err = f.AddCookie(episode.NocturneHost, "over18=yes; Path=/")
			if err != nil {
				return err
			}
		}

		slog.Info("fetching novel", "ncode", ncode, "type", novelType.String(), "nocturne", nocturne)
		content, err := scraper.FetchAll(cmd.Context(), ncode, novelType)
		if err != nil {
			return err
		}
		slog.Info("fetched novel", "episodes", content.EpisodeCount(), "bytes", content.TotalSizeBytes())

		dir := output
		if !singleFile {
			dir = filepath.Join(output, ncode)
		}
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return err
		}

		ext := ".html"
		if text {
			ext = ".txt"
		}

		if singleFile {
			var combined strings.Builder
			for _, e := range content.Episodes {
				contents, err := episodeContents(e, text)
				if err != nil {
					return err
				}
				if text {
					fmt.Fprintf(&combined, "==== %d ====\n", e.Number)
				} else {
					fmt.Fprintf(&combined, "<!-- Episode %d -->\n", e.Number)
				}
				combined.WriteString(contents)
				combined.WriteString("\n\n")
			}
			path := filepath.Join(dir, ncode+ext)
			err = os.WriteFile(path, []byte(combined.String()), 0644)
			if err != nil {
				return err
			}
			slog.Info("saved novel", "path", path)
		} else {
			for _, e := range content.Episodes {
				name := fmt.Sprintf("%04d%s", e.Number, ext)
				if !content.Type.Serial {
					name = ncode + ext
				}
				contents, err := episodeContents(e, text)
				if err != nil {
					return err
				}
				err = os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644)
				if err != nil {
					return err
				}
			}
			slog.Info("saved episodes", "dir", dir)
		}

		typeName := "short"
		if novelType.Serial {
			typeName = fmt.Sprintf("serial_%d", novelType.TotalEpisodes)
		}
		metadata, err := json.MarshalIndent(episodesMetadata{
			Ncode:        ncode,
			Type:         typeName,
			EpisodeCount: content.EpisodeCount(),
			TotalBytes:   content.TotalSizeBytes(),
			Nocturne:     nocturne,
			FetchedAt:    time.Now().UTC(),
		}, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, "metadata.json"), metadata, 0644)
	},
}

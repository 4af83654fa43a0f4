// Package episode downloads the episode pages of a novel.
package episode

import (
	"context"
	"fmt"
	"strings"

	"narou-client/internal/components/assert"
	"narou-client/internal/components/telemetry"
	"narou-client/internal/narou"
	"narou-client/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_scraper_fetch_all   = "scraper.fetch-all"
	report_scraper_fetch_batch = "scraper.fetch-batch"
	report_scraper_progress    = "scraper.progress"
)

const (
	NarouHost    = "https://ncode.syosetu.com"
	NocturneHost = "https://novel18.syosetu.com"
)

// NovelType tells how many pages a novel has.
type NovelType struct {
	Serial bool
	// TotalEpisodes is only meaningful for serials.
	TotalEpisodes int
}

// ShortStory is a novel on a single page.
func ShortStory() NovelType {
	return NovelType{}
}

func Serial(totalEpisodes int) NovelType {
	return NovelType{Serial: true, TotalEpisodes: totalEpisodes}
}

func (t NovelType) String() string {
	if t.Serial {
		return fmt.Sprintf("serial (%d episodes)", t.TotalEpisodes)
	}
	return "short story"
}

// NovelTypeOf derives the novel type from search api metadata, novel_type
// 2 is a short story.
func NovelTypeOf(novelType, generalAllNo *uint32) (NovelType, error) {
	if novelType == nil {
		return NovelType{}, fmt.Errorf("novel_type is missing")
	}
	if *novelType == 2 {
		return ShortStory(), nil
	}
	if generalAllNo == nil {
		return NovelType{}, fmt.Errorf("general_all_no is missing")
	}
	return Serial(int(*generalAllNo)), nil
}

// Episode is the raw html of one page. Number is 0 for short stories.
type Episode struct {
	Number int
	HTML   string
}

func (e Episode) document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(e.HTML))
}

// Title returns the episode subtitle, or the novel title for short stories.
func (e Episode) Title() (string, error) {
	doc, err := e.document()
	if err != nil {
		return "", err
	}
	for _, selector := range []string{".p-novel__title", ".novel_subtitle", ".novel_title"} {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		return htmlutil.NormalizeText(htmlutil.GetText(sel.Nodes[0])), nil
	}
	return "", nil
}

// Text returns the body of the episode, one line per paragraph. Blank
// paragraphs are kept since they are part of the layout.
func (e Episode) Text() (string, error) {
	doc, err := e.document()
	if err != nil {
		return "", err
	}
	for _, selector := range []string{".p-novel__body .js-novel-text p", "#novel_honbun p"} {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		// furigana
		sel.Find("rt, rp").Remove()
		return strings.Join(htmlutil.Lines(sel, true), "\n"), nil
	}
	return "", nil
}

type Content struct {
	Ncode    string
	Type     NovelType
	Episodes []Episode
}

func (c Content) EpisodeCount() int {
	return len(c.Episodes)
}

// Episode looks up an episode by number, short stories only have episode 0.
func (c Content) Episode(number int) (Episode, bool) {
	if !c.Type.Serial {
		if number != 0 || len(c.Episodes) == 0 {
			return Episode{}, false
		}
		return c.Episodes[0], true
	}
	for _, e := range c.Episodes {
		if e.Number == number {
			return e, true
		}
	}
	return Episode{}, false
}

// TotalSizeBytes is the size of all pages, markup included.
func (c Content) TotalSizeBytes() int {
	total := 0
	for _, e := range c.Episodes {
		total += len(e.HTML)
	}
	return total
}

// Fetcher is satisfied by *fetcher.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, link string) (string, error)
}

type Scraper struct {
	fetcher Fetcher
	host    string
	tel     telemetry.API
}

func NewScraper(f Fetcher, tel telemetry.API) *Scraper {
	return newScraper(f, NarouHost, tel)
}

// NewNocturneScraper fetches from the R18 site.
func NewNocturneScraper(f Fetcher, tel telemetry.API) *Scraper {
	return newScraper(f, NocturneHost, tel)
}

func newScraper(f Fetcher, host string, tel telemetry.API) *Scraper {
	assert.NotNil("fetcher", f)
	assert.NotNil("telemetry", tel)
	return &Scraper{
		fetcher: f,
		host:    host,
		tel:     telemetry.NewScopedAPI("episode_scraper", tel),
	}
}

// SetHost changes the site pages are fetched from.
func (s *Scraper) SetHost(host string) {
	s.host = strings.TrimSuffix(host, "/")
}

// URL builds the page url of an episode, number 0 is the novel top page
// which holds the text of short stories.
func (s *Scraper) URL(ncode string, number int) string {
	ncode = strings.ToLower(ncode)
	if number <= 0 {
		return fmt.Sprintf("%s/%s/", s.host, ncode)
	}
	return fmt.Sprintf("%s/%s/%d/", s.host, ncode, number)
}

// FetchAll downloads every page of a novel in order, stopping at the first
// failure.
func (s *Scraper) FetchAll(ctx context.Context, ncode string, novelType NovelType) (Content, error) {
	content := Content{Ncode: ncode, Type: novelType}

	if !novelType.Serial {
		link := s.URL(ncode, 0)
		s.tel.ReportDebug("fetch short story", link)
		html, err := s.fetcher.Fetch(ctx, link)
		if err != nil {
			s.tel.ReportBroken(report_scraper_fetch_all, ncode, err)
			return Content{}, fmt.Errorf("fetch short story %s: %w", ncode, err)
		}
		content.Episodes = []Episode{{Number: 0, HTML: html}}
		return content, nil
	}

	content.Episodes = make([]Episode, 0, novelType.TotalEpisodes)
	for n := 1; n <= novelType.TotalEpisodes; n++ {
		link := s.URL(ncode, n)
		s.tel.ReportDebug("fetch episode", n, novelType.TotalEpisodes, link)
		html, err := s.fetcher.Fetch(ctx, link)
		if err != nil {
			s.tel.ReportBroken(report_scraper_fetch_all, ncode, n, err)
			return Content{}, fmt.Errorf("fetch episode %d of %s: %w", n, ncode, err)
		}
		content.Episodes = append(content.Episodes, Episode{Number: n, HTML: html})
		if n%10 == 0 {
			s.tel.ReportCount(report_scraper_progress, int64(n))
		}
	}
	return content, nil
}

// FetchBatch downloads the given episodes of a serial.
func (s *Scraper) FetchBatch(ctx context.Context, ncode string, numbers []int) (map[int]Episode, error) {
	episodes := make(map[int]Episode, len(numbers))
	for _, n := range numbers {
		if n <= 0 {
			return nil, fmt.Errorf("invalid episode number %d", n)
		}
		link := s.URL(ncode, n)
		s.tel.ReportDebug("fetch episode", n, link)
		html, err := s.fetcher.Fetch(ctx, link)
		if err != nil {
			s.tel.ReportBroken(report_scraper_fetch_batch, ncode, n, err)
			return nil, fmt.Errorf("fetch episode %d of %s: %w", n, ncode, err)
		}
		episodes[n] = Episode{Number: n, HTML: html}
	}
	return episodes, nil
}

// FromNovelInfo fetches every page of a novel found through the search api.
func (s *Scraper) FromNovelInfo(ctx context.Context, info narou.NovelInfo) (Content, error) {
	if info.Ncode == nil {
		return Content{}, fmt.Errorf("novel has no ncode")
	}
	novelType, err := NovelTypeOf(info.NovelType, info.GeneralAllNo)
	if err != nil {
		return Content{}, fmt.Errorf("%s: %w", *info.Ncode, err)
	}
	return s.FetchAll(ctx, *info.Ncode, novelType)
}

// Package rating scrapes the public list of novels a user has rated.
package rating

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"narou-client/internal/components/assert"
	"narou-client/internal/components/telemetry"
	"narou-client/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_scraper_fetch_all  = "scraper.fetch-all"
	report_scraper_parse_page = "scraper.parse-page"
)

const DefaultBaseURL = "https://mypage.syosetu.com/mypagenovelhyoka/list/userid"

// Entry is one rated novel.
type Entry struct {
	Ncode string `json:"ncode"`
	// Point is between 1 and 5 in steps of 0.5.
	Point float32 `json:"rating_point"`
	// dates are kept as shown, ex. 2024年1月2日
	FirstRatingDate string  `json:"first_rating_date"`
	LastRatingDate  *string `json:"last_rating_date,omitempty"`
}

var (
	firstDateRegex = regexp.MustCompile(`初回評価日：(\d{4}年\d{1,2}月\d{1,2}日)`)
	lastDateRegex  = regexp.MustCompile(`最終評価日：(\d{4}年\d{1,2}月\d{1,2}日)`)
	ncodeRegex     = regexp.MustCompile(`^https://ncode\.syosetu\.com/([^/?#]+)`)
)

// ParsePage extracts the entries of one list page. An entry that lacks a
// first rating date or a score fails the whole page.
func ParsePage(html string) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	entries := []Entry{}
	var parseErr error
	doc.Find("a.c-panel__list-item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		groups := ncodeRegex.FindStringSubmatch(item.AttrOr("href", ""))
		if len(groups) < 2 {
			return true
		}
		ncode := groups[1]

		text := htmlutil.GetText(item.Nodes[0])

		first := firstDateRegex.FindStringSubmatch(text)
		if len(first) < 2 {
			parseErr = fmt.Errorf("no first rating date for %s", ncode)
			return false
		}
		entry := Entry{Ncode: ncode, FirstRatingDate: first[1]}
		if last := lastDateRegex.FindStringSubmatch(text); len(last) >= 2 {
			entry.LastRatingDate = &last[1]
		}

		scoreAttr, ok := item.Find("[data-score]").First().Attr("data-score")
		if !ok {
			scoreAttr, ok = item.Attr("data-score")
		}
		if !ok {
			parseErr = fmt.Errorf("no rating point for %s", ncode)
			return false
		}
		score, err := strconv.ParseFloat(scoreAttr, 32)
		if err != nil {
			parseErr = fmt.Errorf("rating point of %s: %w", ncode, err)
			return false
		}
		entry.Point = float32(score)

		entries = append(entries, entry)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return entries, nil
}

// HasNextPage reports whether the pager links to a following page. The
// last page renders "次へ" as a disabled span instead of a link.
func HasNextPage(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	if doc.Find(`span.c-pager__item.is-disabled[title="次へ"]`).Length() > 0 {
		return false
	}
	return doc.Find(`a[title="次へ"][href*="?p="]`).Length() > 0
}

// Fetcher is satisfied by *fetcher.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, link string) (string, error)
}

type Scraper struct {
	fetcher Fetcher
	baseURL string
	tel     telemetry.API
}

func NewScraper(f Fetcher, tel telemetry.API) *Scraper {
	assert.NotNil("fetcher", f)
	assert.NotNil("telemetry", tel)
	return &Scraper{
		fetcher: f,
		baseURL: DefaultBaseURL,
		tel:     telemetry.NewScopedAPI("rating_scraper", tel),
	}
}

func (s *Scraper) SetBaseURL(base string) {
	s.baseURL = strings.TrimSuffix(base, "/")
}

// URL returns the address of a list page, pages start at 1.
func (s *Scraper) URL(userID uint32, page int) string {
	if page <= 1 {
		return fmt.Sprintf("%s/%d/", s.baseURL, userID)
	}
	return fmt.Sprintf("%s/%d/?p=%d", s.baseURL, userID, page)
}

// FetchAll walks the list pages of a user until a page is empty or has no
// next page. Pacing between pages is left to the fetcher.
func (s *Scraper) FetchAll(ctx context.Context, userID uint32) ([]Entry, error) {
	all := []Entry{}
	for page := 1; ; page++ {
		link := s.URL(userID, page)
		s.tel.ReportDebug("fetch rating page", page, link)

		html, err := s.fetcher.Fetch(ctx, link)
		if err != nil {
			s.tel.ReportBroken(report_scraper_fetch_all, userID, page, err)
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		entries, err := ParsePage(html)
		if err != nil {
			s.tel.ReportBroken(report_scraper_parse_page, userID, page, err)
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(entries) == 0 {
			break
		}
		all = append(all, entries...)
		if !HasNextPage(html) {
			break
		}
	}
	return all, nil
}

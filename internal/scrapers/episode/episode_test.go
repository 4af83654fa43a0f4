package episode

import (
	"context"
	_ "embed"
	"fmt"
	"sync"
	"testing"

	"narou-client/internal/components/telemetry"
	"narou-client/internal/narou"

	"github.com/stretchr/testify/require"
)

//go:embed testdata/episode.html
var episodePage string

//go:embed testdata/legacy.html
var legacyPage string

type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, link string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, link)
	page, ok := f.pages[link]
	if !ok {
		return "", fmt.Errorf("no page for %s", link)
	}
	return page, nil
}

func TestURL(t *testing.T) {
	s := NewScraper(&fakeFetcher{}, &telemetry.Recorder{})
	require.Equal(t, "https://ncode.syosetu.com/n1234ab/", s.URL("N1234AB", 0))
	require.Equal(t, "https://ncode.syosetu.com/n1234ab/12/", s.URL("n1234ab", 12))

	nocturne := NewNocturneScraper(&fakeFetcher{}, &telemetry.Recorder{})
	require.Equal(t, "https://novel18.syosetu.com/n9999zz/3/", nocturne.URL("n9999zz", 3))

	nocturne.SetHost("http://localhost:8080/")
	require.Equal(t, "http://localhost:8080/n9999zz/", nocturne.URL("n9999zz", 0))
}

func TestFetchAllShortStory(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://ncode.syosetu.com/n0001a/": legacyPage,
	}}
	s := NewScraper(f, &telemetry.Recorder{})

	content, err := s.FetchAll(context.Background(), "n0001a", ShortStory())
	require.NoError(t, err)
	require.Equal(t, 1, content.EpisodeCount())
	require.Equal(t, len(legacyPage), content.TotalSizeBytes())

	ep, ok := content.Episode(0)
	require.True(t, ok)
	require.Equal(t, 0, ep.Number)
	_, ok = content.Episode(1)
	require.False(t, ok)

	title, err := ep.Title()
	require.NoError(t, err)
	require.Equal(t, "短編のテスト", title)
	text, err := ep.Text()
	require.NoError(t, err)
	require.Equal(t, "一行目\n二行目", text)
}

func TestFetchAllSerial(t *testing.T) {
	pages := map[string]string{}
	for n := 1; n <= 12; n++ {
		pages[fmt.Sprintf("https://ncode.syosetu.com/n1234ab/%d/", n)] = episodePage
	}
	f := &fakeFetcher{pages: pages}
	rec := &telemetry.Recorder{}
	s := NewScraper(f, rec)

	content, err := s.FetchAll(context.Background(), "n1234ab", Serial(12))
	require.NoError(t, err)
	require.Equal(t, 12, content.EpisodeCount())
	require.Equal(t, "https://ncode.syosetu.com/n1234ab/1/", f.fetched[0])
	require.Equal(t, "https://ncode.syosetu.com/n1234ab/12/", f.fetched[11])

	ep, ok := content.Episode(7)
	require.True(t, ok)
	require.Equal(t, 7, ep.Number)
	_, ok = content.Episode(0)
	require.False(t, ok)

	title, err := ep.Title()
	require.NoError(t, err)
	require.Equal(t, "第一話　始まり", title)
	text, err := ep.Text()
	require.NoError(t, err)
	require.Equal(t, "　朝が来た。\n\n「おはよう」彼女は言った。", text)

	require.Len(t, rec.Reports("count"), 1)
}

func TestFetchAllStopsAtFailure(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://ncode.syosetu.com/n1234ab/1/": episodePage,
	}}
	rec := &telemetry.Recorder{}
	s := NewScraper(f, rec)

	_, err := s.FetchAll(context.Background(), "n1234ab", Serial(3))
	require.Error(t, err)
	require.Len(t, f.fetched, 2)
	require.Len(t, rec.Reports("broken"), 1)
}

func TestFetchBatch(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://ncode.syosetu.com/n1234ab/2/": "two",
		"https://ncode.syosetu.com/n1234ab/5/": "five",
	}}
	s := NewScraper(f, &telemetry.Recorder{})

	episodes, err := s.FetchBatch(context.Background(), "n1234ab", []int{5, 2})
	require.NoError(t, err)
	require.Equal(t, map[int]Episode{
		2: {Number: 2, HTML: "two"},
		5: {Number: 5, HTML: "five"},
	}, episodes)

	_, err = s.FetchBatch(context.Background(), "n1234ab", []int{0})
	require.Error(t, err)
}

func TestNovelTypeOf(t *testing.T) {
	short, long, episodes := uint32(2), uint32(1), uint32(40)

	nt, err := NovelTypeOf(&short, nil)
	require.NoError(t, err)
	require.Equal(t, ShortStory(), nt)

	nt, err = NovelTypeOf(&long, &episodes)
	require.NoError(t, err)
	require.Equal(t, Serial(40), nt)

	_, err = NovelTypeOf(&long, nil)
	require.Error(t, err)
	_, err = NovelTypeOf(nil, &episodes)
	require.Error(t, err)
}

func TestFromNovelInfo(t *testing.T) {
	ncode, novelType := "n0001a", uint32(2)
	f := &fakeFetcher{pages: map[string]string{
		"https://ncode.syosetu.com/n0001a/": legacyPage,
	}}
	s := NewScraper(f, &telemetry.Recorder{})

	content, err := s.FromNovelInfo(context.Background(), narou.NovelInfo{
		Ncode:     &ncode,
		NovelType: &novelType,
	})
	require.NoError(t, err)
	require.Equal(t, 1, content.EpisodeCount())

	_, err = s.FromNovelInfo(context.Background(), narou.NovelInfo{})
	require.Error(t, err)
}

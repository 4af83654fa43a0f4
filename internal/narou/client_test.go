package narou

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"narou-client/internal/components/telemetry"
	"narou-client/internal/useragent"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	hits atomic.Int64
}

// newTestServer serves every endpoint under /<endpoint name>/ with handler.
func newTestServer(t testing.TB, handler http.HandlerFunc) *testServer {
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestClient(t testing.TB, ts *testServer, policy DecodePolicy, tel telemetry.API) *Client {
	baseURLs := map[string]string{}
	for name := range Endpoints {
		baseURLs[name] = ts.URL + "/" + name + "/"
	}
	ua, err := useragent.NewFixed("narou-test/1.0", nil)
	require.NoError(t, err)
	client, err := NewClient(Options{
		BaseURLs:     baseURLs,
		UserAgent:    ua,
		DecodePolicy: policy,
	}, tel)
	require.NoError(t, err)
	return client
}

func staticBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func TestSearchNovelsSingleEntity(t *testing.T) {
	var rawQuery, userAgent, path string
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		userAgent = r.UserAgent()
		path = r.URL.Path
		_, _ = w.Write([]byte(`[{"title":"Foo","ncode":"n1234ab"}]`))
	})
	client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})

	req := NewNovelRequest()
	req.Ncode = ptr("n1234ab")
	res, err := client.SearchNovels(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, "out=json&ncode=n1234ab", rawQuery)
	require.Equal(t, "narou-test/1.0", userAgent)
	require.Equal(t, "/novel/", path)

	require.Nil(t, res.AllCount)
	require.Len(t, res.Items, 1)
	require.Equal(t, "Foo", *res.Items[0].Title)
	require.Equal(t, "n1234ab", *res.Items[0].Ncode)
	require.Nil(t, res.Items[0].Writer)
}

func TestFieldSelectorRemapped(t *testing.T) {
	var of string
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		of = r.URL.Query().Get("of")
		_, _ = w.Write([]byte(`[{"allcount":0}]`))
	})
	client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})

	req := NewNovelRequest()
	req.Of = ptr("t-n-u-zz")
	res, err := client.SearchNovels(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "title-ncode-userid-zz", of)
	require.NotNil(t, res.AllCount)
	require.Equal(t, uint32(0), *res.AllCount)
	require.Empty(t, res.Items)
}

func TestEnvelopeShapes(t *testing.T) {
	table := []struct {
		name     string
		body     string
		count    *uint32
		ncodes   []string
		ranking  bool
		rankings int
	}{
		{
			name:   "count record",
			body:   `[{"allcount":2},{"ncode":"N1"},{"ncode":"N2"}]`,
			count:  ptr(uint32(2)),
			ncodes: []string{"N1", "N2"},
		},
		{
			name:   "negative count is dropped",
			body:   `[{"allcount":-1},{"ncode":"N1"}]`,
			ncodes: []string{"N1"},
		},
		{
			name:   "count overflowing uint32 is dropped",
			body:   `[{"allcount":4294967296},{"ncode":"N1"}]`,
			ncodes: []string{"N1"},
		},
		{
			name:   "count record only counts first",
			body:   `[{"ncode":"N1"},{"allcount":2,"ncode":"N2"}]`,
			ncodes: []string{"N1", "N2"},
		},
		{
			name:   "bare novel object",
			body:   `{"ncode":"N1","title":"Foo"}`,
			ncodes: []string{"N1"},
		},
		{
			name:   "bare count object is not extracted",
			body:   `{"allcount":5}`,
			ncodes: []string{},
		},
		{
			name:   "empty body",
			body:   "  \n",
			ncodes: []string{},
		},
		{
			name:   "scalar",
			body:   `42`,
			ncodes: []string{},
		},
		{
			name:   "null",
			body:   `null`,
			ncodes: []string{},
		},
		{
			name:     "bare ranking object",
			body:     `{"ncode":"N1","pt":10,"rank":1}`,
			ranking:  true,
			rankings: 1,
		},
		{
			name:     "bare ranking object missing rank",
			body:     `{"ncode":"N1","pt":10}`,
			ranking:  true,
			rankings: 0,
		},
		{
			name:     "ranking has no count record",
			body:     `[{"allcount":1},{"ncode":"N1","pt":10,"rank":1}]`,
			ranking:  true,
			rankings: 2,
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			ts := newTestServer(t, staticBody(row.body))
			client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})

			if row.ranking {
				res, err := client.Ranking(context.Background(), NewRankingRequest("20240102-w"))
				require.NoError(t, err)
				require.Nil(t, res.AllCount)
				require.Len(t, res.Items, row.rankings)
				return
			}

			res, err := client.SearchNovels(context.Background(), NewNovelRequest())
			require.NoError(t, err)
			require.Equal(t, row.count, res.AllCount)
			ncodes := []string{}
			for _, item := range res.Items {
				ncodes = append(ncodes, *item.Ncode)
			}
			require.Equal(t, row.ncodes, ncodes)
		})
	}
}

func gzipBytes(t testing.TB, data []byte) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestGzipResponse(t *testing.T) {
	body := []byte(`[{"allcount":1},{"ncode":"N1","title":"圧縮"}]`)
	compressed := gzipBytes(t, body)
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "5", r.URL.Query().Get("gzip"))
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(compressed)
	})
	client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})

	req := NewNovelRequest()
	req.Gzip = ptr(5)
	res, err := client.SearchNovels(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, uint32(1), *res.AllCount)
	require.Equal(t, "圧縮", *res.Items[0].Title)

	plain, err := Decode[NovelInfo](body, FormatJSON, false, NovelEndpoint, AbortBatch)
	require.NoError(t, err)
	require.Equal(t, plain, res)
}

func TestGzipFlagWithPlainBody(t *testing.T) {
	ts := newTestServer(t, staticBody(`[{"ncode":"N1"}]`))
	client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})

	req := NewNovelRequest()
	req.Gzip = ptr(1)
	_, err := client.SearchNovels(context.Background(), req)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDecompression)
	require.Equal(t, KindDecompression, KindOf(err))
}

func TestUnsupportedFormatsFailClosed(t *testing.T) {
	for _, out := range []string{"php", "atom", "jsonp"} {
		t.Run(out, func(t *testing.T) {
			ts := newTestServer(t, staticBody(`[{"ncode":"N1"}]`))
			client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})

			req := NewNovelRequest()
			req.Out = ptr(out)
			_, err := client.SearchNovels(context.Background(), req)
			require.ErrorIs(t, err, ErrUnsupportedFormat)
			require.Equal(t, KindUnsupportedFormat, KindOf(err))
			require.Equal(t, int64(0), ts.hits.Load())
		})
	}

	t.Run("wins over server errors", func(t *testing.T) {
		ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})

		req := NewNovelRequest()
		req.Out = ptr("php")
		_, err := client.SearchNovels(context.Background(), req)
		require.Equal(t, KindUnsupportedFormat, KindOf(err))
		require.Equal(t, int64(0), ts.hits.Load())
	})
}

func TestNon2xxIsNetworkError(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`[{"ncode":"N1"}]`))
	})
	rec := &telemetry.Recorder{}
	client := newTestClient(t, ts, AbortBatch, rec)

	_, err := client.SearchUsers(context.Background(), NewUserRequest())
	require.ErrorIs(t, err, ErrNetwork)
	require.True(t, IsTransient(err))

	var narouErr *Error
	require.True(t, errors.As(err, &narouErr))
	require.Equal(t, http.StatusServiceUnavailable, narouErr.StatusCode)
	require.Equal(t, "user", narouErr.Op)

	broken := rec.Reports("broken")
	require.NotEmpty(t, broken)
	require.Equal(t, "narou: "+report_client_execute, broken[len(broken)-1].ID)
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	ts := newTestServer(t, staticBody(""))
	client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})
	ts.Close()

	_, err := client.SearchNovels(context.Background(), NewNovelRequest())
	require.ErrorIs(t, err, ErrNetwork)
	require.Zero(t, err.(*Error).StatusCode)
}

func TestDecodePolicy(t *testing.T) {
	body := `[{"allcount":3},{"ncode":"N1"},{"ncode":5},{"ncode":"N3"}]`

	t.Run("abort", func(t *testing.T) {
		ts := newTestServer(t, staticBody(body))
		client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})
		_, err := client.SearchNovels(context.Background(), NewNovelRequest())
		require.ErrorIs(t, err, ErrDeserialization)
	})

	t.Run("skip", func(t *testing.T) {
		ts := newTestServer(t, staticBody(body))
		rec := &telemetry.Recorder{}
		client := newTestClient(t, ts, SkipInvalid, rec)
		res, err := client.SearchNovels(context.Background(), NewNovelRequest())
		require.NoError(t, err)
		require.Equal(t, uint32(3), *res.AllCount)
		require.Len(t, res.Items, 2)
		require.Equal(t, 1, res.Skipped)

		warnings := rec.Reports("warning")
		require.Len(t, warnings, 1)
		require.Equal(t, "narou: "+report_client_decode, warnings[0].ID)
	})

	t.Run("non-object elements", func(t *testing.T) {
		for _, body := range []string{
			`[{"allcount":2},null,{"ncode":"N1"}]`,
			`[{"allcount":2},"N0",{"ncode":"N1"}]`,
			`[{"allcount":2},[],{"ncode":"N1"}]`,
		} {
			_, err := Decode[NovelInfo]([]byte(body), FormatJSON, false, NovelEndpoint, AbortBatch)
			require.ErrorIs(t, err, ErrDeserialization, body)

			res, err := Decode[NovelInfo]([]byte(body), FormatJSON, false, NovelEndpoint, SkipInvalid)
			require.NoError(t, err, body)
			require.Equal(t, uint32(2), *res.AllCount)
			require.Equal(t, 1, res.Skipped)
			require.Len(t, res.Items, 1)
			require.Equal(t, "N1", *res.Items[0].Ncode)
		}
	})
}

func TestYAMLResponse(t *testing.T) {
	body := strings.Join([]string{
		"- allcount: 1",
		"- title: 転生したら",
		"  ncode: N0001A",
		"  userid: 12",
		"  general_firstup: 2024-01-02 03:04:05",
		"  writer: null",
		"",
	}, "\n")
	ts := newTestServer(t, staticBody(body))
	client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})

	req := NewNovelRequest()
	req.Out = nil
	res, err := client.SearchNovels(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, uint32(1), *res.AllCount)
	require.Len(t, res.Items, 1)
	item := res.Items[0]
	require.Equal(t, "転生したら", *item.Title)
	require.Equal(t, uint32(12), *item.UserID)
	require.Equal(t, "2024-01-02 03:04:05", *item.GeneralFirstUp)
	require.Nil(t, item.Writer)
}

func TestRankinUppercasesNcode(t *testing.T) {
	var ncode string
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		ncode = r.URL.Query().Get("ncode")
		_, _ = w.Write([]byte(`[{"rtype":"20240101-d","pt":100,"rank":3}]`))
	})
	client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})

	res, err := client.Rankin(context.Background(), NewRankinRequest("n1234ab"))
	require.NoError(t, err)
	require.Equal(t, "N1234AB", ncode)
	require.Equal(t, "20240101-d", *res.Items[0].RType)
}

func TestRankingRequiresRType(t *testing.T) {
	ts := newTestServer(t, staticBody(`[]`))
	client := newTestClient(t, ts, AbortBatch, &telemetry.Recorder{})

	_, err := client.Ranking(context.Background(), NewRankingRequest(""))
	require.Error(t, err)
	require.Equal(t, KindOther, KindOf(err))
	require.Equal(t, int64(0), ts.hits.Load())
}

func TestRankinBatch(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		ncode := r.URL.Query().Get("ncode")
		if ncode == "N0002" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"rtype":"20240101-d","pt":1,"rank":1}]`))
	})
	rec := &telemetry.Recorder{}
	client := newTestClient(t, ts, AbortBatch, rec)

	ncodes := []string{"n0001", "n0002", "n0003", "n0004"}
	results := client.RankinBatch(context.Background(), ncodes, 2, nil)
	require.Len(t, results, len(ncodes))
	for i, r := range results {
		require.Equal(t, strings.ToUpper(ncodes[i]), r.Ncode)
		if r.Ncode == "N0002" {
			require.ErrorIs(t, r.Err, ErrNetwork)
			continue
		}
		require.NoError(t, r.Err)
		require.Len(t, r.Response.Items, 1)
	}

	counts := rec.Reports("count")
	require.Len(t, counts, 1)
	require.Equal(t, []any{int64(1)}, counts[0].Params)
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	_, err := NewClient(Options{
		BaseURLs: map[string]string{"novel": "ftp://example.com"},
	}, &telemetry.Recorder{})
	require.Error(t, err)
	require.Equal(t, KindOther, KindOf(err))

	_, err = NewClient(Options{
		BaseURLs: map[string]string{"novels": "https://example.com"},
	}, &telemetry.Recorder{})
	require.Error(t, err)
}

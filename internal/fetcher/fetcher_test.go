package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"narou-client/internal/components/telemetry"
	"narou-client/internal/useragent"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.sleeps = append(c.sleeps, d)
		c.now = c.now.Add(d)
	}
	return ctx.Err()
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) recorded() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration{}, c.sleeps...)
}

func midpoint(min, max time.Duration) time.Duration {
	return min + (max-min)/2
}

func newTestFetcher(t testing.TB, clock *fakeClock, delay *DelayConfig) *Fetcher {
	ua, err := useragent.NewFixed("FetcherTest/1.0", nil)
	require.NoError(t, err)
	f, err := New(Options{
		UserAgent: ua,
		Delay:     delay,
		Time:      clock,
		Jitter:    midpoint,
	}, &telemetry.Recorder{})
	require.NoError(t, err)
	return f
}

func TestDelayConfig(t *testing.T) {
	def := DefaultDelay()
	require.True(t, def.Enabled)
	require.Equal(t, time.Second, def.Min)
	require.Equal(t, 3*time.Second, def.Max)

	_, err := NewDelayConfig(2*time.Second, time.Second)
	require.Error(t, err)

	config, err := NewDelayConfig(500*time.Millisecond, 1500*time.Millisecond)
	require.NoError(t, err)
	require.True(t, config.Enabled)

	require.Zero(t, DisabledDelay().pick(RandomJitter))

	fixed, err := NewDelayConfig(time.Second, time.Second)
	require.NoError(t, err)
	require.Equal(t, time.Second, fixed.pick(RandomJitter))
}

func TestRandomJitterRange(t *testing.T) {
	min, max := 100*time.Millisecond, 500*time.Millisecond
	for i := 0; i < 50; i++ {
		d := RandomJitter(min, max)
		require.GreaterOrEqual(t, d, min)
		require.LessOrEqual(t, d, max)
	}
	require.Equal(t, min, RandomJitter(min, min))
}

func TestFetcherDelayConfigMutators(t *testing.T) {
	f := newTestFetcher(t, newFakeClock(), nil)
	require.Equal(t, DefaultDelay(), f.DelayConfig())

	custom, err := NewDelayConfig(500*time.Millisecond, 1500*time.Millisecond)
	require.NoError(t, err)
	f.SetDelayConfig(custom)
	require.Equal(t, custom, f.DelayConfig())

	f.DisableDelay()
	require.False(t, f.DelayConfig().Enabled)
	f.EnableDelay()
	require.True(t, f.DelayConfig().Enabled)
}

func TestFetchDelay(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer ts.Close()

	clock := newFakeClock()
	delay, err := NewDelayConfig(100*time.Millisecond, 200*time.Millisecond)
	require.NoError(t, err)
	f := newTestFetcher(t, clock, &delay)

	ctx := context.Background()
	// the first request never waits
	_, err = f.Fetch(ctx, ts.URL)
	require.NoError(t, err)
	require.Empty(t, clock.recorded())

	clock.advance(50 * time.Millisecond)
	_, err = f.Fetch(ctx, ts.URL)
	require.NoError(t, err)
	require.Equal(t, []time.Duration{100 * time.Millisecond}, clock.recorded())

	clock.advance(time.Second)
	_, err = f.Fetch(ctx, ts.URL)
	require.NoError(t, err)
	require.Len(t, clock.recorded(), 1)

	f.DisableDelay()
	_, err = f.Fetch(ctx, ts.URL)
	require.NoError(t, err)
	require.Len(t, clock.recorded(), 1)
}

func TestFetchHeadersAndCookies(t *testing.T) {
	var userAgent, cookie string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.UserAgent()
		cookie = r.Header.Get("Cookie")
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	f := newTestFetcher(t, newFakeClock(), ptr(DisabledDelay()))
	ctx := context.Background()

	body, err := f.Fetch(ctx, ts.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", body)
	require.Equal(t, "FetcherTest/1.0", userAgent)
	require.Empty(t, cookie)

	_, err = f.FetchWithOptions(ctx, ts.URL, FetchOptions{
		Cookies:   []Cookie{{Name: "over18", Value: "yes"}, {Name: "ks2", Value: "abc"}},
		UserAgent: "Override/2.0",
	})
	require.NoError(t, err)
	require.Equal(t, "Override/2.0", userAgent)
	require.Equal(t, "over18=yes; ks2=abc", cookie)

	require.NoError(t, f.AddCookie(ts.URL, "over18=yes; Path=/"))
	cookies, err := f.Cookies(ts.URL)
	require.NoError(t, err)
	require.Len(t, cookies, 1)

	_, err = f.Fetch(ctx, ts.URL)
	require.NoError(t, err)
	require.Equal(t, "over18=yes", cookie)

	require.NoError(t, f.ClearCookies())
	_, err = f.Fetch(ctx, ts.URL)
	require.NoError(t, err)
	require.Empty(t, cookie)

	require.Error(t, f.AddCookie(ts.URL, "not a cookie"))
}

func TestFetchStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	f := newTestFetcher(t, newFakeClock(), ptr(DisabledDelay()))
	_, err := f.Fetch(context.Background(), ts.URL)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestFetchRejectsBadUserAgent(t *testing.T) {
	f := newTestFetcher(t, newFakeClock(), ptr(DisabledDelay()))
	_, err := f.FetchWithOptions(context.Background(), "http://127.0.0.1:1", FetchOptions{
		UserAgent: "bad\nagent",
	})
	require.Error(t, err)
}

func ptr[T any](v T) *T {
	return &v
}

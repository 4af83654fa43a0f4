// Package fetcher downloads html pages of the syosetu sites with a rotating
// or pinned user agent, a persistent cookie jar and a randomized pause
// between requests.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"narou-client/internal/components/assert"
	"narou-client/internal/components/chrono"
	"narou-client/internal/components/telemetry"
	"narou-client/internal/useragent"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	report_fetcher_fetch      = "fetcher.fetch"
	report_fetcher_add_cookie = "fetcher.add-cookie"
)

const tracerName = "narou-client/internal/fetcher"

const DefaultTimeout = 10 * time.Second

type Options struct {
	// UserAgent defaults to a provider in random mode.
	UserAgent *useragent.Provider
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// Delay defaults to DefaultDelay.
	Delay *DelayConfig
	// CloudflareBypass wraps the transport with cloudflare-bp.
	CloudflareBypass bool
	Time             chrono.API
	Jitter           Jitter
}

// Cookie is sent with a single request, it does not end up in the jar.
type Cookie struct {
	Name  string
	Value string
}

type FetchOptions struct {
	Cookies []Cookie
	// UserAgent overrides the provider for this request only.
	UserAgent string
}

// StatusError is returned when a page answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
}

// Fetcher is safe for concurrent use. Copies share nothing, create one and
// pass it around by pointer.
type Fetcher struct {
	http   *resty.Client
	jar    *resettableJar
	ua     *useragent.Provider
	time   chrono.API
	jitter Jitter
	tel    telemetry.API

	mu          sync.Mutex
	delay       DelayConfig
	lastRequest time.Time
}

func New(opts Options, tel telemetry.API) (*Fetcher, error) {
	assert.NotNil("telemetry", tel)
	tel = telemetry.NewScopedAPI("fetcher", tel)

	ua := opts.UserAgent
	if ua == nil {
		ua = useragent.NewRandom(nil)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	delay := DefaultDelay()
	if opts.Delay != nil {
		delay = *opts.Delay
	}
	if delay.Enabled && delay.Min > delay.Max {
		return nil, fmt.Errorf("min delay %s must be <= max delay %s", delay.Min, delay.Max)
	}
	clock := opts.Time
	if clock == nil {
		clock = chrono.NewStandardImpl()
	}
	jitter := opts.Jitter
	if jitter == nil {
		jitter = RandomJitter
	}

	jar, err := newResettableJar()
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetCookieJar(jar)
	httpClient.SetTimeout(timeout)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	telemetry.InstrumentResty(httpClient, tel, tracerName)

	return &Fetcher{
		http:   httpClient,
		jar:    jar,
		ua:     ua,
		time:   clock,
		jitter: jitter,
		tel:    tel,
		delay:  delay,
	}, nil
}

func (f *Fetcher) UserAgent() *useragent.Provider {
	return f.ua
}

func (f *Fetcher) SetDelayConfig(config DelayConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = config
}

func (f *Fetcher) DelayConfig() DelayConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.delay
}

func (f *Fetcher) EnableDelay() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay.Enabled = true
}

func (f *Fetcher) DisableDelay() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay.Enabled = false
}

// reserve returns how long the caller has to wait before sending its
// request. The first request never waits, later ones wait until a random
// pause has passed since the previous one. The slot is reserved before
// returning so concurrent callers queue up behind each other.
func (f *Fetcher) reserve() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.time.Now()
	if !f.delay.Enabled || f.lastRequest.IsZero() {
		f.lastRequest = now
		return 0
	}

	pause := f.delay.pick(f.jitter)
	elapsed := now.Sub(f.lastRequest)
	if elapsed >= pause {
		f.lastRequest = now
		return 0
	}
	wait := pause - elapsed
	f.lastRequest = now.Add(wait)
	return wait
}

func cookieHeader(cookies []Cookie) string {
	pairs := make([]string, len(cookies))
	for i, c := range cookies {
		pairs[i] = fmt.Sprintf("%s=%s", c.Name, c.Value)
	}
	return strings.Join(pairs, "; ")
}

func (f *Fetcher) Fetch(ctx context.Context, link string) (string, error) {
	return f.FetchWithOptions(ctx, link, FetchOptions{})
}

func (f *Fetcher) FetchWithOptions(ctx context.Context, link string, opts FetchOptions) (string, error) {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = f.ua.Next()
	}
	if err := useragent.Validate(userAgent); err != nil {
		return "", err
	}

	err := f.time.Sleep(ctx, f.reserve())
	if err != nil {
		return "", err
	}

	req := f.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", userAgent)
	if len(opts.Cookies) > 0 {
		req.SetHeader("Cookie", cookieHeader(opts.Cookies))
	}

	res, err := req.Get(link)
	if err != nil {
		f.tel.ReportBroken(report_fetcher_fetch, link, err)
		return "", fmt.Errorf("fetch %s: %w", link, err)
	}
	if !res.IsSuccess() {
		err := &StatusError{URL: link, StatusCode: res.StatusCode()}
		f.tel.ReportWarning(report_fetcher_fetch, err)
		return "", err
	}
	return res.String(), nil
}

// AddCookie stores a cookie for link in the jar, raw is in Set-Cookie
// format, ex. "over18=yes; Path=/".
func (f *Fetcher) AddCookie(link, raw string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("add cookie: %w", err)
	}
	header := http.Header{}
	header.Add("Set-Cookie", raw)
	cookies := (&http.Response{Header: header}).Cookies()
	if len(cookies) == 0 {
		err := fmt.Errorf("add cookie: invalid cookie %q", raw)
		f.tel.ReportWarning(report_fetcher_add_cookie, err)
		return err
	}
	f.jar.SetCookies(u, cookies)
	return nil
}

// Cookies returns the cookies the jar would send to link.
func (f *Fetcher) Cookies(link string) ([]*http.Cookie, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, err
	}
	return f.jar.Cookies(u), nil
}

// ClearCookies empties the jar.
func (f *Fetcher) ClearCookies() error {
	return f.jar.Reset()
}

// resettableJar is a cookie jar that can be emptied while requests are in
// flight.
type resettableJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newResettableJar() (*resettableJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &resettableJar{jar: jar}, nil
}

func (j *resettableJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *resettableJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

func (j *resettableJar) Reset() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar = jar
	return nil
}

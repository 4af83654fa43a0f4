// Package narou is a client of the syosetu.com ("narou") web apis: novel
// and R18 novel search, user search, rankings and ranking history.
package narou

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"narou-client/internal/components/assert"
	"narou-client/internal/components/telemetry"
	"narou-client/internal/narou/query"
	"narou-client/internal/useragent"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	report_client_execute      = "client.execute"
	report_client_decode       = "client.decode"
	report_client_rankin_batch = "client.rankin-batch"
)

const tracerName = "narou-client/internal/narou"

const DefaultTimeout = 30 * time.Second

type Options struct {
	// BaseURLs overrides the base url of an endpoint by endpoint name.
	BaseURLs map[string]string
	// UserAgent defaults to a fixed useragent.Default.
	UserAgent *useragent.Provider
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// RequestsPerSecond throttles requests when > 0.
	RequestsPerSecond float64
	DecodePolicy      DecodePolicy
}

// Client is safe for concurrent use.
type Client struct {
	http     *resty.Client
	instr    telemetry.RestyInstrument
	tel      telemetry.API
	tracer   trace.Tracer
	baseURLs map[string]string
	ua       *useragent.Provider
	policy   DecodePolicy
}

func validBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil("telemetry", tel)
	tel = telemetry.NewScopedAPI("narou", tel)

	baseURLs := make(map[string]string, len(Endpoints))
	for name, endpoint := range Endpoints {
		baseURLs[name] = endpoint.BaseURL
	}
	for name, raw := range opts.BaseURLs {
		if _, ok := Endpoints[name]; !ok {
			return nil, newError(KindOther, "new client", fmt.Errorf("unknown endpoint %q", name))
		}
		if err := validBaseURL(raw); err != nil {
			return nil, newError(KindOther, "new client", fmt.Errorf("base url of %s: %w", name, err))
		}
		baseURLs[name] = raw
	}

	ua := opts.UserAgent
	if ua == nil {
		fixed, err := useragent.NewFixed(useragent.Default, nil)
		if err != nil {
			return nil, newError(KindOther, "new client", err)
		}
		ua = fixed
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// gzip bodies are only decoded when the request asked for them
	transport.DisableCompression = true

	httpClient := resty.New()
	httpClient.SetTransport(transport)
	httpClient.SetTimeout(timeout)

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}
	instr := telemetry.InstrumentResty(httpClient, tel, tracerName)

	return &Client{
		http:     httpClient,
		instr:    instr,
		tel:      tel,
		tracer:   otel.Tracer(tracerName),
		baseURLs: baseURLs,
		ua:       ua,
		policy:   opts.DecodePolicy,
	}, nil
}

// URL returns the full request url for endpoint and params.
func (c *Client) URL(endpoint Endpoint, params query.Params) string {
	base, ok := c.baseURLs[endpoint.Name]
	if !ok {
		base = endpoint.BaseURL
	}
	encoded := params.Encode()
	if encoded == "" {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + encoded
}

// get performs the request and returns the body exactly as received.
func (c *Client) get(ctx context.Context, endpoint Endpoint, params query.Params) ([]byte, error) {
	// the query string is built by hand since resty sorts query params
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.ua.Next()).
		SetDoNotParseResponse(true).
		Get(c.URL(endpoint, params))
	if err != nil {
		return nil, newError(KindNetwork, endpoint.Name, err)
	}
	c.instr.AfterRawResponse(res)
	body := res.RawBody()
	defer body.Close()

	if !res.IsSuccess() {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, body)
		return nil, &Error{
			Kind:       KindNetwork,
			StatusCode: res.StatusCode(),
			Op:         endpoint.Name,
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, newError(KindNetwork, endpoint.Name, fmt.Errorf("read body: %w", err))
	}
	if res.Request.RawRequest != nil && res.RawResponse != nil {
		c.tel.ReportDebug(
			report_client_execute,
			telemetry.FormatExchange(res.Request.RawRequest, res.RawResponse, len(data)),
		)
	}
	return data, nil
}

// Execute runs the whole pipeline for one request against endpoint.
//
// php, atom and jsonp requests fail with KindUnsupportedFormat before
// anything is sent, so that error takes precedence over any network or
// status error the request would have produced.
func Execute[E any](ctx context.Context, c *Client, endpoint Endpoint, req Request) (Response[E], error) {
	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("narou.%s", endpoint.Name))
	defer span.End()
	span.SetAttributes(
		attribute.String("narou.endpoint", endpoint.Name),
		attribute.String("narou.format", req.Format().String()),
		attribute.Bool("narou.gzip", req.IsGzip()),
	)

	fail := func(err error) (Response[E], error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.tel.ReportBroken(report_client_execute, endpoint.Name, err)
		return Response[E]{}, err
	}

	format := req.Format()
	if !format.Supported() {
		// fail before any bytes are sent
		_, err := DecodeEnvelope(nil, format)
		return fail(err)
	}

	params := buildParams(endpoint, req)
	if endpoint.Selector != nil {
		if of, ok := params.Get("of"); ok {
			// unknown codes survive the remap unchanged
			for _, code := range endpoint.Selector.Unknown(of) {
				c.tel.ReportDebug(report_client_execute, "unknown field selector", endpoint.Name, code)
			}
		}
	}

	data, err := c.get(ctx, endpoint, params)
	if err != nil {
		return fail(err)
	}

	res, err := Decode[E](data, format, req.IsGzip(), endpoint, c.policy)
	if err != nil {
		return fail(err)
	}
	if res.Skipped > 0 {
		c.tel.ReportWarning(report_client_decode, endpoint.Name, fmt.Sprintf("skipped %d invalid entities", res.Skipped))
	}
	span.SetAttributes(attribute.Int("narou.items", len(res.Items)))
	return res, nil
}

func (c *Client) SearchNovels(ctx context.Context, req NovelRequest) (Response[NovelInfo], error) {
	return Execute[NovelInfo](ctx, c, NovelEndpoint, req)
}

func (c *Client) SearchNocturne(ctx context.Context, req NocturneRequest) (Response[NocturneNovelInfo], error) {
	return Execute[NocturneNovelInfo](ctx, c, NocturneEndpoint, req)
}

func (c *Client) SearchUsers(ctx context.Context, req UserRequest) (Response[UserInfo], error) {
	return Execute[UserInfo](ctx, c, UserEndpoint, req)
}

func (c *Client) Ranking(ctx context.Context, req RankingRequest) (Response[RankingEntry], error) {
	if req.RType == "" {
		err := newError(KindOther, RankingEndpoint.Name, fmt.Errorf("rtype is required"))
		c.tel.ReportBroken(report_client_execute, RankingEndpoint.Name, err)
		return Response[RankingEntry]{}, err
	}
	return Execute[RankingEntry](ctx, c, RankingEndpoint, req)
}

func (c *Client) Rankin(ctx context.Context, req RankinRequest) (Response[RankinEntry], error) {
	return Execute[RankinEntry](ctx, c, RankinEndpoint, req)
}

// RankinResult is the outcome for one ncode of RankinBatch.
type RankinResult struct {
	Ncode    string
	Response Response[RankinEntry]
	Err      error
}

// RankinBatch fetches the ranking history of several novels with at most
// concurrency requests in flight. Results are in the order of ncodes, a
// failure for one ncode does not affect the others.
func (c *Client) RankinBatch(ctx context.Context, ncodes []string, concurrency int, configure func(*RankinRequest)) []RankinResult {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]RankinResult, len(ncodes))

	var group errgroup.Group
	group.SetLimit(concurrency)
	for i, ncode := range ncodes {
		i, ncode := i, ncode
		group.Go(func() error {
			req := NewRankinRequest(ncode)
			if configure != nil {
				configure(&req)
			}
			res, err := c.Rankin(ctx, req)
			results[i] = RankinResult{Ncode: req.Ncode, Response: res, Err: err}
			return nil
		})
	}
	_ = group.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	c.tel.ReportCount(report_client_rankin_batch, int64(failed))
	return results
}

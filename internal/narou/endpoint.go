package narou

import "narou-client/internal/narou/query"

// Endpoint describes one api family: where it lives and how its responses
// are shaped.
type Endpoint struct {
	Name    string
	BaseURL string
	// Selector remaps the "of" parameter, nil when the endpoint has none.
	Selector *query.Selector
	// CountRecord is set when list responses may start with an
	// {"allcount": n} pseudo-record.
	CountRecord bool
	// DefiningKeys must all be present for a bare object to be taken as a
	// single entity.
	DefiningKeys []string
}

// Request is implemented by every endpoint request.
type Request interface {
	// Params builds the query in declaration order, absent fields omitted.
	Params() query.Params
	Format() OutputFormat
	IsGzip() bool
}

var (
	NovelEndpoint = Endpoint{
		Name:         "novel",
		BaseURL:      "https://api.syosetu.com/novelapi/api/",
		Selector:     &query.NovelFields,
		CountRecord:  true,
		DefiningKeys: []string{"ncode"},
	}
	NocturneEndpoint = Endpoint{
		Name:         "nocturne",
		BaseURL:      "https://api.syosetu.com/novel18api/api/",
		Selector:     &query.NocturneFields,
		CountRecord:  true,
		DefiningKeys: []string{"ncode"},
	}
	UserEndpoint = Endpoint{
		Name:         "user",
		BaseURL:      "https://api.syosetu.com/userapi/api/",
		Selector:     &query.UserFields,
		CountRecord:  true,
		DefiningKeys: []string{"userid"},
	}
	RankingEndpoint = Endpoint{
		Name:         "ranking",
		BaseURL:      "https://api.syosetu.com/rank/rankget/",
		DefiningKeys: []string{"ncode", "pt", "rank"},
	}
	RankinEndpoint = Endpoint{
		Name:         "rankin",
		BaseURL:      "https://api.syosetu.com/rank/rankin/",
		DefiningKeys: []string{"rtype", "pt", "rank"},
	}
)

// Endpoints lists every endpoint by name.
var Endpoints = map[string]Endpoint{
	NovelEndpoint.Name:    NovelEndpoint,
	NocturneEndpoint.Name: NocturneEndpoint,
	UserEndpoint.Name:     UserEndpoint,
	RankingEndpoint.Name:  RankingEndpoint,
	RankinEndpoint.Name:   RankinEndpoint,
}

// buildParams renders the request query, remapping "of" short codes.
func buildParams(endpoint Endpoint, req Request) query.Params {
	params := req.Params()
	if endpoint.Selector == nil {
		return params
	}
	if of, ok := params.Get("of"); ok {
		params.Set("of", endpoint.Selector.Remap(of))
	}
	return params
}

func formatOf(out *string) OutputFormat {
	if out == nil {
		return FormatYAML
	}
	return ParseOutputFormat(*out)
}

func gzipOf(level *int) bool {
	return level != nil && *level > 0
}

func ptr[T any](v T) *T {
	return &v
}

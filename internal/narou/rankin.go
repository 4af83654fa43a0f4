package narou

import (
	"strings"

	"narou-client/internal/narou/query"
)

// RankinRequest asks for the ranking history of a single novel.
type RankinRequest struct {
	Ncode    string
	Gzip     *int
	Out      *string
	LibType  *int
	Callback *string
}

// NewRankinRequest returns a json request, ncode is upper-cased as the api
// expects.
func NewRankinRequest(ncode string) RankinRequest {
	return RankinRequest{Ncode: strings.ToUpper(ncode), Out: ptr("json")}
}

func (r RankinRequest) Params() query.Params {
	var p query.Params
	p.Add("ncode", r.Ncode)
	p.Int("gzip", r.Gzip)
	p.String("out", r.Out)
	p.Int("libtype", r.LibType)
	p.String("callback", r.Callback)
	return p
}

func (r RankinRequest) Format() OutputFormat {
	return formatOf(r.Out)
}

func (r RankinRequest) IsGzip() bool {
	return gzipOf(r.Gzip)
}

// RankinEntry is one ranking a novel appeared in.
type RankinEntry struct {
	RType *string `json:"rtype,omitempty"`
	Pt    *uint32 `json:"pt,omitempty"`
	Rank  *uint32 `json:"rank,omitempty"`
}

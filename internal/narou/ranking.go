package narou

import (
	"fmt"
	"regexp"
	"time"

	"narou-client/internal/narou/query"
)

type Period byte

const (
	Daily     Period = 'd'
	Weekly    Period = 'w'
	Monthly   Period = 'm'
	Quarterly Period = 'q'
)

// ParsePeriod accepts the one letter codes and their long names.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "d", "daily":
		return Daily, nil
	case "w", "weekly":
		return Weekly, nil
	case "m", "monthly":
		return Monthly, nil
	case "q", "quarterly":
		return Quarterly, nil
	}
	return 0, fmt.Errorf("unknown ranking period %q", s)
}

// RankingType builds the rtype parameter, `YYYYMMDD-<period>`. Weekly
// rankings only exist for tuesdays, monthly and quarterly ones for the
// first day of the month.
func RankingType(date time.Time, period Period) (string, error) {
	switch period {
	case Daily:
	case Weekly:
		if date.Weekday() != time.Tuesday {
			return "", fmt.Errorf("weekly ranking date must be a tuesday, got %s", date.Weekday())
		}
	case Monthly, Quarterly:
		if date.Day() != 1 {
			return "", fmt.Errorf("monthly and quarterly ranking dates must be the 1st, got day %d", date.Day())
		}
	default:
		return "", fmt.Errorf("unknown ranking period %q", rune(period))
	}
	return fmt.Sprintf("%s-%c", date.Format("20060102"), period), nil
}

var rtypePattern = regexp.MustCompile(`^\d{8}-[dwmq]$`)

// ValidRankingType reports whether rtype looks like `YYYYMMDD-d|w|m|q`.
func ValidRankingType(rtype string) bool {
	return rtypePattern.MatchString(rtype)
}

type RankingRequest struct {
	// RType is required.
	RType    string
	Gzip     *int
	Out      *string
	LibType  *int
	Callback *string
}

func NewRankingRequest(rtype string) RankingRequest {
	return RankingRequest{RType: rtype, Out: ptr("json")}
}

func (r RankingRequest) Params() query.Params {
	var p query.Params
	p.Add("rtype", r.RType)
	p.Int("gzip", r.Gzip)
	p.String("out", r.Out)
	p.Int("libtype", r.LibType)
	p.String("callback", r.Callback)
	return p
}

func (r RankingRequest) Format() OutputFormat {
	return formatOf(r.Out)
}

func (r RankingRequest) IsGzip() bool {
	return gzipOf(r.Gzip)
}

type RankingEntry struct {
	Ncode *string `json:"ncode,omitempty"`
	Pt    *uint32 `json:"pt,omitempty"`
	Rank  *uint32 `json:"rank,omitempty"`
}

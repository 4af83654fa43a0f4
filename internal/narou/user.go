package narou

import "narou-client/internal/narou/query"

type UserRequest struct {
	Gzip      *int
	Out       *string
	Of        *string
	Lim       *int
	St        *int
	Order     *string
	LibType   *int
	Word      *string
	NotWord   *string
	UserID    *int
	Name1st   *string
	MinNovel  *int
	MaxNovel  *int
	MinReview *int
	MaxReview *int
	Callback  *string
}

func NewUserRequest() UserRequest {
	return UserRequest{Out: ptr("json")}
}

func (r UserRequest) Params() query.Params {
	var p query.Params
	p.Int("gzip", r.Gzip)
	p.String("out", r.Out)
	p.String("of", r.Of)
	p.Int("lim", r.Lim)
	p.Int("st", r.St)
	p.String("order", r.Order)
	p.String("word", r.Word)
	p.String("notword", r.NotWord)
	p.Int("userid", r.UserID)
	p.String("name1st", r.Name1st)
	p.Int("minnovel", r.MinNovel)
	p.Int("maxnovel", r.MaxNovel)
	p.Int("minreview", r.MinReview)
	p.Int("maxreview", r.MaxReview)
	p.Int("libtype", r.LibType)
	p.String("callback", r.Callback)
	return p
}

func (r UserRequest) Format() OutputFormat {
	return formatOf(r.Out)
}

func (r UserRequest) IsGzip() bool {
	return gzipOf(r.Gzip)
}

type UserInfo struct {
	UserID         *uint32 `json:"userid,omitempty"`
	Name           *string `json:"name,omitempty"`
	Yomikata       *string `json:"yomikata,omitempty"`
	Name1st        *string `json:"name1st,omitempty"`
	NovelCnt       *uint32 `json:"novel_cnt,omitempty"`
	ReviewCnt      *uint32 `json:"review_cnt,omitempty"`
	NovelLength    *uint64 `json:"novel_length,omitempty"`
	SumGlobalPoint *uint64 `json:"sum_global_point,omitempty"`
}

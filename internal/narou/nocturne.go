package narou

import "narou-client/internal/narou/query"

// NocturneRequest is a query of the R18 novel search api.
type NocturneRequest struct {
	Gzip        *int
	Out         *string
	Of          *string
	Lim         *int
	St          *int
	Order       *string
	Word        *string
	NotWord     *string
	Title       *int
	Ex          *int
	Keyword     *int
	Wname       *int
	NocGenre    *string
	NotNocGenre *string
	XID         *string
	IsBL        *int
	IsGL        *int
	IsZankoku   *int
	IsTensei    *int
	IsTenni     *int
	IsTT        *int
	NotBL       *int
	NotGL       *int
	NotZankoku  *int
	NotTensei   *int
	NotTenni    *int
	MinLen      *int
	MaxLen      *int
	Length      *string
	Kaiwaritu   *string
	Sasie       *string
	MinTime     *int
	MaxTime     *int
	Time        *string
	Ncode       *string
	Type        *string
	Buntai      *string
	Stop        *int
	LastUp      *string
	LastUpdate  *string
	IsPickup    *int
	LibType     *int
	Opt         *string
	Callback    *string
	UpdateType  *int
}

func NewNocturneRequest() NocturneRequest {
	return NocturneRequest{Out: ptr("json")}
}

func (r NocturneRequest) Params() query.Params {
	var p query.Params
	p.Int("gzip", r.Gzip)
	p.String("out", r.Out)
	p.String("of", r.Of)
	p.Int("lim", r.Lim)
	p.Int("st", r.St)
	p.String("order", r.Order)
	p.String("word", r.Word)
	p.String("notword", r.NotWord)
	p.Int("title", r.Title)
	p.Int("ex", r.Ex)
	p.Int("keyword", r.Keyword)
	p.Int("wname", r.Wname)
	p.String("nocgenre", r.NocGenre)
	p.String("notnocgenre", r.NotNocGenre)
	p.String("xid", r.XID)
	p.Int("isbl", r.IsBL)
	p.Int("isgl", r.IsGL)
	p.Int("iszankoku", r.IsZankoku)
	p.Int("istensei", r.IsTensei)
	p.Int("istenni", r.IsTenni)
	p.Int("istt", r.IsTT)
	p.Int("notbl", r.NotBL)
	p.Int("notgl", r.NotGL)
	p.Int("notzankoku", r.NotZankoku)
	p.Int("nottensei", r.NotTensei)
	p.Int("nottenni", r.NotTenni)
	p.Int("minlen", r.MinLen)
	p.Int("maxlen", r.MaxLen)
	p.String("length", r.Length)
	p.String("kaiwaritu", r.Kaiwaritu)
	p.String("sasie", r.Sasie)
	p.Int("mintime", r.MinTime)
	p.Int("maxtime", r.MaxTime)
	p.String("time", r.Time)
	p.String("ncode", r.Ncode)
	p.String("type", r.Type)
	p.String("buntai", r.Buntai)
	p.Int("stop", r.Stop)
	p.String("lastup", r.LastUp)
	p.String("lastupdate", r.LastUpdate)
	p.Int("ispickup", r.IsPickup)
	p.Int("libtype", r.LibType)
	p.String("opt", r.Opt)
	p.String("callback", r.Callback)
	p.Int("updatetype", r.UpdateType)
	return p
}

func (r NocturneRequest) Format() OutputFormat {
	return formatOf(r.Out)
}

func (r NocturneRequest) IsGzip() bool {
	return gzipOf(r.Gzip)
}

// NocturneNovelInfo is a novel of the R18 sites.
type NocturneNovelInfo struct {
	Title  *string `json:"title,omitempty"`
	Ncode  *string `json:"ncode,omitempty"`
	Writer *string `json:"writer,omitempty"`
	Story  *string `json:"story,omitempty"`
	// 1 nocturne, 2 moonlight (female), 3 moonlight (BL), 4 midnight
	NocGenre       *uint32 `json:"nocgenre,omitempty"`
	Gensaku        *string `json:"gensaku,omitempty"`
	Keyword        *string `json:"keyword,omitempty"`
	GeneralFirstUp *string `json:"general_firstup,omitempty"`
	GeneralLastUp  *string `json:"general_lastup,omitempty"`
	NovelType      *uint32 `json:"novel_type,omitempty"`
	End            *uint32 `json:"end,omitempty"`
	GeneralAllNo   *uint32 `json:"general_all_no,omitempty"`
	Length         *uint32 `json:"length,omitempty"`
	Time           *uint32 `json:"time,omitempty"`
	IsStop         *uint32 `json:"isstop,omitempty"`
	IsBL           *uint32 `json:"isbl,omitempty"`
	IsGL           *uint32 `json:"isgl,omitempty"`
	IsZankoku      *uint32 `json:"iszankoku,omitempty"`
	IsTensei       *uint32 `json:"istensei,omitempty"`
	IsTenni        *uint32 `json:"istenni,omitempty"`
	GlobalPoint    *uint32 `json:"global_point,omitempty"`
	DailyPoint     *uint32 `json:"daily_point,omitempty"`
	WeeklyPoint    *uint32 `json:"weekly_point,omitempty"`
	MonthlyPoint   *uint32 `json:"monthly_point,omitempty"`
	QuarterPoint   *uint32 `json:"quarter_point,omitempty"`
	YearlyPoint    *uint32 `json:"yearly_point,omitempty"`
	FavNovelCnt    *uint32 `json:"fav_novel_cnt,omitempty"`
	ImpressionCnt  *uint32 `json:"impression_cnt,omitempty"`
	ReviewCnt      *uint32 `json:"review_cnt,omitempty"`
	AllPoint       *uint32 `json:"all_point,omitempty"`
	AllHyokaCnt    *uint32 `json:"all_hyoka_cnt,omitempty"`
	SasieCnt       *uint32 `json:"sasie_cnt,omitempty"`
	Kaiwaritu      *uint32 `json:"kaiwaritu,omitempty"`
	NovelUpdatedAt *string `json:"novelupdated_at,omitempty"`
	UpdatedAt      *string `json:"updated_at,omitempty"`
	WeeklyUnique   *uint32 `json:"weekly_unique,omitempty"`
}

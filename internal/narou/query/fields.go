package query

// NovelFields is the field selector of the novel search api.
var NovelFields = NewSelector(
	[2]string{"t", "title"},
	[2]string{"n", "ncode"},
	[2]string{"u", "userid"},
	[2]string{"w", "writer"},
	[2]string{"s", "story"},
	[2]string{"bg", "biggenre"},
	[2]string{"g", "genre"},
	[2]string{"gs", "gensaku"},
	[2]string{"k", "keyword"},
	[2]string{"gf", "general_firstup"},
	[2]string{"gl", "general_lastup"},
	[2]string{"nt", "novel_type"},
	[2]string{"e", "end"},
	[2]string{"ga", "general_all_no"},
	[2]string{"l", "length"},
	[2]string{"ti", "time"},
	[2]string{"i", "isstop"},
	[2]string{"ir", "isr15"},
	[2]string{"ibl", "isbl"},
	[2]string{"igl", "isgl"},
	[2]string{"izk", "iszankoku"},
	[2]string{"its", "istensei"},
	[2]string{"iti", "istenni"},
	[2]string{"gp", "global_point"},
	[2]string{"dp", "daily_point"},
	[2]string{"wp", "weekly_point"},
	[2]string{"mp", "monthly_point"},
	[2]string{"qp", "quarter_point"},
	[2]string{"yp", "yearly_point"},
	[2]string{"f", "fav_novel_cnt"},
	[2]string{"im", "impression_cnt"},
	[2]string{"r", "review_cnt"},
	[2]string{"a", "all_point"},
	[2]string{"ah", "all_hyoka_cnt"},
	[2]string{"sa", "sasie_cnt"},
	[2]string{"ka", "kaiwaritu"},
	[2]string{"nu", "novelupdated_at"},
	[2]string{"ua", "updated_at"},
	[2]string{"wu", "weekly_unique"},
)

// NocturneFields is the field selector of the R18 novel search api, which
// has no userid, genres or r15 flag but a nocgenre.
var NocturneFields = NewSelector(
	[2]string{"t", "title"},
	[2]string{"n", "ncode"},
	[2]string{"w", "writer"},
	[2]string{"s", "story"},
	[2]string{"ng", "nocgenre"},
	[2]string{"gs", "gensaku"},
	[2]string{"k", "keyword"},
	[2]string{"gf", "general_firstup"},
	[2]string{"gl", "general_lastup"},
	[2]string{"nt", "novel_type"},
	[2]string{"e", "end"},
	[2]string{"ga", "general_all_no"},
	[2]string{"l", "length"},
	[2]string{"ti", "time"},
	[2]string{"i", "isstop"},
	[2]string{"ibl", "isbl"},
	[2]string{"igl", "isgl"},
	[2]string{"izk", "iszankoku"},
	[2]string{"its", "istensei"},
	[2]string{"iti", "istenni"},
	[2]string{"gp", "global_point"},
	[2]string{"dp", "daily_point"},
	[2]string{"wp", "weekly_point"},
	[2]string{"mp", "monthly_point"},
	[2]string{"qp", "quarter_point"},
	[2]string{"yp", "yearly_point"},
	[2]string{"f", "fav_novel_cnt"},
	[2]string{"im", "impression_cnt"},
	[2]string{"r", "review_cnt"},
	[2]string{"a", "all_point"},
	[2]string{"ah", "all_hyoka_cnt"},
	[2]string{"sa", "sasie_cnt"},
	[2]string{"ka", "kaiwaritu"},
	[2]string{"nu", "novelupdated_at"},
	[2]string{"ua", "updated_at"},
	[2]string{"wu", "weekly_unique"},
)

// UserFields is the field selector of the user search api.
var UserFields = NewSelector(
	[2]string{"u", "userid"},
	[2]string{"n", "name"},
	[2]string{"y", "yomikata"},
	[2]string{"n1", "name1st"},
	[2]string{"nc", "novel_cnt"},
	[2]string{"rc", "review_cnt"},
	[2]string{"nl", "novel_length"},
	[2]string{"sg", "sum_global_point"},
)

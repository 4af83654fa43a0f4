package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestParamsOmitAbsent(t *testing.T) {
	var p Params
	p.String("word", nil)
	p.Int("lim", nil)
	p.Flag("isr15", nil)
	require.Equal(t, 0, p.Len())
	require.Equal(t, "", p.Encode())

	p.String("ncode", ptr("n1234ab"))
	require.Equal(t, []Param{{Name: "ncode", Value: "n1234ab"}}, p.List())
}

func TestParamsOrderAndFlags(t *testing.T) {
	var p Params
	p.Int("gzip", ptr(5))
	p.String("out", ptr("json"))
	p.Flag("isr15", ptr(true))
	p.Flag("isbl", ptr(false))
	p.String("word", ptr("異世界 転生"))

	require.Equal(t, []Param{
		{Name: "gzip", Value: "5"},
		{Name: "out", Value: "json"},
		{Name: "isr15", Value: "1"},
		{Name: "isbl", Value: "0"},
		{Name: "word", Value: "異世界 転生"},
	}, p.List())
	require.Equal(
		t,
		"gzip=5&out=json&isr15=1&isbl=0&word=%E7%95%B0%E4%B8%96%E7%95%8C+%E8%BB%A2%E7%94%9F",
		p.Encode(),
	)
}

func TestParamsNoDuplicates(t *testing.T) {
	var p Params
	p.Add("of", "t-n")
	p.Add("lim", "10")
	p.Add("of", "title-ncode")
	require.Equal(t, 2, p.Len())
	v, ok := p.Get("of")
	require.True(t, ok)
	require.Equal(t, "title-ncode", v)

	require.False(t, p.Set("st", "1"))
	require.True(t, p.Set("lim", "20"))
	require.Equal(t, "20", p.Values().Get("lim"))
}

func TestSelectorRemap(t *testing.T) {
	table := []struct {
		selector string
		expected string
	}{
		{selector: "t-n-u", expected: "title-ncode-userid"},
		{selector: "zz", expected: "zz"},
		{selector: "t-zz-gp", expected: "title-zz-global_point"},
		{selector: "", expected: ""},
	}
	for _, row := range table {
		require.Equal(t, row.expected, NovelFields.Remap(row.selector), row.selector)
	}

	require.Equal(t, "userid-name1st", UserFields.Remap("u-n1"))
	require.Equal(t, "nocgenre", NocturneFields.Remap("ng"))
	// userid does not exist on the r18 api
	require.Equal(t, "u", NocturneFields.Remap("u"))
}

func TestSelectorUnknownAndSuggest(t *testing.T) {
	require.Empty(t, NovelFields.Unknown("t-n-title"))
	require.Equal(t, []string{"zz", "globalpoint"}, NovelFields.Unknown("t-zz-globalpoint"))

	code, ok := NovelFields.Suggest("globalpoint")
	require.True(t, ok)
	require.Equal(t, "gp", code)

	code, ok = UserFields.Suggest("novel_cnts")
	require.True(t, ok)
	require.Equal(t, "nc", code)
}

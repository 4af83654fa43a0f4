package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fetcher interface{ Fetch() }

type nopFetcher struct{}

func (*nopFetcher) Fetch() {}

func TestNotNil(t *testing.T) {
	require.NotPanics(t, func() { NotNil("fetcher", &nopFetcher{}) })
	require.NotPanics(t, func() { NotNil("count", 0) })

	require.PanicsWithValue(t, "tel must not be nil", func() { NotNil("tel", nil) })

	var typed *nopFetcher
	var f fetcher = typed
	require.PanicsWithValue(t, "fetcher must not be nil (got nil *assert.nopFetcher)", func() { NotNil("fetcher", f) })
}

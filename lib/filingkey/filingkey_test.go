package filingkey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	a, err := Derive("https://www.sec.gov/Archives/edgar/data/1318605/tsla-10k_20201231.htm")
	require.NoError(t, err)
	require.Len(t, a, 32)

	// whitespace and scheme/host casing are not identity
	b, err := Derive("  HTTPS://WWW.SEC.GOV/Archives/edgar/data/1318605/tsla-10k_20201231.htm ")
	require.NoError(t, err)
	require.Equal(t, a, b)

	// the path is case-sensitive on EDGAR
	c, err := Derive("https://www.sec.gov/archives/edgar/data/1318605/tsla-10k_20201231.htm")
	require.NoError(t, err)
	require.NotEqual(t, a, c)

	d, err := Derive("https://www.sec.gov/Archives/edgar/data/66600/form8-k.htm")
	require.NoError(t, err)
	require.NotEqual(t, a, d)
}

func TestDeriveInvalid(t *testing.T) {
	for _, rawurl := range []string{
		"",
		"   ",
		"not a url",
		"ftp://sec.gov/filing.htm",
		"/relative/path.htm",
	} {
		_, err := Derive(rawurl)
		require.ErrorIs(t, err, ErrInvalidURL, "url: %q", rawurl)
	}
}

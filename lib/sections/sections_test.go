package sections

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectFilingType(t *testing.T) {
	cases := []struct {
		url      string
		expected FilingType
	}{
		{"https://www.sec.gov/Archives/edgar/data/1318605/tsla-10k_20201231.htm", FilingType10K},
		{"https://www.sec.gov/Archives/edgar/data/1318605/tsla-10q-20220331.htm", FilingType10Q},
		{"https://www.sec.gov/Archives/edgar/data/66600/form8-k.htm", FilingType8K},
	}
	for _, c := range cases {
		ft, err := DetectFilingType(c.url)
		require.NoError(t, err, c.url)
		require.Equal(t, c.expected, ft, c.url)
	}

	_, err := DetectFilingType("https://www.sec.gov/Archives/edgar/data/66600/filing.htm")
	require.ErrorIs(t, err, ErrUnknownFilingType)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(FilingType10K, []string{"1", "1A", "7A"}))
	require.ErrorIs(t, Validate(FilingType10K, []string{"1", "part1item1"}), ErrUnknownSection)
	require.ErrorIs(t, Validate(FilingType("13-F"), []string{"1"}), ErrUnknownFilingType)
	require.NoError(t, Validate(FilingType10Q, []string{"part2item1a"}))
}

func TestCatalogOrdering(t *testing.T) {
	tenK, err := Catalog(FilingType10K)
	require.NoError(t, err)
	require.Equal(t, "1", tenK[0].ID)
	require.Equal(t, "1A", tenK[1].ID)
	require.Equal(t, "15", tenK[len(tenK)-1].ID)
}

func TestParseFilingType(t *testing.T) {
	ft, err := ParseFilingType(" 10-k ")
	require.NoError(t, err)
	require.Equal(t, FilingType10K, ft)

	_, err = ParseFilingType("S-1")
	require.ErrorIs(t, err, ErrUnknownFilingType)
}

package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountFormats(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"german grouped", "1.234,56", "1234.56"},
		{"german grouped negative", "-1.234,56", "-1234.56"},
		{"german grouped millions", "1.234.567,89", "1234567.89"},
		{"comma decimal", "45,50", "45.5"},
		{"comma decimal negative", "-45,50", "-45.5"},
		{"plain dot decimal", "45.50", "45.5"},
		{"plain integer", "120", "120"},
		{"comma grouping after dot", "1.2345,67", "1.234567"},
		{"euro symbol", "45,50 €", "45.5"},
		{"dollar symbol", "$45.50", "45.5"},
		{"nbsp and spaces", "1 234,56", "1234.56"},
		{"leading plus kept by caller", "45.50", "45.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseAmount(tc.in)
			require.True(t, ok, "expected %q to parse", tc.in)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "12,34,56abc", "--5"} {
		_, ok := ParseAmount(in)
		assert.False(t, ok, "expected %q to fail", in)
	}
}

func TestParseAmountNBSP(t *testing.T) {
	got, ok := ParseAmount("1" + " " + "234,56")
	require.True(t, ok)
	assert.Equal(t, "1234.56", got.String())
}

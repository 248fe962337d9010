package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFeeOf(t *testing.T) {
	cases := []struct {
		amount     string
		percentage string
		want       string
	}{
		{"100", "2", "2.00"},
		{"100", "1.5", "1.50"},
		{"1000", "0.5", "5.00"},
		{"33.33", "3", "1.00"},    // 0.9999 rounds half-up to 1.00
		{"0.01", "1", "0.00"},     // 0.0001 rounds down
		{"250.50", "2.5", "6.26"}, // 6.2625 rounds half-up
	}

	for _, tc := range cases {
		got := feeOf(decimal.RequireFromString(tc.amount), decimal.RequireFromString(tc.percentage))
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"%s%% of %s: got %s, want %s", tc.percentage, tc.amount, got, tc.want)
	}
}

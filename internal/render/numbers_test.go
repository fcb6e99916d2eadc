package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatNumbers_RoundsFloatsToPrecision(t *testing.T) {
	cases := []struct {
		in     string
		digits int
		want   string
	}{
		{"3.14159", 3, "3.14"},
		{"mean 2.345678 sd 0.00123456", 4, "mean 2.346 sd 0.001235"},
		{"1.5e-8", 2, "1.5e-08"},
		{"a 0.5 b\nc 0.25 d", 1, "a 0.5 b\nc 0.2 d"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, formatNumbers(tc.in, tc.digits), "input %q", tc.in)
	}
}

func TestFormatNumbers_LeavesIntegersAndWordsAlone(t *testing.T) {
	in := "n = 1000 iterations, sigma2 converged, version 1.2.3"
	require.Equal(t, in, formatNumbers(in, 2))
}

func TestFormatNumbers_ZeroDigits_PassesThrough(t *testing.T) {
	require.Equal(t, "3.14159", formatNumbers("3.14159", 0))
}

func TestFormatNumbers_PreservesWhitespaceShape(t *testing.T) {
	in := "  0.123456\t0.654321  "
	require.Equal(t, "  0.1235\t0.6543  ", formatNumbers(in, 4))
}

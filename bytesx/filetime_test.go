package bytesx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestFileTime_RoundTrip exercises spec.md §8 Testable Property 2: for all
// t in [1601-01-01, 9999-12-31], FromFileTime(ToFileTime(t)) == t. Dates
// near the upper bound are the ones that previously overflowed int64 when
// the conversion routed through a single ticks*100 nanosecond value.
func TestFileTime_RoundTrip(t *testing.T) {
	cases := []time.Time{
		time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1700, 3, 4, 5, 6, 7, 0, time.UTC),
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 12, 30, 45, 123456700, time.UTC),
		time.Date(2262, 4, 11, 23, 47, 16, 0, time.UTC), // near UnixNano's old ceiling
		time.Date(5000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(9999, 12, 31, 23, 59, 59, 999999900, time.UTC),
	}

	for _, want := range cases {
		ft := ToFileTime(want)
		got, ok := FromFileTime(ft)
		require.True(t, ok)
		require.True(t, want.Equal(got), "want %v, got %v", want, got)
	}
}

func TestFileTime_ZeroIsNotOK(t *testing.T) {
	_, ok := FromFileTime(0)
	require.False(t, ok)
}

func TestFileTime_BeforeEpochSaturatesToZero(t *testing.T) {
	before := time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, uint64(0), ToFileTime(before))
}

func TestFileTime_UpperBoundDoesNotOverflow(t *testing.T) {
	// 9999-12-31 is near the largest date FILETIME can represent; the tick
	// count at this point (~2.65e18) would overflow int64 once multiplied
	// by 100 into a single nanosecond value.
	want := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	ft := ToFileTime(want)
	require.Greater(t, ft, uint64(0))

	got, ok := FromFileTime(ft)
	require.True(t, ok)
	require.True(t, want.Equal(got))
}

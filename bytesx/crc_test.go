package bytesx

import (
	"hash/crc32"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNDBCrc_Empty exercises the degenerate case directly: with no bytes to
// fold in, the initial state (0) is returned unchanged.
func TestNDBCrc_Empty(t *testing.T) {
	require.Equal(t, uint32(0), NDBCrc(nil))
	require.Equal(t, uint32(0), NDBCrc([]byte{}))
}

// TestNDBCrc_MatchesIEEEReferenceVector exercises spec.md §8 Testable
// Property 3: for 1,000 random byte sequences, ndb_crc(s) matches the
// [MS-PST §5.3] reference vector. That reference is the reflected
// CRC-32/ISO-HDLC polynomial (0xEDB88320) run without the initial/final
// one's-complement the plain "CRC-32 checksum" applies. The test computes it
// with a bit-at-a-time loop from 0, independently of NDBCrc's table-driven
// implementation.
func TestNDBCrc_MatchesIEEEReferenceVector(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		n := rng.Intn(256)
		s := make([]byte, n)
		rng.Read(s)

		want := uint32(0)
		for _, b := range s {
			want ^= uint32(b)
			for k := 0; k < 8; k++ {
				if want&1 != 0 {
					want = want>>1 ^ crc32.IEEE
				} else {
					want >>= 1
				}
			}
		}
		require.Equal(t, want, NDBCrc(s))
	}
}

func TestNDBCrc_Deterministic(t *testing.T) {
	s := []byte("the quick brown fox jumps over the lazy dog")
	require.Equal(t, NDBCrc(s), NDBCrc(s))
}

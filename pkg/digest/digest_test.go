package digest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOfBytesDeterministic(t *testing.T) {
	a := OfBytes([]byte("hello"))
	b := OfBytes([]byte("hello"))
	require.Equal(t, a, b)
	require.NotEqual(t, a, OfBytes([]byte("world")))
}

func TestOfDigestsOrderMatters(t *testing.T) {
	a := OfBytes([]byte("a"))
	b := OfBytes([]byte("b"))
	require.NotEqual(t, OfDigests(a, b), OfDigests(b, a))
	require.Equal(t, OfDigests(a, b), OfDigests(a, b))
}

func TestOfDigestsEmpty(t *testing.T) {
	require.Equal(t, OfBytes(nil), OfDigests())
}

func TestHexRoundTrip(t *testing.T) {
	d := OfBytes([]byte("round trip"))
	parsed, err := FromHex(d.Hex())
	require.NoError(t, err)
	require.Equal(t, d, parsed)
}

func TestFromBytesWrongLength(t *testing.T) {
	_, err := FromBytes([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestCompareAndSort(t *testing.T) {
	ds := []Digest{OfBytes([]byte("z")), OfBytes([]byte("a")), OfBytes([]byte("m"))}
	SortSlice(ds)
	for i := 1; i < len(ds); i++ {
		require.LessOrEqual(t, ds[i-1].Compare(ds[i]), 0)
	}
}

func TestShort(t *testing.T) {
	d := OfBytes([]byte("x"))
	require.Len(t, d.Short(), 8)
	require.Equal(t, d.Hex()[:8], d.Short())
}

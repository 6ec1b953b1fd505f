package knownvalue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisteredNames(t *testing.T) {
	isA := New(1)
	name, ok := isA.Name()
	require.True(t, ok)
	require.Equal(t, "isA", name)
	require.Equal(t, "'isA'", isA.String())
}

func TestUnregisteredValue(t *testing.T) {
	v := New(999999)
	_, ok := v.Name()
	require.False(t, ok)
	require.Equal(t, "999999", v.String())
}

func TestByName(t *testing.T) {
	v, ok := ByName("signed")
	require.True(t, ok)
	require.Equal(t, uint64(3), v.Value())

	_, ok = ByName("not-a-real-name")
	require.False(t, ok)
}

func TestEqualityIsByValue(t *testing.T) {
	a := New(42)
	b := New(42)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(New(43)))
}

func TestRegisterExtension(t *testing.T) {
	Register(70000, "testOnlyPredicate")
	v, ok := ByName("testOnlyPredicate")
	require.True(t, ok)
	require.Equal(t, uint64(70000), v.Value())
}

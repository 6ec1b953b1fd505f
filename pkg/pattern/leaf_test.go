package pattern

import (
	"regexp"
	"testing"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
	"github.com/blockchaincommons/gordian-envelope/pkg/knownvalue"
	"github.com/stretchr/testify/require"
)

func TestNumberRangeMatches(t *testing.T) {
	env, err := envelope.New(float64(42))
	require.NoError(t, err)

	require.True(t, Matches(NumberRange(40, 50), env))
	require.False(t, Matches(NumberRange(0, 10), env))
	require.True(t, Matches(AnyNumber(), env))
}

func TestNumberComparisons(t *testing.T) {
	env, err := envelope.New(float64(10))
	require.NoError(t, err)

	require.True(t, Matches(NumberGreaterThan(5), env))
	require.False(t, Matches(NumberGreaterThan(10), env))
	require.True(t, Matches(NumberGreaterThanOrEqual(10), env))
	require.True(t, Matches(NumberLessThanOrEqual(10), env))
	require.False(t, Matches(NumberLessThan(10), env))
}

func TestTextExactAndRegex(t *testing.T) {
	env, err := envelope.New("Bob")
	require.NoError(t, err)

	require.True(t, Matches(Text("Bob"), env))
	require.False(t, Matches(Text("Alice"), env))
	require.True(t, Matches(TextRegex(regexp.MustCompile("^B")), env))
	require.False(t, Matches(TextRegex(regexp.MustCompile("^A")), env))
}

func TestByteStringExactAndRegex(t *testing.T) {
	env, err := envelope.New([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)

	require.True(t, Matches(ByteString([]byte{0x01, 0x02, 0x03}), env))
	require.False(t, Matches(ByteString([]byte{0xff}), env))
	require.True(t, Matches(ByteStringRegex(regexp.MustCompile(`(?s)\x01\x02`)), env))
}

func TestBoolExact(t *testing.T) {
	env, err := envelope.New(true)
	require.NoError(t, err)

	require.True(t, Matches(Bool(true), env))
	require.False(t, Matches(Bool(false), env))
	require.True(t, Matches(AnyBool(), env))
}

func TestNullMatchesOnlyNull(t *testing.T) {
	nullEnv, err := envelope.New(nil)
	require.NoError(t, err)
	require.True(t, Matches(Null(), nullEnv))

	textEnv, err := envelope.New("x")
	require.NoError(t, err)
	require.False(t, Matches(Null(), textEnv))
}

func TestArrayAndMapCount(t *testing.T) {
	arrEnv, err := envelope.New([]any{1.0, 2.0, 3.0})
	require.NoError(t, err)
	require.True(t, Matches(ArrayCount(3), arrEnv))
	require.False(t, Matches(ArrayCount(2), arrEnv))
	require.True(t, Matches(ArrayCountRange(1, 5), arrEnv))

	mapEnv, err := envelope.New(map[string]any{"a": 1.0})
	require.NoError(t, err)
	require.True(t, Matches(MapCount(1), mapEnv))
}

func TestKnownValuePattern(t *testing.T) {
	kv, ok := knownvalue.ByName("isA")
	require.True(t, ok)
	env, err := envelope.New(kv)
	require.NoError(t, err)

	require.True(t, Matches(KnownValueNamed("isA"), env))
	require.False(t, Matches(KnownValueNamed("note"), env))
	require.True(t, Matches(AnyKnownValue(), env))
	require.True(t, Matches(KnownValueRegex(regexp.MustCompile("^is")), env))
}

func TestCBORAnyAndExact(t *testing.T) {
	env, err := envelope.New(float64(7))
	require.NoError(t, err)

	require.True(t, Matches(AnyCBOR(), env))
	require.True(t, Matches(CBOR(float64(7)), env))
	require.False(t, Matches(CBOR(float64(8)), env))
}

package pattern

import (
	"testing"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
	"github.com/stretchr/testify/require"
)

func TestAnyNoneAndOr(t *testing.T) {
	env, err := envelope.New("Bob")
	require.NoError(t, err)

	require.True(t, Matches(Any(), env))
	require.False(t, Matches(None(), env))
	require.True(t, Matches(And(Text("Bob"), AnyText()), env))
	require.False(t, Matches(And(Text("Bob"), Text("Alice")), env))
	require.True(t, Matches(Or(Text("Alice"), Text("Bob")), env))
	require.False(t, Matches(Or(Text("Alice"), Number(1)), env))
}

func TestNotPattern(t *testing.T) {
	env, err := envelope.New("Bob")
	require.NoError(t, err)

	require.True(t, Matches(Not(Text("Alice")), env))
	require.False(t, Matches(Not(Text("Bob")), env))
}

func TestSearchFindsNestedText(t *testing.T) {
	env := buildAliceKnowsBob(t)

	require.True(t, Matches(Search(Text("Bob")), env))
	require.True(t, Matches(Search(Text("Alice")), env))
	require.False(t, Matches(Search(Text("Carol")), env))

	paths := Paths(Search(Text("Bob")), env)
	require.NotEmpty(t, paths)
	require.Equal(t, env, paths[0][0])
	last := paths[0].Last()
	require.NotNil(t, last)
	v, ok := last.(*envelope.Leaf)
	require.True(t, ok)
	require.Equal(t, "Bob", v.Value())
}

func TestSequenceWithOptionalWrappedPrefix(t *testing.T) {
	num, err := envelope.New(float64(99))
	require.NoError(t, err)
	wrapped := envelope.NewWrapped(num)

	seq := Sequence(Repeat(Wrapped(Any()), 0, 1, Greedy), AnyNumber())

	require.True(t, Matches(seq, wrapped))
	require.True(t, Matches(seq, num))
}

func TestEmptySequenceNeverMatches(t *testing.T) {
	env, err := envelope.New("Bob")
	require.NoError(t, err)

	require.False(t, Matches(Sequence(), env))
	require.Empty(t, Paths(Sequence(), env))
}

func TestRepeatGreedyVsLazy(t *testing.T) {
	inner, err := envelope.New("x")
	require.NoError(t, err)
	wrapped := envelope.NewWrapped(envelope.NewWrapped(inner))

	greedyPaths := Paths(Repeat(Wrapped(Any()), 0, 2, Greedy), wrapped)
	require.NotEmpty(t, greedyPaths)

	lazyPaths := Paths(Repeat(Wrapped(Any()), 0, 2, Lazy), wrapped)
	require.NotEmpty(t, lazyPaths)

	require.GreaterOrEqual(t, len(greedyPaths[0]), len(lazyPaths[0]))
}

func TestCaptureTransparentMatch(t *testing.T) {
	env, err := envelope.New("Bob")
	require.NoError(t, err)

	captured := Capture("name", Text("Bob"))
	require.True(t, Matches(captured, env))
	name, ok := CaptureName(captured)
	require.True(t, ok)
	require.Equal(t, "name", name)
}

func TestMatchesEquivalentToNonEmptyPaths(t *testing.T) {
	env := buildAliceKnowsBob(t)
	patterns := []Pattern{
		Any(), None(), Text("Alice"), Search(Text("Bob")),
		Subject(Text("Alice")), AnyNode(), Not(Text("Alice")),
	}
	for _, p := range patterns {
		require.Equal(t, len(Paths(p, env)) > 0, Matches(p, env))
	}
}

func TestPathRootIsAlwaysFirstElement(t *testing.T) {
	env := buildAliceKnowsBob(t)
	for _, p := range []Pattern{Search(Text("Bob")), Subject(Text("Alice"))} {
		for _, path := range Paths(p, env) {
			require.Equal(t, env, path[0])
		}
	}
}

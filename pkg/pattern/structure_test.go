package pattern

import (
	"testing"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
	"github.com/stretchr/testify/require"
)

func buildAliceKnowsBob(t *testing.T) envelope.Envelope {
	t.Helper()
	subject, err := envelope.New("Alice")
	require.NoError(t, err)
	env, err := envelope.AddAssertion(subject, "knows", "Bob")
	require.NoError(t, err)
	return env
}

func TestSubjectPattern(t *testing.T) {
	env := buildAliceKnowsBob(t)
	require.True(t, Matches(Subject(Text("Alice")), env))
	require.False(t, Matches(Subject(Text("Bob")), env))
}

func TestAssertionsWithPredicateAndObject(t *testing.T) {
	env := buildAliceKnowsBob(t)
	require.True(t, Matches(AssertionWithPredicate(Text("knows")), env))
	require.False(t, Matches(AssertionWithPredicate(Text("likes")), env))
	require.True(t, Matches(AssertionWithObject(Text("Bob")), env))
	require.True(t, Matches(AnyAssertion(), env))
}

func TestPredicateAndObjectPatterns(t *testing.T) {
	env := buildAliceKnowsBob(t)
	assertions := envelope.Assertions(env)
	require.Len(t, assertions, 1)
	a := assertions[0]
	require.True(t, Matches(Predicate(Text("knows")), a))
	require.True(t, Matches(Object(Text("Bob")), a))
}

func TestNodeCount(t *testing.T) {
	env := buildAliceKnowsBob(t)
	require.True(t, Matches(NodeCount(1), env))
	require.False(t, Matches(NodeCount(2), env))
	require.True(t, Matches(AnyNode(), env))
	require.False(t, Matches(AnyNode(), envelope.Subject(env)))
}

func TestWrappedPattern(t *testing.T) {
	inner, err := envelope.New("secret")
	require.NoError(t, err)
	wrapped := envelope.NewWrapped(inner)

	require.True(t, Matches(Wrapped(Text("secret")), wrapped))
	require.False(t, Matches(Wrapped(Text("other")), wrapped))
}

func TestObscuredPatterns(t *testing.T) {
	env := buildAliceKnowsBob(t)
	elided, err := envelope.ElideRevealing(env, nil)
	require.NoError(t, err)

	require.True(t, Matches(Elided(), elided))
	require.True(t, Matches(AnyObscured(), elided))
	require.False(t, Matches(Encrypted(), elided))
}

func TestDigestExactAndHexPrefix(t *testing.T) {
	env := buildAliceKnowsBob(t)
	d := env.Digest()

	require.True(t, Matches(DigestExact(d), env))
	require.True(t, Matches(DigestHexPrefix(d.Hex()[:4]), env))
	require.False(t, Matches(DigestHexPrefix("zzzzzzzz"), env))
}

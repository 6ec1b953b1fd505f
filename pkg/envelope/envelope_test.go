package envelope

import (
	"testing"

	"github.com/blockchaincommons/gordian-envelope/pkg/digest"
	"github.com/blockchaincommons/gordian-envelope/pkg/knownvalue"
	"github.com/stretchr/testify/require"
)

func TestNewLeafDigestStable(t *testing.T) {
	e1, err := New("Hello.")
	require.NoError(t, err)
	e2, err := New("Hello.")
	require.NoError(t, err)
	require.Equal(t, e1.Digest(), e2.Digest())
}

func TestAddAssertionChangesDigest(t *testing.T) {
	leaf, err := New("Hello.")
	require.NoError(t, err)
	withAssertion, err := AddAssertion(leaf, "an", "assertion")
	require.NoError(t, err)
	require.NotEqual(t, leaf.Digest(), withAssertion.Digest())
	require.True(t, IsNode(withAssertion))
}

func TestAssertionOrderingIndependence(t *testing.T) {
	subject, _ := New("Alice")
	a, err1 := AddAssertion(subject, "knows", "Bob")
	require.NoError(t, err1)
	a, err1 = AddAssertion(a, "knows", "Carol")
	require.NoError(t, err1)

	b, err2 := AddAssertion(subject, "knows", "Carol")
	require.NoError(t, err2)
	b, err2 = AddAssertion(b, "knows", "Bob")
	require.NoError(t, err2)

	require.Equal(t, a.Digest(), b.Digest())
}

func TestNodeRequiresAtLeastOneAssertion(t *testing.T) {
	subject, _ := New("x")
	_, err := NewNode(subject, nil)
	require.ErrorIs(t, err, ErrEmptyNode)
}

func TestNodeRejectsNonAssertionSlot(t *testing.T) {
	subject, _ := New("x")
	notAnAssertion, _ := New("y")
	_, err := NewNode(subject, []Envelope{notAnAssertion})
	require.ErrorIs(t, err, ErrNotAssertion)
}

func TestNodeAcceptsObscuredAssertionSlot(t *testing.T) {
	subject, _ := New("x")
	assertion, err := NewAssertion("knows", "Bob")
	require.NoError(t, err)
	elided := NewElided(assertion.Digest())
	node, err := NewNode(subject, []Envelope{elided})
	require.NoError(t, err)
	require.Equal(t, assertion.Digest(), node.Assertions()[0].Digest())
}

func TestSubjectAndAssertionsAccessors(t *testing.T) {
	subject, _ := New("Alice")
	env, err := AddAssertion(subject, "knows", "Bob")
	require.NoError(t, err)

	require.Equal(t, subject.Digest(), Subject(env).Digest())
	require.Len(t, Assertions(env), 1)
	require.True(t, HasAssertions(env))

	leaf, _ := New("x")
	require.Equal(t, leaf, Subject(leaf))
	require.Empty(t, Assertions(leaf))
}

func TestAsKnownValue(t *testing.T) {
	kv := knownvalue.New(1) // "isA"
	e, err := NewKnownValueLeaf(kv)
	require.NoError(t, err)

	got, err := AsKnownValue(e)
	require.NoError(t, err)
	require.True(t, got.Equal(kv))

	leaf, _ := New("x")
	_, err = AsKnownValue(leaf)
	require.ErrorIs(t, err, ErrNotKnownValue)
}

func TestWrappedDigestDiffersFromInner(t *testing.T) {
	inner, _ := New("x")
	wrapped := NewWrapped(inner)
	require.NotEqual(t, inner.Digest(), wrapped.Digest())
}

func TestExtractSubjectThroughNodeAndWrapped(t *testing.T) {
	leaf, _ := New("Hello.")
	withAssertion, err := AddAssertion(leaf, "an", "assertion")
	require.NoError(t, err)
	wrapped := NewWrapped(withAssertion)

	s, err := ExtractSubject[string](wrapped)
	require.NoError(t, err)
	require.Equal(t, "Hello.", s)
}

func TestExtractSubjectWrongTypeFails(t *testing.T) {
	leaf, _ := New("Hello.")
	_, err := ExtractSubject[int](leaf)
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestAssertionWithPredicate(t *testing.T) {
	subject, _ := New("Alice")
	env, err := AddAssertion(subject, "knows", "Bob")
	require.NoError(t, err)
	env, err = AddAssertion(env, "age", 30)
	require.NoError(t, err)

	obj, err := ObjectForPredicate(env, "knows")
	require.NoError(t, err)
	bob, err := ExtractSubject[string](obj)
	require.NoError(t, err)
	require.Equal(t, "Bob", bob)

	_, err = AssertionWithPredicate(env, "missing")
	require.ErrorIs(t, err, ErrNonexistentPredicate)
}

func TestAssertionWithPredicateAmbiguous(t *testing.T) {
	subject, _ := New("Alice")
	env, err := AddAssertion(subject, "knows", "Bob")
	require.NoError(t, err)
	env, err = AddAssertion(env, "knows", "Carol")
	require.NoError(t, err)

	_, err = AssertionWithPredicate(env, "knows")
	require.ErrorIs(t, err, ErrAmbiguousPredicate)
}

func TestElementsCount(t *testing.T) {
	leaf, _ := New("Hello.")
	require.Equal(t, 1, ElementsCount(leaf))

	withAssertion, err := AddAssertion(leaf, "an", "assertion")
	require.NoError(t, err)
	// leaf(subject) + node + assertion + predicate-leaf + object-leaf = 5
	require.Equal(t, 5, ElementsCount(withAssertion))
}

func TestEncryptedAndCompressedRequireDigest(t *testing.T) {
	_, err := NewEncrypted(EncryptedMessage{}, digest.Digest{})
	require.ErrorIs(t, err, ErrMissingDigest)

	_, err = NewCompressed(nil, digest.Digest{})
	require.ErrorIs(t, err, ErrMissingDigest)
}

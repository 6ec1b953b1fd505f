package envelope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEdgesFlattenAssertions(t *testing.T) {
	subject, _ := New("Alice")
	env, err := AddAssertion(subject, "knows", "Bob")
	require.NoError(t, err)
	env, err = AddAssertion(env, "age", 30)
	require.NoError(t, err)

	edges := Edges(env)
	require.Len(t, edges, 2)
	for _, e := range edges {
		require.Equal(t, subject.Digest(), e.Subject.Digest())
	}
}

func TestEdgesEmptyForLeaf(t *testing.T) {
	leaf, _ := New("x")
	require.Empty(t, Edges(leaf))
}

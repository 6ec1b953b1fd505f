package envelope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalkStructureVisitsEveryEnvelope(t *testing.T) {
	subject, _ := New("Alice")
	env, err := AddAssertion(subject, "knows", "Bob")
	require.NoError(t, err)

	var kinds []Kind
	Walk(env, ModeStructure, func(e Envelope, level int, edge EdgeType, parent Envelope) bool {
		kinds = append(kinds, e.Kind())
		return false
	})
	// root node, subject leaf, assertion, predicate leaf, object leaf
	require.Len(t, kinds, 5)
	require.Equal(t, KindNode, kinds[0])
}

func TestWalkPruneStopsDescent(t *testing.T) {
	subject, _ := New("Alice")
	env, err := AddAssertion(subject, "knows", "Bob")
	require.NoError(t, err)

	count := 0
	Walk(env, ModeStructure, func(e Envelope, level int, edge EdgeType, parent Envelope) bool {
		count++
		return e.Kind() == KindNode // prune immediately below root
	})
	require.Equal(t, 1, count)
}

func TestDeepDigestsContainsEveryNode(t *testing.T) {
	subject, _ := New("Alice")
	env, err := AddAssertion(subject, "knows", "Bob")
	require.NoError(t, err)

	set := DeepDigests(env)
	require.True(t, set.Contains(env.Digest()))
	require.True(t, set.Contains(subject.Digest()))
	require.Equal(t, 5, len(set))
}

func TestShallowDigestsIsSubsetOfDeep(t *testing.T) {
	subject, _ := New("Alice")
	env, err := AddAssertion(subject, "knows", "Bob")
	require.NoError(t, err)

	shallow := ShallowDigests(env)
	deep := DeepDigests(env)
	for d := range shallow {
		require.True(t, deep.Contains(d))
	}
	require.LessOrEqual(t, len(shallow), len(deep))
}

package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
)

func mustNew(t *testing.T, v any) envelope.Envelope {
	t.Helper()
	e, err := envelope.New(v)
	require.NoError(t, err)
	return e
}

func TestFormatPlainLeaf(t *testing.T) {
	e := mustNew(t, "Hello.")
	require.Equal(t, `"Hello."`, Format(e))
	require.Equal(t, `"Hello."`, FormatFlat(e))
}

func TestFormatSingleAssertion(t *testing.T) {
	e, err := envelope.AddAssertion(mustNew(t, "Alice"), "knows", "Bob")
	require.NoError(t, err)
	require.Equal(t, "\"Alice\" [\n    \"knows\": \"Bob\"\n]", Format(e))
	require.Equal(t, `"Alice" [ "knows": "Bob" ]`, FormatFlat(e))
}

func TestFormatMultipleAssertionsOnePerLine(t *testing.T) {
	e, err := envelope.AddAssertion(mustNew(t, "Alice"), "knows", "Bob")
	require.NoError(t, err)
	e, err = envelope.AddAssertion(e, "knows", "Carol")
	require.NoError(t, err)

	got := Format(e)
	require.True(t, strings.HasPrefix(got, "\"Alice\" [\n"))
	require.True(t, strings.HasSuffix(got, "\n]"))
	require.Contains(t, got, "\"knows\": \"Bob\"")
	require.Contains(t, got, "\"knows\": \"Carol\"")

	flat := FormatFlat(e)
	require.Contains(t, flat, ", ")
	require.True(t, strings.HasPrefix(flat, `"Alice" [ `))
	require.True(t, strings.HasSuffix(flat, " ]"))
}

func TestFormatWrapped(t *testing.T) {
	inner := mustNew(t, "Hello.")
	wrapped := envelope.NewWrapped(inner)
	require.Equal(t, `{ "Hello." }`, Format(wrapped))
	require.Equal(t, `{ "Hello." }`, FormatFlat(wrapped))
}

func TestFormatWrappedNodeMultiline(t *testing.T) {
	node, err := envelope.AddAssertion(mustNew(t, "Alice"), "knows", "Bob")
	require.NoError(t, err)
	node, err = envelope.AddAssertion(node, "knows", "Carol")
	require.NoError(t, err)
	wrapped := envelope.NewWrapped(node)

	got := Format(wrapped)
	require.True(t, strings.HasPrefix(got, "{\n"))
	require.True(t, strings.HasSuffix(got, "\n}"))
	require.Contains(t, got, "    \"Alice\" [")
	require.Contains(t, got, "        \"knows\": \"Bob\"")
}

func TestFormatElidedObject(t *testing.T) {
	env, err := envelope.AddAssertion(mustNew(t, "Alice"), "knows", "Bob")
	require.NoError(t, err)
	bobLeaf := mustNew(t, "Bob")
	elided, err := envelope.ElideRemoving(env, envelope.NewDigestSet(bobLeaf.Digest()))
	require.NoError(t, err)
	require.Equal(t, env.Digest(), elided.Digest())

	got := Format(elided)
	require.Contains(t, got, `"knows": ELIDED`)
}

func TestFormatGroupsConsecutiveElidedAssertions(t *testing.T) {
	env, err := envelope.AddAssertionSalted(mustNew(t, "Alice"), "knows", "Bob", true)
	require.NoError(t, err)
	env, err = envelope.AddAssertionSalted(env, "knows", "Carol", true)
	require.NoError(t, err)
	env, err = envelope.AddAssertionSalted(env, "knows", "Dan", true)
	require.NoError(t, err)

	target := envelope.NewDigestSet(env.Digest(), envelope.Subject(env).Digest())
	elided, err := envelope.ElideRevealing(env, target)
	require.NoError(t, err)
	require.Equal(t, env.Digest(), elided.Digest())

	got := Format(elided)
	require.Contains(t, got, "ELIDED (3)")
	require.NotContains(t, got, "ELIDED\n    ELIDED")
}

func TestFormatObscuredVariants(t *testing.T) {
	leaf := mustNew(t, "x")
	require.Equal(t, "ELIDED", Format(envelope.NewElided(leaf.Digest())))

	enc, err := envelope.NewEncrypted(envelope.EncryptedMessage{Ciphertext: []byte{1}}, leaf.Digest())
	require.NoError(t, err)
	require.Equal(t, "ENCRYPTED", Format(enc))

	comp, err := envelope.NewCompressed([]byte{1}, leaf.Digest())
	require.NoError(t, err)
	require.Equal(t, "COMPRESSED", Format(comp))
}

func TestTreePlainLeaf(t *testing.T) {
	e := mustNew(t, "Hello.")
	got := Tree(e, false)
	require.Equal(t, e.Digest().Short()+` "Hello."`, got)
	require.Equal(t, `"Hello."`, Tree(e, true))
}

func TestTreeNodeWithAssertion(t *testing.T) {
	e, err := envelope.AddAssertion(mustNew(t, "Alice"), "knows", "Bob")
	require.NoError(t, err)

	got := Tree(e, false)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 5) // NODE, subj, ASSERTION, pred, obj
	require.Contains(t, lines[0], "NODE")
	require.Contains(t, lines[1], "subj \"Alice\"")
	require.Contains(t, lines[2], "ASSERTION")
	require.Contains(t, lines[3], "pred \"knows\"")
	require.Contains(t, lines[4], "obj \"Bob\"")

	hidden := Tree(e, true)
	require.Equal(t, "\"Alice\"\n    ASSERTION\n        \"knows\"\n        \"Bob\"", hidden)
}

func TestTreeElementsCountMatchesLineCount(t *testing.T) {
	e, err := envelope.AddAssertion(mustNew(t, "Alice"), "knows", "Bob")
	require.NoError(t, err)
	e, err = envelope.AddAssertion(e, "knows", "Carol")
	require.NoError(t, err)

	got := Tree(e, false)
	require.Equal(t, envelope.ElementsCount(e), len(strings.Split(got, "\n")))
}

func TestDiagnosticAndAnnotated(t *testing.T) {
	e := mustNew(t, 42)
	raw, err := Diagnostic(e)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	annotated, err := DiagnosticAnnotated(e)
	require.NoError(t, err)
	require.Contains(t, annotated, "/envelope/")
	require.Contains(t, annotated, "/leaf/")
}

func TestRegisterTagName(t *testing.T) {
	RegisterTagName(999999, "custom-tag")
	name, ok := tagName(999999)
	require.True(t, ok)
	require.Equal(t, "custom-tag", name)
}

package envelope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeEncryptor is a trivial, deterministic stand-in for pkg/crypto's
// real AEAD Encryptor, enough to exercise the transform engine's
// digest-preservation contract without pulling in real cryptography.
type fakeEncryptor struct{}

func (fakeEncryptor) Encrypt(plaintext, key, aad []byte) (EncryptedMessage, error) {
	ct := make([]byte, len(plaintext))
	for i, b := range plaintext {
		ct[i] = b ^ key[0]
	}
	return EncryptedMessage{Ciphertext: ct, Nonce: []byte{0}, AAD: aad}, nil
}

func (fakeEncryptor) Decrypt(message EncryptedMessage, key []byte) ([]byte, error) {
	pt := make([]byte, len(message.Ciphertext))
	for i, b := range message.Ciphertext {
		pt[i] = b ^ key[0]
	}
	return pt, nil
}

type fakeCompressor struct{}

func (fakeCompressor) Compress(data []byte) ([]byte, error)   { return append([]byte{0xFF}, data...), nil }
func (fakeCompressor) Decompress(blob []byte) ([]byte, error) { return blob[1:], nil }

func buildAliceDoc(t *testing.T) Envelope {
	t.Helper()
	subject, err := New("Alice")
	require.NoError(t, err)
	env, err := AddAssertionSalted(subject, "knows", "Bob", true)
	require.NoError(t, err)
	env, err = AddAssertionSalted(env, "knows", "Carol", true)
	require.NoError(t, err)
	env, err = AddAssertionSalted(env, "knows", "Dan", true)
	require.NoError(t, err)
	return env
}

func TestElidePreservesDigest(t *testing.T) {
	env := buildAliceDoc(t)
	elided, err := ElideRevealing(env, NewDigestSet())
	require.NoError(t, err)
	require.Equal(t, env.Digest(), elided.Digest())
	require.True(t, IsElided(elided))
}

func TestElideIdempotent(t *testing.T) {
	env := buildAliceDoc(t)
	once, err := ElideRevealing(env, NewDigestSet())
	require.NoError(t, err)
	twice, err := obscureElide(once)
	require.NoError(t, err)
	require.Equal(t, once.Digest(), twice.Digest())
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	env := buildAliceDoc(t)
	key := []byte{0x42}
	enc := fakeEncryptor{}

	encrypted, err := EncryptRevealing(env, NewDigestSet(), key, enc)
	require.NoError(t, err)
	require.Equal(t, env.Digest(), encrypted.Digest())
	require.True(t, IsEncrypted(encrypted))

	decrypted, err := Decrypt(encrypted, key, enc)
	require.NoError(t, err)
	require.Equal(t, env.Digest(), decrypted.Digest())
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	env := buildAliceDoc(t)
	comp := fakeCompressor{}

	compressed, err := CompressRevealing(env, NewDigestSet(), comp)
	require.NoError(t, err)
	require.Equal(t, env.Digest(), compressed.Digest())
	require.True(t, IsCompressed(compressed))

	decompressed, err := Decompress(compressed, comp)
	require.NoError(t, err)
	require.Equal(t, env.Digest(), decompressed.Digest())
}

func TestUnelide(t *testing.T) {
	leaf, _ := New("x")
	elided := NewElided(leaf.Digest())
	got, err := Unelide(elided, leaf)
	require.NoError(t, err)
	require.Equal(t, leaf.Digest(), got.Digest())

	other, _ := New("y")
	_, err = Unelide(elided, other)
	require.ErrorIs(t, err, ErrInvalidDigest)
}

func TestEncryptingObscuredFails(t *testing.T) {
	leaf, _ := New("x")
	elided := NewElided(leaf.Digest())
	_, err := EncryptRevealing(elided, NewDigestSet(), []byte{1}, fakeEncryptor{})
	require.ErrorIs(t, err, ErrAlreadyObscured)
}

func TestProofContainsTarget(t *testing.T) {
	env := buildAliceDoc(t)

	// Salting decorrelates the (knows, Bob) assertion's digest, so
	// target the "Bob" leaf itself, which always survives salting.
	bobLeaf, err := New("Bob")
	require.NoError(t, err)

	proof, err := ProofContainsTarget(env, bobLeaf)
	require.NoError(t, err)
	require.Equal(t, env.Digest(), proof.Digest())
	require.True(t, ConfirmContainsTarget(env, bobLeaf, proof))

	eve, _ := New("Eve")
	require.False(t, ConfirmContainsTarget(env, eve, proof))
}

func TestAddAssertionSaltedDecorrelatesDigest(t *testing.T) {
	subject, _ := New("Alice")
	a, err := AddAssertionSalted(subject, "knows", "Bob", true)
	require.NoError(t, err)
	b, err := AddAssertionSalted(subject, "knows", "Bob", true)
	require.NoError(t, err)
	require.NotEqual(t, a.Digest(), b.Digest())
}

package crypto

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
)

func TestNewFileKeystoreCreatesInitialVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")

	ks, err := NewFileKeystore(path)
	require.NoError(t, err)
	require.Equal(t, "1", ks.ActiveVersion())

	version, key := ks.ActiveKey()
	require.Equal(t, "1", version)
	require.Len(t, key, keystoreKeySize)
}

func TestFileKeystoreReloadsPersistedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")

	ks1, err := NewFileKeystore(path)
	require.NoError(t, err)
	_, key1 := ks1.ActiveKey()

	ks2, err := NewFileKeystore(path)
	require.NoError(t, err)
	version2, key2 := ks2.ActiveKey()

	require.Equal(t, "1", version2)
	require.Equal(t, key1, key2)
}

func TestKeystoreRotateKeepsOldVersionForDecryption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")
	ks, err := NewFileKeystore(path)
	require.NoError(t, err)

	v1, k1 := ks.ActiveKey()

	v2, err := ks.Rotate()
	require.NoError(t, err)
	require.NotEqual(t, v1, v2)
	require.Equal(t, v2, ks.ActiveVersion())

	oldKey, ok := ks.Key(v1)
	require.True(t, ok)
	require.Equal(t, k1, oldKey)

	_, ok = ks.Key("does-not-exist")
	require.False(t, ok)
}

func TestKeystoreImportKeyMakesItActive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")
	ks, err := NewFileKeystore(path)
	require.NoError(t, err)

	raw := make([]byte, keystoreKeySize)
	raw[0] = 0x42
	require.NoError(t, ks.ImportKey("imported", raw))

	require.Equal(t, "imported", ks.ActiveVersion())
	key, ok := ks.Key("imported")
	require.True(t, ok)
	require.Equal(t, raw, key)
}

func TestVersionedEncryptorDecryptsAcrossRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")
	ks, err := NewFileKeystore(path)
	require.NoError(t, err)

	ve := NewVersionedEncryptor(ks, NewAEADEncryptor())

	plaintext := []byte("rotate me")
	aad := []byte("binding")
	msg1, err := ve.Encrypt(plaintext, aad)
	require.NoError(t, err)
	require.Equal(t, "1", msg1.KeyVersion)

	_, err = ks.Rotate()
	require.NoError(t, err)

	msg2, err := ve.Encrypt(plaintext, aad)
	require.NoError(t, err)
	require.NotEqual(t, msg1.KeyVersion, msg2.KeyVersion)

	got1, err := ve.Decrypt(msg1)
	require.NoError(t, err)
	require.Equal(t, plaintext, got1)

	got2, err := ve.Decrypt(msg2)
	require.NoError(t, err)
	require.Equal(t, plaintext, got2)
}

func TestVersionedEncryptorDecryptUnknownVersionFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")
	ks, err := NewFileKeystore(path)
	require.NoError(t, err)
	ve := NewVersionedEncryptor(ks, NewAEADEncryptor())

	_, err = ve.Decrypt(envelope.EncryptedMessage{KeyVersion: "999"})
	require.ErrorIs(t, err, ErrUnknownKey)
}

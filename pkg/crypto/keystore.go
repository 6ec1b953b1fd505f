package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
)

const keystoreKeySize = 32

// keystoreFile is the on-disk JSON form of a Keystore, grounded on
// Mindburn-Labs-helm's pkg/kms Keystore type: an active version plus a
// map of every version still retained for decryption.
type keystoreFile struct {
	ActiveVersion string            `json:"active_version"`
	Keys          map[string]string `json:"keys"`
}

// Keystore is a file-backed, versioned key store: Rotate generates a new
// active key while every prior version stays available for Decrypt,
// matching the rotation discipline spec.md's Encryptor leaves up to its
// caller (plaintextDigest is embedded by the envelope layer; the key
// material and its versioning is an adapter concern).
type Keystore struct {
	mu     sync.RWMutex
	path   string
	active string
	keys   map[string][]byte
}

// NewFileKeystore loads the keystore at path, creating it (with an
// initial generated key, version "1") if it does not exist.
func NewFileKeystore(path string) (*Keystore, error) {
	ks := &Keystore{path: path, keys: make(map[string][]byte)}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("crypto: keystore: create dir: %w", err)
		}
		key, err := generateKey()
		if err != nil {
			return nil, err
		}
		ks.active = "1"
		ks.keys["1"] = key
		if err := ks.persist(); err != nil {
			return nil, err
		}
		return ks, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("crypto: keystore: read: %w", err)
	}
	var file keystoreFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("crypto: keystore: parse: %w", err)
	}
	for version, encoded := range file.Keys {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("crypto: keystore: decode key %q: %w", version, err)
		}
		if len(key) != keystoreKeySize {
			return nil, fmt.Errorf("crypto: keystore: key %q has length %d, want %d", version, len(key), keystoreKeySize)
		}
		ks.keys[version] = key
	}
	if _, ok := ks.keys[file.ActiveVersion]; !ok {
		return nil, fmt.Errorf("crypto: keystore: active version %q not present", file.ActiveVersion)
	}
	ks.active = file.ActiveVersion
	return ks, nil
}

// ImportKey installs rawKey as version, making it the active version.
// Existing versions remain available for decryption.
func (k *Keystore) ImportKey(version string, rawKey []byte) error {
	if len(rawKey) != keystoreKeySize {
		return fmt.Errorf("crypto: keystore: import key must be %d bytes, got %d", keystoreKeySize, len(rawKey))
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[version] = rawKey
	k.active = version
	return k.persist()
}

// Rotate generates a new key, assigns it the next integer version, makes
// it active, and persists the updated keystore. Prior versions remain in
// the store so ciphertext encrypted under them still decrypts.
func (k *Keystore) Rotate() (string, error) {
	key, err := generateKey()
	if err != nil {
		return "", err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	next := k.nextVersionLocked()
	k.keys[next] = key
	k.active = next
	if err := k.persist(); err != nil {
		return "", err
	}
	return next, nil
}

func (k *Keystore) nextVersionLocked() string {
	max := 0
	for v := range k.keys {
		if n, err := strconv.Atoi(v); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

// ActiveVersion returns the current active key version.
func (k *Keystore) ActiveVersion() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.active
}

// ActiveKey returns the active version and its raw key.
func (k *Keystore) ActiveKey() (string, []byte) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.active, k.keys[k.active]
}

// Key returns the raw key for version, if the keystore still retains it.
func (k *Keystore) Key(version string) ([]byte, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.keys[version]
	return key, ok
}

func (k *Keystore) persist() error {
	file := keystoreFile{ActiveVersion: k.active, Keys: make(map[string]string, len(k.keys))}
	for version, key := range k.keys {
		file.Keys[version] = base64.StdEncoding.EncodeToString(key)
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("crypto: keystore: marshal: %w", err)
	}
	if err := os.WriteFile(k.path, data, 0o600); err != nil {
		return fmt.Errorf("crypto: keystore: write: %w", err)
	}
	return nil
}

func generateKey() ([]byte, error) {
	key := make([]byte, keystoreKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("crypto: keystore: generate key: %w", err)
	}
	return key, nil
}

// VersionedEncryptor adapts an envelope.Encryptor so callers don't thread
// raw key material themselves: Encrypt uses the keystore's active key and
// stamps the resulting message's KeyVersion; Decrypt looks the version
// back up, so a rotated keystore still opens ciphertext sealed under a
// retired key.
type VersionedEncryptor struct {
	store *Keystore
	inner envelope.Encryptor
}

// NewVersionedEncryptor builds a VersionedEncryptor over store and inner.
func NewVersionedEncryptor(store *Keystore, inner envelope.Encryptor) *VersionedEncryptor {
	return &VersionedEncryptor{store: store, inner: inner}
}

// Encrypt seals plaintext under the keystore's active key.
func (v *VersionedEncryptor) Encrypt(plaintext, aad []byte) (envelope.EncryptedMessage, error) {
	version, key := v.store.ActiveKey()
	if key == nil {
		return envelope.EncryptedMessage{}, fmt.Errorf("crypto: keystore: %w", ErrUnknownKey)
	}
	msg, err := v.inner.Encrypt(plaintext, key, aad)
	if err != nil {
		return envelope.EncryptedMessage{}, err
	}
	msg.KeyVersion = version
	return msg, nil
}

// Decrypt opens message using the key version it was sealed under.
func (v *VersionedEncryptor) Decrypt(message envelope.EncryptedMessage) ([]byte, error) {
	key, ok := v.store.Key(message.KeyVersion)
	if !ok {
		return nil, fmt.Errorf("crypto: keystore: version %q: %w", message.KeyVersion, ErrUnknownKey)
	}
	return v.inner.Decrypt(message, key)
}

package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
)

// AEADEncryptor implements envelope.Encryptor over ChaCha20-Poly1305
// (SPEC_FULL.md §11, §13): chosen over nacl/secretbox because it takes
// an explicit AAD parameter, matching the Encryptor.encrypt(plaintext,
// key, aad) signature in spec.md §6 exactly.
type AEADEncryptor struct{}

// NewAEADEncryptor returns a ready-to-use AEADEncryptor; it carries no
// state of its own; keys are supplied per call, typically sourced from a
// Keystore.
func NewAEADEncryptor() *AEADEncryptor { return &AEADEncryptor{} }

// Encrypt implements envelope.Encryptor.
func (*AEADEncryptor) Encrypt(plaintext, key, aad []byte) (envelope.EncryptedMessage, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return envelope.EncryptedMessage{}, fmt.Errorf("crypto: chacha20poly1305: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return envelope.EncryptedMessage{}, fmt.Errorf("crypto: generating nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, aad)
	return envelope.EncryptedMessage{
		Ciphertext: ciphertext,
		Nonce:      nonce,
		AAD:        aad,
	}, nil
}

// Decrypt implements envelope.Encryptor.
func (*AEADEncryptor) Decrypt(message envelope.EncryptedMessage, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: chacha20poly1305: %w", err)
	}
	plaintext, err := aead.Open(nil, message.Nonce, message.Ciphertext, message.AAD)
	if err != nil {
		return nil, fmt.Errorf("crypto: aead open: %w", err)
	}
	return plaintext, nil
}

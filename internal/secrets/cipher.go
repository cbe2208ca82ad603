package secrets

import (
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/2beens/fitdash/pkg"
)

var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// Cipher encrypts short secrets (oauth tokens) for storage at rest.
// Output is base64url(nonce || sealed), so encrypting the same value twice gives different strings.
type Cipher struct {
	aead cipher.AEAD
}

func NewCipher(key []byte) (*Cipher, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("new xchacha20poly1305: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// NewCipherFromBase64 accepts a standard base64 encoded 32 byte key.
func NewCipherFromBase64(encodedKey string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return NewCipher(key)
}

// GenerateKey returns a fresh base64 encoded key usable with NewCipherFromBase64.
func GenerateKey() (string, error) {
	key, err := pkg.GenerateRandomBytes(chacha20poly1305.KeySize)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func (c *Cipher) Encrypt(plain string) (string, error) {
	nonce, err := pkg.GenerateRandomBytes(c.aead.NonceSize())
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidCiphertext, err)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize+c.aead.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrInvalidCiphertext)
	}

	plain, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidCiphertext, err)
	}
	return string(plain), nil
}

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// KeySize is the AES-256 key length in bytes; keys are configured as 64 hex chars.
const KeySize = 32

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// Service seals ledger credentials at rest. boundTo is authenticated but not
// stored, so a sealed value only opens for the account it was written for.
type Service interface {
	Seal(plaintext, boundTo string) (string, error)
	Open(sealed, boundTo string) (string, error)
}

// NoopService stores credentials as plaintext (development only).
type NoopService struct{}

func (NoopService) Seal(plaintext, _ string) (string, error) { return plaintext, nil }
func (NoopService) Open(sealed, _ string) (string, error)    { return sealed, nil }

type AesGcmService struct {
	gcm cipher.AEAD
}

func NewAesGcmService(hexKey string) (*AesGcmService, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key hex: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AesGcmService{gcm: gcm}, nil
}

// Seal returns hex(nonce || ciphertext || tag).
func (s *AesGcmService) Seal(plaintext, boundTo string) (string, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.gcm.Seal(nonce, nonce, []byte(plaintext), []byte(boundTo))
	return hex.EncodeToString(sealed), nil
}

func (s *AesGcmService) Open(sealed, boundTo string) (string, error) {
	buf, err := hex.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedCiphertext, err)
	}

	nonceSize := s.gcm.NonceSize()
	if len(buf) < nonceSize+s.gcm.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrMalformedCiphertext)
	}

	plain, err := s.gcm.Open(nil, buf[:nonceSize], buf[nonceSize:], []byte(boundTo))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential: %w", err)
	}
	return string(plain), nil
}

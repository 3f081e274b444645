package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = 32

// Algorithm identifies the AEAD algorithm.
type Algorithm string

const (
	AlgorithmAESGCM   Algorithm = "aes-gcm"
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

var (
	// ErrInvalidKeySize indicates the key is not KeySize bytes.
	ErrInvalidKeySize = errors.New("sealer: key must be 32 bytes")

	// ErrSealedTooShort indicates a sealed blob shorter than a nonce.
	ErrSealedTooShort = errors.New("sealer: sealed data too short")
)

// Sealer provides authenticated encryption of record payloads.
type Sealer interface {
	// Seal encrypts plain, binding the additional data.
	Seal(plain, additional []byte) ([]byte, error)

	// Open decrypts sealed, verifying the additional data.
	Open(sealed, additional []byte) ([]byte, error)

	// Algorithm returns the algorithm in use.
	Algorithm() Algorithm
}

// New creates a sealer, picking the algorithm for the target CPU:
// AES-GCM on amd64/arm64 where the AES instructions are present,
// ChaCha20-Poly1305 on everything else (including the flight target).
func New(key []byte) (Sealer, error) {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return NewWithAlgorithm(key, AlgorithmAESGCM)
	default:
		return NewWithAlgorithm(key, AlgorithmChaCha20)
	}
}

// NewWithAlgorithm creates a sealer with an explicit algorithm.
func NewWithAlgorithm(key []byte, alg Algorithm) (Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	switch alg {
	case AlgorithmAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		return &aeadSealer{aead: aead, alg: AlgorithmAESGCM}, nil

	case AlgorithmChaCha20:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, err
		}
		return &aeadSealer{aead: aead, alg: AlgorithmChaCha20}, nil

	default:
		return nil, errors.New("sealer: unknown algorithm " + string(alg))
	}
}

// aeadSealer wraps an AEAD with a random nonce prepended to the output.
type aeadSealer struct {
	aead cipher.AEAD
	alg  Algorithm
}

func (s *aeadSealer) Algorithm() Algorithm {
	return s.alg
}

func (s *aeadSealer) Seal(plain, additional []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plain, additional), nil
}

func (s *aeadSealer) Open(sealed, additional []byte) ([]byte, error) {
	if len(sealed) < s.aead.NonceSize() {
		return nil, ErrSealedTooShort
	}
	nonce := sealed[:s.aead.NonceSize()]
	return s.aead.Open(nil, nonce, sealed[s.aead.NonceSize():], additional)
}

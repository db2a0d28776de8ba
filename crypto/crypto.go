// Package crypto has the cryptographic primitives of the wallet: key
// derivation from passphrases, ChaCha20-Poly1305 sealing with random and
// deterministic nonces, HMAC-SHA256 and key material helpers.
package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeySize   = chacha20poly1305.KeySize
	NonceSize = chacha20poly1305.NonceSize
	TagSize   = chacha20poly1305.Overhead
	SaltSize  = 16

	// SealedKeySize is the size of a sealed 32 byte key.
	SealedKeySize = NonceSize + KeySize + TagSize
)

// ErrDecrypt is the only error Open returns for bad ciphertexts. It does not
// tell which check failed.
var ErrDecrypt = errors.New("decryption failed")

// ErrKeySize is returned when a key has a wrong length.
var ErrKeySize = errors.New("invalid key size")

// Random returns n bytes from the system CSPRNG. It panics if the source
// fails, which err2 handlers convert to errors.
func Random(n int) []byte {
	b := make([]byte, n)
	try.To1(rand.Read(b))
	return b
}

// NewKey returns a new random 32 byte key.
func NewKey() []byte {
	return Random(KeySize)
}

// Zero overwrites the key material.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// MAC returns HMAC-SHA256 of data.
func MAC(key, data []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(data)
	return m.Sum(nil)
}

// Seal encrypts plaintext with a random nonce. The result is nonce || ct.
func Seal(key, plaintext []byte) (ct []byte, err error) {
	defer err2.Handle(&err, "seal")

	return seal(key, Random(NonceSize), plaintext)
}

// SealSearchable encrypts plaintext deterministically: the nonce is the
// HMAC of the plaintext under hmacKey. Same input gives the same output,
// which makes equality searchable over ciphertexts.
func SealSearchable(key, hmacKey, plaintext []byte) (ct []byte, err error) {
	defer err2.Handle(&err, "seal searchable")

	nonce := MAC(hmacKey, plaintext)[:NonceSize]
	return seal(key, nonce, plaintext)
}

func seal(key, nonce, plaintext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	aead := try.To1(chacha20poly1305.New(key))
	out := make([]byte, 0, len(nonce)+len(plaintext)+TagSize)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts nonce || ct produced by Seal or SealSearchable.
func Open(key, joined []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	if len(joined) < NonceSize+TagSize {
		return nil, ErrDecrypt
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, ErrDecrypt
	}
	pt, err := aead.Open(nil, joined[:NonceSize], joined[NonceSize:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return pt, nil
}

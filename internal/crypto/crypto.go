// Package crypto encrypts the settings document at rest with NaCl secretbox.
//
// The 32-byte key is derived from the user's passphrase with HKDF-SHA256.
// Sealed data is a random 24-byte nonce followed by the ciphertext, and is
// base64-encoded so the settings file stays a text file:
//
//	base64( [ 24-byte nonce ][ ciphertext ] )
//
// An empty passphrase means no encryption; callers pass a nil *Key.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var hkdfInfo = []byte("clipshelf-settings-v1")

var ErrDecrypt = errors.New("decryption failed (wrong passphrase?)")

// Key is a secretbox key.
type Key [keySize]byte

// DeriveKey derives a Key from passphrase. The same passphrase always yields
// the same key.
func DeriveKey(passphrase string) (*Key, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	h := hkdf.New(sha256.New, []byte(passphrase), nil, hkdfInfo)
	var key Key
	if _, err := io.ReadFull(h, key[:]); err != nil {
		return nil, fmt.Errorf("key derivation: %w", err)
	}
	return &key, nil
}

// Seal encrypts plaintext under key and returns the base64 text form.
func Seal(plaintext []byte, key *Key) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce generation: %w", err)
	}
	k := [keySize]byte(*key)
	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &k)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sealed)))
	base64.StdEncoding.Encode(out, sealed)
	return out, nil
}

// Open reverses Seal.
func Open(text []byte, key *Key) ([]byte, error) {
	sealed := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(sealed, text)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	sealed = sealed[:n]
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short (%d bytes)", len(sealed))
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	k := [keySize]byte(*key)
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &k)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}

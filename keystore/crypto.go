package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
)

const (
	nonceSize = 16
	tagSize   = 16
)

// machineKey derives the encryption key from the home directory and platform.
// It keeps keys unreadable to someone who only copies the file elsewhere;
// it is not a substitute for an OS keychain.
func machineKey() ([32]byte, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return [32]byte{}, fmt.Errorf("home directory: %w", err)
	}
	return deriveKey(home, runtime.GOOS, runtime.GOARCH), nil
}

func deriveKey(home, goos, goarch string) [32]byte {
	return sha256.Sum256([]byte(home + goos + goarch))
}

func newGCM(key [32]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, nonceSize)
}

// encrypt seals plaintext as "nonce:tag:ciphertext", each hex encoded
func encrypt(key [32]byte, plaintext string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ct), nil
}

// decrypt opens a value produced by encrypt
func decrypt(key [32]byte, encoded string) (string, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 3 {
		return "", errors.New("invalid encrypted data format")
	}

	var raw [3][]byte
	for i, p := range parts {
		b, err := hex.DecodeString(p)
		if err != nil {
			return "", fmt.Errorf("invalid encrypted data: %w", err)
		}
		raw[i] = b
	}
	nonce, tag, ct := raw[0], raw[1], raw[2]
	if len(nonce) != nonceSize || len(tag) != tagSize {
		return "", errors.New("invalid encrypted data format")
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	plain, err := gcm.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plain), nil
}

// Package keys loads and stores Solana keypairs in the standard
// solana-keygen file format: a JSON array of 64 bytes holding the
// ed25519 private key with the public key appended.
package keys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
)

const keypairLength = 64

// NewKeypair generates a fresh ed25519 keypair.
func NewKeypair() solana.PrivateKey {
	return solana.NewWallet().PrivateKey
}

// ParseKeypair parses solana-keygen JSON content into a private key.
func ParseKeypair(data []byte) (solana.PrivateKey, error) {
	var keyBytes []byte
	if err := json.Unmarshal(data, &keyBytes); err != nil {
		return nil, fmt.Errorf("failed to parse key file as JSON array: %w", err)
	}

	if len(keyBytes) != keypairLength {
		return nil, fmt.Errorf("invalid key length: expected %d bytes, got %d", keypairLength, len(keyBytes))
	}

	return solana.PrivateKey(keyBytes), nil
}

// LoadKeypair reads a keypair from a solana-keygen file.
func LoadKeypair(path string) (solana.PrivateKey, error) {
	keyData, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}
	return ParseKeypair(keyData)
}

// SaveKeypair writes a keypair to path in solana-keygen format.
// The file is created with owner-only permissions.
func SaveKeypair(path string, key solana.PrivateKey) error {
	if len(key) != keypairLength {
		return fmt.Errorf("invalid key length: expected %d bytes, got %d", keypairLength, len(key))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create key directory: %w", err)
		}
	}

	// json.Marshal would base64-encode a []byte; the keygen format is a
	// plain array of numbers.
	values := make([]int, len(key))
	for i, b := range key {
		values[i] = int(b)
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

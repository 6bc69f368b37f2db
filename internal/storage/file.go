package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
)

// FileStore keeps the token in a single file, the localStorage analog for a
// native process. With a seal key configured the token is encrypted at rest
// with ChaCha20-Poly1305; the random nonce is prepended to the ciphertext.
type FileStore struct {
	path    string
	sealKey []byte // nil disables sealing
}

// NewFileStore builds a file-backed store. sealKeyHex is either empty or a
// hex-encoded 32-byte key.
func NewFileStore(path, sealKeyHex string) (*FileStore, error) {
	fs := &FileStore{path: path}
	if sealKeyHex != "" {
		key, err := hex.DecodeString(sealKeyHex)
		if err != nil {
			return nil, fmt.Errorf("decode seal key: %w", err)
		}
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("seal key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
		}
		fs.sealKey = key
	}
	return fs, nil
}

// Load reads the stored token, unsealing it when a key is configured.
func (fs *FileStore) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	if fs.sealKey == nil {
		return string(data), nil
	}
	return fs.unseal(data)
}

// Save writes the token with 0600 permissions, creating parent directories.
func (fs *FileStore) Save(_ context.Context, tok string) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data := []byte(tok)
	if fs.sealKey != nil {
		sealed, err := fs.seal(data)
		if err != nil {
			return err
		}
		data = sealed
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear removes the token file. Missing file is not an error.
func (fs *FileStore) Clear(_ context.Context) error {
	err := os.Remove(fs.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (fs *FileStore) seal(plain []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(fs.sealKey)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

func (fs *FileStore) unseal(sealed []byte) (string, error) {
	aead, err := chacha20poly1305.New(fs.sealKey)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", errors.New("sealed token too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("unseal token: %w", err)
	}
	return string(plain), nil
}

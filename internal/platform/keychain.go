package platform

// Keychain wraps the OS keystore that holds the biometric-released copy of
// the vault key. Per-OS implementations plug in behind this interface; the
// file fallback keeps the same contract with plain 0600 files.

import (
	"os"
	"path/filepath"
)

type Keychain interface {
	Store(keyID string, secret []byte) error
	Load(keyID string) ([]byte, error)
	Delete(keyID string) error
}

type fileKeychain struct {
	dir string
}

func NewFileKeychain(dir string) (Keychain, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &fileKeychain{dir: dir}, nil
}

func (f *fileKeychain) path(keyID string) string {
	return filepath.Join(f.dir, filepath.Base(keyID)+".key")
}

func (f *fileKeychain) Store(keyID string, secret []byte) error {
	return os.WriteFile(f.path(keyID), secret, 0o600)
}

func (f *fileKeychain) Load(keyID string) ([]byte, error) {
	return os.ReadFile(f.path(keyID))
}

func (f *fileKeychain) Delete(keyID string) error {
	err := os.Remove(f.path(keyID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

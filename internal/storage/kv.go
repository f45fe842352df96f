package storage

import "errors"

var ErrNotFound = errors.New("storage: key not found")

// KV is the persistence contract of the client core. Values are opaque
// ciphertext or hashes; the engine behind it (keychain, encrypted prefs,
// plain prefs) is a platform concern. Two instances are injected: a secure
// scope for keys and hashes, a plain scope for everything else.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

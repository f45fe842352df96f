// Package keystore holds the live key material of an unlocked session and
// its persisted wrapped form. One KeyStore is created per session and passed
// explicitly; there are no ambient key globals.
package keystore

import (
	"crypto/rsa"
	"errors"
	"sync"

	"lockpass/internal/crypto"
	"lockpass/internal/storage"
)

// Persisted state keys. All values are opaque ciphertext or hashes except
// the KDF parameters.
const (
	keyMasterPasswordHash = "masterPasswordHash"
	keyWrappedVaultKey    = "wrappedVaultKey"
	keyWrappedPrivateKey  = "wrappedPrivateKey"
	keyKDFType            = "kdfType"
	keyKDFIterations      = "kdfIterations"
	keyAccessToken        = "accessToken"
	keyRefreshToken       = "refreshToken"
	keyDeviceID           = "deviceID"
	keyEmail              = "email"
	keyOrgKeyIDs          = "orgKeyIDs"
	orgKeyPrefix          = "orgKey:"
)

var ErrLocked = errors.New("keystore: locked")

// KeyStore guards the in-memory master key, vault key, key pair and
// per-organization keys, and mirrors the wrapped material into secure
// persistent storage. Reads are concurrent; writes happen only during
// login, unlock, share and rotate operations and are serialized here.
type KeyStore struct {
	mu     sync.RWMutex
	secure storage.KV

	masterKey  []byte
	vaultKey   *crypto.SymmetricKey
	publicKey  string
	privateKey *rsa.PrivateKey
	orgKeys    map[string]*crypto.SymmetricKey
	localHash  string
}

func New(secure storage.KV) *KeyStore {
	return &KeyStore{
		secure:  secure,
		orgKeys: map[string]*crypto.SymmetricKey{},
	}
}

func (ks *KeyStore) SetMasterKey(key []byte) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	crypto.Zero(ks.masterKey)
	ks.masterKey = append([]byte(nil), key...)
	_ = crypto.LockMemory(ks.masterKey)
}

func (ks *KeyStore) MasterKey() ([]byte, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	if ks.masterKey == nil {
		return nil, ErrLocked
	}
	return ks.masterKey, nil
}

func (ks *KeyStore) SetVaultKey(key *crypto.SymmetricKey) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.vaultKey.Wipe()
	ks.vaultKey = key
	if key != nil {
		_ = crypto.LockMemory(key.Key)
	}
}

// VaultKey returns the single unwrapped vault key of the session.
func (ks *KeyStore) VaultKey() (*crypto.SymmetricKey, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	if ks.vaultKey == nil {
		return nil, ErrLocked
	}
	return ks.vaultKey, nil
}

func (ks *KeyStore) SetKeyPair(publicKey string, privateKey *rsa.PrivateKey) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.publicKey = publicKey
	ks.privateKey = privateKey
}

func (ks *KeyStore) PrivateKey() (*rsa.PrivateKey, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	if ks.privateKey == nil {
		return nil, ErrLocked
	}
	return ks.privateKey, nil
}

func (ks *KeyStore) PublicKey() string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.publicKey
}

func (ks *KeyStore) SetOrgKey(orgID string, key *crypto.SymmetricKey) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if old := ks.orgKeys[orgID]; old != nil {
		old.Wipe()
	}
	ks.orgKeys[orgID] = key
}

func (ks *KeyStore) OrgKey(orgID string) (*crypto.SymmetricKey, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	k, ok := ks.orgKeys[orgID]
	if !ok {
		return nil, ErrLocked
	}
	return k, nil
}

func (ks *KeyStore) RemoveOrgKey(orgID string) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if old := ks.orgKeys[orgID]; old != nil {
		old.Wipe()
	}
	delete(ks.orgKeys, orgID)
	_ = ks.secure.Remove(orgKeyPrefix + orgID)
	ids := ks.orgKeyIDs()
	kept := ids[:0]
	for _, id := range ids {
		if id != orgID {
			kept = append(kept, id)
		}
	}
	_ = ks.saveOrgKeyIDs(kept)
}

// SetLocalHash caches the LocalAuthorization-purpose hash in memory and in
// secure storage for offline verification.
func (ks *KeyStore) SetLocalHash(hash string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.localHash = hash
	return ks.secure.Set(keyMasterPasswordHash, []byte(hash))
}

func (ks *KeyStore) LocalHash() (string, error) {
	ks.mu.RLock()
	if ks.localHash != "" {
		defer ks.mu.RUnlock()
		return ks.localHash, nil
	}
	ks.mu.RUnlock()
	b, err := ks.secure.Get(keyMasterPasswordHash)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Lock clears master and vault key material from memory. Persisted wrapped
// material and the local hash survive for offline unlock.
func (ks *KeyStore) Lock() {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	crypto.Zero(ks.masterKey)
	_ = crypto.UnlockMemory(ks.masterKey)
	ks.masterKey = nil
	ks.vaultKey.Wipe()
	ks.vaultKey = nil
	ks.privateKey = nil
	for _, k := range ks.orgKeys {
		k.Wipe()
	}
	ks.orgKeys = map[string]*crypto.SymmetricKey{}
}

// Logout clears everything Lock clears plus all persisted wrapped material
// and tokens.
func (ks *KeyStore) Logout() {
	ks.Lock()
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.localHash = ""
	ks.publicKey = ""
	for _, id := range ks.orgKeyIDs() {
		_ = ks.secure.Remove(orgKeyPrefix + id)
	}
	for _, k := range []string{
		keyMasterPasswordHash, keyWrappedVaultKey, keyWrappedPrivateKey,
		keyKDFType, keyKDFIterations, keyAccessToken, keyRefreshToken,
		keyEmail, keyOrgKeyIDs,
	} {
		_ = ks.secure.Remove(k)
	}
}

func (ks *KeyStore) setString(key, val string) error { return ks.secure.Set(key, []byte(val)) }

func (ks *KeyStore) getString(key string) (string, error) {
	b, err := ks.secure.Get(key)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package crypto

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SymmetricKey carries the raw key material of a vault or organization key
// together with its split encryption and MAC halves.
type SymmetricKey struct {
	Key    []byte
	EncKey []byte
	MacKey []byte
}

var ErrKeyLength = errors.New("crypto: symmetric key must be 32 or 64 bytes")

// NewSymmetricKey wraps raw key material. 64-byte input is split into
// enc||mac halves; 32-byte input is stretched with HKDF-SHA256 first so the
// MAC key never aliases the encryption key.
func NewSymmetricKey(raw []byte) (*SymmetricKey, error) {
	switch len(raw) {
	case 64:
		k := append([]byte(nil), raw...)
		return &SymmetricKey{Key: k, EncKey: k[:32], MacKey: k[32:]}, nil
	case 32:
		stretched, err := stretchKey(raw)
		if err != nil {
			return nil, err
		}
		return &SymmetricKey{Key: stretched, EncKey: stretched[:32], MacKey: stretched[32:]}, nil
	default:
		return nil, ErrKeyLength
	}
}

// GenerateSymmetricKey returns a fresh random 64-byte key, used for vault
// keys and per-share organization keys.
func GenerateSymmetricKey() (*SymmetricKey, error) {
	raw, err := RandomBytes(64)
	if err != nil {
		return nil, err
	}
	return NewSymmetricKey(raw)
}

// Wipe zeroes the key material in place.
func (k *SymmetricKey) Wipe() {
	if k == nil {
		return
	}
	Zero(k.Key)
	k.EncKey = nil
	k.MacKey = nil
}

// stretchKey expands a 32-byte master key into 64 bytes with HKDF-expand,
// using fixed "enc"/"mac" context labels so the halves are domain-separated.
func stretchKey(master []byte) ([]byte, error) {
	out := make([]byte, 0, 64)
	for _, info := range []string{"enc", "mac"} {
		part := make([]byte, 32)
		if _, err := io.ReadFull(hkdf.Expand(sha256.New, master, []byte(info)), part); err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

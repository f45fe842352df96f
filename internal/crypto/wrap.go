package crypto

// Key wrapping between the derived master key and the stored vault key. The
// master key is 32 bytes and is stretched before use; the vault key travels
// in its 64-byte raw form inside the EncString.

func WrapKey(vaultKey *SymmetricKey, masterKey []byte) (EncString, error) {
	mk, err := NewSymmetricKey(masterKey)
	if err != nil {
		return EncString{}, err
	}
	defer mk.Wipe()
	return EncryptSymmetric(vaultKey.Key, mk)
}

func UnwrapKey(wrapped EncString, masterKey []byte) (*SymmetricKey, error) {
	mk, err := NewSymmetricKey(masterKey)
	if err != nil {
		return nil, err
	}
	defer mk.Wipe()
	raw, err := DecryptSymmetric(wrapped, mk)
	if err != nil {
		return nil, err
	}
	return NewSymmetricKey(raw)
}

// RemakeEncKey re-wraps an existing vault key under a new master key. The
// plaintext vault key is unchanged, so ciphertext items stay valid.
func RemakeEncKey(newMasterKey []byte, vaultKey *SymmetricKey) (EncString, error) {
	return WrapKey(vaultKey, newMasterKey)
}

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KDFType selects the master-key derivation function. The type and iteration
// count are stored server-side per account and must be fetched (prelogin)
// before derivation on a new device.
type KDFType int

const (
	KDFPBKDF2SHA256 KDFType = 0
	KDFArgon2id     KDFType = 1
)

const (
	masterKeySize     = 32
	argon2MemoryKiB   = 64 * 1024
	argon2Parallelism = 4
)

// HashPurpose distinguishes the server-verification hash from the locally
// cached offline hash. The two derivations must never be cross-compared.
type HashPurpose int

const (
	ServerAuthorization HashPurpose = 1
	LocalAuthorization  HashPurpose = 2
)

var ErrUnknownKDF = errors.New("crypto: unknown kdf type")

// DeriveMasterKey derives the 32-byte master key from the user's password,
// salted with the lowercased email. Deterministic: the same inputs always
// yield the same key.
func DeriveMasterKey(password, emailLowercased []byte, kdfType KDFType, iterations int) ([]byte, error) {
	if iterations <= 0 {
		return nil, errors.New("crypto: kdf iterations must be positive")
	}
	switch kdfType {
	case KDFPBKDF2SHA256:
		return pbkdf2.Key(password, emailLowercased, iterations, masterKeySize, sha256.New), nil
	case KDFArgon2id:
		salt := sha256.Sum256(emailLowercased)
		return argon2.IDKey(password, salt[:], uint32(iterations), argon2MemoryKiB, argon2Parallelism, masterKeySize), nil
	default:
		return nil, ErrUnknownKDF
	}
}

// HashMasterPassword produces the one-way password verification value: a
// single low-iteration PBKDF2 round over the master key, salted with the
// password itself. The purpose selects the iteration count so the server
// hash and the offline hash occupy distinct domains.
func HashMasterPassword(masterKey, password []byte, purpose HashPurpose) string {
	hash := pbkdf2.Key(masterKey, password, int(purpose), masterKeySize, sha256.New)
	defer Zero(hash)
	return base64.StdEncoding.EncodeToString(hash)
}

// RandomBytes returns n cryptographically random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

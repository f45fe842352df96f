package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// EncType tags the cipher composition of an EncString. The numeric values
// are part of the wire protocol and must not change.
type EncType int

const (
	AesCbc256B64           EncType = 0
	AesCbc256HmacSha256B64 EncType = 2
	Rsa2048OaepSha256B64   EncType = 3
	Rsa2048OaepSha1B64     EncType = 4
)

// EncString is the serialized envelope form of a ciphertext:
// "{encType}.{b64 part}|{b64 part}|...". Symmetric type 2 carries
// iv|ciphertext|mac; RSA types carry a single ciphertext part.
type EncString struct {
	Type EncType
	IV   []byte
	Data []byte
	MAC  []byte
}

var (
	// ErrDecrypt is returned on any integrity or key-mismatch failure.
	// Callers must be able to distinguish it from plaintext content, so no
	// partially decrypted data ever accompanies it.
	ErrDecrypt      = errors.New("crypto: decryption failed")
	ErrMalformedEnc = errors.New("crypto: malformed enc string")
)

func (e EncString) String() string {
	enc := base64.StdEncoding.EncodeToString
	switch e.Type {
	case AesCbc256B64:
		return fmt.Sprintf("%d.%s|%s", e.Type, enc(e.IV), enc(e.Data))
	case AesCbc256HmacSha256B64:
		return fmt.Sprintf("%d.%s|%s|%s", e.Type, enc(e.IV), enc(e.Data), enc(e.MAC))
	default:
		return fmt.Sprintf("%d.%s", e.Type, enc(e.Data))
	}
}

// ParseEncString parses the wire form back into its tagged parts.
func ParseEncString(s string) (EncString, error) {
	head, rest, ok := strings.Cut(s, ".")
	if !ok {
		return EncString{}, ErrMalformedEnc
	}
	t, err := strconv.Atoi(head)
	if err != nil {
		return EncString{}, ErrMalformedEnc
	}
	parts := strings.Split(rest, "|")
	dec := func(i int) ([]byte, error) { return base64.StdEncoding.DecodeString(parts[i]) }

	out := EncString{Type: EncType(t)}
	switch out.Type {
	case AesCbc256B64:
		if len(parts) != 2 {
			return EncString{}, ErrMalformedEnc
		}
		if out.IV, err = dec(0); err != nil {
			return EncString{}, ErrMalformedEnc
		}
		if out.Data, err = dec(1); err != nil {
			return EncString{}, ErrMalformedEnc
		}
	case AesCbc256HmacSha256B64:
		if len(parts) != 3 {
			return EncString{}, ErrMalformedEnc
		}
		if out.IV, err = dec(0); err != nil {
			return EncString{}, ErrMalformedEnc
		}
		if out.Data, err = dec(1); err != nil {
			return EncString{}, ErrMalformedEnc
		}
		if out.MAC, err = dec(2); err != nil {
			return EncString{}, ErrMalformedEnc
		}
	case Rsa2048OaepSha256B64, Rsa2048OaepSha1B64:
		if len(parts) != 1 {
			return EncString{}, ErrMalformedEnc
		}
		if out.Data, err = dec(0); err != nil {
			return EncString{}, ErrMalformedEnc
		}
	default:
		return EncString{}, fmt.Errorf("crypto: unsupported enc type %d", t)
	}
	return out, nil
}

// EncryptSymmetric seals plaintext under key as type 2: AES-256-CBC with
// PKCS#7 padding, then HMAC-SHA256 over iv||ciphertext with the MAC half.
func EncryptSymmetric(plaintext []byte, key *SymmetricKey) (EncString, error) {
	if key == nil || len(key.EncKey) != 32 || len(key.MacKey) != 32 {
		return EncString{}, ErrKeyLength
	}
	iv, err := RandomBytes(aes.BlockSize)
	if err != nil {
		return EncString{}, err
	}
	block, err := aes.NewCipher(key.EncKey)
	if err != nil {
		return EncString{}, err
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return EncString{
		Type: AesCbc256HmacSha256B64,
		IV:   iv,
		Data: ct,
		MAC:  computeMAC(key.MacKey, iv, ct),
	}, nil
}

// DecryptSymmetric verifies and opens a symmetric EncString. Integrity
// failures of any kind surface as ErrDecrypt.
func DecryptSymmetric(e EncString, key *SymmetricKey) ([]byte, error) {
	if key == nil || len(key.EncKey) != 32 {
		return nil, ErrKeyLength
	}
	switch e.Type {
	case AesCbc256HmacSha256B64:
		if len(key.MacKey) != 32 {
			return nil, ErrKeyLength
		}
		expected := computeMAC(key.MacKey, e.IV, e.Data)
		if subtle.ConstantTimeCompare(expected, e.MAC) != 1 {
			return nil, ErrDecrypt
		}
	case AesCbc256B64:
		// no MAC on the legacy type; CBC padding is the only check
	default:
		return nil, fmt.Errorf("crypto: enc type %d is not symmetric", e.Type)
	}

	if len(e.IV) != aes.BlockSize || len(e.Data) == 0 || len(e.Data)%aes.BlockSize != 0 {
		return nil, ErrDecrypt
	}
	block, err := aes.NewCipher(key.EncKey)
	if err != nil {
		return nil, err
	}
	pt := make([]byte, len(e.Data))
	cipher.NewCBCDecrypter(block, e.IV).CryptBlocks(pt, e.Data)
	return pkcs7Unpad(pt, aes.BlockSize)
}

func computeMAC(macKey, iv, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, macKey)
	mac.Write(iv)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, ErrDecrypt
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, ErrDecrypt
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, ErrDecrypt
		}
	}
	return b[:len(b)-n], nil
}

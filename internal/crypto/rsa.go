package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
)

const rsaKeyBits = 2048

// KeyPair is the asymmetric identity of a user: a DER public key (base64)
// and the private key wrapped under the vault key. Created once at
// registration.
type KeyPair struct {
	PublicKey           string
	EncryptedPrivateKey EncString
}

// GenerateKeyPair creates a fresh RSA-2048 pair and wraps the PKCS#8
// private key under vaultKey. The plaintext private key never leaves this
// function.
func GenerateKeyPair(vaultKey *SymmetricKey) (KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return KeyPair{}, err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return KeyPair{}, err
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return KeyPair{}, err
	}
	defer Zero(privDER)

	wrapped, err := EncryptSymmetric(privDER, vaultKey)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{
		PublicKey:           base64.StdEncoding.EncodeToString(pubDER),
		EncryptedPrivateKey: wrapped,
	}, nil
}

// EncodePublicKey renders a public key in the base64 DER form exchanged
// with the server.
func EncodePublicKey(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// ParsePublicKey decodes a base64 DER public key as exchanged with the
// server and other identities.
func ParsePublicKey(b64 string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, ErrMalformedEnc
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, ErrMalformedEnc
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, ErrMalformedEnc
	}
	return rsaPub, nil
}

// ParsePrivateKey decodes an unwrapped PKCS#8 private key.
func ParsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, ErrDecrypt
	}
	rsaPriv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrDecrypt
	}
	return rsaPriv, nil
}

// EncryptRSA wraps data (typically a symmetric key being shared) under a
// recipient public key. OAEP-SHA1 is the protocol default (type 4).
func EncryptRSA(data []byte, pub *rsa.PublicKey) (EncString, error) {
	ct, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, data, nil)
	if err != nil {
		return EncString{}, err
	}
	return EncString{Type: Rsa2048OaepSha1B64, Data: ct}, nil
}

// DecryptRSA opens an RSA EncString of either OAEP variant.
func DecryptRSA(e EncString, priv *rsa.PrivateKey) ([]byte, error) {
	var pt []byte
	var err error
	switch e.Type {
	case Rsa2048OaepSha1B64:
		pt, err = rsa.DecryptOAEP(sha1.New(), rand.Reader, priv, e.Data, nil)
	case Rsa2048OaepSha256B64:
		pt, err = rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, e.Data, nil)
	default:
		return nil, ErrMalformedEnc
	}
	if err != nil {
		return nil, ErrDecrypt
	}
	return pt, nil
}

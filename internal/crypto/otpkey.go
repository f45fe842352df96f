package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"strings"
)

// OTPExpandKey turns the numeric pairing OTP into a 16-byte AES key by
// repeating the digits and truncating: (otp+otp+otp)[:16]. This is the
// wire-compatible expansion used by the passwordless QR channel. It is
// deliberately isolated here so a real KDF can replace it without touching
// the login flow.
func OTPExpandKey(otp string) []byte {
	expanded := otp + otp + otp
	for len(expanded) < 16 {
		expanded += otp
	}
	return []byte(expanded[:16])
}

// DecryptQRPayload opens the "base64(iv).base64(ciphertext)" payload scanned
// from the companion device, using the OTP-expanded key. The plaintext is
// "masterPasswordHash.vaultKeyB64.encryptionType".
func DecryptQRPayload(payload, otp string) (string, error) {
	ivB64, ctB64, ok := strings.Cut(payload, ".")
	if !ok {
		return "", ErrMalformedEnc
	}
	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if err != nil {
		return "", ErrMalformedEnc
	}
	ct, err := base64.StdEncoding.DecodeString(ctB64)
	if err != nil {
		return "", ErrMalformedEnc
	}
	if len(iv) != aes.BlockSize || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", ErrDecrypt
	}

	block, err := aes.NewCipher(OTPExpandKey(otp))
	if err != nil {
		return "", err
	}
	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)
	out, err := pkcs7Unpad(pt, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncryptQRPayload is the companion-device side of DecryptQRPayload, used
// to build the QR code for a pending passwordless login.
func EncryptQRPayload(plaintext, otp string) (string, error) {
	iv, err := RandomBytes(aes.BlockSize)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(OTPExpandKey(otp))
	if err != nil {
		return "", err
	}
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return base64.StdEncoding.EncodeToString(iv) + "." + base64.StdEncoding.EncodeToString(ct), nil
}

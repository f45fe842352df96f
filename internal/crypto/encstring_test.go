package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func randBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}

func testKey(t *testing.T) *SymmetricKey {
	t.Helper()
	k, err := NewSymmetricKey(randBytes(t, 64))
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	return k
}

func TestSymmetricRoundTrip(t *testing.T) {
	key := testKey(t)
	for _, n := range []int{0, 1, 15, 16, 17, 4096} {
		pt := randBytes(t, n)
		e, err := EncryptSymmetric(pt, key)
		if err != nil {
			t.Fatalf("encrypt %d bytes: %v", n, err)
		}
		out, err := DecryptSymmetric(e, key)
		if err != nil {
			t.Fatalf("decrypt %d bytes: %v", n, err)
		}
		if !bytes.Equal(pt, out) {
			t.Fatalf("plaintext mismatch at %d bytes", n)
		}
	}
}

func TestSymmetricWrongKeyFails(t *testing.T) {
	key := testKey(t)
	other := testKey(t)
	e, err := EncryptSymmetric([]byte("secret-data"), key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := DecryptSymmetric(e, other); err != ErrDecrypt {
		t.Fatalf("expected ErrDecrypt with wrong key, got %v", err)
	}
}

func TestSymmetricTamperFails(t *testing.T) {
	key := testKey(t)
	e, err := EncryptSymmetric([]byte("hello"), key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	e.Data[0] ^= 0xFF
	if _, err := DecryptSymmetric(e, key); err != ErrDecrypt {
		t.Fatalf("expected ErrDecrypt after tamper, got %v", err)
	}
}

func TestSymmetricMACTamperFails(t *testing.T) {
	key := testKey(t)
	e, err := EncryptSymmetric([]byte("hello"), key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	e.MAC[len(e.MAC)-1] ^= 0x01
	if _, err := DecryptSymmetric(e, key); err != ErrDecrypt {
		t.Fatalf("expected ErrDecrypt after mac tamper, got %v", err)
	}
}

func TestEncStringWireRoundTrip(t *testing.T) {
	key := testKey(t)
	e, err := EncryptSymmetric([]byte("wire-format"), key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	parsed, err := ParseEncString(e.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := DecryptSymmetric(parsed, key)
	if err != nil {
		t.Fatalf("decrypt parsed: %v", err)
	}
	if string(out) != "wire-format" {
		t.Fatal("plaintext mismatch after wire round trip")
	}
}

func TestParseEncStringRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"2",
		"x.abc|def|ghi",
		"2.only-one-part",
		"2.a|b",        // missing mac
		"4.a|b",        // rsa takes one part
		"9.Zm9v",       // unknown type
		"2.!!!|###|@@", // not base64
	}
	for _, s := range bad {
		if _, err := ParseEncString(s); err == nil {
			t.Fatalf("expected parse failure for %q", s)
		}
	}
}

func TestNewSymmetricKeyStretches32(t *testing.T) {
	raw := randBytes(t, 32)
	k1, err := NewSymmetricKey(raw)
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	k2, err := NewSymmetricKey(raw)
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	if !bytes.Equal(k1.Key, k2.Key) {
		t.Fatal("stretching must be deterministic")
	}
	if bytes.Equal(k1.EncKey, k1.MacKey) {
		t.Fatal("enc and mac halves must differ")
	}
	if _, err := NewSymmetricKey(randBytes(t, 48)); err != ErrKeyLength {
		t.Fatalf("expected ErrKeyLength for 48 bytes, got %v", err)
	}
}

func FuzzEncStringRejectMutations(f *testing.F) {
	f.Add([]byte("hello"))
	f.Add([]byte(""))
	f.Fuzz(func(t *testing.T, pt []byte) {
		raw := make([]byte, 64)
		rand.Read(raw)
		key, err := NewSymmetricKey(raw)
		if err != nil {
			t.Fatalf("key: %v", err)
		}
		e, err := EncryptSymmetric(pt, key)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		if _, err := DecryptSymmetric(e, key); err != nil {
			t.Fatalf("baseline decrypt: %v", err)
		}
		idx := len(pt) % len(e.Data)
		e.Data[idx] ^= 0xFF
		if _, err := DecryptSymmetric(e, key); err == nil {
			t.Fatalf("mutation at %d succeeded", idx)
		}
	})
}

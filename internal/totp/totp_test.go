package totp

import (
	"strings"
	"testing"
	"time"
)

// RFC 6238 appendix B vectors for the SHA-1 mode, truncated from the 8-digit
// reference values to our 6-digit codes.
func TestGenerateRFCVectors(t *testing.T) {
	// "12345678901234567890" in base32.
	secret := "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	tests := []struct {
		unix int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
	}
	for _, tc := range tests {
		got, err := Generate(secret, time.Unix(tc.unix, 0))
		if err != nil {
			t.Fatalf("Generate(%d): %v", tc.unix, err)
		}
		if got != tc.want {
			t.Fatalf("Generate(%d) = %s, want %s", tc.unix, got, tc.want)
		}
	}
}

func TestVerifyWindow(t *testing.T) {
	secret, err := GenerateSecret()
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1700000000, 0)

	code, err := Generate(secret, now)
	if err != nil {
		t.Fatal(err)
	}
	if !Verify(code, secret, now) {
		t.Fatal("current code rejected")
	}
	if !Verify(code, secret, now.Add(DefaultStep)) {
		t.Fatal("previous-step code rejected inside skew window")
	}
	if Verify(code, secret, now.Add(3*DefaultStep)) {
		t.Fatal("stale code accepted outside skew window")
	}
	if Verify("000000", secret, now) && code != "000000" {
		t.Fatal("wrong code accepted")
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	secret, err := GenerateSecret()
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	for _, code := range []string{"", "12345", "1234567", "abcdef"} {
		if Verify(code, secret, now) {
			t.Fatalf("malformed code %q accepted", code)
		}
	}
	if Verify("123456", "not base32!!", now) {
		t.Fatal("bad secret accepted")
	}
}

func TestProvisionURI(t *testing.T) {
	uri := ProvisionURI("user@example.com", "Locker", "ABC234")
	if !strings.HasPrefix(uri, "otpauth://totp/Locker:user@example.com?") {
		t.Fatalf("unexpected label: %s", uri)
	}
	if !strings.Contains(uri, "secret=ABC234") || !strings.Contains(uri, "digits=6") {
		t.Fatalf("missing parameters: %s", uri)
	}
}

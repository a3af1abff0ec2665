package security

import (
	"strings"
	"testing"
)

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher("0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	plain := `{"user":{"phone":"9123456789"}}`
	ct, err := c.Encrypt(plain)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(ct, "9123456789") {
		t.Fatal("ciphertext contains plaintext")
	}
	got, err := c.Decrypt(ct)
	if err != nil || got != plain {
		t.Fatalf("Decrypt = %q err=%v", got, err)
	}
}

func TestCipherFreshNoncePerPayload(t *testing.T) {
	c, err := NewCipher("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	a, _ := c.Encrypt("same input")
	b, _ := c.Encrypt("same input")
	if a == b {
		t.Fatal("identical ciphertexts for identical input; nonce reuse")
	}
}

func TestCipherRejectsBadInput(t *testing.T) {
	if _, err := NewCipher("short"); err == nil {
		t.Fatal("expected error for bad key length")
	}
	c, err := NewCipher("0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decrypt("not base64 !!!"); err == nil {
		t.Fatal("expected error for non-base64 input")
	}
	if _, err := c.Decrypt("aGk="); err == nil {
		t.Fatal("expected error for truncated ciphertext")
	}
	ct, _ := c.Encrypt("payload")
	other, _ := NewCipher("fedcba9876543210")
	if _, err := other.Decrypt(ct); err == nil {
		t.Fatal("expected error when decrypting with the wrong key")
	}
}

package signer

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"

	"github.com/ledgerforge/trail/internal/codec"
)

func testFacade(t *testing.T, bits int) *Facade {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der := codec.Base64Encode(x509.MarshalPKCS1PrivateKey(key))
	f, err := Load(der)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return f
}

func TestSignVerify_RoundTrip(t *testing.T) {
	f := testFacade(t, 2048)
	msg := []byte("trail block contents")

	sig, err := f.Sign(msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !f.Verify(msg, sig) {
		t.Errorf("expected signature to verify")
	}
	if f.Verify([]byte("different message"), sig) {
		t.Errorf("expected signature to fail against a different message")
	}
}

func TestLoad_RejectsWeakKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der := codec.Base64Encode(x509.MarshalPKCS1PrivateKey(key))
	if _, err := Load(der); err == nil {
		t.Errorf("expected error loading a sub-2048-bit key")
	}
}

func TestLoad_RejectsMalformedDER(t *testing.T) {
	if _, err := Load(codec.Base64Encode([]byte("not a der key"))); err == nil {
		t.Errorf("expected error for malformed DER")
	}
}

func TestEncodeDER_RoundTrip(t *testing.T) {
	f := testFacade(t, 2048)
	reloaded, err := Load(f.EncodeDER())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	msg := []byte("round trip")
	sig, err := f.Sign(msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !reloaded.Verify(msg, sig) {
		t.Errorf("reloaded key failed to verify original signature")
	}
}

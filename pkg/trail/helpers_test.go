package trail

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"

	"github.com/ledgerforge/trail/internal/codec"
	"github.com/ledgerforge/trail/internal/signer"
)

func testKeyDER(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return codec.Base64Encode(x509.MarshalPKCS1PrivateKey(key))
}

func testFacade(t *testing.T) *signer.Facade {
	t.Helper()
	f, err := signer.Load(testKeyDER(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return f
}

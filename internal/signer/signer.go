// Package signer wraps RSA PKCS#1 key pairs for PKCS#1-v1.5/SHA-256
// signing and verification, the cryptographic primitive behind every
// transaction's application co-signature.
package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/ledgerforge/trail/internal/codec"
)

// MinModulusBits is the smallest RSA modulus accepted at load time.
const MinModulusBits = 2048

// Facade encapsulates an RSA key pair loaded from a DER PKCS#1 blob.
type Facade struct {
	private *rsa.PrivateKey
}

// Load decodes a base64-wrapped DER PKCS#1 private key and rejects keys
// below MinModulusBits.
func Load(base64DER string) (*Facade, error) {
	der, err := codec.Base64Decode(base64DER)
	if err != nil {
		return nil, fmt.Errorf("signer: decode key: %w", err)
	}
	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("signer: parse DER: %w", err)
	}
	if key.N.BitLen() < MinModulusBits {
		return nil, fmt.Errorf("signer: modulus length %d below minimum %d", key.N.BitLen(), MinModulusBits)
	}
	return &Facade{private: key}, nil
}

// EncodeDER returns the base64-wrapped DER PKCS#1 encoding of the key pair,
// the form persisted by the signer store.
func (f *Facade) EncodeDER() string {
	return codec.Base64Encode(x509.MarshalPKCS1PrivateKey(f.private))
}

// Sign produces a PKCS#1-v1.5 SHA-256 signature over message.
func (f *Facade) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	sig, err := rsa.SignPKCS1v15(rand.Reader, f.private, crypto.SHA256, digest[:])
	if err != nil {
		return nil, fmt.Errorf("signer: sign: %w", err)
	}
	return sig, nil
}

// Verify reports whether signature is a valid PKCS#1-v1.5 SHA-256
// signature over message, returning false rather than an error on any
// failure.
func (f *Facade) Verify(message, signature []byte) bool {
	digest := sha256.Sum256(message)
	return rsa.VerifyPKCS1v15(&f.private.PublicKey, crypto.SHA256, digest[:], signature) == nil
}

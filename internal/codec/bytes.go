// Package codec implements the byte-level primitives and length-prefixed
// framing shared by every wire format in the trail engine: base64 variants,
// big-endian signed bigint encoding, UTF-8 guards, and the two digests used
// for content addressing (SHA3-256) and object-store integrity (MD5).
package codec

import (
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/sha3"
)

// SHA3 returns the SHA3-256 digest of b.
func SHA3(b []byte) [32]byte {
	return sha3.Sum256(b)
}

// MD5Base64 returns the standard-base64-encoded MD5 digest of b, the form
// required by the object store's content-integrity header.
func MD5Base64(b []byte) string {
	sum := md5.Sum(b)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Base64Encode encodes b using the standard alphabet with padding.
func Base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Base64Decode decodes s using the standard alphabet with padding.
func Base64Decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("codec: base64 decode: %w", err)
	}
	return b, nil
}

// URLBase64Encode encodes b using the URL-safe alphabet without padding.
func URLBase64Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// URLBase64Decode decodes s using the URL-safe alphabet without padding.
func URLBase64Decode(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("codec: url base64 decode: %w", err)
	}
	return b, nil
}

// UTF8Encode returns the UTF-8 bytes of s.
func UTF8Encode(s string) []byte {
	return []byte(s)
}

// UTF8Decode returns b as a string, failing if b is not valid UTF-8.
func UTF8Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("codec: invalid utf-8")
	}
	return string(b), nil
}

// EncodeBigInt returns the big-endian two's-complement encoding of n. Zero
// encodes to an empty slice. Every value in this wire format (versions,
// timestamps, counts) is non-negative.
func EncodeBigInt(n int64) []byte {
	if n == 0 {
		return []byte{}
	}
	if n < 0 {
		return encodeNegative(n)
	}
	v := uint64(n)
	var raw []byte
	for v > 0 {
		raw = append([]byte{byte(v & 0xff)}, raw...)
		v >>= 8
	}
	if raw[0]&0x80 != 0 {
		raw = append([]byte{0}, raw...)
	}
	return raw
}

// DecodeBigInt inverts EncodeBigInt. An empty slice decodes to zero.
func DecodeBigInt(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}
	if b[0]&0x80 != 0 {
		return decodeNegative(b)
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return int64(v)
}

func encodeNegative(n int64) []byte {
	magnitude := uint64(-n)
	var raw []byte
	for magnitude > 0 {
		raw = append([]byte{byte(magnitude & 0xff)}, raw...)
		magnitude >>= 8
	}
	if len(raw) == 0 || raw[0]&0x80 == 0 {
		raw = append([]byte{0}, raw...)
	}
	for i := range raw {
		raw[i] = ^raw[i]
	}
	for i := len(raw) - 1; i >= 0; i-- {
		raw[i]++
		if raw[i] != 0 {
			break
		}
	}
	return raw
}

func decodeNegative(b []byte) int64 {
	inv := make([]byte, len(b))
	copy(inv, b)
	for i := range inv {
		inv[i] = ^inv[i]
	}
	for i := len(inv) - 1; i >= 0; i-- {
		inv[i]++
		if inv[i] != 0 {
			break
		}
	}
	var v uint64
	for _, c := range inv {
		v = v<<8 | uint64(c)
	}
	return -int64(v)
}

// Package trail implements the chain-linking, metadata, signer, and block
// protocols that turn a stream of signed transactions into an append-only,
// content-addressed trail per owner.
package trail

import (
	"time"

	"github.com/ledgerforge/trail/internal/codec"
	"github.com/ledgerforge/trail/internal/signer"
	"github.com/ledgerforge/trail/internal/trailerr"
)

// TransactionVersion is the current canonical transaction encoding version.
const TransactionVersion = 2

// Transaction is a single record co-signed by the user and the chain's
// signer. Every string field below is base64, except AssetRef (raw UTF-8).
type Transaction struct {
	ID            string
	Version       int64
	Address       string
	Timestamp     time.Time
	AssetRef      string
	Contents      string
	UserSignature string
	AppSignature  string

	raw []byte
}

// placeholderBase64 is the base64 encoding of a single zero byte, used as
// the contents and user signature of the genesis bootstrap transaction for
// the root and provider chains (whose asset ref is empty).
const placeholderBase64 = "AA=="

// PlaceholderTransaction builds the genesis transaction used to seed the
// root and provider chains, co-signed by sign.
func PlaceholderTransaction(sign *signer.Facade, address string, timestamp time.Time) (Transaction, error) {
	return NewTransaction(sign, address, timestamp, "", placeholderBase64, placeholderBase64)
}

// NewTransaction builds and co-signs a canonical Transaction. address,
// contents, and userSignature are base64; assetRef is raw text.
func NewTransaction(sign *signer.Facade, address string, timestamp time.Time, assetRef, contents, userSignature string) (Transaction, error) {
	addressBytes, err := codec.Base64Decode(address)
	if err != nil {
		return Transaction{}, trailerr.New(trailerr.KindMalformed, "transaction.new", err)
	}
	contentsBytes, err := codec.Base64Decode(contents)
	if err != nil {
		return Transaction{}, trailerr.New(trailerr.KindMalformed, "transaction.new", err)
	}
	userSigBytes, err := codec.Base64Decode(userSignature)
	if err != nil {
		return Transaction{}, trailerr.New(trailerr.KindMalformed, "transaction.new", err)
	}

	first6 := codec.EncodeFrames(
		codec.EncodeBigInt(TransactionVersion),
		addressBytes,
		codec.EncodeBigInt(timestamp.Unix()),
		codec.UTF8Encode(assetRef),
		contentsBytes,
		userSigBytes,
	)
	appSig, err := sign.Sign(first6)
	if err != nil {
		return Transaction{}, trailerr.New(trailerr.KindCrypto, "transaction.new", err)
	}
	raw := append(append([]byte{}, first6...), codec.EncodeFrame(appSig)...)
	id := idOf(raw)

	return Transaction{
		ID:            id,
		Version:       TransactionVersion,
		Address:       codec.Base64Encode(addressBytes),
		Timestamp:     time.Unix(timestamp.Unix(), 0).UTC(),
		AssetRef:      assetRef,
		Contents:      codec.Base64Encode(contentsBytes),
		UserSignature: codec.Base64Encode(userSigBytes),
		AppSignature:  codec.Base64Encode(appSig),
		raw:           raw,
	}, nil
}

// DecodeTransaction inverts NewTransaction's canonical encoding and
// recomputes the id from the stored bytes.
func DecodeTransaction(raw []byte) (Transaction, error) {
	frames, consumed, err := codec.DecodeFramesN(raw, 7)
	if err != nil {
		return Transaction{}, trailerr.New(trailerr.KindIntegrity, "transaction.decode", err)
	}
	if consumed != len(raw) {
		return Transaction{}, trailerr.New(trailerr.KindIntegrity, "transaction.decode", errTrailingBytes)
	}

	assetRef, err := codec.UTF8Decode(frames[3])
	if err != nil {
		return Transaction{}, trailerr.New(trailerr.KindMalformed, "transaction.decode", err)
	}

	return Transaction{
		ID:            idOf(raw),
		Version:       codec.DecodeBigInt(frames[0]),
		Address:       codec.Base64Encode(frames[1]),
		Timestamp:     time.Unix(codec.DecodeBigInt(frames[2]), 0).UTC(),
		AssetRef:      assetRef,
		Contents:      codec.Base64Encode(frames[4]),
		UserSignature: codec.Base64Encode(frames[5]),
		AppSignature:  codec.Base64Encode(frames[6]),
		raw:           append([]byte{}, raw...),
	}, nil
}

// Bytes returns the transaction's canonical encoding, including the app
// signature.
func (t Transaction) Bytes() []byte {
	return t.raw
}

func idOf(raw []byte) string {
	digest := codec.SHA3(raw)
	return codec.Base64Encode(digest[:])
}

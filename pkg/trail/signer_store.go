package trail

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ledgerforge/trail/internal/objectstore"
	"github.com/ledgerforge/trail/internal/signer"
	"github.com/ledgerforge/trail/internal/trailerr"
	"github.com/ledgerforge/trail/pkg/owner"
)

// Signer is an RSA key pair plus the object-store location it was
// persisted at. One is created per provider, at initialize_provider.
type Signer struct {
	Facade  *signer.Facade
	URI     string
	Created time.Time
}

type signerRecord struct {
	Key     string    `json:"key"`
	Created time.Time `json:"created"`
}

// CreateSigner persists a new signer for owner's provider, overwriting any
// existing record at that key. keyDER is a base64-wrapped DER PKCS#1
// private key supplied by the caller.
func CreateSigner(ctx context.Context, store objectstore.Store, who owner.Owner, keyDER string) (*Signer, error) {
	facade, err := signer.Load(keyDER)
	if err != nil {
		return nil, trailerr.New(trailerr.KindMalformed, "signer.create", err)
	}
	created := time.Now().UTC()
	record := signerRecord{Key: keyDER, Created: created}
	body, err := json.Marshal(record)
	if err != nil {
		return nil, trailerr.New(trailerr.KindMalformed, "signer.create", err)
	}
	uri := who.SignerKey()
	if err := store.Put(ctx, uri, body); err != nil {
		return nil, trailerr.New(trailerr.KindTransport, "signer.create", err)
	}
	return &Signer{Facade: facade, URI: uri, Created: created}, nil
}

// GetSigner reads the signer for owner's provider.
func GetSigner(ctx context.Context, store objectstore.Store, who owner.Owner) (*Signer, error) {
	return GetSignerFromPath(ctx, store, who.SignerKey())
}

// GetSignerFromPath reads the signer stored at an explicit object-store key,
// used when metadata points to a signer living under another owner's
// provider.
func GetSignerFromPath(ctx context.Context, store objectstore.Store, uri string) (*Signer, error) {
	body, err := store.Get(ctx, uri)
	if err != nil {
		return nil, trailerr.New(trailerr.KindTransport, "signer.get", err)
	}
	var record signerRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, trailerr.New(trailerr.KindMalformed, "signer.get", err)
	}
	facade, err := signer.Load(record.Key)
	if err != nil {
		return nil, trailerr.New(trailerr.KindMalformed, "signer.get", err)
	}
	return &Signer{Facade: facade, URI: uri, Created: record.Created}, nil
}

package trail

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ledgerforge/trail/internal/objectstore"
	"github.com/ledgerforge/trail/internal/trailerr"
	"github.com/ledgerforge/trail/pkg/owner"
)

// metadataVersion is the current metadata document schema version.
const metadataVersion = 1

// SignerRef points at a signer by its object-store path rather than by
// owner identity, so a child chain can reuse its parent provider's signer
// without duplicating the key.
type SignerRef struct {
	URI     string    `json:"uri"`
	Created time.Time `json:"created"`
}

// Metadata is the mutable, per-owner JSON index of a chain's head and
// signer references.
type Metadata struct {
	Version   int         `json:"version"`
	Owner     string      `json:"owner"`
	LastBlock string      `json:"lastBlock"`
	Blocks    []string    `json:"blocks"`
	Signers   []SignerRef `json:"signers"`
	Modified  time.Time   `json:"modified"`
	Created   time.Time   `json:"created"`
}

// InitializeMetadata creates owner's metadata document, attaching s as its
// sole signer reference. The caller resolves s (an already-existing signer
// for some provider in this owner's lineage) rather than this function
// re-deriving it, since the chain being bootstrapped does not always carry
// its own signer yet: the root chain's first block is co-signed by the
// signer of whichever provider is being initialized. parentLastBlock seeds
// lastBlock, or GenesisPreviousID if empty (the root chain's case).
func InitializeMetadata(ctx context.Context, store objectstore.Store, who owner.Owner, parentLastBlock string, s *Signer) (*Metadata, []*Signer, error) {
	lastBlock := parentLastBlock
	if lastBlock == "" {
		lastBlock = GenesisPreviousID
	}

	now := time.Now().UTC()
	meta := &Metadata{
		Version:   metadataVersion,
		Owner:     who.Subject(),
		LastBlock: lastBlock,
		Blocks:    []string{},
		Signers:   []SignerRef{{URI: s.URI, Created: s.Created}},
		Modified:  now,
		Created:   now,
	}
	if err := writeMetadata(ctx, store, who, meta); err != nil {
		return nil, nil, err
	}
	return meta, []*Signer{s}, nil
}

// GetMetadata reads owner's metadata document and resolves each of its
// signer references.
func GetMetadata(ctx context.Context, store objectstore.Store, who owner.Owner) (*Metadata, []*Signer, error) {
	body, err := store.Get(ctx, who.MetadataKey())
	if err != nil {
		return nil, nil, trailerr.New(trailerr.KindTransport, "metadata.get", err)
	}
	var meta Metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, nil, trailerr.New(trailerr.KindMalformed, "metadata.get", err)
	}
	if meta.Version == 0 {
		meta.Version = metadataVersion
	}
	if meta.Modified.IsZero() {
		meta.Modified = time.Now().UTC()
	}
	if meta.Created.IsZero() {
		meta.Created = time.Now().UTC()
	}

	signers := make([]*Signer, 0, len(meta.Signers))
	for _, ref := range meta.Signers {
		s, err := GetSignerFromPath(ctx, store, ref.URI)
		if err != nil {
			return nil, nil, err
		}
		signers = append(signers, s)
	}
	return &meta, signers, nil
}

// AddBlock appends blockID to meta.Blocks, advances LastBlock, and
// rewrites the full metadata document. Signer references are left
// unchanged.
func AddBlock(ctx context.Context, store objectstore.Store, who owner.Owner, meta *Metadata, blockID string) error {
	if blockID == "" {
		return trailerr.New(trailerr.KindMalformed, "metadata.add_block", errors.New("empty block id"))
	}
	meta.Blocks = append(meta.Blocks, blockID)
	meta.LastBlock = blockID
	meta.Modified = time.Now().UTC()
	return writeMetadata(ctx, store, who, meta)
}

// LastSigner returns the most recently added signer reference's resolved
// Signer (latest-wins), used to co-sign new blocks.
func LastSigner(signers []*Signer) (*Signer, error) {
	if len(signers) == 0 {
		return nil, trailerr.New(trailerr.KindStateMissing, "metadata.last_signer", errNoSigner)
	}
	return signers[len(signers)-1], nil
}

func writeMetadata(ctx context.Context, store objectstore.Store, who owner.Owner, meta *Metadata) error {
	body, err := json.Marshal(meta)
	if err != nil {
		return trailerr.New(trailerr.KindMalformed, "metadata.write", err)
	}
	if err := store.Put(ctx, who.MetadataKey(), body); err != nil {
		return trailerr.New(trailerr.KindTransport, "metadata.write", err)
	}
	return nil
}

package trail

import (
	"context"
	"time"

	"github.com/ledgerforge/trail/internal/objectstore"
	"github.com/ledgerforge/trail/internal/trailerr"
	"github.com/ledgerforge/trail/pkg/owner"
)

// TransactionSource is the upstream-supplied payload for one transaction:
// everything the caller provides before the chain's signer co-signs it and
// the owner's address is attached.
type TransactionSource struct {
	Timestamp     time.Time
	AssetRef      string
	Contents      string
	UserSignature string
}

// Service provides the block-assembly, chain-linking, and initialization
// protocol over a single object-store backed trail.
type Service struct {
	store objectstore.Store
}

// NewService constructs a Service over store.
func NewService(store objectstore.Store) *Service {
	return &Service{store: store}
}

// WriteBlock assembles, signs, and persists one block containing the given
// transaction sources for who, lazily bootstrapping who's metadata from its
// provider's chain if this is the first write. It returns a state-missing
// error if who's provider has not itself been initialized.
func (s *Service) WriteBlock(ctx context.Context, who owner.Owner, sources []TransactionSource) (*Block, error) {
	if len(sources) == 0 {
		return nil, trailerr.New(trailerr.KindMalformed, "service.write_block", errEmptyTxBatch)
	}

	meta, signers, err := GetMetadata(ctx, s.store, who)
	if err != nil {
		meta, signers, err = s.bootstrapOwnerMetadata(ctx, who)
		if err != nil {
			return nil, err
		}
	}

	chainSigner, err := LastSigner(signers)
	if err != nil {
		return nil, err
	}

	transactions := make([]Transaction, len(sources))
	for i, src := range sources {
		tx, err := NewTransaction(chainSigner.Facade, who.Address(), src.Timestamp, src.AssetRef, src.Contents, src.UserSignature)
		if err != nil {
			return nil, err
		}
		transactions[i] = tx
	}

	block, err := BuildBlock(ctx, s.store, who, meta.LastBlock, transactions)
	if err != nil {
		return nil, err
	}
	if err := AddBlock(ctx, s.store, who, meta, block.ID); err != nil {
		return nil, err
	}
	return block, nil
}

// bootstrapOwnerMetadata lazily initializes who's metadata anchored on its
// provider chain's current head, reusing the provider's signer.
func (s *Service) bootstrapOwnerMetadata(ctx context.Context, who owner.Owner) (*Metadata, []*Signer, error) {
	providerOwner, err := who.ProviderOwner()
	if err != nil {
		return nil, nil, trailerr.New(trailerr.KindStateMissing, "service.write_block", err)
	}
	providerMeta, providerSigners, err := GetMetadata(ctx, s.store, providerOwner)
	if err != nil {
		return nil, nil, trailerr.New(trailerr.KindStateMissing, "service.write_block", err)
	}
	providerSigner, err := LastSigner(providerSigners)
	if err != nil {
		return nil, nil, err
	}
	return InitializeMetadata(ctx, s.store, who, providerMeta.LastBlock, providerSigner)
}

// InitializeProvider bootstraps the three-tier chain skeleton for
// provider: creates its signer from keyDER, then seeds the root chain (if
// absent) and the provider chain (if absent), each anchored on its
// parent's head at the moment it was first seeded. Address chains are
// initialized lazily by WriteBlock.
func (s *Service) InitializeProvider(ctx context.Context, provider string, keyDER string, now time.Time) error {
	providerOwner := owner.NewProvider(provider)

	providerSigner, err := CreateSigner(ctx, s.store, providerOwner, keyDER)
	if err != nil {
		return err
	}

	rootOwner := owner.NewRoot()
	rootMeta, _, err := GetMetadata(ctx, s.store, rootOwner)
	if err != nil {
		if _, _, err := InitializeMetadata(ctx, s.store, rootOwner, "", providerSigner); err != nil {
			return err
		}
		placeholder, err := PlaceholderTransaction(providerSigner.Facade, rootOwner.Address(), now)
		if err != nil {
			return err
		}
		if _, err := s.writePlaceholderBlock(ctx, rootOwner, placeholder); err != nil {
			return err
		}
		rootMeta, _, err = GetMetadata(ctx, s.store, rootOwner)
		if err != nil {
			return err
		}
	}

	if _, _, err := GetMetadata(ctx, s.store, providerOwner); err != nil {
		if _, _, err := InitializeMetadata(ctx, s.store, providerOwner, rootMeta.LastBlock, providerSigner); err != nil {
			return err
		}
		placeholder, err := PlaceholderTransaction(providerSigner.Facade, providerOwner.Address(), now)
		if err != nil {
			return err
		}
		if _, err := s.writePlaceholderBlock(ctx, providerOwner, placeholder); err != nil {
			return err
		}
	}

	return nil
}

// writePlaceholderBlock writes the single genesis block used to seed a
// freshly initialized chain and advances its metadata, bypassing the usual
// WriteBlock signer-selection path since the signer is already known.
func (s *Service) writePlaceholderBlock(ctx context.Context, who owner.Owner, placeholder Transaction) (*Block, error) {
	meta, _, err := GetMetadata(ctx, s.store, who)
	if err != nil {
		return nil, trailerr.New(trailerr.KindStateMissing, "service.initialize_provider", err)
	}
	block, err := BuildBlock(ctx, s.store, who, meta.LastBlock, []Transaction{placeholder})
	if err != nil {
		return nil, err
	}
	if err := AddBlock(ctx, s.store, who, meta, block.ID); err != nil {
		return nil, err
	}
	return block, nil
}

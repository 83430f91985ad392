package trail

import (
	"context"
	"time"

	"github.com/ledgerforge/trail/internal/codec"
	"github.com/ledgerforge/trail/internal/merkle"
	"github.com/ledgerforge/trail/internal/objectstore"
	"github.com/ledgerforge/trail/internal/trailerr"
	"github.com/ledgerforge/trail/pkg/owner"
)

// BlockVersion is the current canonical block encoding version.
const BlockVersion = 1

// GenesisPreviousID is the sentinel stored in metadata's lastBlock before
// any block has been written for a chain. In block bytes the same position
// is an empty byte string.
const GenesisPreviousID = "0x00"

// Block is a batch of transactions with a Merkle root and a link to its
// predecessor.
type Block struct {
	ID              string
	Version         int64
	Timestamp       time.Time
	PreviousID      string
	TransactionRoot string
	Transactions    []Transaction

	raw []byte
}

// BuildBlock assembles, serializes, and persists a block for owner anchored
// on previousID, over the ordered transactions. The Merkle tree is built
// over the 32-byte digests decoded from each transaction's id.
func BuildBlock(ctx context.Context, store objectstore.Store, who owner.Owner, previousID string, transactions []Transaction) (*Block, error) {
	if len(transactions) == 0 {
		return nil, trailerr.New(trailerr.KindMalformed, "block.build", errEmptyTxBatch)
	}

	leaves := make([][]byte, len(transactions))
	for i, tx := range transactions {
		leaf, err := codec.Base64Decode(tx.ID)
		if err != nil {
			return nil, trailerr.New(trailerr.KindIntegrity, "block.build", err)
		}
		leaves[i] = leaf
	}
	tree, err := merkle.Build(leaves)
	if err != nil {
		return nil, trailerr.New(trailerr.KindIntegrity, "block.build", err)
	}

	previousBytes := []byte{}
	if previousID != GenesisPreviousID {
		previousBytes, err = codec.Base64Decode(previousID)
		if err != nil {
			return nil, trailerr.New(trailerr.KindMalformed, "block.build", err)
		}
	}

	timestamp := time.Now().UTC()
	header := codec.EncodeFrames(
		codec.EncodeBigInt(BlockVersion),
		codec.EncodeBigInt(timestamp.Unix()),
		previousBytes,
		tree.Root(),
		codec.EncodeBigInt(int64(len(transactions))),
	)
	raw := header
	for _, tx := range transactions {
		raw = append(raw, codec.EncodeFrame(tx.Bytes())...)
	}

	digest := codec.SHA3(raw)
	id := codec.Base64Encode(digest[:])

	if err := store.Put(ctx, who.BlockKey(id), raw); err != nil {
		return nil, trailerr.New(trailerr.KindTransport, "block.build", err)
	}

	return &Block{
		ID:              id,
		Version:         BlockVersion,
		Timestamp:       timestamp,
		PreviousID:      previousID,
		TransactionRoot: codec.Base64Encode(tree.Root()),
		Transactions:    transactions,
		raw:             raw,
	}, nil
}

// ReadBlock fetches and decodes the block with the given id under owner.
func ReadBlock(ctx context.Context, store objectstore.Store, who owner.Owner, id string) (*Block, error) {
	raw, err := store.Get(ctx, who.BlockKey(id))
	if err != nil {
		return nil, trailerr.New(trailerr.KindTransport, "block.read", err)
	}
	return DecodeBlock(raw)
}

// DecodeBlock inverts BuildBlock's canonical encoding and recomputes the
// id from the stored bytes.
func DecodeBlock(raw []byte) (*Block, error) {
	header, consumed, err := codec.DecodeFramesN(raw, 5)
	if err != nil {
		return nil, trailerr.New(trailerr.KindIntegrity, "block.decode", err)
	}

	count := codec.DecodeBigInt(header[4])
	txFrames, txConsumed, err := codec.DecodeFramesN(raw[consumed:], int(count))
	if err != nil {
		return nil, trailerr.New(trailerr.KindIntegrity, "block.decode", err)
	}
	if consumed+txConsumed != len(raw) {
		return nil, trailerr.New(trailerr.KindIntegrity, "block.decode", errTrailingBytes)
	}

	transactions := make([]Transaction, len(txFrames))
	for i, frame := range txFrames {
		tx, err := DecodeTransaction(frame)
		if err != nil {
			return nil, err
		}
		transactions[i] = tx
	}

	previousID := GenesisPreviousID
	if len(header[2]) > 0 {
		previousID = codec.Base64Encode(header[2])
	}

	digest := codec.SHA3(raw)
	return &Block{
		ID:              codec.Base64Encode(digest[:]),
		Version:         codec.DecodeBigInt(header[0]),
		Timestamp:       time.Unix(codec.DecodeBigInt(header[1]), 0).UTC(),
		PreviousID:      previousID,
		TransactionRoot: codec.Base64Encode(header[3]),
		Transactions:    transactions,
		raw:             append([]byte{}, raw...),
	}, nil
}

// Bytes returns the block's canonical encoding.
func (b *Block) Bytes() []byte {
	return b.raw
}

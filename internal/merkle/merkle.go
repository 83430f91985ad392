// Package merkle builds the SHA3-256 Merkle tree that binds a block to its
// transactions, and verifies per-leaf inclusion proofs statelessly.
package merkle

import (
	"bytes"
	"fmt"

	"github.com/ledgerforge/trail/internal/codec"
)

// sideLeft marks a proof frame whose sibling sits on the right of the
// leaf/hash being carried forward (the hash itself was the left child).
const (
	sideLeft  byte = 1
	sideRight byte = 0
)

// Proof is an ordered, bottom-up sequence of 33-byte frames: a side byte
// followed by the 32-byte sibling hash.
type Proof [][]byte

// Bytes concatenates the proof's frames into their wire form.
func (p Proof) Bytes() []byte {
	var out []byte
	for _, frame := range p {
		out = append(out, frame...)
	}
	return out
}

// Tree is a pure, immutable-after-build Merkle tree. It performs no I/O and
// is not safe to mutate once Build has returned.
type Tree struct {
	leaves [][]byte
	levels [][][]byte
	root   []byte
	built  bool
}

// Build constructs a Tree over the given ordered leaves. It fails if leaves
// is empty.
func Build(leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("merkle: cannot build a tree with zero leaves")
	}
	t := &Tree{leaves: leaves}

	if len(leaves) == 1 {
		leaf := leaves[0]
		digest := codec.SHA3(append(append([]byte{}, leaf...), leaf...))
		t.root = digest[:]
		t.levels = [][][]byte{{leaf}}
		t.built = true
		return t, nil
	}

	level := make([][]byte, len(leaves))
	copy(level, leaves)
	t.levels = append(t.levels, level)

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([][]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			digest := codec.SHA3(append(append([]byte{}, level[i]...), level[i+1]...))
			next = append(next, digest[:])
		}
		t.levels = append(t.levels, next)
		level = next
	}
	t.root = level[0]
	t.built = true
	return t, nil
}

// Root returns the tree's root digest.
func (t *Tree) Root() []byte {
	return t.root
}

// Depth returns the number of hashing rounds between the leaves and the
// root. The single-leaf tree (one SHA3(leaf‖leaf) round) counts as depth 1;
// t.levels otherwise also carries the leaf row itself, so it is one longer
// than the hashing-round count.
func (t *Tree) Depth() int {
	if len(t.leaves) == 1 {
		return 1
	}
	return len(t.levels) - 1
}

// Proof returns the inclusion proof for the leaf at index i.
func (t *Tree) Proof(i int) (Proof, error) {
	if !t.built {
		return nil, fmt.Errorf("merkle: tree not built")
	}
	if i < 0 || i >= len(t.leaves) {
		return nil, fmt.Errorf("merkle: leaf index %d out of range", i)
	}

	if len(t.leaves) == 1 {
		return Proof{append([]byte{sideLeft}, t.leaves[0]...)}, nil
	}

	var proof Proof
	idx := i
	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]
		if idx%2 == 1 {
			proof = append(proof, append([]byte{sideRight}, nodes[idx-1]...))
		} else {
			sibling := idx + 1
			if sibling >= len(nodes) {
				sibling = idx
			}
			proof = append(proof, append([]byte{sideLeft}, nodes[sibling]...))
		}
		idx /= 2
	}
	return proof, nil
}

// Verify statelessly re-hashes leaf against proof and reports whether the
// result matches root. It requires no Tree instance.
func Verify(leaf []byte, proof Proof, root []byte) bool {
	current := leaf
	for _, frame := range proof {
		if len(frame) != 33 {
			return false
		}
		side, sibling := frame[0], frame[1:]
		var combined []byte
		if side == sideLeft {
			combined = append(append([]byte{}, current...), sibling...)
		} else {
			combined = append(append([]byte{}, sibling...), current...)
		}
		digest := codec.SHA3(combined)
		current = digest[:]
	}
	return bytes.Equal(current, root)
}

// DecodeProof splits a wire-form proof (a concatenation of 33-byte frames)
// back into its ordered list of frames.
func DecodeProof(b []byte) (Proof, error) {
	if len(b)%33 != 0 {
		return nil, fmt.Errorf("merkle: proof length %d is not a multiple of 33", len(b))
	}
	var proof Proof
	for i := 0; i < len(b); i += 33 {
		proof = append(proof, b[i:i+33])
	}
	return proof, nil
}

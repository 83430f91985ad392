package merkle

import (
	"bytes"
	"testing"

	"github.com/ledgerforge/trail/internal/codec"
)

func leafSet(n int) [][]byte {
	leaves := make([][]byte, n)
	for i := 0; i < n; i++ {
		digest := codec.SHA3([]byte{byte(i)})
		leaves[i] = digest[:]
	}
	return leaves
}

func TestBuild_SingleLeaf(t *testing.T) {
	leaf := codec.SHA3([]byte("only"))
	tree, err := Build([][]byte{leaf[:]})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := codec.SHA3(append(append([]byte{}, leaf[:]...), leaf[:]...))
	if !bytes.Equal(tree.Root(), want[:]) {
		t.Errorf("root mismatch")
	}

	proof, err := tree.Proof(0)
	if err != nil {
		t.Fatalf("proof: %v", err)
	}
	if len(proof) != 1 || len(proof.Bytes()) != 33 {
		t.Fatalf("expected single 33-byte proof, got %d frames", len(proof))
	}
	if proof[0][0] != sideLeft {
		t.Errorf("expected side=1 for single-leaf proof")
	}
	if !Verify(leaf[:], proof, tree.Root()) {
		t.Errorf("single-leaf proof failed to verify")
	}
}

func TestBuild_TenLeaves(t *testing.T) {
	leaves := leafSet(10)
	tree, err := Build(leaves)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tree.Depth() != 4 {
		t.Errorf("depth = %d, want 4", tree.Depth())
	}
	for i, leaf := range leaves {
		proof, err := tree.Proof(i)
		if err != nil {
			t.Fatalf("proof %d: %v", i, err)
		}
		if !Verify(leaf, proof, tree.Root()) {
			t.Errorf("leaf %d failed to verify", i)
		}
	}
}

func TestBuild_OddCountDuplicatesLast(t *testing.T) {
	leaves := leafSet(3)
	tree, err := Build(leaves)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i, leaf := range leaves {
		proof, err := tree.Proof(i)
		if err != nil {
			t.Fatalf("proof %d: %v", i, err)
		}
		if !Verify(leaf, proof, tree.Root()) {
			t.Errorf("leaf %d failed to verify", i)
		}
	}
}

func TestVerify_RejectsTamperedLeaf(t *testing.T) {
	leaves := leafSet(4)
	tree, _ := Build(leaves)
	proof, _ := tree.Proof(1)
	tampered := append([]byte{}, leaves[1]...)
	tampered[0] ^= 0xff
	if Verify(tampered, proof, tree.Root()) {
		t.Errorf("expected verify to fail for tampered leaf")
	}
}

func TestProof_OutOfRangeFails(t *testing.T) {
	tree, _ := Build(leafSet(4))
	if _, err := tree.Proof(99); err == nil {
		t.Errorf("expected error for out-of-range index")
	}
}

func TestBuild_EmptyFails(t *testing.T) {
	if _, err := Build(nil); err == nil {
		t.Errorf("expected error for zero leaves")
	}
}

func TestDecodeProof_RoundTrip(t *testing.T) {
	tree, _ := Build(leafSet(5))
	proof, _ := tree.Proof(3)
	decoded, err := DecodeProof(proof.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(proof) {
		t.Fatalf("frame count mismatch: got %d, want %d", len(decoded), len(proof))
	}
}

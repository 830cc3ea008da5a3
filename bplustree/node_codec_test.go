package bplus

import (
	"bytes"
	"testing"
)

func TestLayoutConstants(t *testing.T) {
	checks := []struct {
		name string
		got  int
		want int
	}{
		{"CommonNodeHeaderSize", CommonNodeHeaderSize, 6},
		{"LeafNodeHeaderSize", LeafNodeHeaderSize, 14},
		{"LeafNodeCellSize", LeafNodeCellSize, 16},
		{"LeafNodeSpaceForCells", LeafNodeSpaceForCells, 4082},
		{"LeafNodeMaxCells", LeafNodeMaxCells, 254},
		{"LeafNodeLeftSplitCount", LeafNodeLeftSplitCount, 128},
		{"LeafNodeRightSplitCount", LeafNodeRightSplitCount, 127},
		{"LeafNodeMinCells", LeafNodeMinCells, 127},
		{"InternalNodeHeaderSize", InternalNodeHeaderSize, 14},
		{"InternalNodeCellSize", InternalNodeCellSize, 16},
		{"InternalNodeMaxCells", InternalNodeMaxCells, 254},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestLeafNodeAccessors(t *testing.T) {
	node := make([]byte, PageSize)
	initializeLeafNode(node)

	if nodeType(node) != NodeLeaf {
		t.Error("Expected a leaf node after initialization")
	}
	if isNodeRoot(node) {
		t.Error("Fresh nodes must not be marked root")
	}
	if leafNumCells(node) != 0 || leafNextLeaf(node) != 0 {
		t.Error("Fresh leaf must have zero cells and no next leaf")
	}

	setNodeRoot(node, true)
	if !isNodeRoot(node) {
		t.Error("setNodeRoot(true) not observed")
	}
	setNodeParent(node, 42)
	if nodeParent(node) != 42 {
		t.Errorf("parent = %d, want 42", nodeParent(node))
	}
	setLeafNumCells(node, 3)
	setLeafNextLeaf(node, 7)
	if leafNumCells(node) != 3 || leafNextLeaf(node) != 7 {
		t.Error("leaf header fields did not round-trip")
	}

	copy(leafCell(node, 2), []byte("apple\x00\x00\x00\x00\x00\x00\x00\x01\x02\x03\x04"))
	if !bytes.Equal(leafKey(node, 2), []byte("apple\x00\x00\x00\x00\x00\x00\x00")) {
		t.Errorf("leafKey(2) = %q", leafKey(node, 2))
	}
	if &leafValue(node, 2)[0] != &leafCell(node, 2)[0] {
		t.Error("leaf value must alias the cell: the cell is the serialized row")
	}
}

func TestInternalNodeAccessors(t *testing.T) {
	node := make([]byte, PageSize)
	initializeInternalNode(node)

	if nodeType(node) != NodeInternal {
		t.Error("Expected an internal node after initialization")
	}
	setInternalNumKeys(node, 2)
	setInternalChild(node, 0, 10)
	setInternalKey(node, 0, []byte("aa\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"))
	setInternalChild(node, 1, 11)
	setInternalKey(node, 1, []byte("bb\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"))
	setInternalRightChild(node, 12)

	for i, want := range []uint32{10, 11, 12} {
		got, err := internalChild(node, uint32(i))
		if err != nil {
			t.Fatalf("internalChild(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("internalChild(%d) = %d, want %d", i, got, want)
		}
	}
	if _, err := internalChild(node, 3); err == nil {
		t.Error("Expected an error for child index past numKeys")
	}
	if !bytes.Equal(maxKey(node)[:2], []byte("bb")) {
		t.Errorf("maxKey = %q", maxKey(node))
	}
}

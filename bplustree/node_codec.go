package bplus

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Pure offset arithmetic over a raw page buffer. Accessors return live views
// into the page; their lifetime is the calling operation only.

func nodeType(node []byte) NodeType {
	return NodeType(node[nodeTypeOffset])
}

func setNodeType(node []byte, t NodeType) {
	node[nodeTypeOffset] = byte(t)
}

func isNodeRoot(node []byte) bool {
	return node[isRootOffset] != 0
}

func setNodeRoot(node []byte, isRoot bool) {
	if isRoot {
		node[isRootOffset] = 1
	} else {
		node[isRootOffset] = 0
	}
}

func nodeParent(node []byte) uint32 {
	return binary.LittleEndian.Uint32(node[parentPointerOffset:])
}

func setNodeParent(node []byte, parent uint32) {
	binary.LittleEndian.PutUint32(node[parentPointerOffset:], parent)
}

/* leaf nodes */

func leafNumCells(node []byte) uint32 {
	return binary.LittleEndian.Uint32(node[leafNumCellsOffset:])
}

func setLeafNumCells(node []byte, n uint32) {
	binary.LittleEndian.PutUint32(node[leafNumCellsOffset:], n)
}

func leafNextLeaf(node []byte) uint32 {
	return binary.LittleEndian.Uint32(node[leafNextLeafOffset:])
}

func setLeafNextLeaf(node []byte, next uint32) {
	binary.LittleEndian.PutUint32(node[leafNextLeafOffset:], next)
}

func leafCell(node []byte, cellNum uint32) []byte {
	off := LeafNodeHeaderSize + cellNum*LeafNodeCellSize
	return node[off : off+LeafNodeCellSize]
}

func leafKey(node []byte, cellNum uint32) []byte {
	return leafCell(node, cellNum)[:LeafNodeKeySize]
}

// leafValue returns the row payload of the cell. Key and value share the
// same 16 bytes; the key is the first 12.
func leafValue(node []byte, cellNum uint32) []byte {
	return leafCell(node, cellNum)
}

/* internal nodes */

func internalNumKeys(node []byte) uint32 {
	return binary.LittleEndian.Uint32(node[internalNumKeysOffset:])
}

func setInternalNumKeys(node []byte, n uint32) {
	binary.LittleEndian.PutUint32(node[internalNumKeysOffset:], n)
}

func internalRightChild(node []byte) uint32 {
	return binary.LittleEndian.Uint32(node[internalRightChildOffset:])
}

func setInternalRightChild(node []byte, child uint32) {
	binary.LittleEndian.PutUint32(node[internalRightChildOffset:], child)
}

func internalCell(node []byte, cellNum uint32) []byte {
	off := InternalNodeHeaderSize + cellNum*InternalNodeCellSize
	return node[off : off+InternalNodeCellSize]
}

// internalChild returns the child page number at position childNum; position
// numKeys addresses the rightmost child.
func internalChild(node []byte, childNum uint32) (uint32, error) {
	numKeys := internalNumKeys(node)
	if childNum > numKeys {
		return 0, errors.Errorf("tried to access child %d > num keys %d", childNum, numKeys)
	}
	if childNum == numKeys {
		return internalRightChild(node), nil
	}
	return binary.LittleEndian.Uint32(internalCell(node, childNum)), nil
}

func setInternalChild(node []byte, cellNum uint32, child uint32) {
	binary.LittleEndian.PutUint32(internalCell(node, cellNum), child)
}

func internalKey(node []byte, keyNum uint32) []byte {
	return internalCell(node, keyNum)[internalChildSize:]
}

func setInternalKey(node []byte, keyNum uint32, key []byte) {
	copy(internalKey(node, keyNum), key)
}

// maxKey is the last (largest) key stored in the node.
func maxKey(node []byte) []byte {
	if nodeType(node) == NodeInternal {
		return internalKey(node, internalNumKeys(node)-1)
	}
	return leafKey(node, leafNumCells(node)-1)
}

// cloneKey detaches a key from its page so it survives shifts and page
// re-initialization.
func cloneKey(key []byte) []byte {
	out := make([]byte, LeafNodeKeySize)
	copy(out, key)
	return out
}

func initializeLeafNode(node []byte) {
	setNodeType(node, NodeLeaf)
	setNodeRoot(node, false)
	setNodeParent(node, 0)
	setLeafNumCells(node, 0)
	setLeafNextLeaf(node, 0)
}

func initializeInternalNode(node []byte) {
	setNodeType(node, NodeInternal)
	setNodeRoot(node, false)
	setNodeParent(node, 0)
	setInternalNumKeys(node, 0)
	setInternalRightChild(node, 0)
}

// Structure of the on-disk B+ tree:
/*
Page 0 is always the root.

 Internal Node (separator keys + child page numbers)
        └── Child Internal Nodes ...
               └── Leaf Nodes (key/row cells + next-leaf pointer)

- keys within a node are non-decreasing (duplicates allowed)
- an internal node with N keys addresses N+1 children
- leaves are linked left-to-right through nextLeaf for range scans
- parent pointers are page numbers, never language-level references
*/
package bplus

import (
	"myjql/types"

	"go.uber.org/zap"
)

type NodeType uint8

const (
	NodeInternal NodeType = iota
	NodeLeaf
)

// Common node header: type (1) | isRoot (1) | parent page (4).
const (
	nodeTypeSize         = 1
	nodeTypeOffset       = 0
	isRootSize           = 1
	isRootOffset         = nodeTypeOffset + nodeTypeSize
	parentPointerSize    = 4
	parentPointerOffset  = isRootOffset + isRootSize
	CommonNodeHeaderSize = nodeTypeSize + isRootSize + parentPointerSize
)

// Leaf node header and body.
const (
	leafNumCellsSize   = 4
	leafNumCellsOffset = CommonNodeHeaderSize
	leafNextLeafSize   = 4
	leafNextLeafOffset = leafNumCellsOffset + leafNumCellsSize
	LeafNodeHeaderSize = CommonNodeHeaderSize + leafNumCellsSize + leafNextLeafSize

	LeafNodeKeySize = types.KeySize
	// The cell is exactly a serialized row: the key is its first 12 bytes,
	// the 4-byte value (column a) the rest.
	LeafNodeCellSize      = types.RowSize
	LeafNodeSpaceForCells = PageSize - LeafNodeHeaderSize

	// The -1 keeps one cell of slack below what the page can hold. Leaf
	// inserts split a full leaf before writing, so they never use it.
	LeafNodeMaxCells        = LeafNodeSpaceForCells/LeafNodeCellSize - 1
	LeafNodeLeftSplitCount  = (LeafNodeMaxCells + 2) / 2
	LeafNodeRightSplitCount = (LeafNodeMaxCells + 1) - LeafNodeLeftSplitCount
	LeafNodeMinCells        = LeafNodeMaxCells / 2
)

// Internal node header and body.
const (
	internalNumKeysSize      = 4
	internalNumKeysOffset    = CommonNodeHeaderSize
	internalRightChildSize   = 4
	internalRightChildOffset = internalNumKeysOffset + internalNumKeysSize
	InternalNodeHeaderSize   = CommonNodeHeaderSize + internalNumKeysSize + internalRightChildSize

	internalChildSize    = 4
	InternalNodeCellSize = internalChildSize + LeafNodeKeySize

	InternalNodeMaxCells = (PageSize-InternalNodeHeaderSize)/InternalNodeCellSize - 1
	InternalNodeMinCells = 1
)

// Table is the single key/value table of a database file: a B+ tree whose
// root lives at page 0, served through a Pager.
type Table struct {
	pager       *Pager
	rootPageNum uint32
	log         *zap.Logger
}

// Cursor is a position over leaf cells in key order. Cursors are valid only
// until the next mutation of the tree.
type Cursor struct {
	table      *Table
	pageNum    uint32
	cellNum    uint32
	endOfTable bool
}

// Open opens (or creates) a database file and boots the table. A fresh file
// gets page 0 initialized as an empty leaf root. log may be nil.
func Open(path string, log *zap.Logger) (*Table, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pager, err := OpenPager(path)
	if err != nil {
		return nil, err
	}
	t := &Table{pager: pager, rootPageNum: 0, log: log}
	if pager.NumPages() == 0 {
		root, err := pager.GetPage(0)
		if err != nil {
			pager.Close()
			return nil, err
		}
		initializeLeafNode(root)
		setNodeRoot(root, true)
		log.Info("initialized new database file", zap.String("path", path))
	}
	return t, nil
}

// Close flushes every resident page and closes the file. This is the only
// durability boundary: nothing is written back before Close.
func (t *Table) Close() error {
	return t.pager.Close()
}

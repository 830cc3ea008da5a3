package bplus

import (
	"bytes"

	"github.com/pkg/errors"
)

// Find positions a cursor at the leftmost cell whose key is >= key: the
// leftmost equal cell when the key is present, the insertion index
// otherwise.
func (t *Table) Find(key []byte) (*Cursor, error) {
	root, err := t.pager.GetPage(t.rootPageNum)
	if err != nil {
		return nil, err
	}
	if nodeType(root) == NodeLeaf {
		return t.leafFind(t.rootPageNum, key)
	}
	return t.internalFind(t.rootPageNum, key)
}

// leafFind binary-searches the leaf for the leftmost index with cell key
// >= key. Keys compare byte-wise over the full zero-padded 12 bytes, which
// matches strcmp for the key shapes this table accepts.
func (t *Table) leafFind(pageNum uint32, key []byte) (*Cursor, error) {
	node, err := t.pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}
	numCells := leafNumCells(node)

	lo, hi := uint32(0), numCells
	for lo < hi {
		mid := (lo + hi) / 2
		if bytes.Compare(leafKey(node, mid), key) >= 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return &Cursor{table: t, pageNum: pageNum, cellNum: lo}, nil
}

// internalFind descends into the child whose range is known to contain the
// leftmost occurrence of key: the leftmost separator >= key, or the
// rightmost child when every separator is smaller.
func (t *Table) internalFind(pageNum uint32, key []byte) (*Cursor, error) {
	for {
		node, err := t.pager.GetPage(pageNum)
		if err != nil {
			return nil, err
		}
		numKeys := internalNumKeys(node)
		if numKeys == 0 {
			return nil, errors.Errorf("internal node %d has zero keys", pageNum)
		}

		lo, hi := uint32(0), numKeys
		for lo < hi {
			mid := (lo + hi) / 2
			if bytes.Compare(internalKey(node, mid), key) >= 0 {
				hi = mid
			} else {
				lo = mid + 1
			}
		}
		child, err := internalChild(node, lo)
		if err != nil {
			return nil, err
		}
		childPage, err := t.pager.GetPage(child)
		if err != nil {
			return nil, err
		}
		if nodeType(childPage) == NodeLeaf {
			return t.leafFind(child, key)
		}
		pageNum = child
	}
}

// Start positions a cursor at the table's smallest key by walking the left
// spine. (Probing for a sentinel minimum key would skip keys that sort
// below it.)
func (t *Table) Start() (*Cursor, error) {
	pageNum := t.rootPageNum
	for {
		node, err := t.pager.GetPage(pageNum)
		if err != nil {
			return nil, err
		}
		if nodeType(node) == NodeLeaf {
			return &Cursor{
				table:      t,
				pageNum:    pageNum,
				cellNum:    0,
				endOfTable: leafNumCells(node) == 0,
			}, nil
		}
		if internalNumKeys(node) == 0 {
			return nil, errors.Errorf("internal node %d has zero keys", pageNum)
		}
		child, err := internalChild(node, 0)
		if err != nil {
			return nil, err
		}
		pageNum = child
	}
}

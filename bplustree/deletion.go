package bplus

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Delete removes every row whose key equals key, one cell at a time,
// rebalancing after each removal. It returns the number of rows removed;
// zero matches is not an error.
func (t *Table) Delete(key []byte) (int, error) {
	deleted := 0
	for {
		cursor, err := t.Find(key)
		if err != nil {
			return deleted, err
		}
		if err := cursor.settle(); err != nil {
			return deleted, err
		}
		match, err := cursor.KeyEquals(key)
		if err != nil {
			return deleted, err
		}
		if !match {
			break
		}
		if err := t.leafDelete(cursor.pageNum, cursor.cellNum); err != nil {
			return deleted, err
		}
		deleted++
	}
	if deleted > 0 {
		t.log.Debug("deleted rows", zap.ByteString("key", key), zap.Int("count", deleted))
	}
	return deleted, nil
}

// leafDelete removes one cell from a leaf and restores fill discipline.
func (t *Table) leafDelete(pageNum, cellNum uint32) error {
	node, err := t.pager.GetPage(pageNum)
	if err != nil {
		return err
	}
	numCells := leafNumCells(node)
	for i := cellNum; i+1 < numCells; i++ {
		copy(leafCell(node, i), leafCell(node, i+1))
	}
	setLeafNumCells(node, numCells-1)
	return t.mergeOrRedistribute(pageNum)
}

// mergeOrRedistribute restores the minimum-fill invariant on a node after a
// removal, borrowing from a sibling when it can spare an entry and merging
// otherwise. Merges remove a separator from the parent and recurse upward.
func (t *Table) mergeOrRedistribute(pageNum uint32) error {
	node, err := t.pager.GetPage(pageNum)
	if err != nil {
		return err
	}
	if isNodeRoot(node) {
		return t.adjustRoot()
	}

	if nodeType(node) == NodeLeaf {
		if leafNumCells(node) >= LeafNodeMinCells {
			return nil
		}
	} else if internalNumKeys(node) >= InternalNodeMinCells {
		return nil
	}

	parentPageNum := nodeParent(node)
	parent, err := t.pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	if nodeType(node) == NodeLeaf {
		return t.rebalanceLeaf(pageNum, node, parentPageNum, parent)
	}
	return t.rebalanceInternal(pageNum, node, parentPageNum, parent)
}

// childIndex locates pageNum among the parent's cell children.
func childIndex(parent []byte, pageNum uint32) (uint32, error) {
	numKeys := internalNumKeys(parent)
	for i := uint32(0); i < numKeys; i++ {
		child, err := internalChild(parent, i)
		if err != nil {
			return 0, err
		}
		if child == pageNum {
			return i, nil
		}
	}
	return 0, errors.Errorf("page %d is not a child of its parent", pageNum)
}

func (t *Table) rebalanceLeaf(pageNum uint32, node []byte, parentPageNum uint32, parent []byte) error {
	numKeys := internalNumKeys(parent)

	if internalRightChild(parent) == pageNum {
		// Rightmost child: the only sibling under this parent is on the left.
		sepIdx := numKeys - 1
		sibPageNum, err := internalChild(parent, sepIdx)
		if err != nil {
			return err
		}
		sib, err := t.pager.GetPage(sibPageNum)
		if err != nil {
			return err
		}
		if leafNumCells(sib) > LeafNodeMinCells {
			t.leafBorrowFromLeft(node, sib, parent, sepIdx)
			return nil
		}
		return t.leafMerge(parentPageNum, parent, sibPageNum, sib, node, sepIdx)
	}

	sepIdx, err := childIndex(parent, pageNum)
	if err != nil {
		return err
	}
	sibPageNum := leafNextLeaf(node)
	if sibPageNum == 0 {
		return errors.Errorf("leaf %d has no right sibling under parent %d", pageNum, parentPageNum)
	}
	sib, err := t.pager.GetPage(sibPageNum)
	if err != nil {
		return err
	}
	if leafNumCells(sib) > LeafNodeMinCells {
		t.leafBorrowFromRight(node, sib, parent, sepIdx)
		return nil
	}
	return t.leafMerge(parentPageNum, parent, pageNum, node, sib, sepIdx)
}

// leafBorrowFromRight moves the right sibling's first cell to the end of
// node; the separator becomes the sibling's new first key.
func (t *Table) leafBorrowFromRight(node, sib, parent []byte, sepIdx uint32) {
	n := leafNumCells(node)
	copy(leafCell(node, n), leafCell(sib, 0))
	setLeafNumCells(node, n+1)

	sn := leafNumCells(sib)
	for i := uint32(0); i+1 < sn; i++ {
		copy(leafCell(sib, i), leafCell(sib, i+1))
	}
	setLeafNumCells(sib, sn-1)
	setInternalKey(parent, sepIdx, leafKey(sib, 0))
}

// leafBorrowFromLeft moves the left sibling's last cell to the front of
// node; the separator becomes the sibling's new last key.
func (t *Table) leafBorrowFromLeft(node, sib, parent []byte, sepIdx uint32) {
	n := leafNumCells(node)
	for i := n; i > 0; i-- {
		copy(leafCell(node, i), leafCell(node, i-1))
	}
	sn := leafNumCells(sib)
	copy(leafCell(node, 0), leafCell(sib, sn-1))
	setLeafNumCells(node, n+1)
	setLeafNumCells(sib, sn-1)
	setInternalKey(parent, sepIdx, leafKey(sib, sn-2))
}

// leafMerge folds the right leaf into the left, relinks the chain, removes
// the separating entry from the parent, and recurses into it. The emptied
// right page becomes unreferenced; its storage leaks by design of the
// no-free-list format.
func (t *Table) leafMerge(parentPageNum uint32, parent []byte, leftPageNum uint32, left, right []byte, sepIdx uint32) error {
	n := leafNumCells(left)
	rn := leafNumCells(right)
	for i := uint32(0); i < rn; i++ {
		copy(leafCell(left, n+i), leafCell(right, i))
	}
	setLeafNumCells(left, n+rn)
	setLeafNextLeaf(left, leafNextLeaf(right))
	setLeafNumCells(right, 0)
	setLeafNextLeaf(right, 0)

	t.log.Debug("leaf merge", zap.Uint32("into", leftPageNum))
	removeSeparator(parent, sepIdx, leftPageNum)
	return t.mergeOrRedistribute(parentPageNum)
}

// removeSeparator drops the separator at sepIdx together with the right
// member of the pair it separates; the surviving left child keeps its slot.
func removeSeparator(parent []byte, sepIdx, leftPageNum uint32) {
	numKeys := internalNumKeys(parent)
	if sepIdx == numKeys-1 {
		// The right member was the rightmost-child pointer.
		setInternalRightChild(parent, leftPageNum)
	} else {
		for i := sepIdx; i+1 < numKeys; i++ {
			copy(internalCell(parent, i), internalCell(parent, i+1))
		}
		setInternalChild(parent, sepIdx, leftPageNum)
	}
	setInternalNumKeys(parent, numKeys-1)
}

func (t *Table) rebalanceInternal(pageNum uint32, node []byte, parentPageNum uint32, parent []byte) error {
	numKeys := internalNumKeys(parent)

	if internalRightChild(parent) == pageNum {
		sepIdx := numKeys - 1
		sibPageNum, err := internalChild(parent, sepIdx)
		if err != nil {
			return err
		}
		sib, err := t.pager.GetPage(sibPageNum)
		if err != nil {
			return err
		}
		if internalNumKeys(sib) > InternalNodeMinCells {
			return t.internalBorrowFromLeft(pageNum, node, sib, parent, sepIdx)
		}
		return t.internalMerge(parentPageNum, parent, sibPageNum, sib, node, sepIdx)
	}

	sepIdx, err := childIndex(parent, pageNum)
	if err != nil {
		return err
	}
	sibPageNum, err := internalChild(parent, sepIdx+1)
	if err != nil {
		return err
	}
	sib, err := t.pager.GetPage(sibPageNum)
	if err != nil {
		return err
	}
	if internalNumKeys(sib) > InternalNodeMinCells {
		return t.internalBorrowFromRight(pageNum, node, sib, parent, sepIdx)
	}
	return t.internalMerge(parentPageNum, parent, pageNum, node, sib, sepIdx)
}

// internalBorrowFromLeft pulls the parent separator down as the node's first
// key, adopting the left sibling's rightmost child; the sibling's last key
// replaces the separator.
func (t *Table) internalBorrowFromLeft(pageNum uint32, node, sib, parent []byte, sepIdx uint32) error {
	n := internalNumKeys(node)
	for i := n; i > 0; i-- {
		copy(internalCell(node, i), internalCell(node, i-1))
	}
	moved := internalRightChild(sib)
	setInternalChild(node, 0, moved)
	setInternalKey(node, 0, internalKey(parent, sepIdx))
	setInternalNumKeys(node, n+1)

	child, err := t.pager.GetPage(moved)
	if err != nil {
		return err
	}
	setNodeParent(child, pageNum)

	sn := internalNumKeys(sib)
	lastChild, err := internalChild(sib, sn-1)
	if err != nil {
		return err
	}
	setInternalKey(parent, sepIdx, internalKey(sib, sn-1))
	setInternalRightChild(sib, lastChild)
	setInternalNumKeys(sib, sn-1)
	return nil
}

// internalBorrowFromRight is the mirror image: the separator comes down as
// the node's last key over its former rightmost child, and the right
// sibling's first entry rotates through.
func (t *Table) internalBorrowFromRight(pageNum uint32, node, sib, parent []byte, sepIdx uint32) error {
	n := internalNumKeys(node)
	setInternalChild(node, n, internalRightChild(node))
	setInternalKey(node, n, internalKey(parent, sepIdx))
	setInternalNumKeys(node, n+1)

	moved, err := internalChild(sib, 0)
	if err != nil {
		return err
	}
	setInternalRightChild(node, moved)
	child, err := t.pager.GetPage(moved)
	if err != nil {
		return err
	}
	setNodeParent(child, pageNum)

	setInternalKey(parent, sepIdx, internalKey(sib, 0))
	sn := internalNumKeys(sib)
	for i := uint32(0); i+1 < sn; i++ {
		copy(internalCell(sib, i), internalCell(sib, i+1))
	}
	setInternalNumKeys(sib, sn-1)
	return nil
}

// internalMerge pulls the separator into the left node over its former
// rightmost child, appends the right node wholesale, and recurses into the
// parent.
func (t *Table) internalMerge(parentPageNum uint32, parent []byte, leftPageNum uint32, left, right []byte, sepIdx uint32) error {
	n := internalNumKeys(left)
	setInternalChild(left, n, internalRightChild(left))
	setInternalKey(left, n, internalKey(parent, sepIdx))
	n++

	rn := internalNumKeys(right)
	for i := uint32(0); i < rn; i++ {
		copy(internalCell(left, n+i), internalCell(right, i))
	}
	setInternalNumKeys(left, n+rn)
	setInternalRightChild(left, internalRightChild(right))
	setInternalNumKeys(right, 0)
	setInternalRightChild(right, 0)

	if err := t.reparentChildren(left, leftPageNum); err != nil {
		return err
	}
	t.log.Debug("internal merge", zap.Uint32("into", leftPageNum))
	removeSeparator(parent, sepIdx, leftPageNum)
	return t.mergeOrRedistribute(parentPageNum)
}

// adjustRoot settles the root after deletions. An empty leaf root stays in
// place: page 0 is never deallocated. An internal root drained to zero keys
// is replaced by a copy of its sole surviving child, shrinking the tree by
// one level; the child's old page becomes unreferenced.
func (t *Table) adjustRoot() error {
	root, err := t.pager.GetPage(t.rootPageNum)
	if err != nil {
		return err
	}
	if nodeType(root) == NodeLeaf {
		return nil
	}
	if internalNumKeys(root) > 0 {
		return nil
	}

	survivor := internalRightChild(root)
	child, err := t.pager.GetPage(survivor)
	if err != nil {
		return err
	}
	copy(root, child)
	setNodeRoot(root, true)
	setNodeParent(root, 0)
	if nodeType(root) == NodeInternal {
		if err := t.reparentChildren(root, t.rootPageNum); err != nil {
			return err
		}
	}
	t.log.Debug("root collapsed", zap.Uint32("fromPage", survivor))
	return nil
}

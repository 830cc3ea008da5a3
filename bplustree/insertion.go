package bplus

import (
	"myjql/types"

	"go.uber.org/zap"
)

// Insert adds one row. Duplicate keys are permitted; the new cell lands at
// the leftmost position among its equals.
func (t *Table) Insert(row *types.Row) error {
	key := types.SerializeKey(row.B)
	cursor, err := t.Find(key)
	if err != nil {
		return err
	}

	node, err := t.pager.GetPage(cursor.pageNum)
	if err != nil {
		return err
	}
	if leafNumCells(node) >= LeafNodeMaxCells {
		return t.leafSplitAndInsert(cursor, row)
	}
	return t.leafInsert(cursor, row)
}

// leafInsert writes the row into a leaf that still has room, shifting the
// tail of the cell array right by one.
func (t *Table) leafInsert(cursor *Cursor, row *types.Row) error {
	node, err := t.pager.GetPage(cursor.pageNum)
	if err != nil {
		return err
	}
	numCells := leafNumCells(node)
	for i := numCells; i > cursor.cellNum; i-- {
		copy(leafCell(node, i), leafCell(node, i-1))
	}
	setLeafNumCells(node, numCells+1)
	types.SerializeRow(row, leafCell(node, cursor.cellNum))
	return nil
}

// leafSplitAndInsert distributes the full leaf's cells plus the incoming row
// across the old node and a freshly allocated right sibling, then lifts the
// old node's new maximum into the parent.
func (t *Table) leafSplitAndInsert(cursor *Cursor, row *types.Row) error {
	oldNode, err := t.pager.GetPage(cursor.pageNum)
	if err != nil {
		return err
	}
	newPageNum := t.pager.UnusedPageNum()
	newNode, err := t.pager.GetPage(newPageNum)
	if err != nil {
		return err
	}
	initializeLeafNode(newNode)
	setNodeParent(newNode, nodeParent(oldNode))
	setLeafNextLeaf(newNode, leafNextLeaf(oldNode))
	setLeafNextLeaf(oldNode, newPageNum)

	// Walk the MaxCells+1 logical cells from the top down, placing each in
	// its destination half; the incoming row occupies its sorted index.
	for i := int(LeafNodeMaxCells); i >= 0; i-- {
		var dest []byte
		indexWithinNode := uint32(i)
		if i >= LeafNodeLeftSplitCount {
			dest = newNode
			indexWithinNode = uint32(i - LeafNodeLeftSplitCount)
		} else {
			dest = oldNode
		}
		cell := leafCell(dest, indexWithinNode)

		switch {
		case uint32(i) == cursor.cellNum:
			types.SerializeRow(row, cell)
		case uint32(i) > cursor.cellNum:
			copy(cell, leafCell(oldNode, uint32(i-1)))
		default:
			copy(cell, leafCell(oldNode, uint32(i)))
		}
	}
	setLeafNumCells(oldNode, LeafNodeLeftSplitCount)
	setLeafNumCells(newNode, LeafNodeRightSplitCount)

	t.log.Debug("leaf split",
		zap.Uint32("left", cursor.pageNum),
		zap.Uint32("right", newPageNum))

	if isNodeRoot(oldNode) {
		return t.createNewRoot(newPageNum)
	}
	return t.internalInsert(nodeParent(oldNode), cursor.pageNum, newPageNum, cloneKey(maxKey(oldNode)))
}

// createNewRoot handles splitting the root: the old root's contents move to
// a freshly allocated left page, and page 0 is re-initialized as an internal
// node over the two halves.
func (t *Table) createNewRoot(rightChildPageNum uint32) error {
	root, err := t.pager.GetPage(t.rootPageNum)
	if err != nil {
		return err
	}
	rightChild, err := t.pager.GetPage(rightChildPageNum)
	if err != nil {
		return err
	}
	leftChildPageNum := t.pager.UnusedPageNum()
	leftChild, err := t.pager.GetPage(leftChildPageNum)
	if err != nil {
		return err
	}

	copy(leftChild, root)
	setNodeRoot(leftChild, false)
	if nodeType(leftChild) == NodeInternal {
		if err := t.reparentChildren(leftChild, leftChildPageNum); err != nil {
			return err
		}
	}

	initializeInternalNode(root)
	setNodeRoot(root, true)
	setInternalNumKeys(root, 1)
	setInternalChild(root, 0, leftChildPageNum)
	setInternalKey(root, 0, maxKey(leftChild))
	setInternalRightChild(root, rightChildPageNum)
	setNodeParent(leftChild, t.rootPageNum)
	setNodeParent(rightChild, t.rootPageNum)

	t.log.Debug("new root",
		zap.Uint32("left", leftChildPageNum),
		zap.Uint32("right", rightChildPageNum))
	return nil
}

// reparentChildren points every child of an internal node back at its new
// page number.
func (t *Table) reparentChildren(node []byte, pageNum uint32) error {
	numKeys := internalNumKeys(node)
	for i := uint32(0); i <= numKeys; i++ {
		childNum, err := internalChild(node, i)
		if err != nil {
			return err
		}
		child, err := t.pager.GetPage(childNum)
		if err != nil {
			return err
		}
		setNodeParent(child, pageNum)
	}
	return nil
}

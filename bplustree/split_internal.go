package bplus

import "go.uber.org/zap"

// splitInternal divides an overfull internal node, promoting its middle key.
// The left half keeps the node's page (its rightmost pointer taken from the
// middle cell's child); the right half moves to a fresh page. A splitting
// root is rebuilt in place over two freshly allocated halves.
func (t *Table) splitInternal(pageNum uint32) error {
	node, err := t.pager.GetPage(pageNum)
	if err != nil {
		return err
	}
	numKeys := internalNumKeys(node)
	leftCount := numKeys / 2
	midCell := internalCell(node, leftCount)
	liftedKey := cloneKey(midCell[internalChildSize:])
	midChild, err := internalChild(node, leftCount)
	if err != nil {
		return err
	}

	if pageNum == t.rootPageNum {
		leftPageNum := t.pager.UnusedPageNum()
		left, err := t.pager.GetPage(leftPageNum)
		if err != nil {
			return err
		}
		initializeInternalNode(left)
		for i := uint32(0); i < leftCount; i++ {
			copy(internalCell(left, i), internalCell(node, i))
		}
		setInternalNumKeys(left, leftCount)
		setInternalRightChild(left, midChild)

		rightPageNum := t.pager.UnusedPageNum()
		right, err := t.pager.GetPage(rightPageNum)
		if err != nil {
			return err
		}
		initializeInternalNode(right)
		for i := leftCount + 1; i < numKeys; i++ {
			copy(internalCell(right, i-leftCount-1), internalCell(node, i))
		}
		setInternalNumKeys(right, numKeys-leftCount-1)
		setInternalRightChild(right, internalRightChild(node))

		initializeInternalNode(node)
		setNodeRoot(node, true)
		setInternalNumKeys(node, 1)
		setInternalChild(node, 0, leftPageNum)
		setInternalKey(node, 0, liftedKey)
		setInternalRightChild(node, rightPageNum)
		setNodeParent(left, pageNum)
		setNodeParent(right, pageNum)

		if err := t.reparentChildren(left, leftPageNum); err != nil {
			return err
		}
		if err := t.reparentChildren(right, rightPageNum); err != nil {
			return err
		}
		t.log.Debug("internal root split",
			zap.Uint32("left", leftPageNum),
			zap.Uint32("right", rightPageNum))
		return nil
	}

	rightPageNum := t.pager.UnusedPageNum()
	right, err := t.pager.GetPage(rightPageNum)
	if err != nil {
		return err
	}
	initializeInternalNode(right)
	setNodeParent(right, nodeParent(node))
	for i := leftCount + 1; i < numKeys; i++ {
		copy(internalCell(right, i-leftCount-1), internalCell(node, i))
	}
	setInternalNumKeys(right, numKeys-leftCount-1)
	setInternalRightChild(right, internalRightChild(node))

	setInternalNumKeys(node, leftCount)
	setInternalRightChild(node, midChild)

	if err := t.reparentChildren(right, rightPageNum); err != nil {
		return err
	}
	t.log.Debug("internal split",
		zap.Uint32("left", pageNum),
		zap.Uint32("right", rightPageNum))
	return t.internalInsert(nodeParent(node), pageNum, rightPageNum, liftedKey)
}

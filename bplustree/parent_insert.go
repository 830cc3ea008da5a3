package bplus

import "github.com/pkg/errors"

// internalInsert installs liftedKey and a new right child into the parent of
// leftPageNum after a split below. The left child is located by page
// identity rather than by key: duplicate separators make a key search
// ambiguous.
func (t *Table) internalInsert(parentPageNum, leftPageNum, rightPageNum uint32, liftedKey []byte) error {
	parent, err := t.pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	right, err := t.pager.GetPage(rightPageNum)
	if err != nil {
		return err
	}
	setNodeParent(right, parentPageNum)

	numKeys := internalNumKeys(parent)
	if internalRightChild(parent) == leftPageNum {
		// The split child was the rightmost: it becomes cell N with the
		// lifted key, and the new node takes over the rightmost slot.
		setInternalChild(parent, numKeys, leftPageNum)
		setInternalKey(parent, numKeys, liftedKey)
		setInternalRightChild(parent, rightPageNum)
	} else {
		index := uint32(0)
		found := false
		for i := uint32(0); i < numKeys; i++ {
			child, err := internalChild(parent, i)
			if err != nil {
				return err
			}
			if child == leftPageNum {
				index = i
				found = true
				break
			}
		}
		if !found {
			return errors.Errorf("page %d is not a child of its parent %d", leftPageNum, parentPageNum)
		}
		// Shift right; the copy of the old cell keeps the old separator and
		// now points at the new right node, while the left child takes the
		// lifted key.
		for i := numKeys; i > index; i-- {
			copy(internalCell(parent, i), internalCell(parent, i-1))
		}
		setInternalChild(parent, index, leftPageNum)
		setInternalKey(parent, index, liftedKey)
		setInternalChild(parent, index+1, rightPageNum)
	}
	setInternalNumKeys(parent, numKeys+1)

	if numKeys+1 > InternalNodeMaxCells {
		return t.splitInternal(parentPageNum)
	}
	return nil
}

package bplus

import "bytes"

// EndOfTable reports whether the cursor has run off the last leaf cell.
func (c *Cursor) EndOfTable() bool {
	return c.endOfTable
}

// Key returns a view of the 12-byte key under the cursor.
func (c *Cursor) Key() ([]byte, error) {
	node, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return nil, err
	}
	return leafKey(node, c.cellNum), nil
}

// Value returns a view of the 16-byte row payload under the cursor.
func (c *Cursor) Value() ([]byte, error) {
	node, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return nil, err
	}
	return leafValue(node, c.cellNum), nil
}

// KeyEquals reports whether the cursor sits on a cell whose key equals key.
// A cursor parked on an insertion position (past the last cell) matches
// nothing.
func (c *Cursor) KeyEquals(key []byte) (bool, error) {
	if c.endOfTable {
		return false, nil
	}
	node, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return false, err
	}
	if c.cellNum >= leafNumCells(node) {
		return false, nil
	}
	return bytes.Equal(leafKey(node, c.cellNum), key), nil
}

// Advance steps to the next cell in key order, following the leaf chain
// across node boundaries.
func (c *Cursor) Advance() error {
	node, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return err
	}
	c.cellNum++
	if c.cellNum >= leafNumCells(node) {
		next := leafNextLeaf(node)
		if next == 0 {
			c.endOfTable = true
		} else {
			c.pageNum = next
			c.cellNum = 0
		}
	}
	return nil
}

// settle moves a cursor parked past the last cell of a leaf onto the first
// cell of the next one. Find can land there when a separator key exceeds
// the child's maximum, which happens once deletions or redistributions have
// removed or moved the child's largest cells.
func (c *Cursor) settle() error {
	for {
		node, err := c.table.pager.GetPage(c.pageNum)
		if err != nil {
			return err
		}
		if c.cellNum < leafNumCells(node) {
			return nil
		}
		next := leafNextLeaf(node)
		if next == 0 {
			c.endOfTable = true
			return nil
		}
		c.pageNum = next
		c.cellNum = 0
	}
}

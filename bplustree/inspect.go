// Package bplus: database file inspection for debugging.
// Use Dump(path, w) for offline files, or Table.DumpTo on a live table.

package bplus

import (
	"bytes"
	"fmt"
	"io"

	"myjql/types"
)

// Dump opens a database file and writes a human-readable dump of its node
// structure to w.
func Dump(path string, w io.Writer) error {
	table, err := Open(path, nil)
	if err != nil {
		return err
	}
	defer table.Close()
	return table.DumpTo(w)
}

// DumpTo writes the tree level by level: each internal node's separators and
// children, each leaf's cells as key -> a.
func (t *Table) DumpTo(w io.Writer) error {
	p := func(format string, args ...interface{}) { fmt.Fprintf(w, format, args...) }

	p("Tree (%d pages):\n", t.pager.NumPages())

	queue := []uint32{t.rootPageNum}
	level := 0
	for len(queue) > 0 {
		size := len(queue)
		p("  Level %d:\n", level)
		for i := 0; i < size; i++ {
			pageNum := queue[i]
			node, err := t.pager.GetPage(pageNum)
			if err != nil {
				return err
			}
			if nodeType(node) == NodeInternal {
				numKeys := internalNumKeys(node)
				keys := make([]string, numKeys)
				children := make([]uint32, 0, numKeys+1)
				for j := uint32(0); j < numKeys; j++ {
					keys[j] = formatKey(internalKey(node, j))
					child, err := internalChild(node, j)
					if err != nil {
						return err
					}
					children = append(children, child)
					queue = append(queue, child)
				}
				right := internalRightChild(node)
				children = append(children, right)
				queue = append(queue, right)
				p("    [page %d] INTERNAL keys=%v children=%v\n", pageNum, keys, children)
			} else {
				numCells := leafNumCells(node)
				p("    [page %d] LEAF numCells=%d next=%d\n", pageNum, numCells, leafNextLeaf(node))
				for j := uint32(0); j < numCells; j++ {
					var row types.Row
					types.DeserializeRow(leafValue(node, j), &row)
					p("      %s -> %d\n", formatKey(leafKey(node, j)), row.A)
				}
			}
		}
		p("  ---\n")
		queue = queue[size:]
		level++
	}
	return nil
}

// formatKey strips the zero padding for display.
func formatKey(key []byte) string {
	if i := bytes.IndexByte(key, 0); i >= 0 {
		key = key[:i]
	}
	return fmt.Sprintf("%q", string(key))
}

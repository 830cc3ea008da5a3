package bplus

import (
	"fmt"
	"path/filepath"
	"testing"

	"myjql/types"
)

func TestDeleteSingleKey(t *testing.T) {
	table := mustOpen(t, filepath.Join(t.TempDir(), "test.db"))
	defer table.Close()

	for i := 0; i < 300; i++ {
		insertRow(t, table, uint32(i), fmt.Sprintf("k%03d", i))
	}

	deleted, err := table.Delete(types.SerializeKey("k150"))
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("Deleted %d rows, want 1", deleted)
	}
	validateTree(t, table)

	rows, err := table.SelectEqual("k150")
	if err != nil {
		t.Fatalf("SelectEqual failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("k150 still present after delete: %v", rows)
	}
	all, err := table.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(all) != 299 {
		t.Fatalf("Expected 299 rows, got %d", len(all))
	}
}

func TestDeleteMissingKeyIsNoOp(t *testing.T) {
	table := mustOpen(t, filepath.Join(t.TempDir(), "test.db"))
	defer table.Close()

	insertRow(t, table, 1, "apple")
	deleted, err := table.Delete(types.SerializeKey("banana"))
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("Deleted %d rows, want 0", deleted)
	}
	rows, err := table.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected the table untouched, got %d rows", len(rows))
	}
}

func TestDeleteAllDuplicates(t *testing.T) {
	table := mustOpen(t, filepath.Join(t.TempDir(), "test.db"))
	defer table.Close()

	const n = 300
	for i := 0; i < n; i++ {
		insertRow(t, table, uint32(i), "dup")
	}
	validateTree(t, table)

	rows, err := table.SelectEqual("dup")
	if err != nil {
		t.Fatalf("SelectEqual failed: %v", err)
	}
	if len(rows) != n {
		t.Fatalf("Expected %d duplicates, got %d", n, len(rows))
	}
	seen := make(map[uint32]bool, n)
	for _, r := range rows {
		seen[r.A] = true
	}
	if len(seen) != n {
		t.Fatalf("Duplicate scan lost rows: %d distinct a values", len(seen))
	}

	deleted, err := table.Delete(types.SerializeKey("dup"))
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != n {
		t.Fatalf("Deleted %d rows, want %d", deleted, n)
	}

	left, err := table.SelectEqual("dup")
	if err != nil {
		t.Fatalf("SelectEqual failed: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("%d duplicates survived the delete", len(left))
	}

	// The tree must be back to a single empty root leaf.
	root, err := table.pager.GetPage(0)
	if err != nil {
		t.Fatalf("Failed to get root: %v", err)
	}
	if nodeType(root) != NodeLeaf || !isNodeRoot(root) {
		t.Error("Expected page 0 to be a leaf root again")
	}
	if leafNumCells(root) != 0 {
		t.Errorf("Expected an empty root leaf, got %d cells", leafNumCells(root))
	}
}

func TestDeleteEmptiesRootLeafInPlace(t *testing.T) {
	table := mustOpen(t, filepath.Join(t.TempDir(), "test.db"))
	defer table.Close()

	insertRow(t, table, 1, "apple")
	if _, err := table.Delete(types.SerializeKey("apple")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if table.pager.NumPages() != 1 {
		t.Errorf("Root page must not be deallocated, have %d pages", table.pager.NumPages())
	}
	rows, err := table.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("Expected an empty table, got %v", rows)
	}

	// The empty root leaf keeps accepting inserts.
	insertRow(t, table, 2, "pear")
	rows, err = table.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(rows) != 1 || rows[0].B != "pear" {
		t.Fatalf("Expected (2, pear), got %v", rows)
	}
}

func TestDuplicatesAcrossLeafBoundaries(t *testing.T) {
	table := mustOpen(t, filepath.Join(t.TempDir(), "test.db"))
	defer table.Close()

	// Pad both sides of a run of duplicates so it straddles leaves.
	for i := 0; i < 200; i++ {
		insertRow(t, table, uint32(i), fmt.Sprintf("a%03d", i))
	}
	for i := 0; i < 300; i++ {
		insertRow(t, table, uint32(1000+i), "mmm")
	}
	for i := 0; i < 200; i++ {
		insertRow(t, table, uint32(i), fmt.Sprintf("z%03d", i))
	}
	validateTree(t, table)

	rows, err := table.SelectEqual("mmm")
	if err != nil {
		t.Fatalf("SelectEqual failed: %v", err)
	}
	if len(rows) != 300 {
		t.Fatalf("Expected 300 mmm rows, got %d", len(rows))
	}

	deleted, err := table.Delete(types.SerializeKey("mmm"))
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 300 {
		t.Fatalf("Deleted %d rows, want 300", deleted)
	}
	validateTree(t, table)

	all, err := table.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(all) != 400 {
		t.Fatalf("Expected 400 rows left, got %d", len(all))
	}
}

package executor

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bplus "myjql/bplustree"
)

func newTestVM(t *testing.T) (*VM, *bytes.Buffer) {
	t.Helper()
	table, err := bplus.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { table.Close() })

	var out bytes.Buffer
	vm, err := NewVM(table, &out, nil)
	require.NoError(t, err)
	t.Cleanup(vm.Close)
	return vm, &out
}

func run(t *testing.T, vm *VM, line string) {
	t.Helper()
	stmt, err := Prepare(line)
	require.NoError(t, err, "prepare %q", line)
	require.NoError(t, vm.Execute(stmt), "execute %q", line)
}

func TestInsertThenSelect(t *testing.T) {
	vm, out := newTestVM(t)

	run(t, vm, "insert 1 apple")
	run(t, vm, "insert 2 banana")
	out.Reset()

	run(t, vm, "select")
	assert.Equal(t, "(1, apple)\n(2, banana)\n\nExecuted.\n\n", out.String())
}

func TestSelectEmptyTable(t *testing.T) {
	vm, out := newTestVM(t)

	run(t, vm, "select")
	assert.Equal(t, "(Empty)\n\nExecuted.\n\n", out.String())
}

func TestSelectByKey(t *testing.T) {
	vm, out := newTestVM(t)

	run(t, vm, "insert 1 apple")
	run(t, vm, "insert 2 apple")
	out.Reset()

	run(t, vm, "select apple")
	got := out.String()
	assert.Contains(t, got, "apple)\n")
	assert.Contains(t, got, "\nExecuted.\n\n")
	assert.Equal(t, 2, bytes.Count([]byte(got), []byte("apple")))

	out.Reset()
	run(t, vm, "select banana")
	assert.Equal(t, "(Empty)\n\nExecuted.\n\n", out.String())
}

func TestDeleteStatement(t *testing.T) {
	vm, out := newTestVM(t)

	run(t, vm, "insert 1 apple")
	run(t, vm, "insert 2 apple")
	run(t, vm, "insert 3 pear")
	run(t, vm, "delete apple")
	out.Reset()

	run(t, vm, "select apple")
	assert.Equal(t, "(Empty)\n\nExecuted.\n\n", out.String())

	out.Reset()
	run(t, vm, "select")
	assert.Equal(t, "(3, pear)\n\nExecuted.\n\n", out.String())
}

// The result cache must never serve rows across a mutation of their key.
func TestSelectCacheInvalidation(t *testing.T) {
	vm, out := newTestVM(t)

	run(t, vm, "insert 1 apple")
	run(t, vm, "select apple")
	vm.cache.Wait()

	run(t, vm, "insert 2 apple")
	out.Reset()
	run(t, vm, "select apple")
	got := out.String()
	assert.Equal(t, 2, bytes.Count([]byte(got), []byte("apple")), "output: %q", got)

	run(t, vm, "delete apple")
	out.Reset()
	run(t, vm, "select apple")
	assert.Equal(t, "(Empty)\n\nExecuted.\n\n", out.String())
}

func TestMetaConstants(t *testing.T) {
	vm, out := newTestVM(t)

	require.NoError(t, vm.ExecuteMeta(".constants"))
	want := "Constants:\n" +
		"ROW_SIZE: 16\n" +
		"COMMON_NODE_HEADER_SIZE: 6\n" +
		"LEAF_NODE_HEADER_SIZE: 14\n" +
		"LEAF_NODE_CELL_SIZE: 16\n" +
		"LEAF_NODE_SPACE_FOR_CELLS: 4082\n" +
		"LEAF_NODE_MAX_CELLS: 254\n"
	assert.Equal(t, want, out.String())
}

func TestMetaExitAndUnrecognized(t *testing.T) {
	vm, out := newTestVM(t)

	assert.ErrorIs(t, vm.ExecuteMeta(".exit"), ErrExit)

	require.NoError(t, vm.ExecuteMeta(".bogus"))
	assert.Equal(t, "Unrecognized command '.bogus'.\n", out.String())
}

func TestMetaBtreeDump(t *testing.T) {
	vm, out := newTestVM(t)

	run(t, vm, "insert 1 apple")
	out.Reset()
	require.NoError(t, vm.ExecuteMeta(".btree"))
	assert.Contains(t, out.String(), "LEAF")
	assert.Contains(t, out.String(), `"apple" -> 1`)
}

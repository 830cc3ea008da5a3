package executor

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	bplus "myjql/bplustree"
	"myjql/types"
)

// ErrExit is returned by ExecuteMeta when the session should terminate.
var ErrExit = errors.New("exit")

// VM dispatches prepared statements onto the B+ tree and formats results.
// All protocol output goes through out; diagnostics go to the logger.
type VM struct {
	table *bplus.Table
	out   io.Writer
	cache *ResultCache
	log   *zap.Logger
}

func NewVM(table *bplus.Table, out io.Writer, log *zap.Logger) (*VM, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cache, err := NewResultCache()
	if err != nil {
		return nil, errors.Wrap(err, "result cache")
	}
	return &VM{table: table, out: out, cache: cache, log: log}, nil
}

// Close releases the result cache. The table is owned by the caller.
func (vm *VM) Close() {
	vm.cache.Close()
}

// Execute runs one statement and, on success, prints the epilogue: a blank
// line, "Executed.", a blank line.
func (vm *VM) Execute(stmt *Statement) error {
	var err error
	switch stmt.Type {
	case StatementInsert:
		err = vm.executeInsert(stmt)
	case StatementSelect:
		err = vm.executeSelect(stmt)
	case StatementDelete:
		err = vm.executeDelete(stmt)
	default:
		err = errors.Errorf("unknown statement type %d", stmt.Type)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(vm.out, "\nExecuted.\n\n")
	return nil
}

func (vm *VM) executeInsert(stmt *Statement) error {
	if err := vm.table.Insert(&stmt.Row); err != nil {
		return err
	}
	vm.cache.Invalidate(stmt.Row.B)
	return nil
}

func (vm *VM) executeSelect(stmt *Statement) error {
	if !stmt.HasKey {
		rows, err := vm.table.SelectAll()
		if err != nil {
			return err
		}
		vm.printRows(rows)
		return nil
	}

	rows, hit := vm.cache.Get(stmt.Row.B)
	if !hit {
		var err error
		rows, err = vm.table.SelectEqual(stmt.Row.B)
		if err != nil {
			return err
		}
		vm.cache.Set(stmt.Row.B, rows)
	}
	vm.printRows(rows)
	return nil
}

func (vm *VM) executeDelete(stmt *Statement) error {
	key := types.SerializeKey(stmt.Row.B)
	deleted, err := vm.table.Delete(key)
	if err != nil {
		return err
	}
	if deleted > 0 {
		vm.cache.Invalidate(stmt.Row.B)
	}
	return nil
}

func (vm *VM) printRows(rows []types.Row) {
	if len(rows) == 0 {
		fmt.Fprintf(vm.out, "(Empty)\n")
		return
	}
	for i := range rows {
		fmt.Fprintf(vm.out, "%s\n", rows[i])
	}
}

// ExecuteMeta handles dot-commands. ".exit" reports ErrExit; everything else
// handles its own output and keeps the session going.
func (vm *VM) ExecuteMeta(line string) error {
	switch line {
	case ".exit":
		return ErrExit
	case ".constants":
		vm.printConstants()
		return nil
	case ".btree":
		return vm.table.DumpTo(vm.out)
	}
	fmt.Fprintf(vm.out, "Unrecognized command '%s'.\n", line)
	return nil
}

func (vm *VM) printConstants() {
	fmt.Fprintf(vm.out, "Constants:\n")
	fmt.Fprintf(vm.out, "ROW_SIZE: %d\n", types.RowSize)
	fmt.Fprintf(vm.out, "COMMON_NODE_HEADER_SIZE: %d\n", bplus.CommonNodeHeaderSize)
	fmt.Fprintf(vm.out, "LEAF_NODE_HEADER_SIZE: %d\n", bplus.LeafNodeHeaderSize)
	fmt.Fprintf(vm.out, "LEAF_NODE_CELL_SIZE: %d\n", bplus.LeafNodeCellSize)
	fmt.Fprintf(vm.out, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", bplus.LeafNodeSpaceForCells)
	fmt.Fprintf(vm.out, "LEAF_NODE_MAX_CELLS: %d\n", bplus.LeafNodeMaxCells)
}

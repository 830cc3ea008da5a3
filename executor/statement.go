package executor

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"myjql/types"
)

type StatementType int

const (
	StatementInsert StatementType = iota
	StatementSelect
	StatementDelete
)

// Statement is one parsed command. HasKey distinguishes `select` from
// `select <b>`.
type Statement struct {
	Type   StatementType
	Row    types.Row
	HasKey bool
}

// Prepare errors; the shell maps each to its fixed message.
var (
	ErrEmptyStatement        = errors.New("empty statement")
	ErrSyntax                = errors.New("syntax error")
	ErrNegativeValue         = errors.New("column `a` must be positive")
	ErrStringTooLong         = errors.New("string for column `b` is too long")
	ErrUnrecognizedStatement = errors.New("unrecognized statement")
)

// Prepare parses one input line into a Statement.
func Prepare(line string) (*Statement, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrEmptyStatement
	}
	switch fields[0] {
	case "insert":
		return prepareInsert(fields)
	case "select":
		return prepareCondition(fields, StatementSelect)
	case "delete":
		stmt, err := prepareCondition(fields, StatementDelete)
		if err != nil {
			return nil, err
		}
		if !stmt.HasKey {
			return nil, ErrSyntax
		}
		return stmt, nil
	}
	return nil, ErrUnrecognizedStatement
}

func prepareInsert(fields []string) (*Statement, error) {
	if len(fields) < 3 {
		return nil, ErrSyntax
	}
	a, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, ErrSyntax
	}
	if a < 0 {
		return nil, ErrNegativeValue
	}
	b := fields[2]
	if len(b) > types.ColumnBSize {
		return nil, ErrStringTooLong
	}
	return &Statement{
		Type: StatementInsert,
		Row:  types.Row{A: uint32(a), B: b},
	}, nil
}

func prepareCondition(fields []string, typ StatementType) (*Statement, error) {
	stmt := &Statement{Type: typ}
	if len(fields) == 1 {
		return stmt, nil
	}
	if len(fields) > 2 {
		return nil, ErrSyntax
	}
	b := fields[1]
	if len(b) > types.ColumnBSize {
		return nil, ErrStringTooLong
	}
	stmt.Row.B = b
	stmt.HasKey = true
	return stmt, nil
}

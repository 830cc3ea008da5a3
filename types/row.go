package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// ColumnBSize is the maximum number of printable bytes in column b.
	ColumnBSize = 11

	// KeySize is the on-disk width of column b: 11 bytes plus a NUL,
	// always fully zero-padded so byte-wise comparison matches strcmp.
	KeySize = ColumnBSize + 1

	// RowSize is the serialized row: 12 bytes of b followed by 4 bytes of a.
	RowSize = KeySize + 4
)

// Row is one record of the table. Column b is the indexed key and is not
// unique; column a is an opaque unsigned payload.
type Row struct {
	A uint32 `json:"a"`
	B string `json:"b"`
}

func (r Row) String() string {
	return fmt.Sprintf("(%d, %s)", r.A, r.B)
}

// SerializeKey returns the 12-byte zero-padded key for b.
func SerializeKey(b string) []byte {
	key := make([]byte, KeySize)
	copy(key, b)
	return key
}

// SerializeRow writes the 16-byte payload into dst: b first, then a
// little-endian. dst must hold at least RowSize bytes. The first 12 bytes
// double as the cell key; there is no separate copy of it on disk.
func SerializeRow(r *Row, dst []byte) {
	for i := 0; i < KeySize; i++ {
		dst[i] = 0
	}
	copy(dst, r.B)
	binary.LittleEndian.PutUint32(dst[KeySize:RowSize], r.A)
}

// DeserializeRow is the inverse of SerializeRow. Trailing NULs of b are
// stripped.
func DeserializeRow(src []byte, r *Row) {
	b := src[:KeySize]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	r.B = string(b)
	r.A = binary.LittleEndian.Uint32(src[KeySize:RowSize])
}

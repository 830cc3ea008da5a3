package bplus

import "myjql/types"

// SelectEqual returns every row whose key equals b, in cell order.
func (t *Table) SelectEqual(b string) ([]types.Row, error) {
	key := types.SerializeKey(b)
	cursor, err := t.Find(key)
	if err != nil {
		return nil, err
	}
	if err := cursor.settle(); err != nil {
		return nil, err
	}

	var rows []types.Row
	for {
		match, err := cursor.KeyEquals(key)
		if err != nil {
			return nil, err
		}
		if !match {
			break
		}
		payload, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		var row types.Row
		types.DeserializeRow(payload, &row)
		rows = append(rows, row)
		if err := cursor.Advance(); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// SelectAll returns every row in key order by walking the leaf chain.
func (t *Table) SelectAll() ([]types.Row, error) {
	cursor, err := t.Start()
	if err != nil {
		return nil, err
	}
	var rows []types.Row
	for !cursor.EndOfTable() {
		payload, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		var row types.Row
		types.DeserializeRow(payload, &row)
		rows = append(rows, row)
		if err := cursor.Advance(); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

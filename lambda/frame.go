package lambda

import (
	"fmt"
	"strings"

	"github.com/formlio/relq/coltab"
)

// frame is the intermediate row set closures evaluate against. Columns are
// keyed by a lookup key: qualified "table.column" for scans and reference
// elements, bare output names for query results. Key order is meaningful
// and matches the producing source's feature order.
type frame struct {
	keys []string
	cols map[string][]coltab.Value
	rows int
}

func newFrame(rows int) *frame {
	return &frame{cols: make(map[string][]coltab.Value), rows: rows}
}

func (f *frame) add(key string, col []coltab.Value) error {
	if len(col) != f.rows {
		return fmt.Errorf("column %q holds %d cells, frame has %d rows", key, len(col), f.rows)
	}
	if _, ok := f.cols[key]; ok {
		return fmt.Errorf("duplicate frame column %q", key)
	}
	f.keys = append(f.keys, key)
	f.cols[key] = col
	return nil
}

func (f *frame) value(key string, row int) (coltab.Value, error) {
	col, ok := f.cols[key]
	if !ok {
		return coltab.Value{}, fmt.Errorf("unknown frame column %q", key)
	}
	if row < 0 || row >= len(col) {
		return coltab.Value{}, fmt.Errorf("row %d out of range for column %q", row, key)
	}
	return col[row], nil
}

// slice copies the given rows into a new frame with the same columns.
func (f *frame) slice(rows []int) *frame {
	out := newFrame(len(rows))
	for _, key := range f.keys {
		src := f.cols[key]
		col := make([]coltab.Value, len(rows))
		for i, r := range rows {
			col[i] = src[r]
		}
		out.keys = append(out.keys, key)
		out.cols[key] = col
	}
	return out
}

// rekey renames every column, mapping positionally.
func (f *frame) rekey(keys []string) (*frame, error) {
	if len(keys) != len(f.keys) {
		return nil, fmt.Errorf("rekey: %d keys for %d columns", len(keys), len(f.keys))
	}
	out := newFrame(f.rows)
	for i, key := range f.keys {
		if err := out.add(keys[i], f.cols[key]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// rowKey builds a deduplication key over all columns of one row.
func (f *frame) rowKey(row int) string {
	parts := make([]string, len(f.keys))
	for i, key := range f.keys {
		parts[i] = f.cols[key][row].Key()
	}
	return strings.Join(parts, "\x1f")
}

// allRows returns the index list 0..rows-1.
func (f *frame) allRows() []int {
	out := make([]int, f.rows)
	for i := range out {
		out[i] = i
	}
	return out
}

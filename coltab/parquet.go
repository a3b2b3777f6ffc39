package coltab

import (
	"fmt"
	"io"
	"os"

	parquet "github.com/parquet-go/parquet-go"
)

func loadParquet(filename string) (*Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("cannot read Parquet from %s: %w", filename, err)
	}

	fields := pf.Schema().Fields()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name()
	}
	t, err := New(columns...)
	if err != nil {
		return nil, err
	}

	buffer := make([]parquet.Row, 256)
	for _, group := range pf.RowGroups() {
		rows := group.Rows()
		for {
			n, err := rows.ReadRows(buffer)
			for _, pr := range buffer[:n] {
				row := make([]Value, len(columns))
				for i := range row {
					row[i] = Null()
				}
				for _, pv := range pr {
					if c := pv.Column(); c >= 0 && c < len(row) {
						row[c] = parquetValue(pv)
					}
				}
				if err := t.Append(row...); err != nil {
					rows.Close()
					return nil, err
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("error reading Parquet rows: %w", err)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parquetValue(v parquet.Value) Value {
	if v.IsNull() {
		return Null()
	}
	switch v.Kind() {
	case parquet.Boolean:
		return BoolVal(v.Boolean())
	case parquet.Int32:
		return IntVal(int64(v.Int32()))
	case parquet.Int64:
		return IntVal(v.Int64())
	case parquet.Float:
		return FloatVal(float64(v.Float()))
	case parquet.Double:
		return FloatVal(v.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return StrVal(string(v.ByteArray()))
	}
	return StrVal(v.String())
}

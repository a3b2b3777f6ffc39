package coltab

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	goavro "github.com/linkedin/goavro/v2"
)

// Load reads a data file into a table, dispatching on the file extension.
func Load(filename string) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return loadCSV(filename)
	case ".json":
		return loadJSON(filename)
	case ".jsonl":
		return loadJSONL(filename)
	case ".avro":
		return loadAvro(filename)
	case ".parquet":
		return loadParquet(filename)
	default:
		return nil, fmt.Errorf("unsupported file format %q (supported: .csv, .json, .jsonl, .avro, .parquet)", ext)
	}
}

func loadCSV(filename string) (*Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV header from %s: %w", filename, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	t, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}
		row := make([]Value, len(columns))
		for i := range columns {
			if i < len(record) {
				row[i] = parseCell(strings.TrimSpace(record[i]))
			} else {
				row[i] = Null()
			}
		}
		if err := t.Append(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parseCell infers the type of a CSV cell.
func parseCell(s string) Value {
	if s == "" || strings.EqualFold(s, "null") {
		return Null()
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntVal(v)
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatVal(v)
	}
	switch strings.ToLower(s) {
	case "true":
		return BoolVal(true)
	case "false":
		return BoolVal(false)
	}
	return StrVal(s)
}

func loadJSON(filename string) (*Table, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", filename, err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("cannot parse JSON from %s: %w (expected array of objects)", filename, err)
	}
	return fromRecords(records)
}

func loadJSONL(filename string) (*Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var records []map[string]any
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	return fromRecords(records)
}

// fromRecords unions the keys of all records into the column set, keeping
// first-seen order.
func fromRecords(records []map[string]any) (*Table, error) {
	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	t, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := make([]Value, len(columns))
		for i, col := range columns {
			row[i] = jsonValue(rec[col])
		}
		if err := t.Append(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func jsonValue(v any) Value {
	switch val := v.(type) {
	case float64:
		if val == float64(int64(val)) {
			return IntVal(int64(val))
		}
		return FloatVal(val)
	case string:
		return StrVal(val)
	case bool:
		return BoolVal(val)
	case nil:
		return Null()
	}
	// Nested objects and arrays are stringified.
	b, _ := json.Marshal(v)
	return StrVal(string(b))
}

func loadAvro(filename string) (*Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	ocfr, err := goavro.NewOCFReader(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read Avro OCF from %s: %w", filename, err)
	}

	var schemaDef struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(ocfr.Codec().Schema()), &schemaDef); err != nil {
		return nil, fmt.Errorf("cannot parse Avro schema: %w", err)
	}
	columns := make([]string, len(schemaDef.Fields))
	for i, field := range schemaDef.Fields {
		columns[i] = field.Name
	}

	t, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for ocfr.Scan() {
		datum, err := ocfr.Read()
		if err != nil {
			return nil, fmt.Errorf("error reading Avro record: %w", err)
		}
		rec, ok := datum.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected Avro record type %T", datum)
		}
		row := make([]Value, len(columns))
		for i, col := range columns {
			row[i] = avroValue(rec[col])
		}
		if err := t.Append(row...); err != nil {
			return nil, err
		}
	}
	if err := ocfr.Err(); err != nil {
		return nil, fmt.Errorf("error reading Avro file: %w", err)
	}
	return t, nil
}

func avroValue(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case int32:
		return IntVal(int64(val))
	case int64:
		return IntVal(val)
	case float32:
		return FloatVal(float64(val))
	case float64:
		return FloatVal(val)
	case string:
		return StrVal(val)
	case bool:
		return BoolVal(val)
	case []byte:
		return StrVal(string(val))
	case map[string]any:
		// Unions decode as a single {"type": value} wrapper.
		for _, inner := range val {
			return avroValue(inner)
		}
		return Null()
	}
	return StrVal(fmt.Sprintf("%v", v))
}

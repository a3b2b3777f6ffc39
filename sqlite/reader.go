package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/formlio/relq/coltab"
	"github.com/formlio/relq/dsl"
	"github.com/formlio/relq/kind"
	"github.com/formlio/relq/parser"
	"github.com/formlio/relq/sqlexpr"
)

// Reader executes compiled query sources against a SQLite database.
type Reader struct {
	db *sql.DB
}

// Open connects to the given SQLite data source. Use ":memory:" for an
// ephemeral database.
func Open(dsn string) (*Reader, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	return &Reader{db: db}, nil
}

// NewReader wraps an existing database handle. The caller keeps ownership
// of the handle.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Close releases the underlying database handle.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Read compiles the source, executes it, and materializes the result set.
func (r *Reader) Read(ctx context.Context, source dsl.Source,
	opts ...parser.Option[sqlexpr.Symbol]) (*coltab.Table, error) {
	sym, err := sqlexpr.Compile(source, opts...)
	if err != nil {
		return nil, err
	}
	query, args := sqlexpr.Render(sym)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing %q: %w", query, err)
	}
	defer rows.Close()
	return scan(rows)
}

// Load creates the table's schema in the database and inserts the feed
// rows. An existing table of the same name is replaced.
func (r *Reader) Load(ctx context.Context, table *dsl.Table, feed *coltab.Table) error {
	name := quote(table.Name())
	if _, err := r.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("dropping table %s: %w", table.Name(), err)
	}

	fields := table.Schema().Fields()
	columns := make([]string, len(fields))
	marks := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = quote(f.Name) + " " + affinity(f.Kind)
		marks[i] = "?"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(columns, ", "))
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating table %s: %w", table.Name(), err)
	}

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, strings.Join(marks, ", "))
	stmt, err := r.db.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("preparing insert into %s: %w", table.Name(), err)
	}
	defer stmt.Close()
	for row := 0; row < feed.Rows(); row++ {
		args := make([]any, len(fields))
		for i, f := range fields {
			args[i] = native(feed.Value(row, f.Name))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting into %s: %w", table.Name(), err)
		}
	}
	return nil
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// affinity maps a kind to a SQLite column affinity.
func affinity(k kind.Kind) string {
	switch {
	case k.Match(kind.Integer), k.Match(kind.Boolean):
		return "INTEGER"
	case k.Match(kind.Float), k.Match(kind.Decimal):
		return "REAL"
	case k.Match(kind.Date), k.Match(kind.Timestamp):
		return "TIMESTAMP"
	}
	return "TEXT"
}

// native unwraps a cell into a driver-bindable value.
func native(v coltab.Value) any {
	switch v.Type {
	case coltab.TypeInt:
		return v.Int
	case coltab.TypeFloat:
		return v.Float
	case coltab.TypeString:
		return v.Str
	case coltab.TypeBool:
		return v.Bool
	case coltab.TypeTime:
		return v.Time
	}
	return nil
}

// scan drains a result set into a columnar table.
func scan(rows *sql.Rows) (*coltab.Table, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading result columns: %w", err)
	}
	out, err := coltab.New(names...)
	if err != nil {
		return nil, err
	}
	cells := make([]any, len(names))
	refs := make([]any, len(names))
	for i := range cells {
		refs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(refs...); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		row := make([]coltab.Value, len(cells))
		for i, cell := range cells {
			row[i] = value(cell)
		}
		if err := out.Append(row...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("draining result rows: %w", err)
	}
	return out, nil
}

// value converts a driver value into a cell.
func value(cell any) coltab.Value {
	switch v := cell.(type) {
	case nil:
		return coltab.Null()
	case int64:
		return coltab.IntVal(v)
	case float64:
		return coltab.FloatVal(v)
	case string:
		return coltab.StrVal(v)
	case []byte:
		return coltab.StrVal(string(v))
	case bool:
		return coltab.BoolVal(v)
	case time.Time:
		return coltab.TimeVal(v)
	}
	return coltab.StrVal(fmt.Sprintf("%v", cell))
}

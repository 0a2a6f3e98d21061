package replica

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/athenaq/internal/config"
	"github.com/roach88/athenaq/internal/partition"
)

// TimestampLayout is how shipped timestamps are stored.
const TimestampLayout = time.RFC3339

// Schema describes the replicated stock table.
type Schema struct {
	Table     string
	Columns   config.StockColumns
	Partition config.PartitionConfig
}

// SchemaFromConfig takes the table layout from cfg.
func SchemaFromConfig(cfg config.Config) Schema {
	return Schema{
		Table:     cfg.Athena.Table,
		Columns:   cfg.Stock.Columns,
		Partition: cfg.Partition,
	}
}

// Replica is a local SQLite copy of the stock table, partition columns
// included, used to execute generated queries.
type Replica struct {
	db     *sql.DB
	schema Schema
}

// StockRow is one row of the stock table.
type StockRow struct {
	StockID  string
	Category string
	Name     string
	Brand    string
	Shipped  time.Time
}

// Open creates or opens a replica at path (":memory:" for a throwaway one)
// and creates the table when missing. Opening an existing replica is safe.
func Open(path string, schema Schema) (*Replica, error) {
	if schema.Table == "" {
		return nil, fmt.Errorf("replica schema has no table name")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time; a single connection also
	// keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	r := &Replica{db: db, schema: schema}
	if _, err := db.Exec(r.createTableSQL()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return r, nil
}

// Close closes the database connection.
func (r *Replica) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SeedDays inserts one row per day in [from, to] with the given template.
// StockID is suffixed with the date and Shipped is set to noon UTC of the
// day; partition columns are filled from the date. Returns the row count.
func (r *Replica) SeedDays(ctx context.Context, from, to partition.Date, row StockRow) (int, error) {
	if to.Before(from) {
		return 0, fmt.Errorf("seed range %s..%s is inverted", from, to)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.insertSQL())
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for d := from; !d.After(to); d = d.AddDays(1) {
		shipped := d.Time().Add(12 * time.Hour)
		args := []any{
			row.StockID + "-" + d.String(),
			row.Category,
			row.Name,
			row.Brand,
			shipped.Format(TimestampLayout),
		}
		args = append(args, r.partitionValues(d)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return n, fmt.Errorf("insert %s: %w", d, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return n, fmt.Errorf("commit seed: %w", err)
	}
	return n, nil
}

// Select runs a generated stock query and scans its rows.
//
// The query must project stock id, category, name, brand and shipped
// timestamp in that order, as the stock query builder does.
func (r *Replica) Select(ctx context.Context, query string, args ...any) ([]StockRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query replica: %w", err)
	}
	defer rows.Close()

	var out []StockRow
	for rows.Next() {
		var row StockRow
		var shipped string
		if err := rows.Scan(&row.StockID, &row.Category, &row.Name, &row.Brand, &shipped); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row.Shipped, err = time.Parse(TimestampLayout, shipped)
		if err != nil {
			return nil, fmt.Errorf("row %s: bad timestamp %q: %w", row.StockID, shipped, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// SelectDays runs a generated stock query and returns the distinct
// shipping days it matched, ascending.
func (r *Replica) SelectDays(ctx context.Context, query string, args ...any) ([]partition.Date, error) {
	rows, err := r.Select(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return ShippingDays(rows), nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// columns lists the table's columns: stock columns, then whichever
// partition columns are configured.
func (r *Replica) columns() []string {
	c := r.schema.Columns
	cols := []string{c.StockID, c.ProductCategory, c.ProductName, c.BrandName, c.ShippedTimestamp}
	return append(cols, r.partitionColumns()...)
}

func (r *Replica) partitionColumns() []string {
	var cols []string
	for _, name := range []string{r.schema.Partition.Year, r.schema.Partition.Month, r.schema.Partition.Day} {
		if name != "" {
			cols = append(cols, name)
		}
	}
	return cols
}

func (r *Replica) partitionValues(d partition.Date) []any {
	var vals []any
	p := r.schema.Partition
	if p.Year != "" {
		vals = append(vals, fmt.Sprintf("%d", d.Year))
	}
	if p.Month != "" {
		vals = append(vals, fmt.Sprintf("%02d", int(d.Month)))
	}
	if p.Day != "" {
		vals = append(vals, fmt.Sprintf("%02d", d.Day))
	}
	return vals
}

func (r *Replica) createTableSQL() string {
	defs := make([]string, 0, 8)
	for i, col := range r.columns() {
		def := quoteIdent(col) + " TEXT NOT NULL"
		if i == 0 {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(r.schema.Table), strings.Join(defs, ", "))
}

func (r *Replica) insertSQL() string {
	cols := r.columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(r.schema.Table), strings.Join(quoted, ", "), placeholders)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

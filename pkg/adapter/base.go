package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapetl/pkg/core"
	"github.com/leapstack-labs/leapetl/pkg/dataset"
)

// ErrNotConnected is returned by operations that need an open connection.
var ErrNotConnected = errors.New("database connection not established")

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Query and ReplaceTableTx implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return ErrNotConnected
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*core.Rows, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &core.Rows{Rows: rows}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// QuoteIdentifier quotes a single identifier with ANSI double quotes.
// SQLite, DuckDB and PostgreSQL all accept this form.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteQualified quotes a possibly schema-qualified table name.
func QuoteQualified(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses defaultSchema if not specified.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return defaultSchema, table
}

// TableDialect describes how a store spells the statements ReplaceTableTx
// issues.
type TableDialect struct {
	// Placeholder returns the bind parameter for the n-th argument (1-based).
	Placeholder func(n int) string
	// TypeFor maps an inferred column kind to a column type.
	TypeFor func(k dataset.Kind) string
}

// QuestionPlaceholder is the "?" placeholder style used by SQLite and DuckDB.
func QuestionPlaceholder(int) string {
	return "?"
}

// DollarPlaceholder is the "$n" placeholder style used by PostgreSQL.
func DollarPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// CreateTableSQL builds the CREATE TABLE statement for ds.
func CreateTableSQL(table string, ds *dataset.Dataset, kinds []dataset.Kind, d TableDialect) string {
	defs := make([]string, len(ds.Columns))
	for i, col := range ds.Columns {
		defs[i] = QuoteIdentifier(col) + " " + d.TypeFor(kinds[i])
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteQualified(table), strings.Join(defs, ", "))
}

// InsertSQL builds the parameterized INSERT statement for ds.
func InsertSQL(table string, ds *dataset.Dataset, d TableDialect) string {
	cols := make([]string, len(ds.Columns))
	params := make([]string, len(ds.Columns))
	for i, col := range ds.Columns {
		cols[i] = QuoteIdentifier(col)
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteQualified(table), strings.Join(cols, ", "), strings.Join(params, ", "))
}

// RowArgs converts a dataset row into typed insert arguments.
func RowArgs(row []dataset.Cell, kinds []dataset.Kind) ([]any, error) {
	args := make([]any, len(row))
	for i, cell := range row {
		v, err := cell.Typed(kinds[i])
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// ReplaceTableTx drops table, recreates it from the dataset's columns and
// inferred kinds, and inserts every row, all inside one transaction. On any
// error the transaction is rolled back and the previous table is untouched.
func (b *BaseSQLAdapter) ReplaceTableTx(ctx context.Context, table string, ds *dataset.Dataset, d TableDialect) (err error) {
	if b.DB == nil {
		return ErrNotConnected
	}
	if ds.Width() == 0 {
		return fmt.Errorf("cannot create table %s: dataset has no columns", table)
	}

	kinds := ds.Kinds()

	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteQualified(table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	if _, err = tx.ExecContext(ctx, CreateTableSQL(table, ds, kinds, d)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	if ds.Len() > 0 {
		if err = insertRows(ctx, tx, table, ds, kinds, d); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table %s: %w", table, err)
	}

	if b.Logger != nil {
		b.Logger.Debug("replaced table", slog.String("table", table), slog.Int("rows", ds.Len()), slog.Int("columns", ds.Width()))
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, ds *dataset.Dataset, kinds []dataset.Kind, d TableDialect) error {
	stmt, err := tx.PrepareContext(ctx, InsertSQL(table, ds, d))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range ds.Rows {
		args, err := RowArgs(row, kinds)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}
	return nil
}

// GetTableMetadataCommon provides a shared implementation of GetTableMetadata.
// Uses information_schema.columns with the given placeholder style.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, table, defaultSchema string, placeholder func(int) string) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	schema, tableName := ParseQualifiedName(table, defaultSchema)

	//nolint:gosec // Placeholders are safe - they come from the adapter
	query := fmt.Sprintf(`
		SELECT 
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns 
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, placeholder(1), placeholder(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	return &core.TableMetadata{
		Schema:   schema,
		Name:     tableName,
		Columns:  columns,
		RowCount: b.countRows(ctx, QuoteIdentifier(schema)+"."+QuoteIdentifier(tableName)),
	}, nil
}

// countRows returns the row count of a quoted table, or 0 if it can't be read.
func (b *BaseSQLAdapter) countRows(ctx context.Context, quoted string) int64 {
	var rowCount int64
	if err := b.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoted).Scan(&rowCount); err != nil { //nolint:gosec // identifiers are quoted
		return 0
	}
	return rowCount
}

// CountRows returns the number of rows in table, or 0 if it can't be read.
func (b *BaseSQLAdapter) CountRows(ctx context.Context, table string) int64 {
	if b.DB == nil {
		return 0
	}
	return b.countRows(ctx, QuoteQualified(table))
}

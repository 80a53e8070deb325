package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
)

// Extension is the file extension of a recording.
const Extension = ".sqlite3"

// QueryParams selects and orders the rows of a table.
type QueryParams struct {
	// Where is a condition without the WHERE keyword, for example
	// "Origin = ? AND FromQueue = ?".
	Where string

	// Args fill the placeholders of Where.
	Args []any

	// Limit caps the number of rows. Zero means all rows.
	Limit int

	// Offset skips rows. It only applies together with Limit.
	Offset int

	// OrderBy lists the sort columns without the ORDER BY keywords.
	OrderBy string
}

// DataReader reads a recording back.
type DataReader interface {
	// MapTable tells the reader which struct the rows of a table are scanned
	// into. A table must be mapped before it is queried.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the names of the mapped tables, sorted.
	ListTables() []string

	// Query returns pointers to the matching entries, and how many entries
	// match when Limit and Offset are ignored.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the reader.
	Close() error
}

type sqliteReader struct {
	db      *sql.DB
	typeMap map[string]reflect.Type
}

// NewReader opens a database file for reading. Tables are not mapped.
func NewReader(dbFilename string) DataReader {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		panic(err)
	}

	return NewReaderWithDB(db)
}

// NewReaderWithDB creates a reader over an opened database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		db:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

// OpenRecording opens a recording written by NewDataRecorder in read-only
// mode, with the flight tables and the execution table mapped. The
// extension can be left out of the path.
func OpenRecording(path string) (DataReader, error) {
	if !strings.HasSuffix(path, Extension) {
		path += Extension
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening recording %s: %w", path, err)
	}

	r := NewReaderWithDB(db)
	MapFlightTables(r)
	r.MapTable(ExecTable, ExecInfo{})

	return r, nil
}

// MapFlightTables maps the tables that a DepartureRecorder writes.
func MapFlightTables(r DataReader) {
	r.MapTable(DepartureTable, DepartureEntry{})
	r.MapTable(QueueTable, QueueEntry{})
	r.MapTable(LandingTable, LandingEntry{})
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.typeMap[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	tables := make([]string, 0, len(r.typeMap))
	for table := range r.typeMap {
		tables = append(tables, table)
	}

	sort.Strings(tables)

	return tables
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	entryType, ok := r.typeMap[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("table %s is not mapped", tableName)
	}

	var total int

	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+tableName+whereClause(params),
		params.Args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", tableName, err)
	}

	rows, err := r.db.QueryContext(ctx,
		selectStatement(tableName, params), params.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	results, err := scanEntries(rows, entryType)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", tableName, err)
	}

	return results, total, nil
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}

func whereClause(params QueryParams) string {
	if params.Where == "" {
		return ""
	}

	return " WHERE " + params.Where
}

func selectStatement(tableName string, params QueryParams) string {
	var b strings.Builder

	b.WriteString("SELECT * FROM ")
	b.WriteString(tableName)
	b.WriteString(whereClause(params))

	if params.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(params.OrderBy)
	}

	if params.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", params.Limit)

		if params.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", params.Offset)
		}
	}

	return b.String()
}

// scanEntries scans every row into a new entry of the given struct type.
// Columns without a field of the same name are skipped.
func scanEntries(rows *sql.Rows, entryType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var skipped any

	var entries []any

	for rows.Next() {
		entry := reflect.New(entryType)
		targets := make([]any, len(columns))

		for i, column := range columns {
			field := entry.Elem().FieldByName(column)
			if !field.IsValid() {
				targets[i] = &skipped
				continue
			}

			targets[i] = field.Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		entries = append(entries, entry.Interface())
	}

	return entries, rows.Err()
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"beacon_analyzer/internal/models"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// Expected tables and their columns, in the order they are checked.
const (
	TableBeacon      = "Beacon"
	TableBeaconEvent = "BeaconEvent"
)

// ExpectedSchema lists the relation the application reads from.
var ExpectedSchema = []struct {
	Table   string
	Columns []string
}{
	{Table: TableBeacon, Columns: []string{"Id", "Description"}},
	{Table: TableBeaconEvent, Columns: []string{
		"BeaconId",
		"DateTime",
		"ExternalSensorTemperature",
		"ExternalSensorTemperatureExt1",
		"RSSI",
	}},
}

// OpenReadOnly opens an existing SQLite file without write access and checks
// that it exposes the expected beacon/reading relation. Any failure is a
// *models.DataSourceError naming the offending element.
func OpenReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &models.DataSourceError{Path: path, Element: "path", Err: err}
	}
	fi, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &models.DataSourceError{Path: path, Element: "file does not exist"}
		}
		return nil, &models.DataSourceError{Path: path, Element: "file", Err: err}
	}
	if fi.IsDir() {
		return nil, &models.DataSourceError{Path: path, Element: "path is a directory"}
	}

	db, err := sql.Open(sqliteDriverName, readOnlyDSN(abs))
	if err != nil {
		return nil, &models.DataSourceError{Path: path, Element: "open", Err: err}
	}

	// Readers only; a small pool is enough.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	// sqlite reports a corrupt or foreign file on first read, not on open.
	var n int
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master`).Scan(&n); err != nil {
		_ = db.Close()
		return nil, &models.DataSourceError{Path: path, Element: "file is not a readable SQLite database", Err: err}
	}

	if err := ValidateSchema(ctx, db); err != nil {
		_ = db.Close()
		var dse *models.DataSourceError
		if errors.As(err, &dse) {
			dse.Path = path
			return nil, dse
		}
		return nil, &models.DataSourceError{Path: path, Element: "schema", Err: err}
	}
	return db, nil
}

// readOnlyDSN builds a file: URI so sqlite itself enforces read-only access.
func readOnlyDSN(abs string) string {
	u := url.URL{Path: filepath.ToSlash(abs)}
	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", "query_only(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	return "file:" + u.EscapedPath() + "?" + q.Encode()
}

// ValidateSchema reports the first missing table or column of ExpectedSchema.
func ValidateSchema(ctx context.Context, db *sql.DB) error {
	for _, tbl := range ExpectedSchema {
		cols, err := tableColumns(ctx, db, tbl.Table)
		if err != nil {
			return fmt.Errorf("inspect table %s: %w", tbl.Table, err)
		}
		if len(cols) == 0 {
			return &models.DataSourceError{Element: "missing table " + tbl.Table}
		}
		for _, c := range tbl.Columns {
			if _, ok := cols[strings.ToLower(c)]; !ok {
				return &models.DataSourceError{Element: fmt.Sprintf("missing column %s.%s", tbl.Table, c)}
			}
		}
	}
	return nil
}

// tableColumns returns the lower-cased column names of table; empty if it does not exist.
func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]struct{}, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = struct{}{}
	}
	return cols, rows.Err()
}

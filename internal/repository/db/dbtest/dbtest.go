// Package dbtest builds throwaway beacon databases for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Schema mirrors the capture files produced by the beacon gateway.
const Schema = `
CREATE TABLE Beacon (
    Id INTEGER PRIMARY KEY,
    Description TEXT
);
CREATE TABLE BeaconEvent (
    Id INTEGER PRIMARY KEY AUTOINCREMENT,
    BeaconId INTEGER NOT NULL REFERENCES Beacon(Id),
    DateTime TEXT NOT NULL,
    ExternalSensorTemperature REAL,
    ExternalSensorTemperatureExt1 REAL,
    RSSI INTEGER
);
`

// Event is one BeaconEvent row; nil pointers are stored as NULL.
type Event struct {
	BeaconID int
	DateTime string // "YYYY-MM-DD HH:MM:SS"
	Temp     *float64
	TempExt1 *float64
	RSSI     *int
}

// F returns a pointer to v.
func F(v float64) *float64 { return &v }

// I returns a pointer to v.
func I(v int) *int { return &v }

// Create writes a database with the standard schema, beacons (id -> description)
// and events into a temp dir and returns its path.
func Create(t *testing.T, beacons map[int]string, events []Event) string {
	t.Helper()
	path := CreateWithDDL(t, Schema)

	db := open(t, path)
	defer db.Close()

	for id, desc := range beacons {
		if _, err := db.Exec(`INSERT INTO Beacon (Id, Description) VALUES (?, ?)`, id, desc); err != nil {
			t.Fatalf("insert beacon %d: %v", id, err)
		}
	}
	for i, e := range events {
		if _, err := db.Exec(
			`INSERT INTO BeaconEvent (BeaconId, DateTime, ExternalSensorTemperature, ExternalSensorTemperatureExt1, RSSI) VALUES (?, ?, ?, ?, ?)`,
			e.BeaconID, e.DateTime, e.Temp, e.TempExt1, e.RSSI,
		); err != nil {
			t.Fatalf("insert event %d: %v", i, err)
		}
	}
	return path
}

// CreateWithDDL writes a database built from ddl and returns its path.
func CreateWithDDL(t *testing.T, ddl string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "beacons.db")

	db := open(t, path)
	defer db.Close()

	// Writing the header guarantees the file exists even for an empty ddl.
	if _, err := db.Exec(`PRAGMA user_version = 1`); err != nil {
		t.Fatalf("init sqlite file: %v", err)
	}
	if ddl != "" {
		if _, err := db.Exec(ddl); err != nil {
			t.Fatalf("apply ddl: %v", err)
		}
	}
	return path
}

func open(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite %q: %v", path, err)
	}
	return db
}

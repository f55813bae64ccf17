package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"beacon_analyzer/internal/models"
)

type BeaconSQLite struct {
	db *sql.DB
}

func NewBeaconSQLite(db *sql.DB) *BeaconSQLite { return &BeaconSQLite{db: db} }

// Ensure implementation of BeaconRepo interface at compile time.
var _ BeaconRepo = (*BeaconSQLite)(nil)

const (
	selectBeaconsSQL = `
		SELECT CAST(Id AS TEXT), COALESCE(Description, '')
		FROM Beacon
		ORDER BY Description, Id
	`

	// Stats are accumulated in Go so empty and malformed cells follow parseNullableFloat.
	selectStatsSQL = `
		SELECT CAST(BeaconId AS TEXT), ExternalSensorTemperature
		FROM BeaconEvent
		ORDER BY BeaconId
	`

	selectDateRangeSQL = `SELECT MIN(DateTime), MAX(DateTime) FROM BeaconEvent`

	// datetime() normalises the stored text so the bounds compare by instant;
	// it drops sub-second precision, which QueryReadings re-checks in Go.
	// Rows datetime() cannot read are kept so parseTimestamp reports them.
	selectReadingsSQL = `
		SELECT CAST(event.BeaconId AS TEXT), COALESCE(beacon.Description, ''), event.DateTime,
			event.ExternalSensorTemperature, event.ExternalSensorTemperatureExt1, event.RSSI
		FROM BeaconEvent event
		INNER JOIN Beacon beacon ON event.BeaconId = beacon.Id
		WHERE (datetime(event.DateTime) BETWEEN datetime(?) AND datetime(?)
				OR datetime(event.DateTime) IS NULL)
			AND CAST(event.BeaconId AS TEXT) IN (%s)
		ORDER BY event.DateTime
	`
)

// readingsQuery expands the IN clause for n beacon ids.
func readingsQuery(n int) string {
	return fmt.Sprintf(selectReadingsSQL, strings.TrimSuffix(strings.Repeat("?, ", n), ", "))
}

// ListBeacons returns every beacon ordered by description, then identifier.
func (r *BeaconSQLite) ListBeacons(ctx context.Context) ([]models.Beacon, error) {
	rows, err := r.db.QueryContext(ctx, selectBeaconsSQL)
	if err != nil {
		return nil, fmt.Errorf("select beacons: %w", err)
	}
	defer rows.Close()

	out := make([]models.Beacon, 0, 64)
	for rows.Next() {
		var b models.Beacon
		if err := rows.Scan(&b.ID, &b.Description); err != nil {
			return nil, fmt.Errorf("scan beacon row %d: %w", len(out)+1, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats returns per-beacon reading counts and mean primary temperature over the whole file.
func (r *BeaconSQLite) Stats(ctx context.Context) ([]models.BeaconStats, error) {
	rows, err := r.db.QueryContext(ctx, selectStatsSQL)
	if err != nil {
		return nil, fmt.Errorf("select beacon stats: %w", err)
	}
	defer rows.Close()

	var (
		out    = make([]models.BeaconStats, 0, 64)
		sums   = make([]float64, 0, 64)
		index  = make(map[string]int)
		rowNum int
	)
	for rows.Next() {
		rowNum++
		var (
			id  string
			raw any
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan stats row %d: %w", rowNum, err)
		}
		v, err := parseNullableFloat(raw)
		if err != nil {
			return nil, &models.FieldError{Field: "ExternalSensorTemperature", Row: rowNum, BeaconID: id, Value: raw, Err: err}
		}

		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, models.BeaconStats{BeaconID: id})
			sums = append(sums, 0)
		}
		out[i].Readings++
		if v != nil {
			out[i].TemperatureReadings++
			sums[i] += *v
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if n := out[i].TemperatureReadings; n > 0 {
			m := sums[i] / float64(n)
			out[i].MeanTemperatureC = &m
		}
	}
	return out, nil
}

// DateRange returns the earliest and latest reading timestamps; zero when there are no readings.
func (r *BeaconSQLite) DateRange(ctx context.Context) (models.Window, error) {
	var minV, maxV any
	if err := r.db.QueryRowContext(ctx, selectDateRangeSQL).Scan(&minV, &maxV); err != nil {
		return models.Window{}, fmt.Errorf("select date range: %w", err)
	}
	if minV == nil || maxV == nil {
		return models.Window{}, nil
	}
	from, err := parseTimestamp(minV)
	if err != nil {
		return models.Window{}, &models.FieldError{Field: "MIN(DateTime)", Row: 1, Value: minV, Err: err}
	}
	to, err := parseTimestamp(maxV)
	if err != nil {
		return models.Window{}, &models.FieldError{Field: "MAX(DateTime)", Row: 1, Value: maxV, Err: err}
	}
	return models.NewWindow(from, to)
}

// QueryReadings returns readings of beaconIDs inside w (inclusive), ordered by timestamp.
func (r *BeaconSQLite) QueryReadings(ctx context.Context, beaconIDs []string, w models.Window) ([]models.Reading, error) {
	if len(beaconIDs) == 0 {
		return []models.Reading{}, nil
	}

	args := make([]any, 0, len(beaconIDs)+2)
	args = append(args, w.From.UTC().Format(sqliteTimeFormat), w.To.UTC().Format(sqliteTimeFormat))
	for _, id := range beaconIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, readingsQuery(len(beaconIDs)), args...)
	if err != nil {
		return nil, fmt.Errorf("select readings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Reading, 0, 256)
	rowNum := 0
	for rows.Next() {
		rowNum++
		rd, err := scanReading(rows, rowNum)
		if err != nil {
			return nil, err
		}
		if !w.Contains(rd.Timestamp) {
			continue
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanReading decodes one joined event row, reporting bad values with their row context.
func scanReading(rows *sql.Rows, rowNum int) (models.Reading, error) {
	var (
		rd                  models.Reading
		tsV, tV, t1V, rssiV any
	)
	if err := rows.Scan(&rd.BeaconID, &rd.Description, &tsV, &tV, &t1V, &rssiV); err != nil {
		return models.Reading{}, fmt.Errorf("scan reading row %d: %w", rowNum, err)
	}

	ts, err := parseTimestamp(tsV)
	if err != nil {
		return models.Reading{}, &models.FieldError{Field: "DateTime", Row: rowNum, BeaconID: rd.BeaconID, Value: tsV, Err: err}
	}
	rd.Timestamp = ts

	fields := []struct {
		name string
		raw  any
		dst  **float64
	}{
		{"ExternalSensorTemperature", tV, &rd.TemperatureC},
		{"ExternalSensorTemperatureExt1", t1V, &rd.TemperatureExt1C},
		{"RSSI", rssiV, &rd.RSSI},
	}
	for _, f := range fields {
		v, err := parseNullableFloat(f.raw)
		if err != nil {
			return models.Reading{}, &models.FieldError{Field: f.name, Row: rowNum, BeaconID: rd.BeaconID, Value: f.raw, Err: err}
		}
		*f.dst = v
	}
	return rd, nil
}

package service

import (
	"context"
	"testing"

	"beacon_analyzer/internal/models"
)

// ---- Test doubles ----

// fakeRepo is an in-memory repository.BeaconRepo.
type fakeRepo struct {
	beacons  []models.Beacon
	stats    []models.BeaconStats
	span     models.Window
	readings []models.Reading
	err      error

	queries int
	gotIDs  []string
}

func (f *fakeRepo) ListBeacons(ctx context.Context) ([]models.Beacon, error) {
	return f.beacons, f.err
}

func (f *fakeRepo) Stats(ctx context.Context) ([]models.BeaconStats, error) {
	return f.stats, f.err
}

func (f *fakeRepo) DateRange(ctx context.Context) (models.Window, error) {
	return f.span, f.err
}

// QueryReadings filters like the SQL implementation but returns rows in insertion order.
func (f *fakeRepo) QueryReadings(ctx context.Context, ids []string, w models.Window) ([]models.Reading, error) {
	f.queries++
	f.gotIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	want := models.NewSelection(ids...)
	out := []models.Reading{}
	for _, r := range f.readings {
		if want.Has(r.BeaconID) && w.Contains(r.Timestamp) {
			out = append(out, r)
		}
	}
	return out, nil
}

func fp(v float64) *float64 { return &v }

// testCatalog has five beacons with assorted data quality.
func testCatalog() models.Catalog {
	return models.Catalog{
		Beacons: []models.Beacon{
			{ID: "10", Description: "Kiln door"},
			{ID: "2", Description: "Kiln rear"},
			{ID: "1", Description: "Oven left"},
			{ID: "3", Description: "Oven right"},
			{ID: "x7", Description: "Spare tag"},
		},
		Stats: map[string]models.BeaconStats{
			"1":  {BeaconID: "1", Readings: 100, TemperatureReadings: 90, MeanTemperatureC: fp(112)},
			"2":  {BeaconID: "2", Readings: 100, TemperatureReadings: 20, MeanTemperatureC: fp(49.9)},
			"3":  {BeaconID: "3", Readings: 4, TemperatureReadings: 4, MeanTemperatureC: fp(150)},
			"10": {BeaconID: "10", Readings: 50, TemperatureReadings: 0},
		},
	}
}

func newTestDataset(t *testing.T, repo *fakeRepo) *Dataset {
	t.Helper()
	ds, err := NewDataset(context.Background(), "test.db", repo)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return ds
}

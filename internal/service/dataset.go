package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"beacon_analyzer/internal/models"
	"beacon_analyzer/internal/repository"
	"beacon_analyzer/internal/repository/db"

	"github.com/google/uuid"
)

// Dataset is one opened beacon database together with its Catalog.
type Dataset struct {
	ID      string
	Name    string
	Catalog models.Catalog

	repo  repository.BeaconRepo
	conn  *sql.DB
	path  string
	owned bool // remove path on Close
}

// DatasetOpener opens the database at path; name is what users see.
type DatasetOpener func(ctx context.Context, path, name string, owned bool) (*Dataset, error)

// OpenDataset opens path read-only, validates its schema and loads the catalog.
// owned datasets delete their file on Close.
func OpenDataset(ctx context.Context, path, name string, owned bool) (*Dataset, error) {
	conn, err := db.OpenReadOnly(ctx, path)
	if err != nil {
		return nil, err
	}
	repos := repository.NewRepository(conn)

	ds, err := NewDataset(ctx, name, repos.Beacons)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	ds.conn = conn
	ds.path = path
	ds.owned = owned
	return ds, nil
}

// NewDataset builds a dataset over an already opened repository.
func NewDataset(ctx context.Context, name string, repo repository.BeaconRepo) (*Dataset, error) {
	cat, err := loadCatalog(ctx, repo)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		ID:      uuid.NewString(),
		Name:    name,
		Catalog: cat,
		repo:    repo,
	}, nil
}

func loadCatalog(ctx context.Context, repo repository.BeaconRepo) (models.Catalog, error) {
	beacons, err := repo.ListBeacons(ctx)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("list beacons: %w", err)
	}
	stats, err := repo.Stats(ctx)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("beacon stats: %w", err)
	}
	span, err := repo.DateRange(ctx)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("date range: %w", err)
	}

	byID := make(map[string]models.BeaconStats, len(stats))
	for _, st := range stats {
		byID[st.BeaconID] = st
	}
	return models.Catalog{Beacons: beacons, Stats: byID, Span: span}, nil
}

// QueryReadings implements ReadingSource.
func (d *Dataset) QueryReadings(ctx context.Context, beaconIDs []string, w models.Window) ([]models.Reading, error) {
	return d.repo.QueryReadings(ctx, beaconIDs, w)
}

// Info summarises the dataset.
func (d *Dataset) Info() DatasetInfo {
	records := 0
	for _, st := range d.Catalog.Stats {
		records += st.Readings
	}
	return DatasetInfo{
		ID:      d.ID,
		Name:    d.Name,
		Beacons: len(d.Catalog.Beacons),
		Records: records,
		Days:    d.Catalog.Days(),
		Span:    d.Catalog.Span,
	}
}

// Close releases the connection and removes owned files.
func (d *Dataset) Close() error {
	var errs []error
	if d.conn != nil {
		errs = append(errs, d.conn.Close())
	}
	if d.owned && d.path != "" {
		if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

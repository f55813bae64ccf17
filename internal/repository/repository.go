package repository

import (
	"context"
	"database/sql"

	"beacon_analyzer/internal/models"
)

// BeaconRepo is the read-only view of one beacon capture file.
type BeaconRepo interface {
	ListBeacons(ctx context.Context) ([]models.Beacon, error)
	Stats(ctx context.Context) ([]models.BeaconStats, error)
	DateRange(ctx context.Context) (models.Window, error)
	QueryReadings(ctx context.Context, beaconIDs []string, w models.Window) ([]models.Reading, error)
}

type Repository struct {
	Beacons BeaconRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Beacons: NewBeaconSQLite(db),
	}
}

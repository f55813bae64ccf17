package service

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"beacon_analyzer/internal/logger"
	"beacon_analyzer/internal/render"
)

// Sessions manages per-user dashboard state: dataset, beacon list and selection.
type Sessions interface {
	Create(ctx context.Context) (SessionInfo, error)
	Info(ctx context.Context, id string) (SessionInfo, error)
	Delete(ctx context.Context, id string) error
	Upload(ctx context.Context, id, filename string, r io.Reader) (DatasetInfo, error)
	Beacons(ctx context.Context, id string, q BeaconQuery) ([]BeaconRow, error)
	Select(ctx context.Context, id string, req SelectionRequest) (SessionInfo, error)
}

// Views runs analyses and describes their results for rendering.
type Views interface {
	Analyze(ctx context.Context, id string, p AnalyzeParams) (render.View, error)
	Chart(ctx context.Context, id, beaconID string) (render.Chart, error)
	Schematic(ctx context.Context, id string, targetC *float64) (render.Schematic, error)
}

// Janitor evicts idle sessions in the background.
// Stop via context cancellation in main() for graceful shutdown.
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Sessions
	Views
	Janitor
}

// NewService wires the session store into the HTTP-facing services.
func NewService(store *SessionStore, defaults render.Options) *Service {
	return &Service{
		Sessions: store,
		Views:    NewViewService(store, defaults),
		Janitor:  store,
	}
}

// OpenStore builds the session store for cfg, sharing cfg.DefaultDBPath with every
// session when it is set.
func OpenStore(ctx context.Context, cfg Config, log *logger.Logger) (*SessionStore, error) {
	var opts []StoreOption
	if cfg.DefaultDBPath != "" {
		ds, err := OpenDataset(ctx, cfg.DefaultDBPath, filepath.Base(cfg.DefaultDBPath), false)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithSharedDataset(ds))
		if log != nil {
			info := ds.Info()
			log.Infow("default_dataset_opened", "path", cfg.DefaultDBPath, "beacons", info.Beacons, "records", info.Records)
		}
	}
	return NewSessionStore(cfg, log, opts...), nil
}

package service

import (
	"time"

	"beacon_analyzer/internal/models"
)

// Selection operations accepted by Apply.
const (
	OpAll              = "all"
	OpClear            = "clear"
	OpFirst            = "first"
	OpPattern          = "pattern"
	OpQuality          = "quality"
	OpTemperatureRange = "temperature_range"
	OpRange            = "range"
)

// Beacon list sort orders.
const (
	SortDescription = "description"
	SortID          = "id"
)

// SelectionRequest is one Selection Engine operation with its arguments.
type SelectionRequest struct {
	Op   string   // one of the Op* constants
	N    int      // OpFirst
	Text string   // OpPattern
	Lo   *float64 // OpTemperatureRange, °C
	Hi   *float64 // OpTemperatureRange, °C
	From string   // OpRange, beacon id
	To   string   // OpRange, beacon id
}

// BeaconQuery filters and orders the beacon list of a session.
type BeaconQuery struct {
	Search string // case-insensitive substring of id or description
	Sort   string // SortDescription (default) | SortID
}

// AnalyzeParams drives one Filter & Aggregate run. Zero window bounds default to the data span.
type AnalyzeParams struct {
	Window      models.Window
	Resample    string   // "", "1m", "5m", "10m", "30m", "1h"
	TargetTempC *float64 // schematic target; nil uses the configured default
}

// BeaconRow is one entry of the beacon list shown to the user.
type BeaconRow struct {
	models.Beacon
	Stats    models.BeaconStats `json:"stats"`
	Quality  float64            `json:"quality"`
	Selected bool               `json:"selected"`
}

// QualityConfig tunes the quality heuristic.
type QualityConfig struct {
	Threshold   float64 // beacons scoring strictly above are selected
	MinReadings int     // reading count at which the volume factor saturates
}

// Config carries the service-level settings.
type Config struct {
	DefaultDBPath  string        // dataset attached to new sessions; empty for none
	DefaultFirst   int           // beacons selected when a dataset is attached
	UploadDir      string        // where uploaded files are stored; empty uses os.TempDir
	MaxUploadBytes int64         // 0 means unlimited
	SessionTTL     time.Duration // idle sessions older than this are evicted
	Quality        QualityConfig
}

// DatasetInfo summarises an attached dataset.
type DatasetInfo struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Beacons int           `json:"beacons"`
	Records int           `json:"records"`
	Days    int           `json:"days"`
	Span    models.Window `json:"span"`
}

// SessionInfo is the public state of a session.
type SessionInfo struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Dataset   *DatasetInfo  `json:"dataset,omitempty"`
	Selected  []string      `json:"selected"`
	Window    models.Window `json:"window"`
}

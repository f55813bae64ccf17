package models

import "time"

// Beacon is a sensor device as listed in the Beacon table.
type Beacon struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// BeaconStats are whole-file counters for one beacon.
type BeaconStats struct {
	BeaconID            string   `json:"beacon_id"`
	Readings            int      `json:"readings"`
	TemperatureReadings int      `json:"temperature_readings"`       // non-null primary temperature values
	MeanTemperatureC    *float64 `json:"mean_temperature_c,omitempty"` // nil when the beacon has no temperature data
}

// TemperatureFraction is the share of readings carrying a primary temperature value.
func (s BeaconStats) TemperatureFraction() float64 {
	if s.Readings == 0 {
		return 0
	}
	return float64(s.TemperatureReadings) / float64(s.Readings)
}

// Catalog describes one opened dataset: its beacons, their stats and the data time span.
type Catalog struct {
	Beacons []Beacon               `json:"beacons"`
	Stats   map[string]BeaconStats `json:"stats"`
	Span    Window                 `json:"span"`
}

// Beacon looks up a beacon by identifier.
func (c Catalog) Beacon(id string) (Beacon, bool) {
	for _, b := range c.Beacons {
		if b.ID == id {
			return b, true
		}
	}
	return Beacon{}, false
}

// Days returns the number of distinct calendar days covered by the span.
func (c Catalog) Days() int {
	if c.Span.From.IsZero() || c.Span.To.IsZero() {
		return 0
	}
	from := truncateDay(c.Span.From)
	to := truncateDay(c.Span.To)
	return int(to.Sub(from).Hours()/24) + 1
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package models

import "time"

// Measured quantities of a reading.
const (
	QuantityTemperature     = "temperature"
	QuantityTemperatureExt1 = "temperature_ext1"
	QuantityRSSI            = "rssi"
)

// Reading is one timestamped observation from a beacon.
type Reading struct {
	BeaconID         string    `json:"beacon_id"`
	Description      string    `json:"description"`
	Timestamp        time.Time `json:"timestamp"`
	TemperatureC     *float64  `json:"temperature_c,omitempty"`      // ExternalSensorTemperature, °C
	TemperatureExt1C *float64  `json:"temperature_ext1_c,omitempty"` // ExternalSensorTemperatureExt1, °C
	RSSI             *float64  `json:"rssi,omitempty"`               // dBm, typically negative
}

// Temperatures returns the non-null temperature values of the reading.
func (r Reading) Temperatures() []float64 {
	out := make([]float64, 0, 2)
	if r.TemperatureC != nil {
		out = append(out, *r.TemperatureC)
	}
	if r.TemperatureExt1C != nil {
		out = append(out, *r.TemperatureExt1C)
	}
	return out
}

// Value returns the value of the named quantity, nil when absent or unknown.
func (r Reading) Value(quantity string) *float64 {
	switch quantity {
	case QuantityTemperature:
		return r.TemperatureC
	case QuantityTemperatureExt1:
		return r.TemperatureExt1C
	case QuantityRSSI:
		return r.RSSI
	default:
		return nil
	}
}

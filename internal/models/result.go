package models

// NoDataMessage is reported when a window holds no readings for the selection.
const NoDataMessage = "no data in range"

// Stat holds count/mean/min/max of one quantity; pointers are nil when Count is 0.
type Stat struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// BeaconSummary aggregates the rows of one beacon.
type BeaconSummary struct {
	BeaconID        string `json:"beacon_id"`
	Description     string `json:"description"`
	Count           int    `json:"count"`
	Temperature     Stat   `json:"temperature"`
	TemperatureExt1 Stat   `json:"temperature_ext1"`
	RSSI            Stat   `json:"rssi"`
}

// Result is the output of filtering a selection through a window.
type Result struct {
	Window   Window          `json:"window"`
	Selected []string        `json:"selected"`
	Rows     []Reading       `json:"rows"`
	Summary  []BeaconSummary `json:"summary"`
	Empty    bool            `json:"empty"`
	Message  string          `json:"message,omitempty"`
	Days     int             `json:"days"`    // distinct calendar days in Rows
	Beacons  int             `json:"beacons"` // beacons with at least one row
}

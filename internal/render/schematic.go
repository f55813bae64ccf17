package render

import (
	"math"
	"sort"
	"strings"

	"beacon_analyzer/internal/models"
)

// Schematic bands by distance of a beacon's max temperature from the target.
const (
	BandGreen  = "green"  // within 5 °C
	BandYellow = "yellow" // within 15 °C
	BandRed    = "red"
	BandNone   = "none" // beacon has no temperature in the window
)

const (
	greenToleranceC  = 5.0
	yellowToleranceC = 15.0
)

// Cell is one slot of the schematic grid; empty slots have no BeaconID.
type Cell struct {
	Row             int      `json:"row"`
	Col             int      `json:"col"`
	BeaconID        string   `json:"beacon_id,omitempty"`
	Description     string   `json:"description,omitempty"`
	MaxTemperatureC *float64 `json:"max_temperature_c,omitempty"`
	DeltaC          *float64 `json:"delta_c,omitempty"`
	Band            string   `json:"band,omitempty"`
}

// Schematic is a rows x cols grid of beacons coloured against a target temperature.
type Schematic struct {
	Rows     int            `json:"rows"`
	Cols     int            `json:"cols"`
	TargetC  float64        `json:"target_c"`
	Cells    [][]Cell       `json:"cells"`
	Counts   map[string]int `json:"counts"`
	Overflow int            `json:"overflow"` // beacons that did not fit the grid
}

// Band classifies the distance between a temperature and the target.
func Band(maxC *float64, target float64) string {
	if maxC == nil {
		return BandNone
	}
	switch d := math.Abs(*maxC - target); {
	case d <= greenToleranceC:
		return BandGreen
	case d <= yellowToleranceC:
		return BandYellow
	default:
		return BandRed
	}
}

// BuildSchematic places the result's beacons, sorted by description then id, row by row
// into a rows x cols grid. Each cell carries the beacon's max temperature in the window,
// rounded to 0.1 °C.
func BuildSchematic(res models.Result, target float64, rows, cols int) Schematic {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	sc := Schematic{
		Rows:    rows,
		Cols:    cols,
		TargetC: target,
		Cells:   make([][]Cell, rows),
		Counts:  map[string]int{BandGreen: 0, BandYellow: 0, BandRed: 0, BandNone: 0},
	}
	for i := range sc.Cells {
		sc.Cells[i] = make([]Cell, cols)
		for j := range sc.Cells[i] {
			sc.Cells[i][j] = Cell{Row: i, Col: j}
		}
	}

	beacons := append([]models.BeaconSummary(nil), res.Summary...)
	sort.SliceStable(beacons, func(i, j int) bool {
		a, b := beacons[i], beacons[j]
		if c := strings.Compare(a.Description, b.Description); c != 0 {
			return c < 0
		}
		return a.BeaconID < b.BeaconID
	})

	for idx, b := range beacons {
		var maxC, delta *float64
		if b.Temperature.Max != nil {
			m := math.Round(*b.Temperature.Max*10) / 10
			d := m - target
			maxC, delta = &m, &d
		}
		band := Band(maxC, target)
		sc.Counts[band]++

		if cols == 0 || idx >= rows*cols {
			sc.Overflow++
			continue
		}
		r, c := idx/cols, idx%cols
		sc.Cells[r][c] = Cell{
			Row:             r,
			Col:             c,
			BeaconID:        b.BeaconID,
			Description:     b.Description,
			MaxTemperatureC: maxC,
			DeltaC:          delta,
			Band:            band,
		}
	}
	return sc
}

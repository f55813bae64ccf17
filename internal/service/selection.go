package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"beacon_analyzer/internal/models"
)

// SelectionEngine applies selection strategies to a Selection using a dataset Catalog.
type SelectionEngine struct {
	quality QualityConfig
}

func NewSelectionEngine(q QualityConfig) *SelectionEngine {
	return &SelectionEngine{quality: q}
}

// compareIDs orders identifiers numerically when both are integers, lexicographically otherwise.
func compareIDs(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	if aErr == nil && bErr == nil && ai != bi {
		if ai < bi {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// sortIDs sorts ids in place by compareIDs.
func sortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool { return compareIDs(ids[i], ids[j]) < 0 })
}

func catalogIDs(cat models.Catalog) []string {
	ids := make([]string, 0, len(cat.Beacons))
	for _, b := range cat.Beacons {
		ids = append(ids, b.ID)
	}
	return ids
}

// SelectAll replaces the selection with every beacon of the catalog.
func (e *SelectionEngine) SelectAll(sel *models.Selection, cat models.Catalog) {
	sel.Replace(catalogIDs(cat))
}

// Clear empties the selection.
func (e *SelectionEngine) Clear(sel *models.Selection) {
	sel.Clear()
}

// SelectFirst replaces the selection with the first n beacons by identifier. n <= 0 is a no-op.
func (e *SelectionEngine) SelectFirst(sel *models.Selection, cat models.Catalog, n int) {
	if n <= 0 {
		return
	}
	ids := catalogIDs(cat)
	sortIDs(ids)
	if n < len(ids) {
		ids = ids[:n]
	}
	sel.Replace(ids)
}

// SelectByPattern adds every beacon whose id or description contains text, ignoring case.
func (e *SelectionEngine) SelectByPattern(sel *models.Selection, cat models.Catalog, text string) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return
	}
	for _, b := range cat.Beacons {
		if matchesBeacon(b, needle) {
			sel.Add(b.ID)
		}
	}
}

// matchesBeacon expects needle already lower-cased.
func matchesBeacon(b models.Beacon, needle string) bool {
	return strings.Contains(strings.ToLower(b.ID), needle) ||
		strings.Contains(strings.ToLower(b.Description), needle)
}

// QualityScore rates a beacon in [0, 1]: the share of readings carrying a temperature,
// scaled down while the reading count is below the configured minimum.
func (e *SelectionEngine) QualityScore(st models.BeaconStats) float64 {
	if st.Readings == 0 {
		return 0
	}
	volume := 1.0
	if e.quality.MinReadings > 0 && st.Readings < e.quality.MinReadings {
		volume = float64(st.Readings) / float64(e.quality.MinReadings)
	}
	return st.TemperatureFraction() * volume
}

// SelectByQuality replaces the selection with beacons scoring above the threshold.
func (e *SelectionEngine) SelectByQuality(sel *models.Selection, cat models.Catalog) {
	ids := make([]string, 0, len(cat.Beacons))
	for _, b := range cat.Beacons {
		if e.QualityScore(cat.Stats[b.ID]) > e.quality.Threshold {
			ids = append(ids, b.ID)
		}
	}
	sel.Replace(ids)
}

// SelectByTemperatureRange replaces the selection with beacons whose mean temperature
// lies in [lo, hi]. Beacons without temperature data never match.
func (e *SelectionEngine) SelectByTemperatureRange(sel *models.Selection, cat models.Catalog, lo, hi float64) error {
	if lo > hi {
		return fmt.Errorf("%w: temperature range %.2f > %.2f", ErrInvalidSelection, lo, hi)
	}
	ids := make([]string, 0, len(cat.Beacons))
	for _, b := range cat.Beacons {
		mean := cat.Stats[b.ID].MeanTemperatureC
		if mean == nil {
			continue
		}
		if *mean >= lo && *mean <= hi {
			ids = append(ids, b.ID)
		}
	}
	sel.Replace(ids)
	return nil
}

// SelectRange adds every id of list between fromID and toID inclusive, in either order.
func (e *SelectionEngine) SelectRange(sel *models.Selection, list []string, fromID, toID string) error {
	i, j := indexOf(list, fromID), indexOf(list, toID)
	if i < 0 {
		return fmt.Errorf("%w: beacon %q is not in the list", ErrInvalidSelection, fromID)
	}
	if j < 0 {
		return fmt.Errorf("%w: beacon %q is not in the list", ErrInvalidSelection, toID)
	}
	if i > j {
		i, j = j, i
	}
	for _, id := range list[i : j+1] {
		sel.Add(id)
	}
	return nil
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}

// Apply dispatches req to the matching strategy. list is the beacon order used by OpRange.
func (e *SelectionEngine) Apply(sel *models.Selection, cat models.Catalog, list []string, req SelectionRequest) error {
	switch strings.ToLower(strings.TrimSpace(req.Op)) {
	case OpAll:
		e.SelectAll(sel, cat)
	case OpClear:
		e.Clear(sel)
	case OpFirst:
		e.SelectFirst(sel, cat, req.N)
	case OpPattern:
		e.SelectByPattern(sel, cat, req.Text)
	case OpQuality:
		e.SelectByQuality(sel, cat)
	case OpTemperatureRange:
		if req.Lo == nil || req.Hi == nil {
			return fmt.Errorf("%w: lo and hi are required", ErrInvalidSelection)
		}
		return e.SelectByTemperatureRange(sel, cat, *req.Lo, *req.Hi)
	case OpRange:
		// nil means the beacons were never listed; an empty list is a search without matches.
		if list == nil {
			list = catalogIDs(cat)
		}
		return e.SelectRange(sel, list, req.From, req.To)
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidSelection, req.Op)
	}
	return nil
}

// BeaconList filters and orders the catalog beacons for display.
func (e *SelectionEngine) BeaconList(cat models.Catalog, sel models.Selection, q BeaconQuery) ([]BeaconRow, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	rows := make([]BeaconRow, 0, len(cat.Beacons))
	for _, b := range cat.Beacons {
		if needle != "" && !matchesBeacon(b, needle) {
			continue
		}
		st, ok := cat.Stats[b.ID]
		if !ok {
			st = models.BeaconStats{BeaconID: b.ID}
		}
		rows = append(rows, BeaconRow{
			Beacon:   b,
			Stats:    st,
			Quality:  e.QualityScore(st),
			Selected: sel.Has(b.ID),
		})
	}

	switch strings.ToLower(strings.TrimSpace(q.Sort)) {
	case "", SortDescription:
		// catalog order is description, then id
	case SortID:
		sort.SliceStable(rows, func(i, j int) bool { return compareIDs(rows[i].ID, rows[j].ID) < 0 })
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidSelection, q.Sort)
	}
	return rows, nil
}

package service

import (
	"context"
	"fmt"
	"sort"

	"beacon_analyzer/internal/models"
)

// ReadingSource returns the readings of a set of beacons inside a window.
type ReadingSource interface {
	QueryReadings(ctx context.Context, beaconIDs []string, w models.Window) ([]models.Reading, error)
}

// Aggregate filters the readings of the selected beacons through w and summarises them.
// An empty selection fails with models.ErrEmptySelection; a window without data yields
// an Empty result.
func Aggregate(ctx context.Context, src ReadingSource, sel models.Selection, w models.Window) (models.Result, error) {
	if sel.IsEmpty() {
		return models.Result{}, models.ErrEmptySelection
	}
	if w.From.After(w.To) {
		return models.Result{}, models.ErrInvalidWindow
	}

	ids := sel.IDs()
	rows, err := src.QueryReadings(ctx, ids, w)
	if err != nil {
		return models.Result{}, fmt.Errorf("query readings: %w", err)
	}

	kept := make([]models.Reading, 0, len(rows))
	for _, r := range rows {
		if sel.Has(r.BeaconID) && w.Contains(r.Timestamp) {
			kept = append(kept, r)
		}
	}
	sortReadings(kept)

	res := models.Result{
		Window:   w,
		Selected: ids,
		Rows:     kept,
		Summary:  summarize(kept),
	}
	if len(kept) == 0 {
		res.Empty = true
		res.Message = models.NoDataMessage
		res.Summary = []models.BeaconSummary{}
		return res, nil
	}
	res.Days = countDays(kept)
	res.Beacons = len(res.Summary)
	return res, nil
}

// sortReadings orders by timestamp, then beacon id; equal keys keep their input order.
func sortReadings(rows []models.Reading) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return compareIDs(a.BeaconID, b.BeaconID) < 0
	})
}

func countDays(rows []models.Reading) int {
	days := make(map[string]struct{})
	for _, r := range rows {
		days[r.Timestamp.UTC().Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}

type accumulator struct {
	n        int
	sum      float64
	min, max float64
}

func (a *accumulator) add(v *float64) {
	if v == nil {
		return
	}
	if a.n == 0 || *v < a.min {
		a.min = *v
	}
	if a.n == 0 || *v > a.max {
		a.max = *v
	}
	a.n++
	a.sum += *v
}

func (a *accumulator) stat() models.Stat {
	if a.n == 0 {
		return models.Stat{}
	}
	mean := a.sum / float64(a.n)
	lo, hi := a.min, a.max
	return models.Stat{Count: a.n, Mean: &mean, Min: &lo, Max: &hi}
}

type beaconAcc struct {
	summary models.BeaconSummary
	temp    accumulator
	ext1    accumulator
	rssi    accumulator
}

// summarize builds one summary per beacon present in rows, ordered by beacon id.
func summarize(rows []models.Reading) []models.BeaconSummary {
	byID := make(map[string]*beaconAcc)
	for _, r := range rows {
		acc, ok := byID[r.BeaconID]
		if !ok {
			acc = &beaconAcc{summary: models.BeaconSummary{BeaconID: r.BeaconID, Description: r.Description}}
			byID[r.BeaconID] = acc
		}
		acc.summary.Count++
		acc.temp.add(r.TemperatureC)
		acc.ext1.add(r.TemperatureExt1C)
		acc.rssi.add(r.RSSI)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sortIDs(ids)

	out := make([]models.BeaconSummary, 0, len(ids))
	for _, id := range ids {
		acc := byID[id]
		s := acc.summary
		s.Temperature = acc.temp.stat()
		s.TemperatureExt1 = acc.ext1.stat()
		s.RSSI = acc.rssi.stat()
		out = append(out, s)
	}
	return out
}

package service

import (
	"context"
	"fmt"

	"beacon_analyzer/internal/render"
)

// ViewService turns session results into view descriptions.
type ViewService struct {
	sessions *SessionStore
	defaults render.Options
}

func NewViewService(sessions *SessionStore, defaults render.Options) *ViewService {
	return &ViewService{sessions: sessions, defaults: defaults}
}

// options overlays request parameters on the configured defaults.
func (v *ViewService) options(p AnalyzeParams) render.Options {
	opts := v.defaults
	if p.Resample != "" {
		opts.Resample = p.Resample
	}
	if p.TargetTempC != nil {
		opts.TargetTempC = *p.TargetTempC
	}
	return opts
}

// Analyze runs Filter & Aggregate for the session and describes the result.
func (v *ViewService) Analyze(ctx context.Context, id string, p AnalyzeParams) (render.View, error) {
	opts := v.options(p)
	if _, _, err := render.ParseResample(opts.Resample); err != nil {
		return render.View{}, err
	}
	res, err := v.sessions.Analyze(ctx, id, p)
	if err != nil {
		return render.View{}, err
	}
	return render.BuildView(res, opts)
}

// Chart describes one beacon of the latest result.
func (v *ViewService) Chart(ctx context.Context, id, beaconID string) (render.Chart, error) {
	res, p, err := v.sessions.Latest(ctx, id)
	if err != nil {
		return render.Chart{}, err
	}
	view, err := render.BuildView(res, v.options(p))
	if err != nil {
		return render.Chart{}, err
	}
	c, ok := view.FindChart(beaconID)
	if !ok {
		return render.Chart{}, fmt.Errorf("%w: %q", ErrUnknownBeacon, beaconID)
	}
	return c, nil
}

// Schematic builds the temperature schematic of the latest result. A nil target
// keeps the one used for the analysis.
func (v *ViewService) Schematic(ctx context.Context, id string, targetC *float64) (render.Schematic, error) {
	res, p, err := v.sessions.Latest(ctx, id)
	if err != nil {
		return render.Schematic{}, err
	}
	if targetC != nil {
		p.TargetTempC = targetC
	}
	opts := v.options(p)
	return render.BuildSchematic(res, opts.TargetTempC, opts.SchematicRows, opts.SchematicCols), nil
}

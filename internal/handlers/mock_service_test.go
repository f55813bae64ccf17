package handlers

import (
	"context"
	"io"
	"sync"

	"beacon_analyzer/internal/render"
	"beacon_analyzer/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockSessions struct {
	mu sync.Mutex

	known     map[string]bool
	info      service.SessionInfo
	infoErr   error
	createErr error
	deleteErr error

	dataset      service.DatasetInfo
	uploadErr    error
	lastFilename string
	lastUpload   []byte

	rows       []service.BeaconRow
	beaconsErr error
	lastQuery  service.BeaconQuery

	selectErr  error
	lastSelect service.SelectionRequest
	deleted    []string
}

func (m *mockSessions) Create(ctx context.Context) (service.SessionInfo, error) {
	return m.info, m.createErr
}

func (m *mockSessions) Info(ctx context.Context, id string) (service.SessionInfo, error) {
	if m.infoErr != nil {
		return service.SessionInfo{}, m.infoErr
	}
	if !m.known[id] {
		return service.SessionInfo{}, service.ErrSessionNotFound
	}
	info := m.info
	info.ID = id
	return info, nil
}

func (m *mockSessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

func (m *mockSessions) Upload(ctx context.Context, id, filename string, r io.Reader) (service.DatasetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilename = filename
	m.lastUpload, _ = io.ReadAll(r)
	return m.dataset, m.uploadErr
}

func (m *mockSessions) Beacons(ctx context.Context, id string, q service.BeaconQuery) ([]service.BeaconRow, error) {
	m.lastQuery = q
	return m.rows, m.beaconsErr
}

func (m *mockSessions) Select(ctx context.Context, id string, req service.SelectionRequest) (service.SessionInfo, error) {
	m.lastSelect = req
	if m.selectErr != nil {
		return service.SessionInfo{}, m.selectErr
	}
	return m.info, nil
}

type mockViews struct {
	mu sync.Mutex

	view       render.View
	analyzeErr error
	calls      []service.AnalyzeParams
	// gate, when set, blocks Analyze until it is closed or receives.
	gate chan struct{}

	chart      render.Chart
	chartErr   error
	lastBeacon string

	schematic    render.Schematic
	schematicErr error
	lastTarget   *float64
}

func (m *mockViews) Analyze(ctx context.Context, id string, p service.AnalyzeParams) (render.View, error) {
	m.mu.Lock()
	m.calls = append(m.calls, p)
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return m.view, m.analyzeErr
}

func (m *mockViews) analyzeCalls() []service.AnalyzeParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.AnalyzeParams(nil), m.calls...)
}

func (m *mockViews) Chart(ctx context.Context, id, beaconID string) (render.Chart, error) {
	m.lastBeacon = beaconID
	return m.chart, m.chartErr
}

func (m *mockViews) Schematic(ctx context.Context, id string, targetC *float64) (render.Schematic, error) {
	m.lastTarget = targetC
	return m.schematic, m.schematicErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// newTestServices returns mocks that know the session "s1".
func newTestServices() (*service.Service, *mockSessions, *mockViews) {
	sess := &mockSessions{known: map[string]bool{"s1": true}}
	views := &mockViews{}
	return &service.Service{Sessions: sess, Views: views}, sess, views
}

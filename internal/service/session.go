package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"beacon_analyzer/internal/logger"
	"beacon_analyzer/internal/models"

	"github.com/google/uuid"
)

// uploadExtensions lists the accepted database file extensions.
var uploadExtensions = map[string]bool{".db": true, ".sqlite": true, ".sqlite3": true}

// Session is the state of one dashboard user: dataset, selection, window and latest result.
type Session struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	lastSeen  time.Time
	closed    bool

	dataset     *Dataset
	ownsDataset bool

	selection models.Selection
	window    models.Window
	list      []string // beacon order of the last list request
	result    *models.Result
	params    AnalyzeParams
}

func (s *Session) info() SessionInfo {
	out := SessionInfo{
		ID:        s.id,
		CreatedAt: s.createdAt,
		Selected:  s.selection.IDs(),
		Window:    s.window,
	}
	if s.dataset != nil {
		di := s.dataset.Info()
		out.Dataset = &di
	}
	return out
}

// release closes the dataset when the session owns it.
func (s *Session) release() error {
	ds, owned := s.dataset, s.ownsDataset
	s.dataset, s.ownsDataset = nil, false
	if ds != nil && owned {
		return ds.Close()
	}
	return nil
}

// SessionStore keeps isolated sessions and evicts idle ones.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg    Config
	engine *SelectionEngine
	open   DatasetOpener
	shared *Dataset
	log    *logger.Logger
	now    func() time.Time
}

// StoreOption customises a SessionStore.
type StoreOption func(*SessionStore)

// WithOpener replaces the dataset opener used for uploads.
func WithOpener(open DatasetOpener) StoreOption {
	return func(s *SessionStore) { s.open = open }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *SessionStore) { s.now = now }
}

// WithSharedDataset attaches ds to every new session. The store closes it on Close.
func WithSharedDataset(ds *Dataset) StoreOption {
	return func(s *SessionStore) { s.shared = ds }
}

func NewSessionStore(cfg Config, log *logger.Logger, opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		engine:   NewSelectionEngine(cfg.Quality),
		open:     OpenDataset,
		log:      log,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Engine exposes the selection engine, e.g. for quality scores.
func (s *SessionStore) Engine() *SelectionEngine { return s.engine }

// Create starts a new session, attached to the shared dataset when one is configured.
func (s *SessionStore) Create(ctx context.Context) (SessionInfo, error) {
	now := s.now().UTC()
	sess := &Session{id: uuid.NewString(), createdAt: now, lastSeen: now}
	if s.shared != nil {
		s.attach(sess, s.shared, false)
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	if s.log != nil {
		s.log.Infow("session_created", "session_id", sess.id, "shared_dataset", s.shared != nil)
	}
	return sess.info(), nil
}

// attach swaps the session dataset and resets the derived state. Caller holds sess.mu.
func (s *SessionStore) attach(sess *Session, ds *Dataset, owned bool) {
	if err := sess.release(); err != nil && s.log != nil {
		s.log.Warnw("dataset_close_failed", "session_id", sess.id, "err", err)
	}
	sess.dataset = ds
	sess.ownsDataset = owned
	sess.selection.Clear()
	sess.window = ds.Catalog.Span
	sess.list = nil
	sess.result = nil
	sess.params = AnalyzeParams{}
	s.engine.SelectFirst(&sess.selection, ds.Catalog, s.cfg.DefaultFirst)
}

// withSession runs fn while holding the session lock.
func (s *SessionStore) withSession(id string, fn func(*Session) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return ErrSessionNotFound
	}
	sess.lastSeen = s.now().UTC()
	return fn(sess)
}

// withDataset is withSession for operations that need an attached dataset.
func (s *SessionStore) withDataset(id string, fn func(*Session) error) error {
	return s.withSession(id, func(sess *Session) error {
		if sess.dataset == nil {
			return ErrNoDataset
		}
		return fn(sess)
	})
}

// Info returns the public state of a session.
func (s *SessionStore) Info(ctx context.Context, id string) (SessionInfo, error) {
	var out SessionInfo
	err := s.withSession(id, func(sess *Session) error {
		out = sess.info()
		return nil
	})
	return out, err
}

// Delete ends a session and releases its dataset.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return s.closeSession(sess)
}

func (s *SessionStore) closeSession(sess *Session) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.closed = true
	return sess.release()
}

// Upload stores r as the session dataset. The file is validated before the current
// dataset is replaced; a rejected file leaves the session untouched.
func (s *SessionStore) Upload(ctx context.Context, id, filename string, r io.Reader) (DatasetInfo, error) {
	if _, err := s.Info(ctx, id); err != nil {
		return DatasetInfo{}, err
	}

	path, err := s.saveUpload(filename, r)
	if err != nil {
		return DatasetInfo{}, err
	}
	ds, err := s.open(ctx, path, filepath.Base(filename), true)
	if err != nil {
		_ = os.Remove(path)
		return DatasetInfo{}, err
	}

	err = s.withSession(id, func(sess *Session) error {
		s.attach(sess, ds, true)
		return nil
	})
	if err != nil {
		_ = ds.Close()
		return DatasetInfo{}, err
	}

	info := ds.Info()
	if s.log != nil {
		s.log.Infow("dataset_attached", "session_id", id, "dataset_id", info.ID, "name", info.Name,
			"beacons", info.Beacons, "records", info.Records)
	}
	return info, nil
}

// saveUpload copies r into a new file of the upload directory and returns its path.
func (s *SessionStore) saveUpload(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !uploadExtensions[ext] {
		return "", ErrUnsupportedFile
	}

	dir := s.cfg.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "beacons-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	src := r
	if s.cfg.MaxUploadBytes > 0 {
		src = io.LimitReader(r, s.cfg.MaxUploadBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write upload: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write upload: %w", closeErr)
	case s.cfg.MaxUploadBytes > 0 && n > s.cfg.MaxUploadBytes:
		_ = os.Remove(f.Name())
		return "", ErrUploadTooLarge
	}
	return f.Name(), nil
}

// Beacons returns the filtered, ordered beacon list and remembers its order for OpRange.
func (s *SessionStore) Beacons(ctx context.Context, id string, q BeaconQuery) ([]BeaconRow, error) {
	var rows []BeaconRow
	err := s.withDataset(id, func(sess *Session) error {
		var err error
		rows, err = s.engine.BeaconList(sess.dataset.Catalog, sess.selection, q)
		if err != nil {
			return err
		}
		sess.list = make([]string, 0, len(rows))
		for _, r := range rows {
			sess.list = append(sess.list, r.ID)
		}
		return nil
	})
	return rows, err
}

// Select applies one selection operation. A failed operation leaves the selection unchanged.
func (s *SessionStore) Select(ctx context.Context, id string, req SelectionRequest) (SessionInfo, error) {
	var out SessionInfo
	err := s.withDataset(id, func(sess *Session) error {
		next := sess.selection.Clone()
		if err := s.engine.Apply(&next, sess.dataset.Catalog, sess.list, req); err != nil {
			return err
		}
		sess.selection = next
		out = sess.info()
		return nil
	})
	return out, err
}

// Analyze runs Filter & Aggregate for the session and keeps the result.
func (s *SessionStore) Analyze(ctx context.Context, id string, p AnalyzeParams) (models.Result, error) {
	var res models.Result
	err := s.withDataset(id, func(sess *Session) error {
		w, err := resolveWindow(p.Window, sess.dataset.Catalog.Span)
		if err != nil {
			return err
		}
		res, err = Aggregate(ctx, sess.dataset, sess.selection, w)
		if err != nil {
			return err
		}
		p.Window = w
		sess.window = w
		sess.params = p
		sess.result = &res
		return nil
	})
	return res, err
}

// Latest returns the last result of the session and the parameters it was computed with.
func (s *SessionStore) Latest(ctx context.Context, id string) (models.Result, AnalyzeParams, error) {
	var (
		res models.Result
		p   AnalyzeParams
	)
	err := s.withSession(id, func(sess *Session) error {
		if sess.result == nil {
			return ErrNoResult
		}
		res, p = *sess.result, sess.params
		return nil
	})
	return res, p, err
}

// Sweep evicts sessions idle since before now-TTL and returns how many were removed.
func (s *SessionStore) Sweep(now time.Time) int {
	if s.cfg.SessionTTL <= 0 {
		return 0
	}
	cutoff := now.UTC().Add(-s.cfg.SessionTTL)

	var stale []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		// A locked session is serving a request, so it is not idle.
		if !sess.mu.TryLock() {
			continue
		}
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		if err := s.closeSession(sess); err != nil && s.log != nil {
			s.log.Warnw("dataset_close_failed", "session_id", sess.id, "err", err)
		}
	}
	return len(stale)
}

// defaultSweepInterval applies when Run gets a non-positive tick.
const defaultSweepInterval = time.Minute

// Run sweeps idle sessions every tick until ctx is canceled.
func (s *SessionStore) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = defaultSweepInterval
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Sweep(now); n > 0 && s.log != nil {
				s.log.Infow("sessions_evicted", "count", n)
			}
		}
	}
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close ends every session and closes the shared dataset.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	var errs []error
	for _, sess := range all {
		errs = append(errs, s.closeSession(sess))
	}
	if s.shared != nil {
		errs = append(errs, s.shared.Close())
	}
	return errors.Join(errs...)
}

package bore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pjkack/bore/query"
)

// ErrNotLoaded is returned by workspace operations before the first
// successful load.
var ErrNotLoaded = errors.New("bore: no solution loaded")

// Workspace is the replace-on-load handle over the current index and
// its search engine. The editor-facing commands operate on one
// workspace; a reload swaps the whole state or, on failure, leaves the
// previous index untouched.
type Workspace struct {
	mu     sync.RWMutex
	sln    string
	idx    *Index
	engine *Engine
}

func NewWorkspace() *Workspace {
	return &Workspace{}
}

// Load builds a fresh index for slnPath and replaces the current one.
// On failure the previous index stays live and the error is returned.
func (w *Workspace) Load(slnPath string, policy ExcludePolicy) error {
	start := time.Now()
	idx, err := Load(slnPath, policy)
	if err != nil {
		metricLoadFailedTotal.Inc()
		return err
	}
	metricLoadsTotal.Inc()
	metricLoadDuration.Observe(time.Since(start).Seconds())
	metricIndexFiles.Set(float64(idx.FileCount()))
	metricIndexProjects.Set(float64(len(idx.Projects)))

	w.mu.Lock()
	old, oldEngine := w.idx, w.engine
	w.sln = idx.Strings.Str(idx.SlnPath)
	w.idx = idx
	w.engine = NewEngine(idx)
	w.mu.Unlock()

	if oldEngine != nil {
		oldEngine.Close()
	}
	if old != nil {
		old.Close()
	}
	return nil
}

// Find runs a query against the current index.
func (w *Workspace) Find(ctx context.Context, q *query.Q, opts *SearchOptions) (*FindResult, error) {
	w.mu.RLock()
	engine := w.engine
	w.mu.RUnlock()
	if engine == nil {
		return nil, ErrNotLoaded
	}
	return engine.Find(ctx, q, opts)
}

// Toggle returns the companion file of path in the current index.
func (w *Workspace) Toggle(path string) (string, error) {
	idx := w.Index()
	if idx == nil {
		return "", ErrNotLoaded
	}
	return idx.Toggle(path)
}

// Index returns the current index, or nil before the first load.
func (w *Workspace) Index() *Index {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.idx
}

// Solution returns the canonical path of the loaded solution file.
func (w *Workspace) Solution() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sln
}

// Status is the one-line load summary the editor shows after a load.
func (w *Workspace) Status() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.idx == nil {
		return "no solution loaded"
	}
	return fmt.Sprintf("%s, %d projects, %d files",
		w.sln, len(w.idx.Projects), w.idx.FileCount())
}

// Close tears down the engine and the index, freeing all arenas and
// scratch buffers.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.engine != nil {
		w.engine.Close()
		w.engine = nil
	}
	if w.idx != nil {
		w.idx.Close()
		w.idx = nil
	}
	w.sln = ""
}

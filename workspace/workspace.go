// Package workspace hands out per-job scratch directories on the local
// filesystem and guarantees they can be removed as a unit.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/clipscribe/logger"
)

// Manager owns the workspace root.
type Manager struct {
	root string
	cfg  Config
	log  *logger.Logger
}

// NewManager creates the root directory if needed.
func NewManager(cfg Config) (*Manager, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("workspace: create root: %w", err)
	}
	return &Manager{root: abs, cfg: cfg, log: logger.WithComponent("workspace")}, nil
}

// Root returns the absolute workspace root.
func (m *Manager) Root() string { return m.root }

// Create makes a fresh directory for one job. An empty id gets a random one.
func (m *Manager) Create(id string) (*Dir, error) {
	if id == "" {
		id = uuid.NewString()
	}
	path := filepath.Join(m.root, filepath.Base(filepath.Clean(id)))
	if err := os.Mkdir(path, 0o750); err != nil {
		return nil, fmt.Errorf("workspace: create job directory: %w", err)
	}
	return &Dir{path: path, log: m.log}, nil
}

// Sweep removes job directories last modified before now minus olderThan
// (Config.StaleAfter when zero) and returns how many were removed.
func (m *Manager) Sweep(olderThan time.Duration) (int, error) {
	if olderThan == 0 {
		olderThan = m.cfg.StaleAfter
	}
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return 0, fmt.Errorf("workspace: list root: %w", err)
	}
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.root, e.Name())); err != nil {
			m.log.Warn("failed to remove stale job directory", logger.Fields("dir", e.Name(), logger.FieldError, err.Error()))
			continue
		}
		removed++
	}
	if removed > 0 {
		m.log.Info("swept stale job directories", logger.Fields("removed", removed))
	}
	return removed, nil
}

// Dir is one job's scratch directory.
type Dir struct {
	path string
	log  *logger.Logger
	once sync.Once
	err  error
}

// Path returns the directory path, or the path of name inside it.
func (d *Dir) Path(name ...string) string {
	if len(name) == 0 {
		return d.path
	}
	return filepath.Join(d.path, filepath.Base(name[0]))
}

// Files lists the regular files currently in the directory, sorted.
func (d *Dir) Files() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("workspace: list job directory: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Cleanup removes the directory and everything in it. Safe to call more than once.
func (d *Dir) Cleanup() error {
	d.once.Do(func() {
		if err := os.RemoveAll(d.path); err != nil {
			d.err = fmt.Errorf("workspace: remove job directory: %w", err)
			d.log.Warn("job directory cleanup failed", logger.Fields("dir", d.path, logger.FieldError, err.Error()))
		}
	})
	return d.err
}

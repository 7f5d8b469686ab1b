package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
	"pkt.systems/workbench/schema"
)

// SurfaceRecord captures a permanent surface for persistence.
type SurfaceRecord struct {
	ID       schema.SurfaceID `json:"id"`
	Resource schema.Resource  `json:"resource"`
	Title    string           `json:"title,omitempty"`
}

// GroupSnapshot captures a layout group and its ordered surfaces.
type GroupSnapshot struct {
	ID       schema.GroupID   `json:"id"`
	Kind     schema.GroupKind `json:"kind"`
	Surfaces []SurfaceRecord  `json:"surfaces,omitempty"`
}

// LayoutSnapshot captures the permanent workbench layout. The preview
// slot is deliberately absent; preview state never survives a restart.
type LayoutSnapshot struct {
	Groups []GroupSnapshot `json:"groups"`
	// Active records the focused resource. Surface IDs are minted per
	// process, so restore matches by resource instead.
	Active schema.Resource   `json:"active,omitempty"`
	Recent []schema.Resource `json:"recent,omitempty"`
}

const layoutFile = "layout.json"

// Store persists the layout snapshot to disk.
type Store struct {
	dir string
	log pslog.Logger
}

// NewStore constructs a persistent store at the given directory.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs a persistent store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_dir", dir)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Load reads the layout snapshot from disk.
func (s *Store) Load() (LayoutSnapshot, bool, error) {
	path := filepath.Join(s.dir, layoutFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if s.log != nil {
				s.log.Debug("layout load miss")
			}
			return LayoutSnapshot{}, false, nil
		}
		if s.log != nil {
			s.log.Warn("layout load failed", "err", err)
		}
		return LayoutSnapshot{}, false, err
	}
	var snapshot LayoutSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		if s.log != nil {
			s.log.Warn("layout load failed", "err", err)
		}
		return LayoutSnapshot{}, false, err
	}
	if s.log != nil {
		s.log.Debug("layout load ok", "groups", len(snapshot.Groups))
	}
	return snapshot, true, nil
}

// Save writes the layout snapshot to disk atomically.
func (s *Store) Save(snapshot LayoutSnapshot) error {
	path := filepath.Join(s.dir, layoutFile)
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		if s.log != nil {
			s.log.Warn("layout save failed", "err", err)
		}
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "layout-*.json")
	if err != nil {
		if s.log != nil {
			s.log.Warn("layout save failed", "err", err)
		}
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("layout save failed", "err", err)
		}
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("layout save failed", "err", err)
		}
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("layout save failed", "err", err)
		}
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("layout save failed", "err", err)
		}
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		if s.log != nil {
			s.log.Warn("layout save failed", "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Trace("layout save ok", "groups", len(snapshot.Groups))
	}
	return nil
}

package store

import (
	"cmp"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability"
)

// FileStore keeps each record as dir/<group>/<id>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// DefaultDir returns the per-user data directory for stored rankings.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "wrestlerank", "rankings"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "wrestlerank", "rankings"), nil
}

// Save writes rec as indented JSON.
func (s *FileStore) Save(ctx context.Context, rec *Record) (err error) {
	start := time.Now()
	defer func() { observability.Store().OnSave(ctx, "file", rec.Group, time.Since(start), err) }()

	if err := prepare(rec); err != nil {
		return err
	}
	groupDir := filepath.Join(s.dir, rec.Group)
	if err := os.MkdirAll(groupDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(groupDir, rec.ID+".json"), data, 0o644)
}

// Latest returns the newest record for group.
func (s *FileStore) Latest(ctx context.Context, group string) (*Record, error) {
	recs, err := s.List(ctx, group, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFound(group)
	}
	return recs[0], nil
}

// List reads every record for group and returns them newest first.
func (s *FileStore) List(ctx context.Context, group string, limit int) (recs []*Record, err error) {
	start := time.Now()
	defer func() { observability.Store().OnLoad(ctx, "file", group, time.Since(start), err) }()

	if err := errors.ValidateGroupName(group); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, group))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, group, e.Name()))
		if err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode stored ranking %s", e.Name())
		}
		recs = append(recs, &rec)
	}

	slices.SortFunc(recs, func(a, b *Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)

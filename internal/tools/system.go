package tools

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/ShayCichocki/codi/pkg/models"
)

// SystemTool exposes read-only filesystem inspection.
type SystemTool struct {
	guard *Guard
}

// NewSystemTool creates a system tool confined by guard.
func NewSystemTool(guard *Guard) *SystemTool {
	return &SystemTool{guard: guard}
}

// DirEntry is one item of a directory listing.
type DirEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// DirListing is returned by list_directory.
type DirListing struct {
	Path    string     `json:"path"`
	Entries []DirEntry `json:"entries"`
}

// Invoke implements Capability.
func (s *SystemTool) Invoke(ctx context.Context, action models.Action) (any, error) {
	p, ok := action.Params.(models.ListDirectoryParams)
	if !ok {
		return nil, fmt.Errorf("%w: system tool cannot handle %s", ErrUnsupportedAction, action.Type)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.list(p.Path)
}

func (s *SystemTool) list(p string) (DirListing, error) {
	dir, err := s.guard.Resolve(p)
	if err != nil {
		return DirListing{}, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return DirListing{}, fmt.Errorf("read directory: %w", err)
	}

	listing := DirListing{Path: s.guard.Rel(dir), Entries: make([]DirEntry, 0, len(entries))}
	for _, e := range entries {
		if s.hidden(dir, e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		listing.Entries = append(listing.Entries, DirEntry{Name: e.Name(), IsDir: e.IsDir(), Size: info.Size()})
	}
	return listing, nil
}

// hidden reports whether an entry is covered by a denied pattern.
func (s *SystemTool) hidden(dir, name string) bool {
	denied, _ := s.guard.denied(path.Join(s.guard.Rel(dir), name))
	return denied
}

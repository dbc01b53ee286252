package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ShayCichocki/codi/pkg/models"
)

// CodeTool writes source files. Generate creates or overwrites a file;
// modify replaces the content of a file that must already exist.
type CodeTool struct {
	guard *Guard
}

// NewCodeTool creates a code tool confined by guard.
func NewCodeTool(guard *Guard) *CodeTool {
	return &CodeTool{guard: guard}
}

// Invoke implements Capability.
func (c *CodeTool) Invoke(ctx context.Context, act models.Action) (any, error) {
	p, ok := act.Params.(models.WriteCodeParams)
	if !ok {
		return nil, fmt.Errorf("%w: code tool cannot handle %s", ErrUnsupportedAction, act.Type)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := c.guard.Resolve(p.Path)
	if err != nil {
		return nil, err
	}
	if p.Operation == models.CodeModify {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("modify %s: file does not exist", p.Path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(p.Content), 0644); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}
	rel := c.guard.Rel(path)
	return FileWriteResult{
		Path:    rel,
		Bytes:   len(p.Content),
		Message: fmt.Sprintf("Code %s: %s", p.Operation, rel),
	}, nil
}

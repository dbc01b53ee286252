package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.yaml.in/yaml/v3"
)

var (
	// ErrPathEscapesWorkspace is returned for paths that resolve outside the workspace.
	ErrPathEscapesWorkspace = errors.New("path escapes workspace")
	// ErrPathDenied is returned for paths matching a denied pattern.
	ErrPathDenied = errors.New("path denied")
)

// DefaultDeniedPatterns are workspace-relative globs capabilities may never touch.
var DefaultDeniedPatterns = []string{
	"**/.git/**",
	"**/.ssh/**",
	"**/*.pem",
	"**/*.key",
	"**/.env",
	"**/secrets/**",
	"**/credentials/**",
}

// Guard confines capability paths to a workspace root and rejects paths
// matching denied glob patterns.
type Guard struct {
	root     string
	patterns []string
	mu       sync.RWMutex
}

// guardConfig is the YAML layout accepted by LoadConfig.
type guardConfig struct {
	Guard struct {
		Denied []string `yaml:"denied"`
	} `yaml:"guard"`
}

// NewGuard creates a guard rooted at root with the default denied patterns.
func NewGuard(root string) (*Guard, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}
	return &Guard{
		root:     filepath.Clean(abs),
		patterns: append([]string{}, DefaultDeniedPatterns...),
	}, nil
}

// Root returns the absolute workspace root.
func (g *Guard) Root() string {
	return g.root
}

// Deny adds a denied glob pattern.
func (g *Guard) Deny(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid pattern %q", pattern)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.patterns = append(g.patterns, pattern)
	return nil
}

// LoadConfig appends denied patterns from a YAML file.
func (g *Guard) LoadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var cfg guardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse guard config: %w", err)
	}
	for _, p := range cfg.Guard.Denied {
		if err := g.Deny(p); err != nil {
			return err
		}
	}
	return nil
}

// Resolve maps a caller-supplied path to an absolute path inside the workspace.
func (g *Guard) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path is empty")
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(g.root, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(g.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesWorkspace, path)
	}

	if ok, pattern := g.denied(filepath.ToSlash(rel)); ok {
		return "", fmt.Errorf("%w: %s matches %s", ErrPathDenied, path, pattern)
	}
	return abs, nil
}

// Rel returns path relative to the workspace root, slash separated.
func (g *Guard) Rel(abs string) string {
	rel, err := filepath.Rel(g.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

func (g *Guard) denied(rel string) (bool, string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, p := range g.patterns {
		if match, _ := doublestar.Match(p, rel); match {
			return true, p
		}
		// Patterns such as **/.git/** also cover the directory itself.
		if match, _ := doublestar.Match(p, rel+"/"); match {
			return true, p
		}
	}
	return false, ""
}

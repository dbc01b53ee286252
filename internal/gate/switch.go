package gate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ShayCichocki/codi/internal/logging"
)

// Switch is the global agentic enablement flag plus a kill file. While the
// kill file exists, agentic execution is disabled even if enabled is set.
type Switch struct {
	enabled  bool
	killPath string
	logger   *slog.Logger

	mu     sync.RWMutex
	killed bool

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// NewSwitch creates a switch. When killPath is non-empty its directory is
// created and watched so that creating the file takes effect immediately.
func NewSwitch(enabled bool, killPath string, logger *slog.Logger) (*Switch, error) {
	s := &Switch{
		enabled:  enabled,
		killPath: killPath,
		logger:   logging.OrNop(logger).With("component", "gate"),
		done:     make(chan struct{}),
	}
	if killPath == "" {
		return s, nil
	}

	dir := filepath.Dir(killPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create signals directory: %w", err)
	}
	if _, err := os.Stat(killPath); err == nil {
		s.killed = true
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without watcher; Engaged falls back to stat.
		s.logger.Warn("kill switch watcher unavailable", "error", err)
		return s, nil
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		s.logger.Warn("kill switch watcher unavailable", "error", err)
		return s, nil
	}
	s.watcher = watcher
	go s.watch()
	return s, nil
}

func (s *Switch) watch() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.killPath) {
				continue
			}
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				s.set(true)
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				s.set(false)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Debug("kill switch watcher error", "error", err)
		}
	}
}

func (s *Switch) set(killed bool) {
	s.mu.Lock()
	changed := s.killed != killed
	s.killed = killed
	s.mu.Unlock()
	if changed {
		s.logger.Warn("agentic kill switch changed", "engaged", killed)
	}
}

// Engaged reports whether the kill switch is active. With a watcher running
// this is the state the watcher maintains; without one the kill file is
// checked directly.
func (s *Switch) Engaged() bool {
	if s.watcher == nil && s.killPath != "" {
		_, err := os.Stat(s.killPath)
		switch {
		case err == nil:
			s.set(true)
		case os.IsNotExist(err):
			s.set(false)
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.killed
}

// AgenticEnabled implements FlagSource.
func (s *Switch) AgenticEnabled() bool {
	return s.enabled && !s.Engaged()
}

// Kill creates the kill file.
func (s *Switch) Kill() error {
	if s.killPath == "" {
		s.set(true)
		return nil
	}
	return os.WriteFile(s.killPath, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// Clear removes the kill file and resets the switch.
func (s *Switch) Clear() error {
	s.set(false)
	if s.killPath == "" {
		return nil
	}
	if err := os.Remove(s.killPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close stops the watcher.
func (s *Switch) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}

package server

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"resumescreen/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// Reloader is anything that can re-read its certificate material
type Reloader interface {
	Reload(ctx context.Context) error
}

// CertWatcher watches certificate files and reloads the store after writes settle
type CertWatcher struct {
	files         []string
	debounceDelay time.Duration
	target        Reloader
	logger        *errors.Logger
}

// NewCertWatcher watches the given files; empty paths are ignored
func NewCertWatcher(target Reloader, debounceDelay time.Duration, logger *errors.Logger, files ...string) *CertWatcher {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}

	var watched []string
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		watched = append(watched, abs)
	}

	return &CertWatcher{
		files:         watched,
		debounceDelay: debounceDelay,
		target:        target,
		logger:        logger,
	}
}

// Run blocks until ctx is cancelled, reloading the target after each burst of changes
func (cw *CertWatcher) Run(ctx context.Context) error {
	if len(cw.files) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			cw.logger.LogError(err, "Failed to close certificate watcher")
		}
	}()

	// Directories rather than files, so atomic rename-into-place is seen.
	for _, dir := range cw.directories() {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	cw.logger.Info("Certificate file watcher started",
		"files", cw.files,
		"debounce_delay", cw.debounceDelay)

	timer := time.NewTimer(cw.debounceDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			cw.logger.Info("Certificate file watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !cw.relevant(event) {
				continue
			}
			cw.logger.Debug("Certificate file changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(cw.debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cw.logger.LogError(err, "Certificate watcher error")

		case <-timer.C:
			// Reload logs and records its own failures; keep watching either way.
			_ = cw.target.Reload(ctx)
		}
	}
}

func (cw *CertWatcher) directories() []string {
	var dirs []string
	for _, f := range cw.files {
		dir := filepath.Dir(f)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// relevant reports whether the event touches a watched file with a content-changing op
func (cw *CertWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		name = event.Name
	}
	return slices.Contains(cw.files, name)
}

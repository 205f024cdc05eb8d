package generator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// Watch runs once and then again whenever the input document, the mapping
// file or a base class source changes. Bursts of events within the debounce
// window trigger a single run. Failed runs are logged and watching goes on.
// Watch returns when ctx is done.
func (g *Generator) Watch(ctx context.Context) error {
	if _, err := g.Run(ctx, "watch"); err != nil && !IsNamingFailure(err) {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	// Directories are watched rather than files: editors replace files on
	// save, which drops a watch on the file itself.
	watched := g.watchedFiles()
	dirs := make(map[string]bool)
	for file := range watched {
		dir := filepath.Dir(file)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	g.logger.Info("watching for changes", slog.Int("files", len(watched)))

	debounce := g.cfg.Watch.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] || !isContentEvent(event) {
				continue
			}
			g.logger.Debug("change detected", slog.String("file", event.Name), slog.String("op", event.Op.String()))
			pending = true
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn("watch error", slog.String("error", err.Error()))
		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			// Run logs its own failures.
			_, _ = g.Run(ctx, "watch")
		}
	}
}

func (g *Generator) watchedFiles() map[string]bool {
	files := map[string]bool{
		filepath.Clean(g.cfg.Input.Path):    true,
		filepath.Clean(g.cfg.MappingFile()): true,
	}
	for _, source := range g.cfg.Naming.BaseClassSources {
		files[filepath.Clean(source)] = true
	}
	return files
}

func isContentEvent(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

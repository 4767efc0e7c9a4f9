package main

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is the quiet period after the last change before regenerating.
const debounce = 200 * time.Millisecond

// watcher regenerates the builders when a schema file changes.
type watcher struct {
	paths  []string
	target string
	logger *slog.Logger
	run    func(context.Context) error

	// dirs are watched directories whose schema files all count.
	dirs map[string]bool
	// files are watched files inside directories that are otherwise ignored.
	files map[string]bool
}

// watch blocks until ctx is done. Paths that do not exist on disk, such
// as package patterns, are not watched.
func (w *watcher) watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	w.dirs, w.files = make(map[string]bool), make(map[string]bool)
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			w.logger.Warn("typestate: path is not watched", slog.String("path", p))
			continue
		}
		dir := abs
		if info.IsDir() {
			w.dirs[abs] = true
		} else {
			w.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if err := fw.Add(dir); err != nil {
			return err
		}
	}
	if t, err := filepath.Abs(w.target); err == nil {
		w.target = t
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("typestate: change", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("typestate: watch error", slog.String("error", err.Error()))
		case <-fire:
			fire = nil
			if err := w.run(ctx); err != nil {
				w.logger.Error("typestate: generation failed", slog.String("error", err.Error()))
			}
		}
	}
}

// relevant reports whether an event changes a schema. Events on the
// target directory are ignored unless the target is also a schema
// directory, in which case only generated files are ignored.
func (w *watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(ev.Name)
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if w.files[name] {
		return true
	}
	dir := filepath.Dir(name)
	if !w.dirs[dir] {
		return false
	}
	if dir == w.target && generated(name) {
		return false
	}
	switch filepath.Ext(base) {
	case ".go":
		return !strings.HasSuffix(base, "_test.go")
	case ".yml", ".yaml", ".json":
		return true
	}
	return false
}

// generated reports whether the file carries a generated-code header.
func generated(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return strings.HasSuffix(path, "_builder.go")
	}
	defer f.Close()
	line, _ := bufio.NewReader(f).ReadString('\n')
	return strings.HasPrefix(line, "// Code generated")
}

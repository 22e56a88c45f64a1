package batch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/label-verifier/constants"
)

type WatchConfig struct {
	Root       string
	SkipHidden bool
	// Debounce coalesces bursts of events for the same submission, default 500ms.
	Debounce time.Duration
}

// Watch emits a freshly loaded Submission whenever a manifest or label image
// under cfg.Root is created, written or renamed. Directories created after the
// watch starts are picked up. The channel is closed when ctx is done.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan Submission, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, errors.New("root directory is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addTree(w, cfg.Root, cfg.SkipHidden); err != nil {
		_ = w.Close()
		return nil, err
	}

	out := make(chan Submission)
	go func() {
		defer close(out)
		defer w.Close()

		pending := map[string]struct{}{}
		var timer *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() && !(cfg.SkipHidden && isHidden(e.Name)) {
						if err := addTree(w, e.Name, cfg.SkipHidden); err != nil {
							logger.Warn("watch new directory failed", "path", e.Name, "error", err)
						}
						// files copied in with the directory produce no events of their own
						pending[e.Name] = struct{}{}
					}
				}
				if relevant(e) {
					pending[filepath.Dir(e.Name)] = struct{}{}
				}
				if len(pending) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(cfg.Debounce)
				} else {
					timer.Reset(cfg.Debounce)
				}
				fire = timer.C
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error", "error", err)
			case <-fire:
				fire = nil
				dirs := make([]string, 0, len(pending))
				for dir := range pending {
					dirs = append(dirs, dir)
					delete(pending, dir)
				}
				sort.Strings(dirs)
				for _, dir := range dirs {
					if _, err := os.Stat(filepath.Join(dir, ManifestName)); err != nil {
						continue
					}
					select {
					case out <- loadSubmission(cfg.Root, dir):
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out, nil
}

func relevant(e fsnotify.Event) bool {
	if !e.Op.Has(fsnotify.Create) && !e.Op.Has(fsnotify.Write) && !e.Op.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(e.Name)
	if isHidden(name) {
		return false
	}
	return name == ManifestName || constants.IsAllowedImageExt(filepath.Ext(name))
}

func addTree(w *fsnotify.Watcher, root string, skipHidden bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipHidden && path != root && isHidden(path) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

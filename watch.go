package streamrpc

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchEndpointFile configures conn from the URL stored in path and again
// whenever the file changes, until ctx is done. The file holds a single URL;
// surrounding whitespace is ignored. The directory is watched rather than the
// file so that editors replacing the file by rename are followed.
//
// A file that is missing, empty or yields no host is logged and skipped; the
// connector keeps its previous endpoint. WatchEndpointFile returns nil when ctx
// ends and an error when the watcher cannot be set up.
func WatchEndpointFile(ctx context.Context, path string, conn Connector, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve endpoint file: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		// Best-effort watcher close; no actionable error handling path.
		_ = w.Close()
	}()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var last string
	apply := func() {
		b, err := os.ReadFile(abs)
		if err != nil {
			logger.DebugContext(ctx, "endpoint file unreadable", slog.String("path", abs), slog.String("err", err.Error()))
			return
		}
		url := string(bytes.TrimSpace(b))
		if url == "" || url == last {
			return
		}
		if err := conn.Configure(url); err != nil {
			logger.WarnContext(ctx, "endpoint file rejected", slog.String("path", abs), slog.String("url", url), slog.String("err", err.Error()))
			return
		}
		last = url
		logger.InfoContext(ctx, "endpoint reconfigured", slog.String("path", abs), slog.String("url", url))
	}

	apply()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				apply()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.DebugContext(ctx, "fsnotify error", slog.String("err", err.Error()))
		}
	}
}

package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watch reloads the engine whenever the lineage document changes. Editors
// often replace a file instead of writing it, so the parent directory is
// watched and events are filtered by name.
func (s *Server) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	path, err := filepath.Abs(s.cfg.Path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	s.logger.Debug("watching", "path", path)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != path {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(s.cfg.Debounce, func() {
				s.logger.Debug("document changed, reloading", "path", path)
				if err := s.Reload(ctx); err != nil {
					s.logger.Error("reload failed", "error", err)
					return
				}
				s.notifier.broadcast()
			})

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// notifier pings subscribed event streams after a reload.
type notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]struct{}
}

func newNotifier() *notifier {
	return &notifier{listeners: make(map[chan struct{}]struct{})}
}

func (n *notifier) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

func (n *notifier) unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
}

// broadcast never blocks: a listener with a pending ping is skipped.
func (n *notifier) broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for ch := range n.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// handleEvents streams a "reload" server-sent event after every successful
// reload, so an open viewer can fetch the new view.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates := s.notifier.subscribe()
	defer s.notifier.unsubscribe(updates)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-updates:
			if _, err := fmt.Fprint(w, "event: reload\ndata: {}\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

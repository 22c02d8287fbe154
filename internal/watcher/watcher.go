package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reason says why a collection pass was triggered.
type Reason string

const (
	ReasonStartup  Reason = "startup"
	ReasonChange   Reason = "change"
	ReasonInterval Reason = "interval"
)

const (
	defaultDebounce     = 500 * time.Millisecond
	defaultPollInterval = 2 * time.Second
)

// Watcher calls onTrigger when a log under one of its roots changes, and at
// least once per refresh interval. Calls never overlap: they all run on the
// goroutine that called Run.
type Watcher struct {
	roots        []string
	refresh      time.Duration
	debounce     time.Duration
	pollInterval time.Duration
	onTrigger    func(Reason)

	sigs map[string]fileSig
}

type fileSig struct {
	size    int64
	modTime time.Time
}

func New(roots []string, refresh time.Duration, onTrigger func(Reason)) *Watcher {
	if refresh <= 0 {
		refresh = time.Minute
	}
	poll := defaultPollInterval
	if refresh < poll {
		poll = refresh
	}
	return &Watcher{
		roots:        roots,
		refresh:      refresh,
		debounce:     defaultDebounce,
		pollInterval: poll,
		onTrigger:    onTrigger,
		sigs:         make(map[string]fileSig),
	}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.scan()
	w.onTrigger(ReasonStartup)

	refresh := time.NewTicker(w.refresh)
	defer refresh.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	var poll <-chan time.Time

	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		defer fsw.Close()
		for _, root := range w.roots {
			addTree(fsw, root)
		}
		events, errs = fsw.Events, fsw.Errors
	} else {
		log.Printf("[watcher] fsnotify unavailable, polling every %s: %v", w.pollInterval, err)
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		poll = ticker.C
	}

	var debounce *time.Timer
	var fire <-chan time.Time
	pending := func() {
		if debounce == nil {
			debounce = time.NewTimer(w.debounce)
		} else {
			debounce.Reset(w.debounce)
		}
		fire = debounce.C
	}
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					addTree(fsw, event.Name)
					continue
				}
			}
			if relevant(event.Name) && event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("[watcher] %v", err)
		case <-poll:
			if w.scan() {
				pending()
			}
		case <-fire:
			fire = nil
			w.scan()
			w.onTrigger(ReasonChange)
			refresh.Reset(w.refresh)
		case <-refresh.C:
			w.scan()
			w.onTrigger(ReasonInterval)
		}
	}
}

// scan refreshes the size/mtime of every tracked file and reports whether
// anything changed since the previous scan.
func (w *Watcher) scan() bool {
	next := make(map[string]fileSig, len(w.sigs))
	for _, root := range w.roots {
		_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || !relevant(path) {
				return nil
			}
			next[path] = fileSig{size: info.Size(), modTime: info.ModTime()}
			return nil
		})
	}

	changed := len(next) != len(w.sigs)
	if !changed {
		for path, sig := range next {
			prev, ok := w.sigs[path]
			if !ok || prev.size != sig.size || !prev.modTime.Equal(sig.modTime) {
				changed = true
				break
			}
		}
	}
	w.sigs = next
	return changed
}

func addTree(fsw *fsnotify.Watcher, root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && info.IsDir() {
			if err := fsw.Add(path); err != nil {
				log.Printf("[watcher] cannot watch %s: %v", path, err)
			}
		}
		return nil
	})
}

func relevant(path string) bool {
	switch filepath.Ext(path) {
	case ".jsonl", ".json":
		return true
	}
	return false
}

package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/rabbithole/pkg/core"
)

// DefaultDebounce is the quiet period before a changed file is re-imported.
const DefaultDebounce = 50 * time.Millisecond

// WatchConfig configures a WatchWorker.
type WatchConfig struct {
	Files    []string
	Store    core.Store
	Registry *Registry
	Logger   *slog.Logger
	Debounce time.Duration
	// OnImport, when set, is called after every re-import attempt.
	OnImport func(path string, records int, err error)
}

// WatchWorker re-imports files into a store whenever they change on disk.
type WatchWorker struct {
	*worker.BaseWorker
	config    WatchConfig
	files     map[string]string // absolute path -> path as given
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	index     *importIndex
	cancel    context.CancelFunc

	imports  atomic.Uint64
	skipped  atomic.Uint64
	failures atomic.Uint64
}

// NewWatchWorker creates a worker for the configured files.
func NewWatchWorker(config WatchConfig) *WatchWorker {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Registry == nil {
		config.Registry = DefaultRegistry(false)
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	return &WatchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		config:     config,
		files:      make(map[string]string),
		index:      newImportIndex(),
	}
}

// Start begins watching. Parent directories are watched so that editors
// replacing files by rename are noticed.
func (w *WatchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for _, f := range w.config.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = watcher.Close()
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = f
		w.seed(abs, f)
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.config.Debounce)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	w.config.Logger.Debug("watching files", "files", len(w.files), "dirs", len(dirs))
	return w.StartFunc(runCtx, w.run)
}

// Stop ends the event loop.
func (w *WatchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

// State reports the worker state for supervisors.
func (w *WatchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"files":             strconv.Itoa(len(w.config.Files)),
			"imports":           strconv.FormatUint(w.imports.Load(), 10),
			"skipped":           strconv.FormatUint(w.skipped.Load(), 10),
			"failures":          strconv.FormatUint(w.failures.Load(), 10),
		}
	})
}

// Imports returns the number of successful re-imports.
func (w *WatchWorker) Imports() uint64 {
	return w.imports.Load()
}

// Skipped returns the number of change events whose file content was
// unchanged since the last import.
func (w *WatchWorker) Skipped() uint64 {
	return w.skipped.Load()
}

// seed indexes the current content of a file, assumed already imported, so
// the first change can tell which titles were removed.
func (w *WatchWorker) seed(abs, path string) {
	data, records, err := readFile(w.config.Registry, path)
	if err != nil {
		w.config.Logger.Debug("seed skipped", "path", path, "error", err)
		return
	}
	w.index.Set(abs, data, records)
}

func (w *WatchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if w.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.config.Logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				w.config.Logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer w.watcher.Close()

	err = w.mainEventLoop(ctx)

	// Wait for in-flight imports so none writes to the store after Stop.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *WatchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.config.Logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func (w *WatchWorker) processFilesystemEvent(event fsnotify.Event) {
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	path, ok := w.files[abs]
	if !ok {
		return
	}
	w.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	w.debouncer.add(abs, func() { w.reimport(abs, path) })
}

// reimport puts the records of a changed file and deletes the titles the
// file no longer defines.
func (w *WatchWorker) reimport(abs, path string) {
	data, records, err := readFile(w.config.Registry, path)
	if err == nil && w.index.Fresh(abs, data) {
		w.skipped.Add(1)
		w.config.Logger.Debug("content unchanged", "path", path)
		return
	}
	if err == nil && len(records) == 0 {
		err = fmt.Errorf("no records in %s", path)
	}
	if err != nil {
		w.failures.Add(1)
		w.config.Logger.Warn("re-import failed", "path", path, "error", err)
		w.notify(path, 0, err)
		return
	}

	dropped := w.index.Set(abs, data, records)
	w.config.Store.Batch(func() {
		for _, r := range records {
			w.config.Store.Put(r)
		}
		for _, title := range dropped {
			w.config.Store.Delete(title)
		}
	})
	w.imports.Add(1)
	w.config.Logger.Info("re-imported", "path", path, "records", len(records), "removed", len(dropped))
	w.notify(path, len(records), nil)
}

func (w *WatchWorker) notify(path string, records int, err error) {
	if w.config.OnImport != nil {
		w.config.OnImport(path, records, err)
	}
}

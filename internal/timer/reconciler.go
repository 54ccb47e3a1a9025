package timer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sadopc/studyboost/internal/logging"
)

// selfWriteWindow is how long after a local snapshot save the watcher treats
// file events as echoes of that save rather than another process writing.
const selfWriteWindow = 2 * time.Second

// Reconciler corrects the engine's displayed remaining time whenever the
// runtime regains the foreground. Terminal focus and resume signals arrive
// through Wake; an fsnotify watch on the snapshot file additionally surfaces
// writes made by another process as wake events. Registration is symmetric:
// Start acquires the watcher, Close releases it.
type Reconciler struct {
	engine  *Engine
	watcher *fsnotify.Watcher
	path    string
	events  chan struct{}
	done    chan struct{}
}

func NewReconciler(engine *Engine) *Reconciler {
	return &Reconciler{
		engine: engine,
		events: make(chan struct{}, 1),
	}
}

// Wake recomputes remaining time immediately, without waiting for the next
// scheduled tick. Returns the completion transition if the session ran out
// while the environment was suspended.
func (r *Reconciler) Wake() *Transition {
	return r.engine.Reconcile(r.engine.clock.Now())
}

// Sleep persists current state before the environment loses the foreground.
func (r *Reconciler) Sleep() {
	r.engine.PersistNow()
}

// Start begins watching the engine's snapshot file for external writes.
// Safe to call when the watcher cannot be created; the reconciler then only
// serves explicit Wake/Sleep calls.
func (r *Reconciler) Start() error {
	if r.watcher != nil {
		return fmt.Errorf("reconciler already started")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: the snapshot is replaced by rename, which drops
	// a watch on the file itself.
	r.path = r.engine.snaps.Path(r.engine.userID)
	if err := w.Add(filepath.Dir(r.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch snapshot dir: %w", err)
	}
	r.watcher = w
	r.done = make(chan struct{})
	go r.loop()
	return nil
}

// Events signals that the snapshot changed on disk outside this process.
// The UI treats each signal like a focus regain.
func (r *Reconciler) Events() <-chan struct{} {
	return r.events
}

func (r *Reconciler) loop() {
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != r.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if r.engine.snaps.WroteRecently(selfWriteWindow) {
				continue
			}
			select {
			case r.events <- struct{}{}:
			default: // a wake is already pending
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			logging.Errorf("snapshot watcher", err)
		case <-r.done:
			return
		}
	}
}

// Close releases the watcher. Always paired with Start.
func (r *Reconciler) Close() error {
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	err := r.watcher.Close()
	r.watcher = nil
	return err
}

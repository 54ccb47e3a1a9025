package timer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sadopc/studyboost/internal/logging"
	"github.com/sadopc/studyboost/internal/store"
)

// Snapshot is the durable record of the active session. It is written
// synchronously on every mutation so a crash never loses more than the
// in-memory delta since the last tick. Remaining time is never stored; it is
// recomputed from Session.StartTime on load.
type Snapshot struct {
	Session      store.Session `json:"session"`
	IsRunning    bool          `json:"is_running"`
	LastObserved time.Time     `json:"last_observed"`
	CycleIndex   int           `json:"cycle_index,omitempty"`
}

// SnapshotStore persists snapshots to per-user JSON files and mirrors
// session rows to the record store. File writes are synchronous and atomic;
// store writes are fire-and-forget.
type SnapshotStore struct {
	dir    string
	record *store.Store

	// lastWrite lets the file watcher tell our own saves apart from writes
	// made by another process. Unix nanoseconds.
	lastWrite atomic.Int64
}

func NewSnapshotStore(dir string, record *store.Store) *SnapshotStore {
	return &SnapshotStore{dir: dir, record: record}
}

// Path returns the snapshot file for a user, key format
// "pomodoro-session-<userID>.json".
func (p *SnapshotStore) Path(userID string) string {
	return filepath.Join(p.dir, "pomodoro-session-"+userID+".json")
}

// Save writes the snapshot atomically (temp file + rename).
func (p *SnapshotStore) Save(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	path := p.Path(snap.Session.UserID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	p.lastWrite.Store(time.Now().UnixNano())
	return nil
}

// WroteRecently reports whether this process saved or cleared a snapshot
// within the window. Used to keep local saves from re-entering as external
// change events.
func (p *SnapshotStore) WroteRecently(window time.Duration) bool {
	last := p.lastWrite.Load()
	if last == 0 {
		return false
	}
	return time.Since(time.Unix(0, last)) < window
}

// Load reads the user's snapshot. A missing or corrupt file reads as no
// session; corruption is logged and the file removed so it cannot wedge
// startup forever.
func (p *SnapshotStore) Load(userID string) (*Snapshot, error) {
	path := p.Path(userID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil || snap.Session.ID == "" {
		logging.Errorf("discarding corrupt snapshot "+path, err)
		_ = os.Remove(path)
		return nil, nil
	}
	return &snap, nil
}

// RecoverOpen rebuilds a snapshot from the record store's open session row,
// covering a lost or deleted snapshot file. The recovered session resumes in
// the running state; the wall-clock derivation settles whether it already
// finished.
func (p *SnapshotStore) RecoverOpen(userID string) (*Snapshot, error) {
	if p.record == nil {
		return nil, nil
	}
	sess, err := p.record.GetOpenSession(userID)
	if err != nil || sess == nil {
		return nil, err
	}
	return &Snapshot{Session: *sess, IsRunning: true, LastObserved: sess.StartTime}, nil
}

// Clear removes the user's snapshot file.
func (p *SnapshotStore) Clear(userID string) error {
	err := os.Remove(p.Path(userID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	p.lastWrite.Store(time.Now().UnixNano())
	return nil
}

// MirrorInsert copies a freshly started session to the record store.
// Failures are logged and otherwise ignored: local state is authoritative.
func (p *SnapshotStore) MirrorInsert(sess store.Session) {
	if p.record == nil {
		return
	}
	go func() {
		logging.Errorf("mirror session insert", p.record.InsertSession(&sess))
	}()
}

// MirrorUpdate copies a stop or completion to the record store.
func (p *SnapshotStore) MirrorUpdate(sess store.Session) {
	if p.record == nil {
		return
	}
	go func() {
		logging.Errorf("mirror session update", p.record.UpdateSession(&sess))
	}()
}

// MirrorRetire closes abandoned rows for the user in the record store.
func (p *SnapshotStore) MirrorRetire(userID string, now time.Time) {
	if p.record == nil {
		return
	}
	go func() {
		logging.Errorf("mirror session retire", p.record.RetireOpenSessions(userID, now))
	}()
}

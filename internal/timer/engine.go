// Package timer implements the wall-clock pomodoro engine. Remaining time is
// always derived from the session's absolute start timestamp, never from a
// decremented counter, so the countdown self-heals after any period in which
// ticks were not delivered (suspend, reload, device sleep).
package timer

import (
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/studyboost/internal/logging"
	"github.com/sadopc/studyboost/internal/store"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
)

// StatsRecorder counts naturally completed sessions. RecordFocus returns the
// day's pomodoro count including the one just recorded, which drives the
// long-break decision.
type StatsRecorder interface {
	RecordFocus(userID string, durationSecs int, now time.Time) (int, error)
	RecordBreak(userID string, durationSecs int, now time.Time) error
}

// Notifier is told about natural completions, exactly once each.
type Notifier interface {
	SessionComplete(finished store.Session, next Decision)
}

// Transition reports a natural completion: the finished session, the policy
// decision, and the session the engine started in its place.
type Transition struct {
	Finished store.Session
	Next     Decision
	Started  *store.Session
}

// Engine owns the canonical session state for one user. It is driven from a
// single goroutine (the UI update loop); persistence and mirroring fan out
// from here.
type Engine struct {
	clock    Clock
	userID   string
	snaps    *SnapshotStore
	stats    StatsRecorder
	notifier Notifier
	policy   func() Policy

	phase           Phase
	session         *store.Session
	lastObserved    time.Time
	frozenRemaining int // valid while paused
	cycleIndex      int
	focusCompleted  int // local fallback for the long-break decision
	epoch           int
}

func NewEngine(clock Clock, userID string, snaps *SnapshotStore, stats StatsRecorder, notifier Notifier, policy func() Policy) *Engine {
	if policy == nil {
		policy = func() Policy { return DefaultPolicy }
	}
	return &Engine{
		clock:      clock,
		userID:     userID,
		snaps:      snaps,
		stats:      stats,
		notifier:   notifier,
		policy:     policy,
		cycleIndex: 1,
	}
}

func (e *Engine) Phase() Phase            { return e.phase }
func (e *Engine) Session() *store.Session { return e.session }
func (e *Engine) CycleIndex() int         { return e.cycleIndex }

// Epoch identifies the current tick schedule. Scheduled ticks echo it back;
// a mismatch means the tick belongs to a session that no longer exists and
// must be ignored. This replaces dangling interval handles with an owned,
// explicitly-invalidated schedule.
func (e *Engine) Epoch() int { return e.epoch }

// Remaining derives the seconds left at now. For a running session this is
// always max(0, duration - floor(now - startTime)); a paused session reports
// the value frozen at pause time.
func (e *Engine) Remaining(now time.Time) int {
	switch e.phase {
	case PhaseRunning:
		elapsed := int(now.Sub(e.session.StartTime) / time.Second)
		if elapsed >= e.session.Duration {
			return 0
		}
		return e.session.Duration - elapsed
	case PhasePaused:
		return e.frozenRemaining
	default:
		return 0
	}
}

// Restore rebuilds engine state from the persisted snapshot and immediately
// reconciles against the wall clock, so the user never sees a countdown
// frozen at pre-reload values. Returns the transition if the session ran out
// while the app was gone.
func (e *Engine) Restore() *Transition {
	snap, err := e.snaps.Load(e.userID)
	if err != nil {
		logging.Errorf("restore snapshot", err)
		return nil
	}
	if snap == nil {
		// No snapshot file; the store mirror may still hold an open row.
		if snap, err = e.snaps.RecoverOpen(e.userID); err != nil {
			logging.Errorf("recover session from store", err)
			return nil
		}
	}
	if snap == nil || snap.Session.EndTime != nil {
		return nil
	}

	sess := snap.Session
	e.session = &sess
	e.lastObserved = snap.LastObserved
	if snap.CycleIndex > 0 {
		e.cycleIndex = snap.CycleIndex
	}
	e.epoch++

	if snap.IsRunning {
		e.phase = PhaseRunning
		return e.Reconcile(e.clock.Now())
	}

	e.phase = PhasePaused
	elapsed := int(snap.LastObserved.Sub(sess.StartTime) / time.Second)
	e.frozenRemaining = sess.Duration - elapsed
	if e.frozenRemaining < 0 {
		e.frozenRemaining = 0
	}
	return nil
}

// Start begins a fresh session. Always succeeds locally; any previous
// unfinished session is retired without being marked completed, so its
// partial progress never reaches the statistics.
func (e *Engine) Start(durationSecs int, kind store.SessionKind) *store.Session {
	now := e.clock.Now()
	if e.session != nil && e.session.EndTime == nil {
		e.snaps.MirrorRetire(e.userID, now)
	}
	e.cycleIndex = 1
	return e.begin(kind, durationSecs, now)
}

// Pause freezes the countdown at its currently derived value. No-op unless
// running.
func (e *Engine) Pause() {
	if e.phase != PhaseRunning {
		return
	}
	now := e.clock.Now()
	e.frozenRemaining = e.Remaining(now)
	e.lastObserved = now
	e.phase = PhasePaused
	e.persist()
}

// Resume continues a paused session by shifting its start time so the
// wall-clock derivation picks up where the freeze left off. A session that
// somehow reached zero while paused cannot be resumed.
func (e *Engine) Resume() {
	if e.phase != PhasePaused || e.frozenRemaining <= 0 {
		return
	}
	now := e.clock.Now()
	e.session.StartTime = now.Add(-time.Duration(e.session.Duration-e.frozenRemaining) * time.Second)
	e.lastObserved = now
	e.phase = PhaseRunning
	e.persist()
}

// Stop ends the current session early. It is explicitly not a completion:
// the session keeps completed = false and contributes nothing to the
// statistics.
func (e *Engine) Stop() {
	if e.session == nil {
		return
	}
	now := e.clock.Now()
	end := now
	e.session.EndTime = &end
	e.session.Completed = false
	e.snaps.MirrorUpdate(*e.session)
	logging.Errorf("clear snapshot", e.snaps.Clear(e.userID))

	e.session = nil
	e.phase = PhaseIdle
	e.frozenRemaining = 0
	e.epoch++
}

// Tick advances the countdown on the scheduled cadence. Ticks carrying a
// stale epoch are dropped. The 1-second cadence is only a refresh signal;
// the wall clock is the authority on remaining time.
func (e *Engine) Tick(epoch int, now time.Time) *Transition {
	if epoch != e.epoch || e.phase != PhaseRunning {
		return nil
	}
	return e.observe(now)
}

// Reconcile recomputes remaining time right now, outside the tick cadence.
// The lifecycle reconciler calls this whenever the environment regains the
// foreground, healing any stretch of suspended ticks in one step.
func (e *Engine) Reconcile(now time.Time) *Transition {
	if e.phase != PhaseRunning {
		return nil
	}
	return e.observe(now)
}

// PersistNow saves current state, used when the terminal is about to lose
// the foreground.
func (e *Engine) PersistNow() {
	if e.session != nil && e.session.EndTime == nil {
		e.persist()
	}
}

func (e *Engine) observe(now time.Time) *Transition {
	e.lastObserved = now
	if e.Remaining(now) > 0 {
		e.persist()
		return nil
	}
	return e.complete(now)
}

// complete performs the natural-completion transition exactly once. The
// running-state guard makes a duplicate zero-crossing observation (a tick
// and a wake firing in the same instant) a no-op on the second trigger.
func (e *Engine) complete(now time.Time) *Transition {
	if e.phase != PhaseRunning || e.session == nil || e.session.Completed {
		return nil
	}
	finished := e.session
	finished.Completed = true
	end := now
	finished.EndTime = &end
	e.snaps.MirrorUpdate(*finished)

	pol := e.policy()
	var dec Decision
	if finished.Kind == store.KindFocus {
		e.focusCompleted++
		count, err := e.stats.RecordFocus(finished.UserID, finished.Duration, now)
		if err != nil {
			logging.Errorf("record focus completion", err)
			count = e.focusCompleted
		}
		dec = pol.AfterFocus(count, e.cycleIndex)
	} else {
		logging.Errorf("record break completion",
			e.stats.RecordBreak(finished.UserID, finished.Duration, now))
		dec = pol.AfterBreak(e.cycleIndex)
		e.cycleIndex = dec.CycleIndex
	}

	if e.notifier != nil {
		e.notifier.SessionComplete(*finished, dec)
	}

	started := e.begin(dec.Kind, dec.DurationSeconds, now)
	return &Transition{Finished: *finished, Next: dec, Started: started}
}

func (e *Engine) begin(kind store.SessionKind, durationSecs int, now time.Time) *store.Session {
	sess := &store.Session{
		ID:        uuid.NewString(),
		UserID:    e.userID,
		StartTime: now,
		Duration:  durationSecs,
		Kind:      kind,
	}
	e.session = sess
	e.phase = PhaseRunning
	e.lastObserved = now
	e.frozenRemaining = 0
	e.epoch++
	e.persist()
	e.snaps.MirrorInsert(*sess)
	return sess
}

func (e *Engine) persist() {
	snap := &Snapshot{
		Session:      *e.session,
		IsRunning:    e.phase == PhaseRunning,
		LastObserved: e.lastObserved,
		CycleIndex:   e.cycleIndex,
	}
	logging.Errorf("save snapshot", e.snaps.Save(snap))
}

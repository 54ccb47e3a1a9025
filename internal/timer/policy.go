package timer

import "github.com/sadopc/studyboost/internal/store"

// Policy holds the per-user interval configuration a completion decision
// needs. Durations are in seconds.
type Policy struct {
	WorkSeconds           int
	ShortBreakSeconds     int
	LongBreakSeconds      int
	CyclesBeforeLongBreak int
}

// DefaultPolicy matches the classic 25/5/15 pomodoro with a long break every
// fourth cycle.
var DefaultPolicy = Policy{
	WorkSeconds:           25 * 60,
	ShortBreakSeconds:     5 * 60,
	LongBreakSeconds:      15 * 60,
	CyclesBeforeLongBreak: 4,
}

// Decision describes the session to start after a natural completion.
type Decision struct {
	Kind            store.SessionKind
	DurationSeconds int
	LongBreak       bool
	CycleIndex      int // display counter ("Cycle 3")
}

// AfterFocus decides the break following a completed focus session.
// pomodorosCompleted is the stats counter AFTER counting the session that
// just finished, so completing the 4th cycle with a threshold of 4 yields
// the long break, and a threshold of 1 makes every break long.
func (p Policy) AfterFocus(pomodorosCompleted, cycleIndex int) Decision {
	threshold := p.CyclesBeforeLongBreak
	if threshold < 1 {
		threshold = 1
	}
	long := pomodorosCompleted%threshold == 0
	d := Decision{Kind: store.KindBreak, LongBreak: long, CycleIndex: cycleIndex}
	if long {
		d.DurationSeconds = p.LongBreakSeconds
	} else {
		d.DurationSeconds = p.ShortBreakSeconds
	}
	return d
}

// AfterBreak decides the focus session following a completed break and bumps
// the display cycle index. The index increases once per break-to-focus
// transition regardless of the break's length.
func (p Policy) AfterBreak(cycleIndex int) Decision {
	return Decision{
		Kind:            store.KindFocus,
		DurationSeconds: p.WorkSeconds,
		CycleIndex:      cycleIndex + 1,
	}
}

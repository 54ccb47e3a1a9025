package store

import "time"

type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// SessionKind distinguishes focus intervals from breaks. Short and long
// breaks are both "break"; which one applies is derived from the cycle
// count, never stored on the session.
type SessionKind string

const (
	KindFocus SessionKind = "focus"
	KindBreak SessionKind = "break"
)

// Session is one timed interval with an absolute start time and a planned
// duration. Completed is set only on natural completion, not on an early
// stop.
type Session struct {
	ID        string
	UserID    string
	StartTime time.Time
	EndTime   *time.Time
	Duration  int // planned length, seconds
	Kind      SessionKind
	Completed bool
}

// DailyStats is the per-user aggregate for the current day. Counters only
// increase; completed sessions are the only thing that moves them.
type DailyStats struct {
	UserID             string
	PomodorosCompleted int
	TotalFocusSeconds  int64
	TotalBreakSeconds  int64
	LastUpdated        time.Time
}

// StatsDay is an archived day in stats_history.
type StatsDay struct {
	UserID             string
	Date               string // 2006-01-02
	PomodorosCompleted int
	TotalFocusSeconds  int64
	TotalBreakSeconds  int64
}

type FocusMode struct {
	ID                 string
	UserID             string
	BlockedApps        []string
	BlockNotifications bool
	Enabled            bool
	CreatedAt          time.Time
}

type Setting struct {
	Key   string
	Value string
}

// SessionFilter narrows session queries.
type SessionFilter struct {
	Kind      *SessionKind
	Completed *bool
	From      *time.Time
	To        *time.Time
	Limit     int
}

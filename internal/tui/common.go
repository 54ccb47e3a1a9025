package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/studyboost/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewStatistics
	viewFocus
	viewSettings
)

var viewNames = []string{"Timer", "Statistics", "Focus", "Settings"}

// --- Messages ---

// tickMsg is the 1-second UI refresh cadence. It carries the engine epoch it
// was scheduled under so ticks for a retired session are dropped.
type tickMsg struct {
	at    time.Time
	epoch int
}

// snapshotChangedMsg fires when another process rewrote the session
// snapshot on disk.
type snapshotChangedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type signedInMsg struct {
	user *store.User
}

type signedOutMsg struct{}

type statisticsDataMsg struct {
	today *store.DailyStats
	days  []store.StatsDay
	week  rangeTotal
	month rangeTotal
	year  rangeTotal
}

type focusModeDataMsg struct {
	mode *store.FocusMode
}

type settingsDataMsg struct {
	settings []store.Setting
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

package notify

import (
	"testing"

	"github.com/sadopc/studyboost/internal/store"
	"github.com/sadopc/studyboost/internal/timer"
)

type capture struct {
	desktop int
	sound   int
	bell    int
	title   string
	body    string
}

func newTestDispatcher(prefs Prefs) (*Dispatcher, *capture) {
	c := &capture{}
	d := New(func() Prefs { return prefs }, func() { c.bell++ })
	d.desktopFn = func(title, body string) error {
		c.desktop++
		c.title, c.body = title, body
		return nil
	}
	d.soundFn = func() error {
		c.sound++
		return nil
	}
	return d, c
}

func focusSession() store.Session {
	return store.Session{ID: "s1", UserID: "u1", Duration: 1500, Kind: store.KindFocus, Completed: true}
}

func TestAllChannelsFire(t *testing.T) {
	d, c := newTestDispatcher(Prefs{Sound: true, Vibration: true, Desktop: true})

	d.SessionComplete(focusSession(), timer.Decision{Kind: store.KindBreak, DurationSeconds: 300})

	if c.desktop != 1 || c.sound != 1 || c.bell != 1 {
		t.Fatalf("expected each channel once, got desktop=%d sound=%d bell=%d", c.desktop, c.sound, c.bell)
	}
}

func TestChannelsGatedByPrefs(t *testing.T) {
	d, c := newTestDispatcher(Prefs{})

	d.SessionComplete(focusSession(), timer.Decision{Kind: store.KindBreak, DurationSeconds: 300})

	if c.desktop != 0 || c.sound != 0 || c.bell != 0 {
		t.Fatalf("disabled channels must stay silent, got desktop=%d sound=%d bell=%d", c.desktop, c.sound, c.bell)
	}
}

func TestFocusModeSuppressesDesktopOnly(t *testing.T) {
	d, c := newTestDispatcher(Prefs{Sound: true, Vibration: true, Desktop: true, SuppressDesktop: true})

	d.SessionComplete(focusSession(), timer.Decision{Kind: store.KindBreak, DurationSeconds: 300})

	if c.desktop != 0 {
		t.Fatal("focus mode should suppress the desktop channel")
	}
	if c.sound != 1 || c.bell != 1 {
		t.Fatal("sound and bell are not suppressed by focus mode")
	}
}

func TestNilBellTolerated(t *testing.T) {
	d := New(func() Prefs { return Prefs{Vibration: true} }, nil)
	d.desktopFn = func(string, string) error { return nil }
	d.soundFn = func() error { return nil }

	// Must not panic.
	d.SessionComplete(focusSession(), timer.Decision{Kind: store.KindBreak, DurationSeconds: 300})
}

func TestComposeFocusCompletion(t *testing.T) {
	d, c := newTestDispatcher(Prefs{Desktop: true})

	d.SessionComplete(focusSession(), timer.Decision{Kind: store.KindBreak, DurationSeconds: 300})
	if c.title != "Cycle complete!" {
		t.Fatalf("unexpected title %q", c.title)
	}
	if c.body != "Time for a short break: 5 minutes" {
		t.Fatalf("unexpected body %q", c.body)
	}

	d.SessionComplete(focusSession(), timer.Decision{Kind: store.KindBreak, DurationSeconds: 900, LongBreak: true})
	if c.body != "Time for a long break: 15 minutes" {
		t.Fatalf("unexpected body %q", c.body)
	}
}

func TestComposeBreakCompletion(t *testing.T) {
	d, c := newTestDispatcher(Prefs{Desktop: true})

	brk := store.Session{ID: "s2", UserID: "u1", Duration: 300, Kind: store.KindBreak, Completed: true}
	d.SessionComplete(brk, timer.Decision{Kind: store.KindFocus, DurationSeconds: 1500, CycleIndex: 3})

	if c.title != "Break over!" {
		t.Fatalf("unexpected title %q", c.title)
	}
	if c.body != "Starting cycle 3" {
		t.Fatalf("unexpected body %q", c.body)
	}
}

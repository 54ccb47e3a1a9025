// Package notify delivers completion alerts. Every channel is best-effort:
// a denied permission or missing desktop bus degrades to silence, never to a
// blocked timer.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/sadopc/studyboost/internal/logging"
	"github.com/sadopc/studyboost/internal/store"
	"github.com/sadopc/studyboost/internal/timer"
)

// Prefs gates the individual channels per user. SuppressDesktop reflects
// focus mode blocking notifications during focus sessions.
type Prefs struct {
	Sound           bool
	Vibration       bool
	Desktop         bool
	SuppressDesktop bool
}

// Dispatcher composes and sends one alert per natural completion. It is
// invoked only from the engine's completion transition, so a corrective
// recompute arriving in the same instant cannot double-fire.
type Dispatcher struct {
	prefs func() Prefs

	// Overridable side-effect sinks, defaulted to beeep and the terminal
	// bell hook.
	desktopFn func(title, body string) error
	soundFn   func() error
	bellFn    func()
}

// New builds a dispatcher reading channel toggles through prefs. bell is
// invoked for the vibration channel, which on a terminal maps to the bell;
// it may be nil.
func New(prefs func() Prefs, bell func()) *Dispatcher {
	return &Dispatcher{
		prefs:     prefs,
		desktopFn: func(title, body string) error { return beeep.Notify(title, body, "") },
		soundFn:   func() error { return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration) },
		bellFn:    bell,
	}
}

// SessionComplete implements timer.Notifier.
func (d *Dispatcher) SessionComplete(finished store.Session, next timer.Decision) {
	title, body := compose(finished, next)
	p := d.prefs()

	if p.Desktop && !p.SuppressDesktop {
		logging.Errorf("desktop notification", d.desktopFn(title, body))
	}
	if p.Sound {
		logging.Errorf("completion sound", d.soundFn())
	}
	if p.Vibration && d.bellFn != nil {
		d.bellFn()
	}
}

func compose(finished store.Session, next timer.Decision) (title, body string) {
	if finished.Kind == store.KindFocus {
		length := "short"
		if next.LongBreak {
			length = "long"
		}
		return "Cycle complete!",
			fmt.Sprintf("Time for a %s break: %d minutes", length, next.DurationSeconds/60)
	}
	return "Break over!", fmt.Sprintf("Starting cycle %d", next.CycleIndex)
}

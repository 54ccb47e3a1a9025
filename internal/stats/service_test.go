package stats

import (
	"testing"
	"time"

	"github.com/sadopc/studyboost/internal/store"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	u, err := s.CreateUser("user@example.com", "User", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return New(s), u.ID
}

func TestTodayStartsAtZero(t *testing.T) {
	svc, userID := newTestService(t)

	st, err := svc.Today(userID, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if st.PomodorosCompleted != 0 || st.TotalFocusSeconds != 0 {
		t.Fatalf("fresh day should be zero: %+v", st)
	}
}

func TestRecordFocusReturnsRunningCount(t *testing.T) {
	svc, userID := newTestService(t)
	now := time.Now()

	for want := 1; want <= 3; want++ {
		got, err := svc.RecordFocus(userID, 1500, now)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}

	st, _ := svc.Today(userID, now)
	if st.TotalFocusSeconds != 4500 {
		t.Fatalf("expected 4500 focus seconds, got %d", st.TotalFocusSeconds)
	}
}

func TestRecordBreak(t *testing.T) {
	svc, userID := newTestService(t)
	now := time.Now()

	if err := svc.RecordBreak(userID, 300, now); err != nil {
		t.Fatal(err)
	}

	st, _ := svc.Today(userID, now)
	if st.TotalBreakSeconds != 300 {
		t.Fatalf("expected 300 break seconds, got %d", st.TotalBreakSeconds)
	}
	if st.PomodorosCompleted != 0 {
		t.Fatal("breaks must not move the pomodoro count")
	}
}

func TestDayRollover(t *testing.T) {
	svc, userID := newTestService(t)

	yesterday := time.Now().AddDate(0, 0, -1)
	if _, err := svc.RecordFocus(userID, 1500, yesterday); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordFocus(userID, 1500, yesterday); err != nil {
		t.Fatal(err)
	}

	// First touch of the new day archives yesterday and zeroes the live row.
	now := time.Now()
	st, err := svc.Today(userID, now)
	if err != nil {
		t.Fatal(err)
	}
	if st.PomodorosCompleted != 0 || st.TotalFocusSeconds != 0 {
		t.Fatalf("today should start from zero after rollover: %+v", st)
	}

	days, err := svc.Daily(userID, 2, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].PomodorosCompleted != 2 || days[0].TotalFocusSeconds != 3000 {
		t.Fatalf("yesterday's totals should be archived intact: %+v", days[0])
	}
	if days[1].PomodorosCompleted != 0 {
		t.Fatalf("today should be zero: %+v", days[1])
	}
}

func TestRolloverThenRecordCountsFreshDay(t *testing.T) {
	svc, userID := newTestService(t)

	yesterday := time.Now().AddDate(0, 0, -1)
	svc.RecordFocus(userID, 1500, yesterday)

	// Recording on the new day triggers the rollover first, so the count
	// restarts at 1 instead of continuing yesterday's tally.
	got, err := svc.RecordFocus(userID, 1500, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Fatalf("expected fresh-day count 1, got %d", got)
	}
}

func TestDailyZeroFillsGaps(t *testing.T) {
	svc, userID := newTestService(t)
	now := time.Now()

	svc.RecordFocus(userID, 1500, now)

	days, err := svc.Daily(userID, 7, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(days))
	}
	for i, d := range days[:6] {
		if d.PomodorosCompleted != 0 {
			t.Fatalf("day %d should be zero-filled: %+v", i, d)
		}
	}
	if days[6].PomodorosCompleted != 1 {
		t.Fatalf("today should carry the live row: %+v", days[6])
	}
	// Dates ascend and end today.
	if days[6].Date != now.Local().Format("2006-01-02") {
		t.Fatalf("last entry should be today, got %s", days[6].Date)
	}
}

func TestWeekTotal(t *testing.T) {
	svc, userID := newTestService(t)
	now := time.Now()

	svc.RecordFocus(userID, 1500, now)
	svc.RecordFocus(userID, 1500, now)
	svc.RecordBreak(userID, 300, now)

	pomodoros, focusSecs, breakSecs, err := svc.WeekTotal(userID, now)
	if err != nil {
		t.Fatal(err)
	}
	if pomodoros != 2 || focusSecs != 3000 || breakSecs != 300 {
		t.Fatalf("unexpected week totals: %d %d %d", pomodoros, focusSecs, breakSecs)
	}
}

func TestMonthAndYearTotals(t *testing.T) {
	svc, userID := newTestService(t)
	now := time.Now()

	// Each later recording rolls the earlier day into history first.
	svc.RecordFocus(userID, 1500, now.AddDate(0, 0, -100))
	svc.RecordFocus(userID, 1500, now.AddDate(0, 0, -10))
	svc.RecordFocus(userID, 1500, now)

	weekPoms, _, _, err := svc.WeekTotal(userID, now)
	if err != nil {
		t.Fatal(err)
	}
	if weekPoms != 1 {
		t.Fatalf("only today falls in the week window, got %d", weekPoms)
	}

	monthPoms, monthFocus, _, err := svc.MonthTotal(userID, now)
	if err != nil {
		t.Fatal(err)
	}
	if monthPoms != 2 || monthFocus != 3000 {
		t.Fatalf("month should cover today and day -10: %d %d", monthPoms, monthFocus)
	}

	yearPoms, yearFocus, _, err := svc.YearTotal(userID, now)
	if err != nil {
		t.Fatal(err)
	}
	if yearPoms != 3 || yearFocus != 4500 {
		t.Fatalf("year should cover all three days: %d %d", yearPoms, yearFocus)
	}
}

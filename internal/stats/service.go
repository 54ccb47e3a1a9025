// Package stats maintains the per-day aggregates and their history. A day
// boundary is detected lazily: the first touch after midnight archives
// yesterday's row and starts today from zero.
package stats

import (
	"fmt"
	"time"

	"github.com/sadopc/studyboost/internal/store"
)

type Service struct {
	store *store.Store
}

func New(s *store.Store) *Service {
	return &Service{store: s}
}

// dateOf is the calendar-day key, in local time like the user experiences
// the day.
func dateOf(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// Today returns the user's aggregate row for the day containing now,
// performing the rollover if the stored row belongs to an earlier day.
func (s *Service) Today(userID string, now time.Time) (*store.DailyStats, error) {
	st, err := s.store.GetDailyStats(userID)
	if err != nil {
		return nil, err
	}
	if dateOf(st.LastUpdated) == dateOf(now) {
		return st, nil
	}
	if err := s.store.ArchiveDailyStats(userID, dateOf(st.LastUpdated), now); err != nil {
		return nil, fmt.Errorf("day rollover: %w", err)
	}
	return s.store.GetDailyStats(userID)
}

// RecordFocus counts one naturally completed focus session and returns the
// day's pomodoro count including it. Implements timer.StatsRecorder.
func (s *Service) RecordFocus(userID string, durationSecs int, now time.Time) (int, error) {
	if _, err := s.Today(userID, now); err != nil {
		return 0, err
	}
	if err := s.store.AddFocusCompletion(userID, durationSecs, now); err != nil {
		return 0, err
	}
	st, err := s.store.GetDailyStats(userID)
	if err != nil {
		return 0, err
	}
	return st.PomodorosCompleted, nil
}

// RecordBreak counts one naturally completed break.
func (s *Service) RecordBreak(userID string, durationSecs int, now time.Time) error {
	if _, err := s.Today(userID, now); err != nil {
		return err
	}
	return s.store.AddBreakCompletion(userID, durationSecs, now)
}

// Daily returns one entry per calendar day for the last n days ending today,
// merging archived history with the live row. Days without activity are
// zero-filled so charts keep a stable axis.
func (s *Service) Daily(userID string, n int, now time.Time) ([]store.StatsDay, error) {
	today, err := s.Today(userID, now)
	if err != nil {
		return nil, err
	}

	from := now.AddDate(0, 0, -(n - 1))
	history, err := s.store.ListStatsHistory(userID, from, now.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]store.StatsDay, len(history))
	for _, d := range history {
		byDate[d.Date] = d
	}
	byDate[dateOf(now)] = store.StatsDay{
		UserID:             userID,
		Date:               dateOf(now),
		PomodorosCompleted: today.PomodorosCompleted,
		TotalFocusSeconds:  today.TotalFocusSeconds,
		TotalBreakSeconds:  today.TotalBreakSeconds,
	}

	days := make([]store.StatsDay, 0, n)
	for i := 0; i < n; i++ {
		date := dateOf(now.AddDate(0, 0, i-(n-1)))
		if d, ok := byDate[date]; ok {
			days = append(days, d)
		} else {
			days = append(days, store.StatsDay{UserID: userID, Date: date})
		}
	}
	return days, nil
}

// WeekTotal sums the last seven days.
func (s *Service) WeekTotal(userID string, now time.Time) (pomodoros int, focusSecs, breakSecs int64, err error) {
	return s.total(userID, 7, now)
}

// MonthTotal sums the last thirty days.
func (s *Service) MonthTotal(userID string, now time.Time) (pomodoros int, focusSecs, breakSecs int64, err error) {
	return s.total(userID, 30, now)
}

// YearTotal sums the last 365 days.
func (s *Service) YearTotal(userID string, now time.Time) (pomodoros int, focusSecs, breakSecs int64, err error) {
	return s.total(userID, 365, now)
}

func (s *Service) total(userID string, n int, now time.Time) (pomodoros int, focusSecs, breakSecs int64, err error) {
	days, err := s.Daily(userID, n, now)
	if err != nil {
		return 0, 0, 0, err
	}
	for _, d := range days {
		pomodoros += d.PomodorosCompleted
		focusSecs += d.TotalFocusSeconds
		breakSecs += d.TotalBreakSeconds
	}
	return pomodoros, focusSecs, breakSecs, nil
}

package store

import (
	"database/sql"
	"fmt"
	"time"
)

// GetDailyStats returns today's aggregate row for the user, creating a zeroed
// one on first use.
func (s *Store) GetDailyStats(userID string) (*DailyStats, error) {
	st := &DailyStats{UserID: userID}
	var lastUpdated string

	err := s.db.QueryRow(
		`SELECT pomodoros_completed, total_focus_time, total_break_time, last_updated
		 FROM pomodoro_stats WHERE user_id = ?`, userID,
	).Scan(&st.PomodorosCompleted, &st.TotalFocusSeconds, &st.TotalBreakSeconds, &lastUpdated)
	if err == sql.ErrNoRows {
		now := time.Now().UTC()
		_, err = s.db.Exec(
			`INSERT INTO pomodoro_stats (user_id, last_updated) VALUES (?, ?)`,
			userID, now.Format(time.RFC3339),
		)
		if err != nil {
			return nil, fmt.Errorf("init daily stats: %w", err)
		}
		st.LastUpdated = now
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily stats: %w", err)
	}
	st.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)
	return st, nil
}

// AddFocusCompletion counts one completed pomodoro of the given planned
// duration toward today's totals.
func (s *Store) AddFocusCompletion(userID string, durationSecs int, now time.Time) error {
	_, err := s.db.Exec(
		`UPDATE pomodoro_stats
		 SET pomodoros_completed = pomodoros_completed + 1,
		     total_focus_time = total_focus_time + ?,
		     last_updated = ?
		 WHERE user_id = ?`,
		durationSecs, now.UTC().Format(time.RFC3339), userID,
	)
	if err != nil {
		return fmt.Errorf("add focus completion: %w", err)
	}
	return nil
}

// AddBreakCompletion adds a completed break's planned duration to today's
// totals.
func (s *Store) AddBreakCompletion(userID string, durationSecs int, now time.Time) error {
	_, err := s.db.Exec(
		`UPDATE pomodoro_stats
		 SET total_break_time = total_break_time + ?,
		     last_updated = ?
		 WHERE user_id = ?`,
		durationSecs, now.UTC().Format(time.RFC3339), userID,
	)
	if err != nil {
		return fmt.Errorf("add break completion: %w", err)
	}
	return nil
}

// ArchiveDailyStats moves the current aggregate row into stats_history under
// the given date and zeroes it for a fresh day. Archiving an all-zero day is
// skipped.
func (s *Store) ArchiveDailyStats(userID, date string, now time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("archive stats: %w", err)
	}
	defer tx.Rollback()

	var completed int
	var focus, brk int64
	err = tx.QueryRow(
		`SELECT pomodoros_completed, total_focus_time, total_break_time
		 FROM pomodoro_stats WHERE user_id = ?`, userID,
	).Scan(&completed, &focus, &brk)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("archive stats: %w", err)
	}

	if completed > 0 || focus > 0 || brk > 0 {
		_, err = tx.Exec(
			`INSERT INTO stats_history (user_id, date, pomodoros_completed, total_focus_time, total_break_time)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(user_id, date) DO UPDATE SET
			   pomodoros_completed = excluded.pomodoros_completed,
			   total_focus_time    = excluded.total_focus_time,
			   total_break_time    = excluded.total_break_time`,
			userID, date, completed, focus, brk,
		)
		if err != nil {
			return fmt.Errorf("archive stats: %w", err)
		}
	}

	_, err = tx.Exec(
		`UPDATE pomodoro_stats
		 SET pomodoros_completed = 0, total_focus_time = 0, total_break_time = 0, last_updated = ?
		 WHERE user_id = ?`,
		now.UTC().Format(time.RFC3339), userID,
	)
	if err != nil {
		return fmt.Errorf("archive stats: %w", err)
	}
	return tx.Commit()
}

// ListStatsHistory returns archived days in [from, to), oldest first.
func (s *Store) ListStatsHistory(userID string, from, to time.Time) ([]StatsDay, error) {
	rows, err := s.db.Query(
		`SELECT user_id, date, pomodoros_completed, total_focus_time, total_break_time
		 FROM stats_history
		 WHERE user_id = ? AND date >= ? AND date < ?
		 ORDER BY date`,
		userID, from.Format("2006-01-02"), to.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("list stats history: %w", err)
	}
	defer rows.Close()

	var days []StatsDay
	for rows.Next() {
		var d StatsDay
		if err := rows.Scan(&d.UserID, &d.Date, &d.PomodorosCompleted, &d.TotalFocusSeconds, &d.TotalBreakSeconds); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

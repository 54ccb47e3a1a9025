package store

import (
	"database/sql"
	"fmt"
	"time"
)

// InsertSession records a newly started session. Called best-effort from the
// timer path: the local snapshot, not this row, is authoritative for the
// running countdown.
func (s *Store) InsertSession(sess *Session) error {
	var end any
	if sess.EndTime != nil {
		end = sess.EndTime.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`INSERT INTO pomodoro_sessions (id, user_id, start_time, end_time, duration, type, completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.StartTime.UTC().Format(time.RFC3339), end,
		sess.Duration, string(sess.Kind), boolToInt(sess.Completed),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// UpdateSession mirrors a stop or completion.
func (s *Store) UpdateSession(sess *Session) error {
	var end any
	if sess.EndTime != nil {
		end = sess.EndTime.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`UPDATE pomodoro_sessions SET end_time = ?, completed = ? WHERE id = ?`,
		end, boolToInt(sess.Completed), sess.ID,
	)
	if err != nil {
		return fmt.Errorf("update session %s: %w", sess.ID, err)
	}
	return nil
}

// GetOpenSession returns the most recent session without an end time for the
// user, or nil when none is open.
func (s *Store) GetOpenSession(userID string) (*Session, error) {
	sess := &Session{}
	var startTime, kind string
	var endTime sql.NullString
	var completed int

	err := s.db.QueryRow(
		`SELECT id, user_id, start_time, end_time, duration, type, completed
		 FROM pomodoro_sessions WHERE user_id = ? AND end_time IS NULL
		 ORDER BY start_time DESC LIMIT 1`, userID,
	).Scan(&sess.ID, &sess.UserID, &startTime, &endTime, &sess.Duration, &kind, &completed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open session: %w", err)
	}
	sess.StartTime, _ = time.Parse(time.RFC3339, startTime)
	sess.Kind = SessionKind(kind)
	sess.Completed = completed != 0
	return sess, nil
}

// RetireOpenSessions closes any still-open rows for the user without marking
// them completed. Starting a new session implies the old one was abandoned.
func (s *Store) RetireOpenSessions(userID string, now time.Time) error {
	_, err := s.db.Exec(
		`UPDATE pomodoro_sessions SET end_time = ? WHERE user_id = ? AND end_time IS NULL`,
		now.UTC().Format(time.RFC3339), userID,
	)
	if err != nil {
		return fmt.Errorf("retire open sessions: %w", err)
	}
	return nil
}

func (s *Store) ListSessions(userID string, f SessionFilter) ([]Session, error) {
	query := `SELECT id, user_id, start_time, end_time, duration, type, completed
	          FROM pomodoro_sessions WHERE user_id = ?`
	args := []any{userID}

	if f.Kind != nil {
		query += ` AND type = ?`
		args = append(args, string(*f.Kind))
	}
	if f.Completed != nil {
		query += ` AND completed = ?`
		args = append(args, boolToInt(*f.Completed))
	}
	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY start_time DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var startTime, kind string
		var endTime sql.NullString
		var completed int
		if err := rows.Scan(&sess.ID, &sess.UserID, &startTime, &endTime, &sess.Duration, &kind, &completed); err != nil {
			return nil, err
		}
		sess.StartTime, _ = time.Parse(time.RFC3339, startTime)
		if endTime.Valid {
			t, _ := time.Parse(time.RFC3339, endTime.String)
			sess.EndTime = &t
		}
		sess.Kind = SessionKind(kind)
		sess.Completed = completed != 0
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

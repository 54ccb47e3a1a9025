package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GetFocusMode returns the user's focus-mode record, creating a disabled
// default on first access.
func (s *Store) GetFocusMode(userID string) (*FocusMode, error) {
	fm := &FocusMode{UserID: userID}
	var apps, createdAt string
	var blockNotif, enabled int

	err := s.db.QueryRow(
		`SELECT id, blocked_apps, block_notifications, enabled, created_at
		 FROM focus_modes WHERE user_id = ?`, userID,
	).Scan(&fm.ID, &apps, &blockNotif, &enabled, &createdAt)
	if err == sql.ErrNoRows {
		fm.ID = uuid.NewString()
		fm.CreatedAt = time.Now().UTC()
		_, err = s.db.Exec(
			`INSERT INTO focus_modes (id, user_id, created_at) VALUES (?, ?, ?)`,
			fm.ID, userID, fm.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return nil, fmt.Errorf("init focus mode: %w", err)
		}
		return fm, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get focus mode: %w", err)
	}

	if err := json.Unmarshal([]byte(apps), &fm.BlockedApps); err != nil {
		fm.BlockedApps = nil
	}
	fm.BlockNotifications = blockNotif != 0
	fm.Enabled = enabled != 0
	fm.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return fm, nil
}

func (s *Store) UpdateFocusMode(fm *FocusMode) error {
	apps, err := json.Marshal(fm.BlockedApps)
	if err != nil {
		return fmt.Errorf("marshal blocked apps: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE focus_modes SET blocked_apps = ?, block_notifications = ?, enabled = ?
		 WHERE user_id = ?`,
		string(apps), boolToInt(fm.BlockNotifications), boolToInt(fm.Enabled), fm.UserID,
	)
	if err != nil {
		return fmt.Errorf("update focus mode: %w", err)
	}
	return nil
}

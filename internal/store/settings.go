package store

import "fmt"

// Setting keys. Durations are stored in seconds as decimal strings; toggles
// as "true"/"false".
const (
	SettingWorkDuration     = "work_duration"
	SettingShortBreak       = "short_break_duration"
	SettingLongBreak        = "long_break_duration"
	SettingCyclesBeforeLong = "cycles_before_long_break"
	SettingSoundEnabled     = "sound_enabled"
	SettingVibrationEnabled = "vibration_enabled"
	SettingNotifications    = "notifications_enabled"
	SettingFocusModeEnabled = "focus_mode_enabled"
)

var defaultSettings = map[string]string{
	SettingWorkDuration:     "1500",
	SettingShortBreak:       "300",
	SettingLongBreak:        "900",
	SettingCyclesBeforeLong: "4",
	SettingSoundEnabled:     "true",
	SettingVibrationEnabled: "true",
	SettingNotifications:    "true",
	SettingFocusModeEnabled: "false",
}

func (s *Store) seedDefaultSettings(userID string) error {
	for k, v := range defaultSettings {
		_, err := s.db.Exec(
			`INSERT OR IGNORE INTO settings (user_id, key, value) VALUES (?, ?, ?)`,
			userID, k, v,
		)
		if err != nil {
			return fmt.Errorf("seed setting %q: %w", k, err)
		}
	}
	return nil
}

func (s *Store) GetSetting(userID, key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM settings WHERE user_id = ? AND key = ?`, userID, key,
	).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(userID, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (user_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value`,
		userID, key, value,
	)
	return err
}

func (s *Store) GetAllSettings(userID string) ([]Setting, error) {
	rows, err := s.db.Query(
		`SELECT key, value FROM settings WHERE user_id = ? ORDER BY key`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return nil, err
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

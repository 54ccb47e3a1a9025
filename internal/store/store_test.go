package store

import (
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestUser creates a user with seeded default settings.
func newTestUser(t *testing.T, s *Store) *User {
	t.Helper()
	u, err := s.CreateUser("user@example.com", "User", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/studyboost.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen should succeed and not re-migrate.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Users
// ============================================================

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	u, err := s.CreateUser("Alice@Example.COM", "Alice", "hash")
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email should be lowercased, got %q", u.Email)
	}
	if u.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if u.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}

	got, err := s.GetUser(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DisplayName != "Alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateUser("dup@example.com", "A", "h1"); err != nil {
		t.Fatal(err)
	}
	_, err := s.CreateUser("dup@example.com", "B", "h2")
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestGetUserByEmailMissing(t *testing.T) {
	s := newTestStore(t)
	u, hash, err := s.GetUserByEmail("nobody@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if u != nil || hash != "" {
		t.Fatal("expected nil user for unknown email")
	}
}

func TestGetUserByEmail(t *testing.T) {
	s := newTestStore(t)
	newTestUser(t, s)

	u, hash, err := s.GetUserByEmail("USER@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if u == nil {
		t.Fatal("expected user")
	}
	if hash != "hash" {
		t.Fatalf("expected stored hash, got %q", hash)
	}
}

func TestCreateUserSeedsDefaultSettings(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)

	v, err := s.GetSetting(u.ID, SettingWorkDuration)
	if err != nil {
		t.Fatal(err)
	}
	if v != "1500" {
		t.Fatalf("expected default work duration 1500, got %q", v)
	}
	settings, err := s.GetAllSettings(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != len(defaultSettings) {
		t.Fatalf("expected %d seeded settings, got %d", len(defaultSettings), len(settings))
	}
}

// ============================================================
// Sessions
// ============================================================

// findSession looks a session up by ID through the listing path.
func findSession(t *testing.T, s *Store, userID, id string) *Session {
	t.Helper()
	sessions, err := s.ListSessions(userID, SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i]
		}
	}
	t.Fatalf("session %s not found", id)
	return nil
}

func TestInsertSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)

	start := time.Now().UTC().Truncate(time.Second)
	sess := &Session{
		ID:        "sess-1",
		UserID:    u.ID,
		StartTime: start,
		Duration:  1500,
		Kind:      KindFocus,
	}
	if err := s.InsertSession(sess); err != nil {
		t.Fatal(err)
	}

	got := findSession(t, s, u.ID, "sess-1")
	if !got.StartTime.Equal(start) {
		t.Fatalf("start time mismatch: %v vs %v", got.StartTime, start)
	}
	if got.EndTime != nil {
		t.Fatal("open session should have nil end time")
	}
	if got.Kind != KindFocus || got.Completed {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestUpdateSessionCompletion(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)

	start := time.Now().UTC().Truncate(time.Second)
	sess := &Session{ID: "sess-1", UserID: u.ID, StartTime: start, Duration: 1500, Kind: KindFocus}
	s.InsertSession(sess)

	end := start.Add(1500 * time.Second)
	sess.EndTime = &end
	sess.Completed = true
	if err := s.UpdateSession(sess); err != nil {
		t.Fatal(err)
	}

	got := findSession(t, s, u.ID, "sess-1")
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Fatalf("expected end time %v, got %v", end, got.EndTime)
	}
	if !got.Completed {
		t.Fatal("expected completed")
	}
}

func TestGetOpenSession(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)

	open, err := s.GetOpenSession(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if open != nil {
		t.Fatal("expected no open session")
	}

	start := time.Now().UTC().Truncate(time.Second)
	s.InsertSession(&Session{ID: "a", UserID: u.ID, StartTime: start.Add(-time.Hour), Duration: 1500, Kind: KindFocus})
	s.InsertSession(&Session{ID: "b", UserID: u.ID, StartTime: start, Duration: 300, Kind: KindBreak})

	open, err = s.GetOpenSession(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if open == nil || open.ID != "b" {
		t.Fatalf("expected most recent open session, got %+v", open)
	}
}

func TestRetireOpenSessions(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)

	start := time.Now().UTC().Truncate(time.Second)
	s.InsertSession(&Session{ID: "a", UserID: u.ID, StartTime: start, Duration: 1500, Kind: KindFocus})

	if err := s.RetireOpenSessions(u.ID, start.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	got := findSession(t, s, u.ID, "a")
	if got.EndTime == nil {
		t.Fatal("retired session should have an end time")
	}
	if got.Completed {
		t.Fatal("retired session must not be marked completed")
	}
	open, _ := s.GetOpenSession(u.ID)
	if open != nil {
		t.Fatal("expected no open sessions after retire")
	}
}

func TestListSessionsFilters(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)

	start := time.Now().UTC().Truncate(time.Second)
	end := start.Add(1500 * time.Second)
	s.InsertSession(&Session{ID: "f1", UserID: u.ID, StartTime: start.Add(-2 * time.Hour), EndTime: &end, Duration: 1500, Kind: KindFocus, Completed: true})
	s.InsertSession(&Session{ID: "b1", UserID: u.ID, StartTime: start.Add(-time.Hour), EndTime: &end, Duration: 300, Kind: KindBreak, Completed: true})
	s.InsertSession(&Session{ID: "f2", UserID: u.ID, StartTime: start, Duration: 1500, Kind: KindFocus})

	all, err := s.ListSessions(u.ID, SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	// Newest first
	if all[0].ID != "f2" {
		t.Fatalf("expected newest first, got %s", all[0].ID)
	}

	focus := KindFocus
	byKind, _ := s.ListSessions(u.ID, SessionFilter{Kind: &focus})
	if len(byKind) != 2 {
		t.Fatalf("expected 2 focus sessions, got %d", len(byKind))
	}

	completed := true
	byCompleted, _ := s.ListSessions(u.ID, SessionFilter{Completed: &completed})
	if len(byCompleted) != 2 {
		t.Fatalf("expected 2 completed sessions, got %d", len(byCompleted))
	}

	limited, _ := s.ListSessions(u.ID, SessionFilter{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("expected 1 session with limit, got %d", len(limited))
	}
}

func TestListSessionsScopedToUser(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)
	other, _ := s.CreateUser("other@example.com", "Other", "hash")

	start := time.Now().UTC()
	s.InsertSession(&Session{ID: "mine", UserID: u.ID, StartTime: start, Duration: 1500, Kind: KindFocus})
	s.InsertSession(&Session{ID: "theirs", UserID: other.ID, StartTime: start, Duration: 1500, Kind: KindFocus})

	mine, _ := s.ListSessions(u.ID, SessionFilter{})
	if len(mine) != 1 || mine[0].ID != "mine" {
		t.Fatalf("expected only own sessions, got %+v", mine)
	}
}

// ============================================================
// Daily stats
// ============================================================

func TestGetDailyStatsCreatesRow(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)

	st, err := s.GetDailyStats(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if st.PomodorosCompleted != 0 || st.TotalFocusSeconds != 0 || st.TotalBreakSeconds != 0 {
		t.Fatalf("fresh stats should be zero: %+v", st)
	}
	if st.LastUpdated.IsZero() {
		t.Fatal("LastUpdated should be set")
	}
}

func TestAddFocusCompletion(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)
	s.GetDailyStats(u.ID)

	now := time.Now().UTC()
	if err := s.AddFocusCompletion(u.ID, 1500, now); err != nil {
		t.Fatal(err)
	}
	if err := s.AddFocusCompletion(u.ID, 1500, now); err != nil {
		t.Fatal(err)
	}

	st, _ := s.GetDailyStats(u.ID)
	if st.PomodorosCompleted != 2 {
		t.Fatalf("expected 2 pomodoros, got %d", st.PomodorosCompleted)
	}
	if st.TotalFocusSeconds != 3000 {
		t.Fatalf("expected 3000 focus seconds, got %d", st.TotalFocusSeconds)
	}
}

func TestAddBreakCompletion(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)
	s.GetDailyStats(u.ID)

	if err := s.AddBreakCompletion(u.ID, 300, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	st, _ := s.GetDailyStats(u.ID)
	if st.TotalBreakSeconds != 300 {
		t.Fatalf("expected 300 break seconds, got %d", st.TotalBreakSeconds)
	}
	if st.PomodorosCompleted != 0 {
		t.Fatal("breaks must not count as pomodoros")
	}
}

func TestArchiveDailyStats(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)
	s.GetDailyStats(u.ID)

	now := time.Now().UTC()
	s.AddFocusCompletion(u.ID, 1500, now)
	s.AddBreakCompletion(u.ID, 300, now)

	if err := s.ArchiveDailyStats(u.ID, "2026-08-30", now); err != nil {
		t.Fatal(err)
	}

	// Live row zeroed
	st, _ := s.GetDailyStats(u.ID)
	if st.PomodorosCompleted != 0 || st.TotalFocusSeconds != 0 || st.TotalBreakSeconds != 0 {
		t.Fatalf("live row should be zeroed after archive: %+v", st)
	}

	// History row created
	from, _ := time.Parse("2006-01-02", "2026-08-01")
	to, _ := time.Parse("2006-01-02", "2026-09-01")
	days, err := s.ListStatsHistory(u.ID, from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 archived day, got %d", len(days))
	}
	if days[0].Date != "2026-08-30" || days[0].PomodorosCompleted != 1 || days[0].TotalFocusSeconds != 1500 {
		t.Fatalf("unexpected archived day: %+v", days[0])
	}
}

func TestArchiveDailyStatsSkipsEmptyDay(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)
	s.GetDailyStats(u.ID)

	if err := s.ArchiveDailyStats(u.ID, "2026-08-30", time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	from, _ := time.Parse("2006-01-02", "2026-08-01")
	to, _ := time.Parse("2006-01-02", "2026-09-01")
	days, _ := s.ListStatsHistory(u.ID, from, to)
	if len(days) != 0 {
		t.Fatal("all-zero day should not be archived")
	}
}

func TestArchiveDailyStatsUpsert(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)
	s.GetDailyStats(u.ID)

	now := time.Now().UTC()
	s.AddFocusCompletion(u.ID, 1500, now)
	s.ArchiveDailyStats(u.ID, "2026-08-30", now)

	// Same date archived again with new counts replaces the row.
	s.AddFocusCompletion(u.ID, 1500, now)
	s.AddFocusCompletion(u.ID, 1500, now)
	s.ArchiveDailyStats(u.ID, "2026-08-30", now)

	from, _ := time.Parse("2006-01-02", "2026-08-01")
	to, _ := time.Parse("2006-01-02", "2026-09-01")
	days, _ := s.ListStatsHistory(u.ID, from, to)
	if len(days) != 1 {
		t.Fatalf("expected 1 row after upsert, got %d", len(days))
	}
	if days[0].PomodorosCompleted != 2 {
		t.Fatalf("expected updated count 2, got %d", days[0].PomodorosCompleted)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSetAndGetSetting(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)

	if err := s.SetSetting(u.ID, SettingWorkDuration, "3000"); err != nil {
		t.Fatal(err)
	}
	v, err := s.GetSetting(u.ID, SettingWorkDuration)
	if err != nil {
		t.Fatal(err)
	}
	if v != "3000" {
		t.Fatalf("expected 3000, got %q", v)
	}
}

func TestGetSettingMissing(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)

	_, err := s.GetSetting(u.ID, "no_such_key")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestSettingsScopedToUser(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)
	other, _ := s.CreateUser("other@example.com", "Other", "hash")

	s.SetSetting(u.ID, SettingWorkDuration, "600")

	v, _ := s.GetSetting(other.ID, SettingWorkDuration)
	if v != "1500" {
		t.Fatalf("other user's setting should stay at default, got %q", v)
	}
}

// ============================================================
// Focus mode
// ============================================================

func TestGetFocusModeCreatesDefault(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)

	fm, err := s.GetFocusMode(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fm.Enabled || fm.BlockNotifications {
		t.Fatalf("default focus mode should be disabled: %+v", fm)
	}
	if fm.ID == "" {
		t.Fatal("expected generated ID")
	}
	if len(fm.BlockedApps) != 0 {
		t.Fatal("expected empty blocked list")
	}
}

func TestUpdateFocusMode(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s)

	fm, _ := s.GetFocusMode(u.ID)
	fm.Enabled = true
	fm.BlockNotifications = true
	fm.BlockedApps = []string{"slack", "discord"}
	if err := s.UpdateFocusMode(fm); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetFocusMode(u.ID)
	if !got.Enabled || !got.BlockNotifications {
		t.Fatalf("flags not persisted: %+v", got)
	}
	if len(got.BlockedApps) != 2 || got.BlockedApps[0] != "slack" {
		t.Fatalf("blocked apps not persisted: %+v", got.BlockedApps)
	}
}

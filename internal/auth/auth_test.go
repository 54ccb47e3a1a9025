package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sadopc/studyboost/internal/store"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	dir := t.TempDir()
	return New(s, dir), dir
}

// ============================================================
// Sign up
// ============================================================

func TestSignUp(t *testing.T) {
	a, dir := newTestService(t)

	u, err := a.SignUp("alice@example.com", "secret123", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "alice@example.com" || u.DisplayName != "Alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if a.Current() == nil || a.Current().ID != u.ID {
		t.Fatal("sign up should sign the user in")
	}
	if _, err := os.Stat(filepath.Join(dir, identityFile)); err != nil {
		t.Fatal("identity cache should be written")
	}
}

func TestSignUpDefaultDisplayName(t *testing.T) {
	a, _ := newTestService(t)

	u, err := a.SignUp("bob@example.com", "secret123", "")
	if err != nil {
		t.Fatal(err)
	}
	if u.DisplayName != "bob" {
		t.Fatalf("expected email prefix as display name, got %q", u.DisplayName)
	}
}

func TestSignUpInvalidEmail(t *testing.T) {
	a, _ := newTestService(t)
	if _, err := a.SignUp("not-an-email", "secret123", ""); err == nil {
		t.Fatal("expected error for invalid email")
	}
}

func TestSignUpWeakPassword(t *testing.T) {
	a, _ := newTestService(t)

	cases := []string{"short1", "onlyletters", "12345678"}
	for _, pass := range cases {
		if _, err := a.SignUp("weak@example.com", pass, ""); err == nil {
			t.Fatalf("expected rejection of password %q", pass)
		}
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	a, _ := newTestService(t)
	if _, err := a.SignUp("dup@example.com", "secret123", ""); err != nil {
		t.Fatal(err)
	}
	_, err := a.SignUp("dup@example.com", "secret456", "")
	if !errors.Is(err, store.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

// ============================================================
// Sign in
// ============================================================

func TestSignInRoundTrip(t *testing.T) {
	a, _ := newTestService(t)
	a.SignUp("alice@example.com", "secret123", "Alice")
	a.SignOut()

	u, err := a.SignIn("Alice@Example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if u.DisplayName != "Alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	a, _ := newTestService(t)
	a.SignUp("alice@example.com", "secret123", "")

	_, err := a.SignIn("alice@example.com", "wrongpass1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInUnknownEmail(t *testing.T) {
	a, _ := newTestService(t)
	_, err := a.SignIn("nobody@example.com", "secret123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown account must look like bad credentials, got %v", err)
	}
}

// ============================================================
// Sign out and identity cache
// ============================================================

func TestSignOutRemovesUserState(t *testing.T) {
	a, dir := newTestService(t)
	u, _ := a.SignUp("alice@example.com", "secret123", "")

	// A stray per-user state file, like a session snapshot.
	snapPath := filepath.Join(dir, "pomodoro-session-"+u.ID+".json")
	os.WriteFile(snapPath, []byte("{}"), 0o600)
	otherPath := filepath.Join(dir, "pomodoro-session-other.json")
	os.WriteFile(otherPath, []byte("{}"), 0o600)

	if err := a.SignOut(); err != nil {
		t.Fatal(err)
	}
	if a.Current() != nil {
		t.Fatal("expected no current user after sign out")
	}
	if _, err := os.Stat(snapPath); !os.IsNotExist(err) {
		t.Fatal("own state file should be removed")
	}
	if _, err := os.Stat(otherPath); err != nil {
		t.Fatal("other users' files must survive")
	}
}

func TestSignOutNotSignedIn(t *testing.T) {
	a, _ := newTestService(t)
	if err := a.SignOut(); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestCurrentSurvivesRestart(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	dir := t.TempDir()

	a1 := New(s, dir)
	u, err := a1.SignUp("alice@example.com", "secret123", "")
	if err != nil {
		t.Fatal(err)
	}

	// A fresh service over the same state dir resolves the cached identity.
	a2 := New(s, dir)
	got := a2.Current()
	if got == nil || got.ID != u.ID {
		t.Fatalf("expected cached identity to resolve, got %+v", got)
	}
}

func TestCurrentCorruptCache(t *testing.T) {
	a, dir := newTestService(t)
	os.WriteFile(filepath.Join(dir, identityFile), []byte("{broken"), 0o600)

	if a.Current() != nil {
		t.Fatal("corrupt cache should read as signed out")
	}
}

func TestSubscribeNotified(t *testing.T) {
	a, _ := newTestService(t)

	var events []*store.User
	a.Subscribe(func(u *store.User) { events = append(events, u) })

	u, _ := a.SignUp("alice@example.com", "secret123", "")
	a.SignOut()

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0] == nil || events[0].ID != u.ID {
		t.Fatal("first event should carry the signed-in user")
	}
	if events[1] != nil {
		t.Fatal("sign-out event should carry nil")
	}
}

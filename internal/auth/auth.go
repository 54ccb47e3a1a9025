// Package auth provides local user accounts: registration, sign-in, and a
// cached current identity that survives restarts.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/sadopc/studyboost/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotSignedIn        = errors.New("not signed in")
)

const identityFile = "current-user.json"

// Service manages accounts against the store and caches the signed-in
// identity in a JSON file under stateDir.
type Service struct {
	store    *store.Store
	stateDir string
	current  *store.User
	onChange []func(*store.User)
}

func New(s *store.Store, stateDir string) *Service {
	return &Service{store: s, stateDir: stateDir}
}

// Subscribe registers a callback invoked after every sign-in and sign-out.
// The user is nil on sign-out.
func (a *Service) Subscribe(fn func(*store.User)) {
	a.onChange = append(a.onChange, fn)
}

// Current returns the signed-in user, loading the cached identity on first
// call. A stale or corrupt cache reads as signed-out.
func (a *Service) Current() *store.User {
	if a.current != nil {
		return a.current
	}
	data, err := os.ReadFile(filepath.Join(a.stateDir, identityFile))
	if err != nil {
		return nil
	}
	var cached struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &cached); err != nil || cached.ID == "" {
		return nil
	}
	u, err := a.store.GetUser(cached.ID)
	if err != nil {
		return nil
	}
	a.current = u
	return u
}

func (a *Service) SignUp(email, password, displayName string) (*store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email address")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := a.store.CreateUser(email, displayName, string(hash))
	if err != nil {
		return nil, err
	}
	return u, a.setCurrent(u)
}

func (a *Service) SignIn(email, password string) (*store.User, error) {
	u, hash, err := a.store.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, a.setCurrent(u)
}

// SignOut drops the cached identity and removes every per-user state file in
// the namespace, then notifies subscribers.
func (a *Service) SignOut() error {
	if a.current == nil {
		return ErrNotSignedIn
	}
	userID := a.current.ID
	a.current = nil
	if err := os.Remove(filepath.Join(a.stateDir, identityFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove identity cache: %w", err)
	}
	if err := RemoveUserState(a.stateDir, userID); err != nil {
		return err
	}
	a.notify(nil)
	return nil
}

// RemoveUserState deletes all "<logical-name>-<userID>.json" files for the
// user under dir.
func RemoveUserState(dir, userID string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*-"+userID+".json"))
	if err != nil {
		return fmt.Errorf("glob user state: %w", err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", m, err)
		}
	}
	return nil
}

func (a *Service) setCurrent(u *store.User) error {
	a.current = u
	data, err := json.Marshal(struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}{u.ID, u.Email})
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(a.stateDir, identityFile), data, 0o600); err != nil {
		return fmt.Errorf("cache identity: %w", err)
	}
	a.notify(u)
	return nil
}

func (a *Service) notify(u *store.User) {
	for _, fn := range a.onChange {
		fn(u)
	}
}

func validatePassword(pass string) error {
	if len(pass) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range pass {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain both letters and digits")
	}
	return nil
}

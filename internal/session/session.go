package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pixil98/bitcraft-companion/internal/bitcraft"
	"github.com/pixil98/bitcraft-companion/internal/storage"
)

// SlotKey is the fixed storage key holding the persisted session.
const SlotKey = "user"

var (
	// ErrInvalidCredentials is returned for unusable login input. Real
	// verification against the game API does not exist yet.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
)

// identityNamespace seeds the deterministic user ids derived from usernames.
var identityNamespace = uuid.MustParse("6f1c2a4e-9a57-4d0b-8b0e-3c1f6a2d9e41")

// PersistenceError describes a failed slot read or write. It is only ever
// logged.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store owns the authenticated identity for the process.
type Store struct {
	mu      sync.RWMutex
	slots   storage.Slots
	current *bitcraft.Session
}

// New creates a store and restores any persisted session. A missing or
// unreadable slot leaves the store logged out.
func New(ctx context.Context, slots storage.Slots) *Store {
	s := &Store{slots: slots}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	data, err := s.slots.Get(SlotKey)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		slog.WarnContext(ctx, "restoring session", "error", &PersistenceError{Op: "load", Err: err})
		return
	}

	var sess bitcraft.Session
	err = json.Unmarshal(data, &sess)
	if err == nil {
		err = sess.Validate()
	}
	if err != nil {
		slog.WarnContext(ctx, "discarding unreadable session", "error", &PersistenceError{Op: "parse", Err: err})
		return
	}

	s.current = &sess
	slog.InfoContext(ctx, "restored session", "username", sess.Username)
}

// Current returns a copy of the active session.
func (s *Store) Current() (bitcraft.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return bitcraft.Session{}, false
	}
	return clone(*s.current), true
}

// Login establishes a session for username. The credential is accepted as-is.
func (s *Store) Login(ctx context.Context, username string, credential string) (bitcraft.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return bitcraft.Session{}, ErrInvalidCredentials
	}

	return s.establish(ctx, newSession(username, fmt.Sprintf("%s@example.com", strings.ToLower(username)))), nil
}

// Register establishes a session for a new account.
func (s *Store) Register(ctx context.Context, username string, email string, credential string) (bitcraft.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return bitcraft.Session{}, ErrInvalidCredentials
	}
	email = strings.TrimSpace(email)
	if at := strings.Index(email, "@"); at <= 0 || at == len(email)-1 {
		return bitcraft.Session{}, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	return s.establish(ctx, newSession(username, email)), nil
}

// Logout clears the session in memory and in storage. It never fails; a
// storage failure is logged.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.slots.Delete(SlotKey); err != nil {
		slog.WarnContext(ctx, "clearing persisted session", "error", &PersistenceError{Op: "delete", Err: err})
	}
}

// SetHoldings records the ids of the claims and empires owner holds. It does
// nothing unless owner is still the current user, so results fetched for one
// user never land on the next. A nil slice leaves that holding unchanged.
func (s *Store) SetHoldings(ctx context.Context, owner string, claims []string, empires []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.Id != owner {
		return
	}
	if claims != nil {
		s.current.Claims = slices.Clone(claims)
	}
	if empires != nil {
		s.current.Empires = slices.Clone(empires)
	}

	s.persist(ctx, *s.current)
}

func (s *Store) establish(ctx context.Context, sess bitcraft.Session) bitcraft.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &sess
	s.persist(ctx, sess)
	slog.InfoContext(ctx, "session established", "username", sess.Username)

	return clone(sess)
}

// persist writes sess to the slot. Callers hold s.mu so the slot always
// matches the in-memory session.
func (s *Store) persist(ctx context.Context, sess bitcraft.Session) {
	data, err := json.Marshal(sess)
	if err == nil {
		err = s.slots.Set(SlotKey, data)
	}
	if err != nil {
		slog.WarnContext(ctx, "persisting session", "error", &PersistenceError{Op: "save", Err: err})
	}
}

func newSession(username string, email string) bitcraft.Session {
	return bitcraft.Session{
		Id:       uuid.NewSHA1(identityNamespace, []byte(strings.ToLower(username))).String(),
		Username: username,
		Email:    email,
		Claims:   []string{},
		Empires:  []string{},
	}
}

func clone(s bitcraft.Session) bitcraft.Session {
	s.Claims = slices.Clone(s.Claims)
	s.Empires = slices.Clone(s.Empires)
	return s
}

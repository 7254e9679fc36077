// Package session implements the storefront's session store: a registry of
// users plus a single active session, both persisted in a key-value store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/foodflame/storefront/internal/auth"
	"github.com/foodflame/storefront/internal/metrics"
	"github.com/foodflame/storefront/internal/model"
	"github.com/foodflame/storefront/internal/notify"
	"github.com/foodflame/storefront/internal/storage"
)

// Persisted keys.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
)

// Session errors.
var (
	// ErrInvalidCredentials is returned for any login mismatch.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrEmailNotFound      = errors.New("email not found")
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Config holds the store's collaborators. Only KV is required.
type Config struct {
	KV       storage.KV
	Hasher   PasswordHasher
	Notifier notify.Notifier
	Metrics  metrics.Recorder
	Logger   *slog.Logger

	// NewID and TempPassword default to ULIDs and auth.GenerateTempPassword.
	NewID        func() string
	TempPassword func() (string, error)
}

// Store manages registered users and the active session.
// All operations are serialized.
type Store struct {
	kv           storage.KV
	hasher       PasswordHasher
	notifier     notify.Notifier
	metrics      metrics.Recorder
	logger       *slog.Logger
	newID        func() string
	tempPassword func() (string, error)

	mu      sync.Mutex
	current *model.User
}

// NewStore creates a Store. Call Restore to pick up a persisted session.
func NewStore(cfg Config) *Store {
	s := &Store{
		kv:           cfg.KV,
		hasher:       cfg.Hasher,
		notifier:     cfg.Notifier,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		newID:        cfg.NewID,
		tempPassword: cfg.TempPassword,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.hasher == nil {
		s.hasher = auth.NewArgon2Hasher(auth.DefaultParams())
	}
	if s.notifier == nil {
		s.notifier = notify.NewDispatcher(s.logger)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoop()
	}
	if s.newID == nil {
		s.newID = func() string { return ulid.Make().String() }
	}
	if s.tempPassword == nil {
		s.tempPassword = auth.GenerateTempPassword
	}
	return s
}

// Restore loads the persisted active session, if any.
func (s *Store) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var u model.User
	err := storage.GetJSON(ctx, s.kv, KeyCurrentUser, &u)
	if errors.Is(err, storage.ErrNotFound) {
		s.current = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s.current = &u
	s.logger.Info("session restored", slog.String("user_id", u.ID))
	return nil
}

// Current returns a copy of the active user, or nil.
func (s *Store) Current() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Login activates the user whose email and password both match.
// Unknown email and wrong password fail identically.
func (s *Store) Login(ctx context.Context, email, password string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, s.fail(ctx, metrics.OpLogin, "login", err)
	}

	for i := range users {
		u := &users[i]
		if u.Email != email {
			continue
		}

		ok, err := s.hasher.Verify(password, u.Password)
		if err != nil {
			s.logger.Warn("unreadable password hash", slog.String("user_id", u.ID), slog.String("error", err.Error()))
			continue
		}
		if !ok {
			continue
		}

		if err := s.setCurrent(ctx, u); err != nil {
			return nil, s.fail(ctx, metrics.OpLogin, "login", err)
		}

		s.metrics.IncAuthOperation(metrics.OpLogin, metrics.StatusSuccess)
		s.notifier.Notify(ctx, notify.Info("Welcome back!", fmt.Sprintf("Good to see you again, %s!", u.Name)))
		return u.Clone(), nil
	}

	s.metrics.IncAuthOperation(metrics.OpLogin, metrics.StatusFailure)
	s.notifier.Notify(ctx, notify.Error("Login failed", "Invalid email or password"))
	return nil, ErrInvalidCredentials
}

// Signup registers a new user and activates the session.
// Fails with ErrEmailExists if the email is already registered.
func (s *Store) Signup(ctx context.Context, email, password, name string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, s.fail(ctx, metrics.OpSignup, "signup", err)
	}

	if indexByEmail(users, email) >= 0 {
		s.metrics.IncAuthOperation(metrics.OpSignup, metrics.StatusFailure)
		s.notifier.Notify(ctx, notify.Error("Account exists", "An account with this email already exists"))
		return nil, ErrEmailExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.fail(ctx, metrics.OpSignup, "signup", err)
	}

	user := model.User{
		ID:        s.newID(),
		Email:     email,
		Password:  hash,
		Name:      name,
		Addresses: []model.Address{},
		Orders:    []model.Order{},
	}

	next := append(slices.Clone(users), user)
	if err := s.saveUsersAndCurrent(ctx, users, next, &user); err != nil {
		return nil, s.fail(ctx, metrics.OpSignup, "signup", err)
	}

	s.logger.Info("user_registered", slog.String("user_id", user.ID))
	s.metrics.IncAuthOperation(metrics.OpSignup, metrics.StatusSuccess)
	s.notifier.Notify(ctx, notify.Info("Account created!", fmt.Sprintf("Welcome to FoodFlame, %s!", name)))
	return user.Clone(), nil
}

// Logout clears the active session and its persisted mirror.
// The in-memory session is cleared even if the delete fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.kv.Delete(ctx, KeyCurrentUser); err != nil {
		return s.fail(ctx, metrics.OpLogout, "logout", err)
	}

	s.metrics.IncAuthOperation(metrics.OpLogout, metrics.StatusSuccess)
	s.notifier.Notify(ctx, notify.Info("Logged out", "You have been successfully logged out"))
	return nil
}

// ResetPassword replaces the password of the user registered under email
// with a temporary one and returns it. There is no out-of-band delivery:
// the caller shows the password to the user.
func (s *Store) ResetPassword(ctx context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return "", s.fail(ctx, metrics.OpResetPassword, "password reset", err)
	}

	idx := indexByEmail(users, email)
	if idx < 0 {
		s.metrics.IncAuthOperation(metrics.OpResetPassword, metrics.StatusFailure)
		s.notifier.Notify(ctx, notify.Error("Email not found", "No account found with this email address"))
		return "", ErrEmailNotFound
	}

	temp, err := s.tempPassword()
	if err != nil {
		return "", s.fail(ctx, metrics.OpResetPassword, "password reset", err)
	}
	hash, err := s.hasher.Hash(temp)
	if err != nil {
		return "", s.fail(ctx, metrics.OpResetPassword, "password reset", err)
	}

	next := slices.Clone(users)
	next[idx].Password = hash

	// Keep the session mirror identical to the registry entry.
	if s.current != nil && s.current.ID == next[idx].ID {
		err = s.saveUsersAndCurrent(ctx, users, next, &next[idx])
	} else {
		err = storage.SetJSON(ctx, s.kv, KeyUsers, next)
	}
	if err != nil {
		return "", s.fail(ctx, metrics.OpResetPassword, "password reset", err)
	}

	s.logger.Info("password_reset", slog.String("user_id", users[idx].ID))
	s.metrics.IncAuthOperation(metrics.OpResetPassword, metrics.StatusSuccess)
	s.notifier.Notify(ctx, notify.Info("Password reset", "Your new password is: "+temp))
	return temp, nil
}

// UpdateProfile merges upd into the active user and persists both the
// session mirror and the registry entry. Without an active session it
// does nothing and returns (nil, nil).
func (s *Store) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, nil
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, s.fail(ctx, metrics.OpUpdateProfile, "profile update", err)
	}

	if upd.Email != nil && *upd.Email != s.current.Email {
		if idx := indexByEmail(users, *upd.Email); idx >= 0 && users[idx].ID != s.current.ID {
			s.metrics.IncAuthOperation(metrics.OpUpdateProfile, metrics.StatusFailure)
			s.notifier.Notify(ctx, notify.Error("Account exists", "An account with this email already exists"))
			return nil, ErrEmailExists
		}
	}

	if upd.Password != nil {
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, s.fail(ctx, metrics.OpUpdateProfile, "profile update", err)
		}
		upd.Password = &hash
	}

	updated := s.current.Clone()
	updated.Apply(upd)

	if idx := slices.IndexFunc(users, func(u model.User) bool { return u.ID == updated.ID }); idx >= 0 {
		next := slices.Clone(users)
		next[idx] = *updated.Clone()
		err = s.saveUsersAndCurrent(ctx, users, next, updated)
	} else {
		err = s.setCurrent(ctx, updated)
	}
	if err != nil {
		return nil, s.fail(ctx, metrics.OpUpdateProfile, "profile update", err)
	}

	s.metrics.IncAuthOperation(metrics.OpUpdateProfile, metrics.StatusSuccess)
	return updated.Clone(), nil
}

// loadUsers reads the registry. A missing key is an empty registry.
func (s *Store) loadUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := storage.GetJSON(ctx, s.kv, KeyUsers, &users)
	if errors.Is(err, storage.ErrNotFound) {
		return []model.User{}, nil
	}
	if err != nil {
		return nil, err
	}
	return users, nil
}

// setCurrent persists u as the session mirror, then adopts it in memory.
func (s *Store) setCurrent(ctx context.Context, u *model.User) error {
	if err := storage.SetJSON(ctx, s.kv, KeyCurrentUser, u); err != nil {
		return err
	}
	s.current = u.Clone()
	return nil
}

// saveUsersAndCurrent writes the registry, then the session mirror, and
// adopts u in memory only when both succeed. If the mirror write fails the
// previous registry is written back.
func (s *Store) saveUsersAndCurrent(ctx context.Context, prev, next []model.User, u *model.User) error {
	if err := storage.SetJSON(ctx, s.kv, KeyUsers, next); err != nil {
		return err
	}
	if err := storage.SetJSON(ctx, s.kv, KeyCurrentUser, u); err != nil {
		if rbErr := storage.SetJSON(ctx, s.kv, KeyUsers, prev); rbErr != nil {
			s.logger.Error("registry rollback failed", slog.String("error", rbErr.Error()))
			return errors.Join(err, rbErr)
		}
		return err
	}
	s.current = u.Clone()
	return nil
}

// fail reports an unexpected error to the user and wraps it for the caller.
func (s *Store) fail(ctx context.Context, op, action string, err error) error {
	s.logger.Error("session operation failed", slog.String("op", op), slog.String("error", err.Error()))
	s.metrics.IncAuthOperation(op, metrics.StatusFailure)
	s.notifier.Notify(ctx, notify.Error("Error", "Something went wrong during "+action))
	return fmt.Errorf("%s: %w", op, err)
}

func indexByEmail(users []model.User, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}

// Package auth registers accounts and manages bearer-token sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// DefaultSessionTTL matches the seven-day token lifetime of the web client.
const DefaultSessionTTL = 7 * 24 * time.Hour

const (
	sessionCacheSize = 1024
	sessionCacheTTL  = 5 * time.Minute
)

// Store is the persistence the service needs.
type Store interface {
	store.UserStore
	store.SessionStore
}

type Service struct {
	store  Store
	ttl    time.Duration
	cost   int
	now    func() time.Time
	cache  *cache.LRUCache[core.Session]
	logger *log.Logger

	// compared against when the email is unknown so both paths pay for bcrypt
	dummyHash string
}

type Option func(*Service)

// WithTTL sets how long a session stays valid after login.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(st Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		ttl:    DefaultSessionTTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		logger: log.New(log.DefaultConfig()),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentAuth)
	s.cache = cache.NewLRUCache[core.Session](sessionCacheSize, sessionCacheTTL).WithClock(s.now)
	s.dummyHash, _ = HashPassword("fintrack-placeholder", s.cost)
	return s
}

// Cache exposes the session cache so it can be registered for cleanup.
func (s *Service) Cache() *cache.LRUCache[core.Session] {
	return s.cache
}

// Register creates an account with a hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (core.User, error) {
	name = strings.TrimSpace(name)
	if err := core.ValidateRegistration(name, email, password); err != nil {
		return core.User{}, err
	}
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return core.User{}, err
	}
	u, err := s.store.CreateUser(ctx, core.User{
		Name:         name,
		Email:        core.NormalizeEmail(email),
		PasswordHash: hash,
	})
	if err != nil {
		return core.User{}, err
	}
	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, u.ID, log.FieldOperation, log.OpRegister)
	return u, nil
}

// Login checks credentials and opens a new session. Unknown email and wrong
// password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (core.Session, core.User, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		CheckPassword(s.dummyHash, password)
		return core.Session{}, core.User{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.Session{}, core.User{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		s.logger.WarnContext(ctx, "Login failed", log.FieldUserID, u.ID, log.FieldOperation, log.OpLogin)
		return core.Session{}, core.User{}, core.ErrInvalidCredentials
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return core.Session{}, core.User{}, err
	}
	now := s.now().UTC()
	sess := core.Session{
		Token:     token,
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return core.Session{}, core.User{}, err
	}
	s.cache.SetUntil(token, sess, sess.ExpiresAt)
	s.logger.InfoContext(ctx, "User logged in", log.FieldUserID, u.ID, log.FieldOperation, log.OpLogin)
	return sess, u, nil
}

// Logout ends the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	s.cache.Delete(token)
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to a live session. Expired sessions
// are deleted and rejected.
func (s *Service) Authenticate(ctx context.Context, token string) (core.Session, error) {
	if token == "" {
		return core.Session{}, core.ErrInvalidCredentials
	}
	if sess, ok := s.cache.Get(token); ok {
		return sess, nil
	}

	sess, err := s.store.GetSession(ctx, token)
	if errors.Is(err, core.ErrNotFound) {
		return core.Session{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.Session{}, err
	}
	if sess.Expired(s.now()) {
		if err := s.store.DeleteSession(ctx, token); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete expired session", log.FieldError, err)
		}
		return core.Session{}, core.ErrSessionExpired
	}
	s.cache.SetUntil(token, sess, sess.ExpiresAt)
	return sess, nil
}

// CurrentUser returns the account behind a session.
func (s *Service) CurrentUser(ctx context.Context, sess core.Session) (core.User, error) {
	return s.store.GetUserByID(ctx, sess.UserID)
}

// PurgeExpired deletes expired sessions from the store and the cache.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	s.cache.CleanExpired()
	return s.store.DeleteExpiredSessions(ctx, s.now())
}

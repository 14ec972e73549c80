package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store/memory"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(t *testing.T) (*Service, *memory.Store, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	st := memory.New(memory.WithClock(clk.now))
	svc := NewService(st,
		WithBcryptCost(bcrypt.MinCost),
		WithClock(clk.now),
		WithTTL(time.Hour),
		WithLogger(log.Discard()),
	)
	return svc, st, clk
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, clk := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, " Ada ", "Ada@Example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEqual(t, "correct horse", u.PasswordHash)

	sess, who, err := svc.Login(ctx, "ADA@example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, who.ID)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Len(t, sess.Token, 64)
	assert.Equal(t, clk.t.Add(time.Hour), sess.ExpiresAt)

	got, err := svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)

	me, err := svc.CurrentUser(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)
}

func TestRegisterRejectsDuplicatesAndWeakInput(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", " ADA@example.com", "another secret")
	assert.ErrorIs(t, err, core.ErrEmailTaken)
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = svc.Register(ctx, "Bob", "bob@example.com", "short")
	assert.ErrorIs(t, err, core.ErrWeakPassword)

	_, err = svc.Register(ctx, "", "bob@example.com", "long enough")
	assert.ErrorIs(t, err, core.ErrEmptyName)

	_, err = svc.Register(ctx, "Bob", "bob@example.com", strings.Repeat("x", core.MaxPasswordLen+1))
	assert.ErrorIs(t, err, core.ErrPasswordTooLong)
	assert.Equal(t, "validation_error", core.Kind(err))
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)

	_, _, errWrong := svc.Login(ctx, "ada@example.com", "wrong password")
	_, _, errUnknown := svc.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, errWrong, core.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, core.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestLogoutEndsSession(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)
	sess, _, err := svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	_, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	assert.NoError(t, svc.Logout(ctx, "never-issued"))
}

func TestAuthenticateRejectsExpiredSessions(t *testing.T) {
	svc, st, clk := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)
	sess, _, err := svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	clk.t = clk.t.Add(time.Hour)
	_, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, core.ErrSessionExpired)

	_, err = st.GetSession(ctx, sess.Token)
	assert.ErrorIs(t, err, core.ErrNotFound, "expired session is deleted")

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = svc.Authenticate(ctx, "bogus")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestPurgeExpired(t *testing.T) {
	svc, _, clk := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	clk.t = clk.t.Add(2 * time.Hour)
	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, svc.Cache().Size())
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFrom(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), core.Session{Token: "t", UserID: "u1"})
	s, ok := SessionFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", s.UserID)
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("not-a-hash", "hunter22"))

	a, err := GenerateSessionToken()
	require.NoError(t, err)
	b, err := GenerateSessionToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

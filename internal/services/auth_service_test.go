package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torta/internal/ratelimit"
	"torta/internal/repos"
	"torta/internal/services"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newAuth(t *testing.T, c *clock) *services.AuthService {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := ratelimit.NewMemoryStore().WithClock(c.Now)
	return services.NewAuthService(repos.NewUserRepo(db), store)
}

func TestLoginSuccessAndGenericFailure(t *testing.T) {
	auth := newAuth(t, &clock{t: time.Now()})
	ctx := context.Background()

	_, err := auth.Login(ctx, "sid-1", "demo@torta.test", "Wr0ngPass!")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	_, err = auth.Login(ctx, "sid-1", "nobody@torta.test", repos.DemoPassword)
	assert.ErrorIs(t, err, services.ErrBadCreds, "unknown accounts report the same error")

	u, err := auth.Login(ctx, "sid-1", "Demo@Torta.test", repos.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "u-demo", u.ID)

	cur, err := auth.CurrentUser("sid-1")
	require.NoError(t, err)
	assert.Equal(t, "u-demo", cur.ID)

	require.NoError(t, auth.Logout("sid-1"))
	_, err = auth.CurrentUser("sid-1")
	assert.Error(t, err)
}

func TestSixthLoginAttemptIsRateLimited(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)}
	auth := newAuth(t, c)
	ctx := context.Background()

	for i := 0; i < services.LoginMaxAttempts; i++ {
		_, err := auth.Login(ctx, "sid", "demo@torta.test", "Wr0ngPass!")
		assert.ErrorIs(t, err, services.ErrBadCreds)
	}
	_, err := auth.Login(ctx, "sid", "demo@torta.test", repos.DemoPassword)
	assert.ErrorIs(t, err, services.ErrRateLimited, "even correct credentials are refused while limited")

	c.t = c.t.Add(services.LoginWindow + time.Second)
	_, err = auth.Login(ctx, "sid", "demo@torta.test", repos.DemoPassword)
	assert.NoError(t, err)
}

func TestSuccessfulLoginClearsAttempts(t *testing.T) {
	auth := newAuth(t, &clock{t: time.Now()})
	ctx := context.Background()

	for i := 0; i < services.LoginMaxAttempts-1; i++ {
		_, _ = auth.Login(ctx, "sid", "demo@torta.test", "Wr0ngPass!")
	}
	_, err := auth.Login(ctx, "sid", "demo@torta.test", repos.DemoPassword)
	require.NoError(t, err)
	for i := 0; i < services.LoginMaxAttempts; i++ {
		_, err = auth.Login(ctx, "sid", "demo@torta.test", "Wr0ngPass!")
		assert.ErrorIs(t, err, services.ErrBadCreds)
	}
}

func TestSignup(t *testing.T) {
	auth := newAuth(t, &clock{t: time.Now()})
	ctx := context.Background()

	u, err := auth.Signup(ctx, "sid-new", "New@User.test", "Newbie", "Str0ngPass!")
	require.NoError(t, err)
	assert.Equal(t, "new@user.test", u.Email)

	cur, err := auth.CurrentUser("sid-new")
	require.NoError(t, err)
	assert.Equal(t, u.ID, cur.ID)

	_, err = auth.Signup(ctx, "sid-x", "new@user.test", "Again", "Str0ngPass!")
	assert.ErrorIs(t, err, services.ErrSignupFailed)

	_, err = auth.Signup(ctx, "sid-x", "weak@user.test", "Weak", "weak")
	assert.ErrorIs(t, err, services.ErrSignupFailed)
}

func TestSignupRateLimit(t *testing.T) {
	auth := newAuth(t, &clock{t: time.Now()})
	ctx := context.Background()
	for i := 0; i < services.SignupMaxAttempts; i++ {
		_, err := auth.Signup(ctx, "sid", "spam@user.test", "Spam", "bad")
		assert.ErrorIs(t, err, services.ErrSignupFailed)
	}
	_, err := auth.Signup(ctx, "sid", "spam@user.test", "Spam", "Str0ngPass!")
	assert.ErrorIs(t, err, services.ErrRateLimited)
}

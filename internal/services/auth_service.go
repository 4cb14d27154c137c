package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"torta/internal/domain"
	applog "torta/internal/log"
	"torta/internal/ratelimit"
	"torta/internal/repos"
	"torta/internal/validate"
)

// Auth failures share one message regardless of cause.
var (
	ErrBadCreds     = errors.New("invalid login credentials")
	ErrSignupFailed = errors.New("registration failed")
	ErrRateLimited  = errors.New("too many attempts")
)

const (
	LoginMaxAttempts  = 5
	LoginWindow       = time.Minute
	SignupMaxAttempts = 3
	SignupWindow      = time.Minute
)

type AuthService struct {
	Users       *repos.UserRepo
	LoginLimit  *ratelimit.Limiter
	SignupLimit *ratelimit.Limiter
}

// NewAuthService limits logins and signups per e-mail address using store.
func NewAuthService(users *repos.UserRepo, store ratelimit.Store) *AuthService {
	return &AuthService{
		Users:       users,
		LoginLimit:  &ratelimit.Limiter{Store: store, Max: LoginMaxAttempts, Window: LoginWindow, Prefix: "login"},
		SignupLimit: &ratelimit.Limiter{Store: store, Max: SignupMaxAttempts, Window: SignupWindow, Prefix: "signup"},
	}
}

func allow(ctx context.Context, l *ratelimit.Limiter, id string) error {
	if l == nil {
		return nil
	}
	ok, err := l.Allow(ctx, id)
	if err != nil {
		return errors.Wrap(err, "rate limit")
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	id := strings.ToLower(strings.TrimSpace(email))
	if err := allow(ctx, s.LoginLimit, id); err != nil {
		return nil, err
	}
	if _, ok := validate.Email(email); !ok || !validate.Password(password) {
		return nil, ErrBadCreds
	}
	u, err := s.Users.ByEmail(id)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, errors.Wrap(err, "bind session")
	}
	if s.LoginLimit != nil {
		if err := s.LoginLimit.Clear(ctx, id); err != nil {
			applog.Logger().WithError(err).Warn("auth.login.clear_attempts")
		}
	}
	return u, nil
}

func (s *AuthService) Signup(ctx context.Context, sid, email, name, password string) (*domain.User, error) {
	id := strings.ToLower(strings.TrimSpace(email))
	if err := allow(ctx, s.SignupLimit, id); err != nil {
		return nil, err
	}
	name, okName := validate.Name(name)
	if _, ok := validate.Email(email); !ok || !okName || !validate.Password(password) {
		return nil, ErrSignupFailed
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrSignupFailed
	}
	u := domain.User{ID: uuid.NewString(), Email: id, Name: name, Hash: string(h), Role: "USER"}
	if err := s.Users.Create(u); err != nil {
		return nil, ErrSignupFailed
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, errors.Wrap(err, "bind session")
	}
	if s.SignupLimit != nil {
		if err := s.SignupLimit.Clear(ctx, id); err != nil {
			applog.Logger().WithError(err).Warn("auth.signup.clear_attempts")
		}
	}
	return &u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// Package session persists the signed-in user's token and profile between runs,
// scoped to one backend origin.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GITHIYON49/taskmanagementapp/internal/store"
	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// ErrNotAuthenticated is returned when no usable session is stored.
var ErrNotAuthenticated = errors.New("not signed in")

// Auth is a stored session.
type Auth struct {
	Token string
	User  models.User
}

// ExpiresAt reads the token's exp claim without verifying the signature; the
// backend remains the authority. ok is false for opaque tokens or tokens without exp.
func (a Auth) ExpiresAt() (time.Time, bool) {
	tok, _, err := jwt.NewParser().ParseUnverified(a.Token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token carries an exp claim at or before now.
func (a Auth) Expired(now time.Time) bool {
	exp, ok := a.ExpiresAt()
	return ok && !now.Before(exp)
}

// Verifier checks a token against the backend.
type Verifier interface {
	Me(ctx context.Context) (*models.User, error)
}

// Manager reads and writes the session for one origin. It caches the token so
// that TokenSource does not hit the database on every request.
type Manager struct {
	bucket store.Bucket
	log    *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	token string
}

// NewManager returns a Manager over b. log may be nil.
func NewManager(b store.Bucket, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{bucket: b, log: log, now: time.Now}
}

// Save persists the token and user.
func (m *Manager) Save(ctx context.Context, u models.User, token string) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := m.bucket.Set(ctx, keyToken, token); err != nil {
		return fmt.Errorf("session: save token: %w", err)
	}
	if err := m.bucket.Set(ctx, keyUser, string(b)); err != nil {
		return fmt.Errorf("session: save user: %w", err)
	}
	m.setToken(token)
	return nil
}

// SaveUser replaces the stored user, keeping the token.
func (m *Manager) SaveUser(ctx context.Context, u models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return m.bucket.Set(ctx, keyUser, string(b))
}

// Clear removes the stored session.
func (m *Manager) Clear(ctx context.Context) error {
	m.setToken("")
	return m.bucket.Delete(ctx, keyToken, keyUser)
}

// Load returns the stored session. A corrupt user record or an expired token
// clears the session and reports ok=false.
func (m *Manager) Load(ctx context.Context) (Auth, bool, error) {
	token, okT, err := m.bucket.Get(ctx, keyToken)
	if err != nil {
		return Auth{}, false, err
	}
	raw, okU, err := m.bucket.Get(ctx, keyUser)
	if err != nil {
		return Auth{}, false, err
	}
	if !okT || !okU || token == "" {
		return Auth{}, false, nil
	}
	a := Auth{Token: token}
	if err := json.Unmarshal([]byte(raw), &a.User); err != nil {
		m.log.Warn("session: stored user unreadable, clearing", "error", err)
		return Auth{}, false, m.Clear(ctx)
	}
	if a.Expired(m.now()) {
		m.log.Info("session: token expired, clearing", "user_id", a.User.ID.String())
		return Auth{}, false, m.Clear(ctx)
	}
	m.setToken(token)
	return a, true, nil
}

// Verify asks the backend who the stored token belongs to. A 401 clears the
// session. Any other failure keeps it and returns the stored user with the
// error, so callers can carry on from cached state while the backend is
// unreachable.
func (m *Manager) Verify(ctx context.Context, v Verifier) (models.User, error) {
	a, ok, err := m.Load(ctx)
	if err != nil {
		return models.User{}, err
	} else if !ok {
		return models.User{}, ErrNotAuthenticated
	}
	u, err := v.Me(ctx)
	if err != nil {
		if !client.IsUnauthorized(err) {
			return a.User, err
		}
		if cerr := m.Clear(ctx); cerr != nil {
			m.log.Warn("session: clear after rejected token", "error", cerr)
		}
		return models.User{}, err
	}
	if err := m.SaveUser(ctx, *u); err != nil {
		return models.User{}, err
	}
	return *u, nil
}

// Token returns the cached bearer token. It matches client.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) setToken(t string) {
	m.mu.Lock()
	m.token = t
	m.mu.Unlock()
}

package session

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

// CookieName is the backend session cookie the dashboard clears on logout.
const CookieName = "toDoAppCookie"

// LoginPath is where unauthenticated staff are sent.
const LoginPath = "/iniciar-sesion"

const (
	msgLoginFailed = "Error al iniciar sesión"
	msgConnection  = "Error de conexión"
	msgNotAllowed  = "Error: Usuario no autorizado para acceder a este dashboard"
)

// LoginError carries the message shown verbatim on the login form.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }

func (e *LoginError) Unwrap() error { return e.Err }

// Backend is the part of the REST client the gate needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	VerifyAuth(ctx context.Context, creds client.Credentials) (bool, error)
}

// Gate tracks one staff session.
type Gate struct {
	backend Backend
	admins  []int64
	now     func() time.Time

	mu       sync.RWMutex
	state    State
	creds    client.Credentials
	user     *models.User
	verified time.Time
}

func NewGate(backend Backend, creds client.Credentials, admins []int64) *Gate {
	return &Gate{backend: backend, creds: creds, admins: admins, now: time.Now}
}

func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Gate) Credentials() client.Credentials {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.creds
}

// Token returns the bearer token mirrored at login, empty if none.
func (g *Gate) Token() string {
	return g.Credentials().Token
}

func (g *Gate) User() *models.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user
}

func (g *Gate) fire(e Event) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	prev := g.state
	g.state = Next(g.state, e)
	if e == VerifyOK || e == VerifyFailed {
		g.verified = g.now()
	}
	if prev != g.state {
		utils.Info().WithField("from", prev.String()).WithField("to", g.state.String()).Info("session state changed")
	}
	return g.state
}

// VerifiedWithin reports whether the last verify happened less than ttl ago.
func (g *Gate) VerifiedWithin(ttl time.Duration) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.verified.IsZero() && g.now().Sub(g.verified) < ttl
}

// Verify asks the backend. An expired token short-circuits to Unauthenticated
// without a network call.
func (g *Gate) Verify(ctx context.Context) (State, error) {
	creds := g.Credentials()
	if creds.Token != "" && utils.TokenExpired(creds.Token, g.now()) {
		return g.fire(Expire), nil
	}

	ok, err := g.backend.VerifyAuth(ctx, creds)
	if err != nil {
		utils.Error().WithError(err).Error("session verify failed")
	}
	if ok {
		return g.fire(VerifyOK), nil
	}
	return g.fire(VerifyFailed), err
}

// CheckTokenExpiry verifies the session and logs out if it is no longer valid.
func (g *Gate) CheckTokenExpiry(ctx context.Context) bool {
	state, _ := g.Verify(ctx)
	if state != Authenticated {
		g.Logout()
		return false
	}
	return true
}

// Login authenticates against the backend. On failure the returned error is a
// *LoginError and the gate stays where it was.
func (g *Gate) Login(ctx context.Context, email, password string) (*client.LoginResponse, error) {
	resp, err := g.backend.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrTransport) {
			return nil, &LoginError{Message: msgConnection, Err: err}
		}
		return nil, &LoginError{Message: msgLoginFailed, Err: err}
	}

	if resp.JSON && len(g.admins) > 0 {
		if resp.Result.User == nil || !slices.Contains(g.admins, resp.Result.User.ID) {
			return nil, &LoginError{Message: msgNotAllowed}
		}
	}

	g.mu.Lock()
	g.creds = client.Credentials{
		Cookie: cookieHeader(resp.Cookies),
		Token:  resp.Result.BearerToken(),
	}
	g.user = resp.Result.User
	g.mu.Unlock()

	g.fire(Login)
	return resp, nil
}

// Logout drops the credentials held by the gate.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.creds = client.Credentials{}
	g.user = nil
	g.mu.Unlock()
	g.fire(Logout)
}

// Expire records that the backend rejected the session (401/403).
func (g *Gate) Expire() {
	g.fire(Expire)
}

// Observe inspects an error returned by any backend call and expires the
// session on 401/403. It returns err unchanged.
func (g *Gate) Observe(err error) error {
	if client.IsUnauthorized(err) {
		g.Expire()
	}
	return err
}

func cookieHeader(cookies []*http.Cookie) string {
	var header string
	for _, c := range cookies {
		if c.Value == "" {
			continue
		}
		if header != "" {
			header += "; "
		}
		header += c.Name + "=" + c.Value
	}
	return header
}

// ExpiredCookie is the Set-Cookie that removes the session cookie in the browser.
func ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
	}
}

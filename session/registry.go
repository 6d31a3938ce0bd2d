package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-backoffice/client"
)

// Registry holds one Gate per browser session, keyed by its credentials.
type Registry struct {
	backend Backend
	admins  []int64
	// VerifyTTL is how long a successful verify is trusted.
	VerifyTTL time.Duration

	mu    sync.Mutex
	gates map[string]*Gate
}

func NewRegistry(backend Backend, admins []int64, verifyTTL time.Duration) *Registry {
	return &Registry{
		backend:   backend,
		admins:    admins,
		VerifyTTL: verifyTTL,
		gates:     make(map[string]*Gate),
	}
}

func key(creds client.Credentials) string {
	sum := sha256.Sum256([]byte(creds.Cookie + "\x00" + creds.Token))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the gate for creds, creating it in the Unknown state.
func (r *Registry) Lookup(creds client.Credentials) *Gate {
	k := key(creds)
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gates[k]; ok {
		return g
	}
	g := NewGate(r.backend, creds, r.admins)
	r.gates[k] = g
	return g
}

// Authorize returns the gate for creds once it is known to be authenticated,
// verifying against the backend when the last check is older than VerifyTTL.
func (r *Registry) Authorize(ctx context.Context, creds client.Credentials) (*Gate, bool) {
	if creds == (client.Credentials{}) {
		return nil, false
	}
	g := r.Lookup(creds)
	if g.State() == Authenticated && g.VerifiedWithin(r.VerifyTTL) {
		return g, true
	}
	state, _ := g.Verify(ctx)
	if state != Authenticated {
		r.Forget(creds)
		return g, false
	}
	return g, true
}

// Login opens a new session and registers it under the credentials it got.
func (r *Registry) Login(ctx context.Context, email, password string) (*Gate, *client.LoginResponse, error) {
	g := NewGate(r.backend, client.Credentials{}, r.admins)
	resp, err := g.Login(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	g.mu.Lock()
	g.verified = g.now()
	g.mu.Unlock()

	r.mu.Lock()
	r.gates[key(g.Credentials())] = g
	r.mu.Unlock()
	return g, resp, nil
}

// Logout ends the session for creds.
func (r *Registry) Logout(creds client.Credentials) {
	r.mu.Lock()
	g, ok := r.gates[key(creds)]
	delete(r.gates, key(creds))
	r.mu.Unlock()
	if ok {
		g.Logout()
	}
}

func (r *Registry) Forget(creds client.Credentials) {
	r.mu.Lock()
	delete(r.gates, key(creds))
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gates)
}

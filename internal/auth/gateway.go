package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/apothekit/stockroom/pkg/types"
)

// sessionFileName is the persisted session token in the config directory.
const sessionFileName = "session.token"

// Gateway wraps an identity Provider with session persistence and a live
// authentication-state stream. At most one state subscription is active per
// gateway; subscribing again disposes the previous one first.
type Gateway struct {
	provider Provider
	tokens   *TokenManager
	dir      string

	mu      sync.Mutex
	current *types.User
	sub     *authSubscription
}

// NewGateway creates a gateway and restores any persisted session from dir.
// An expired or invalid stored token leaves the gateway signed out without
// error; the stale token file is removed.
func NewGateway(provider Provider, tokens *TokenManager, dir string) (*Gateway, error) {
	g := &Gateway{provider: provider, tokens: tokens, dir: dir}

	data, err := os.ReadFile(g.sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return g, nil
		}
		return nil, err
	}

	user, err := tokens.Parse(string(data))
	if err != nil {
		_ = os.Remove(g.sessionPath())
		return g, nil
	}
	g.current = user
	return g, nil
}

// SignIn authenticates against the provider, persists a fresh session
// token, and notifies the state stream. No retry on failure; the caller
// re-invokes if desired.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*types.User, error) {
	user, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := g.openSession(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SignUp creates an account and signs it in.
func (g *Gateway) SignUp(ctx context.Context, email, password string) (*types.User, error) {
	user, err := g.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := g.openSession(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SignOut clears the local session and notifies the state stream.
// Signing out while signed out is a no-op.
func (g *Gateway) SignOut() error {
	if err := os.Remove(g.sessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session: %w", err)
	}

	g.mu.Lock()
	g.current = nil
	fn := g.subscriberLocked()
	g.mu.Unlock()

	if fn != nil {
		fn(nil)
	}
	return nil
}

// CurrentUser returns the signed-in identity, or nil.
func (g *Gateway) CurrentUser() *types.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil
	}
	copied := *g.current
	return &copied
}

// SubscribeAuthState registers fn to be invoked once immediately with the
// current state and again on every change. The returned handle must be
// canceled by the owner; re-subscribing cancels the previous handle first.
func (g *Gateway) SubscribeAuthState(fn func(*types.User)) types.Subscription {
	g.mu.Lock()
	if g.sub != nil {
		g.sub.detachLocked()
	}
	sub := &authSubscription{gateway: g, fn: fn}
	g.sub = sub
	current := g.current
	g.mu.Unlock()

	// Immediate emission with the state at subscribe time.
	if current != nil {
		copied := *current
		fn(&copied)
	} else {
		fn(nil)
	}
	return sub
}

// Close disposes the state subscription. The session file is left in place
// so the next gateway instance restores it.
func (g *Gateway) Close() {
	g.mu.Lock()
	if g.sub != nil {
		g.sub.detachLocked()
		g.sub = nil
	}
	g.mu.Unlock()
}

// openSession persists the token, records the user, and notifies the stream.
func (g *Gateway) openSession(user *types.User) error {
	token, err := g.tokens.Issue(user)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(g.sessionPath(), []byte(token), 0o600); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	g.mu.Lock()
	copied := *user
	g.current = &copied
	fn := g.subscriberLocked()
	g.mu.Unlock()

	if fn != nil {
		emit := *user
		fn(&emit)
	}
	return nil
}

// subscriberLocked returns the active callback, or nil. Caller holds g.mu.
func (g *Gateway) subscriberLocked() func(*types.User) {
	if g.sub == nil || g.sub.detached {
		return nil
	}
	return g.sub.fn
}

func (g *Gateway) sessionPath() string {
	return filepath.Join(g.dir, sessionFileName)
}

// authSubscription is the handle returned by SubscribeAuthState.
type authSubscription struct {
	gateway  *Gateway
	fn       func(*types.User)
	detached bool
}

// Cancel stops delivery. Idempotent.
func (s *authSubscription) Cancel() {
	s.gateway.mu.Lock()
	defer s.gateway.mu.Unlock()
	s.detachLocked()
	if s.gateway.sub == s {
		s.gateway.sub = nil
	}
}

// detachLocked marks the subscription dead. Caller holds the gateway mutex.
func (s *authSubscription) detachLocked() {
	s.detached = true
}

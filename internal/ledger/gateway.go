// ABOUTME: Ledger gateway exposing single-key get/set over a pluggable Store.
// ABOUTME: Resolves a signing identity and asks for approval before every write.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrDeclined means the user refused to authorize a write.
	ErrDeclined = errors.New("declined by user")
	// ErrNoIdentity means no signing identity is available for a write.
	ErrNoIdentity = errors.New("no signing identity")
	// ErrReadOnly means the backend is open without write access.
	ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")
)

// rejectionSignals are message fragments wallets and signers use for an explicit refusal.
var rejectionSignals = []string{"user rejected", "user denied"}

// IsDeclined reports whether err is an explicit user refusal.
func IsDeclined(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDeclined) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range rejectionSignals {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// Store is a byte-oriented key-value backend with no listing or transactions.
type Store interface {
	// Available reports whether the backend can serve requests.
	Available(ctx context.Context) (bool, error)
	// Get returns the value for key, or zero-length bytes if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the backend.
	Close() error
}

// IdentitySource yields the signing identity current at the time of a write.
type IdentitySource interface {
	Identity(ctx context.Context) (string, error)
}

// IdentityFunc adapts a function to IdentitySource.
type IdentityFunc func(ctx context.Context) (string, error)

func (f IdentityFunc) Identity(ctx context.Context) (string, error) { return f(ctx) }

// StaticIdentity always returns the same identity.
type StaticIdentity string

func (s StaticIdentity) Identity(context.Context) (string, error) { return string(s), nil }

// WriteRequest describes a write awaiting approval.
type WriteRequest struct {
	Identity string
	Key      string
	Size     int
}

// Approver authorizes writes. Returning an error for which IsDeclined is true
// signals an explicit refusal.
type Approver interface {
	Approve(ctx context.Context, req WriteRequest) error
}

// ApproverFunc adapts a function to Approver.
type ApproverFunc func(ctx context.Context, req WriteRequest) error

func (f ApproverFunc) Approve(ctx context.Context, req WriteRequest) error { return f(ctx, req) }

// AutoApprove approves every write.
var AutoApprove Approver = ApproverFunc(func(context.Context, WriteRequest) error { return nil })

// Gateway is the only path the rest of the program uses to reach a Store.
type Gateway struct {
	store    Store
	identity IdentitySource
	approver Approver
	timeout  time.Duration
	log      *log.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithIdentity sets the identity source consulted before each write.
func WithIdentity(src IdentitySource) Option {
	return func(g *Gateway) { g.identity = src }
}

// WithApprover sets the approver consulted before each write.
func WithApprover(a Approver) Option {
	return func(g *Gateway) { g.approver = a }
}

// WithTimeout bounds every backend call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// WithLogger sets the gateway logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// NewGateway wraps store. Without options it approves every write and has no identity.
func NewGateway(store Store, opts ...Option) *Gateway {
	g := &Gateway{
		store:    store,
		identity: StaticIdentity(""),
		approver: AutoApprove,
		log:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Store returns the wrapped backend.
func (g *Gateway) Store() Store {
	return g.store
}

// Close closes the wrapped backend.
func (g *Gateway) Close() error {
	return g.store.Close()
}

func (g *Gateway) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

// IsAvailable probes the backend.
func (g *Gateway) IsAvailable(ctx context.Context) (bool, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	return g.store.Available(ctx)
}

// GetData reads key. An absent key yields zero-length bytes and no error.
func (g *Gateway) GetData(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	data, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// SetData writes key after resolving the current identity and obtaining approval.
func (g *Gateway) SetData(ctx context.Context, key string, value []byte) error {
	identity, err := g.identity.Identity(ctx)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}
	if identity == "" {
		return ErrNoIdentity
	}

	req := WriteRequest{Identity: identity, Key: key, Size: len(value)}
	if err := g.approver.Approve(ctx, req); err != nil {
		if IsDeclined(err) && !errors.Is(err, ErrDeclined) {
			err = fmt.Errorf("%w: %v", ErrDeclined, err)
		}
		return fmt.Errorf("authorize write %s: %w", key, err)
	}

	ctx, cancel := g.bound(ctx)
	defer cancel()

	if err := g.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	g.log.Debug("wrote key", "key", key, "bytes", len(value), "identity", identity)
	return nil
}

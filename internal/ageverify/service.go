// Package ageverify gates adult content behind a one-time confirmation.
//
// Per identity the state moves UNVERIFIED -> PENDING (token issued) ->
// VERIFIED, or PENDING -> EXPIRED -> UNVERIFIED when the token lapses.
// VERIFIED is terminal: verified identities never expire.
package ageverify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"contentgw/internal/ageverify/models"
	"contentgw/pkg/platform/sentinel"
	"contentgw/pkg/requestcontext"
)

const (
	DefaultTokenTTL = 30 * time.Minute
	tokenBytes      = 32
)

var (
	ErrInvalidToken     = errors.New("invalid verification token")
	ErrExpiredToken     = errors.New("verification token expired")
	ErrIdentityRequired = errors.New("identity is required")
)

// TokenStore persists pending tokens. FindLive and Take return an error
// wrapping sentinel.ErrNotFound when nothing matches.
type TokenStore interface {
	Create(ctx context.Context, token *models.Token) error
	// FindLive returns the identity's token that has not expired at now.
	FindLive(ctx context.Context, identity string, now time.Time) (*models.Token, error)
	// Take atomically loads and deletes a token, expired or not.
	Take(ctx context.Context, value string) (*models.Token, error)
}

// IdentitySet is the persistent allow-list of verified identities. Add is
// idempotent.
type IdentitySet interface {
	Contains(ctx context.Context, identity string) (bool, error)
	Add(ctx context.Context, identity string, at time.Time) error
	List(ctx context.Context) ([]string, error)
}

type Service struct {
	tokens     TokenStore
	identities IdentitySet
	ttl        time.Duration
	group      singleflight.Group
	newToken   func() (string, error)
	logger     *slog.Logger
	metrics    *Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithTokenGenerator replaces the random token source.
func WithTokenGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		s.newToken = gen
	}
}

func New(tokens TokenStore, identities IdentitySet, opts ...Option) (*Service, error) {
	if tokens == nil {
		return nil, errors.New("token store is required")
	}
	if identities == nil {
		return nil, errors.New("identity set is required")
	}
	s := &Service{
		tokens:     tokens,
		identities: identities,
		ttl:        DefaultTokenTTL,
		newToken:   randomToken,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TokenTTL is the lifetime given to new tokens.
func (s *Service) TokenTTL() time.Duration {
	return s.ttl
}

// RequestVerification reports whether identity is verified and otherwise
// returns its pending token, minting one when none is live. Concurrent
// requests for one identity share a single mint.
func (s *Service) RequestVerification(ctx context.Context, identity string) (*models.Status, error) {
	if identity == "" {
		return nil, ErrIdentityRequired
	}
	verified, err := s.identities.Contains(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("check verified identity: %w", err)
	}
	if verified {
		return &models.Status{Identity: identity, Verified: true}, nil
	}

	v, err, _ := s.group.Do(identity, func() (any, error) {
		return s.pending(ctx, identity)
	})
	if err != nil {
		return nil, err
	}
	// Each caller gets its own copy; singleflight shares the pointer.
	status := *v.(*models.Status)
	return &status, nil
}

func (s *Service) pending(ctx context.Context, identity string) (*models.Status, error) {
	now := requestcontext.Now(ctx)

	live, err := s.tokens.FindLive(ctx, identity, now)
	switch {
	case err == nil:
		return pendingStatus(live, now, true), nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, fmt.Errorf("find live token: %w", err)
	}

	value, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	token := &models.Token{
		Value:     value,
		Identity:  identity,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	s.metrics.IncrementIssued()
	s.logger.InfoContext(ctx, "age verification token issued",
		"identity", identity,
		"expires_at", token.ExpiresAt,
	)
	return pendingStatus(token, now, false), nil
}

func pendingStatus(t *models.Token, now time.Time, reused bool) *models.Status {
	expires := t.ExpiresAt
	return &models.Status{
		Identity:  t.Identity,
		Token:     t.Value,
		ExpiresAt: &expires,
		ExpiresIn: expires.Sub(now),
		Reused:    reused,
	}
}

// Confirm consumes token. The token is gone afterwards whatever the outcome,
// so a replay always fails with ErrInvalidToken. Failing to persist the
// verified identity is returned to the caller.
func (s *Service) Confirm(ctx context.Context, value string) (*models.Confirmation, error) {
	if value == "" {
		s.metrics.IncrementConfirmation("invalid")
		return nil, ErrInvalidToken
	}
	now := requestcontext.Now(ctx)

	token, err := s.tokens.Take(ctx, value)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.IncrementConfirmation("invalid")
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("take token: %w", err)
	}
	if token.Expired(now) {
		s.metrics.IncrementConfirmation("expired")
		return nil, ErrExpiredToken
	}

	if err := s.identities.Add(ctx, token.Identity, now); err != nil {
		s.metrics.IncrementConfirmation("storage_error")
		s.logger.ErrorContext(ctx, "failed to persist verified identity",
			"identity", token.Identity,
			"error", err,
		)
		return nil, fmt.Errorf("record verified identity: %w", err)
	}
	s.metrics.IncrementConfirmation("verified")
	s.logger.InfoContext(ctx, "identity age verified", "identity", token.Identity)
	return &models.Confirmation{Identity: token.Identity, VerifiedAt: now}, nil
}

// IsVerified reports whether identity has completed verification.
func (s *Service) IsVerified(ctx context.Context, identity string) (bool, error) {
	if identity == "" {
		return false, nil
	}
	ok, err := s.identities.Contains(ctx, identity)
	if err != nil {
		return false, fmt.Errorf("check verified identity: %w", err)
	}
	return ok, nil
}

// VerifiedCount is the size of the allow-list.
func (s *Service) VerifiedCount(ctx context.Context) (int, error) {
	ids, err := s.identities.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list verified identities: %w", err)
	}
	return len(ids), nil
}

func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"go.uber.org/zap"
	"google.golang.org/grpc/metadata"

	"github.com/elskow/sphere-accounts/internal/observability"
)

type contextKey string

const (
	// IdentityContextKey is the key used to store the caller's Identity in the context
	IdentityContextKey contextKey = "identity"

	AuthorizationHeader = "authorization"
	bearerPrefix        = "bearer "
)

// Identity is the caller as asserted by a verified session token. It is not
// re-read from storage, so status changes apply from the next login on.
type Identity struct {
	UserID    uuid.UUID
	Username  string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Guard gates protected operations on a valid bearer session token.
type Guard struct {
	tokens  *TokenService
	log     *zap.Logger
	metrics *observability.Metrics
}

func NewGuard(tokens *TokenService, log *zap.Logger, metrics *observability.Metrics) *Guard {
	return &Guard{
		tokens:  tokens,
		log:     log,
		metrics: metrics,
	}
}

// Authenticate verifies the bearer token in authorization and returns a
// context carrying the Identity.
func (g *Guard) Authenticate(ctx context.Context, authorization string) (context.Context, error) {
	raw, ok := bearerToken(authorization)
	if !ok {
		g.metrics.RecordGuardRejection(CodeTokenMissing)
		return nil, oops.Code(CodeTokenMissing).
			Public("Not authorized, no token provided.").
			Errorf("missing bearer token")
	}

	claims, err := g.tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			g.metrics.RecordGuardRejection(CodeTokenExpired)
			return nil, oops.Code(CodeTokenExpired).
				Public("Not authorized, token expired.").
				Wrap(err)
		}
		g.log.Debug("session token rejected", zap.Error(err))
		g.metrics.RecordGuardRejection(CodeTokenInvalid)
		return nil, oops.Code(CodeTokenInvalid).
			Public("Not authorized, token failed.").
			Wrap(err)
	}

	return WithIdentity(ctx, identityFromClaims(claims)), nil
}

// AuthenticationMiddleware authenticates a gRPC call from its incoming metadata.
func (g *Guard) AuthenticationMiddleware(ctx context.Context) (context.Context, error) {
	var authorization string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(AuthorizationHeader); len(values) > 0 {
			authorization = values[0]
		}
	}
	return g.Authenticate(ctx, authorization)
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// IdentityFromContext returns the Identity stored by the guard.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(Identity)
	return identity, ok
}

func bearerToken(authorization string) (string, bool) {
	authorization = strings.TrimSpace(authorization)
	if len(authorization) < len(bearerPrefix) || !strings.EqualFold(authorization[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(authorization[len(bearerPrefix):])
	return token, token != ""
}

func identityFromClaims(c *Claims) Identity {
	identity := Identity{
		UserID:   c.UserID,
		Username: c.Username,
		Email:    c.Email,
	}
	if c.IssuedAt != nil {
		identity.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		identity.ExpiresAt = c.ExpiresAt.Time
	}
	return identity
}

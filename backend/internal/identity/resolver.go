package identity

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
	"socialgraph/backend/pkg/logger"
)

// Resolver maps an opaque bearer token to the acting user's id
type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// UserChecker confirms a token subject still exists
type UserChecker interface {
	ExistsUser(ctx context.Context, userID string) (bool, error)
}

// JWTResolver issues and resolves HS256 tokens whose subject is the userId
type JWTResolver struct {
	secret      []byte
	issuer      string
	ttl         time.Duration
	users       UserChecker
	revocations Revocations
	logger      *zap.Logger
}

// NewJWTResolver creates a resolver. revocations may be nil, in which case
// logout cannot invalidate tokens before they expire.
func NewJWTResolver(secret, issuer string, ttl time.Duration, users UserChecker, revocations Revocations) *JWTResolver {
	return &JWTResolver{
		secret:      []byte(secret),
		issuer:      issuer,
		ttl:         ttl,
		users:       users,
		revocations: revocations,
		logger:      logger.Named("identity"),
	}
}

// Issue signs a new token for userID and returns it with its expiry
func (r *JWTResolver) Issue(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(r.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   userID,
		Issuer:    r.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(r.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (r *JWTResolver) parse(raw string) (*jwt.RegisteredClaims, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if raw == "" {
		return nil, apperrors.NewUnauthenticated("missing token", nil)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return r.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(r.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("invalid or expired token", err)
	}
	if claims.Subject == "" {
		return nil, apperrors.NewUnauthenticated("token has no subject", nil)
	}
	return claims, nil
}

// Resolve validates the token and returns its subject. Revoked tokens and
// tokens of deleted users are rejected.
func (r *JWTResolver) Resolve(ctx context.Context, token string) (string, error) {
	claims, err := r.parse(token)
	if err != nil {
		return "", err
	}

	if r.revocations != nil && claims.ID != "" {
		revoked, err := r.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Redis being down must not lock every user out
			r.logger.Warn("Revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
		} else if revoked {
			return "", apperrors.NewUnauthenticated("token has been revoked", nil)
		}
	}

	if r.users != nil {
		exists, err := r.users.ExistsUser(ctx, claims.Subject)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", apperrors.NewUnauthenticated("user no longer exists", nil)
		}
	}
	return claims.Subject, nil
}

// Revoke invalidates token until it would have expired anyway
func (r *JWTResolver) Revoke(ctx context.Context, token string) error {
	claims, err := r.parse(token)
	if err != nil {
		return err
	}
	if r.revocations == nil {
		r.logger.Warn("Token revocation disabled, logout is client-side only", zap.String("user_id", claims.Subject))
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := r.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperrors.NewStorageFailure("redis", "failed to revoke token", err)
	}
	r.logger.Info("Token revoked", zap.String("user_id", claims.Subject), zap.String("jti", claims.ID))
	return nil
}

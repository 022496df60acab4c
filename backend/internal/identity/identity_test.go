package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "socialgraph/backend/pkg/errors"
)

type stubUsers struct {
	existsFn func(ctx context.Context, userID string) (bool, error)
}

func (s *stubUsers) ExistsUser(ctx context.Context, userID string) (bool, error) {
	return s.existsFn(ctx, userID)
}

func everyoneExists() *stubUsers {
	return &stubUsers{existsFn: func(context.Context, string) (bool, error) { return true, nil }}
}

func newTestRevocations(t *testing.T) (*RedisRevocations, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisRevocations(rdb), mr
}

func TestResolve_RoundTrip(t *testing.T) {
	r := NewJWTResolver("test-secret", "socialgraph", time.Hour, everyoneExists(), nil)

	token, expiresAt, err := r.Issue("u1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := r.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	userID, err = r.Resolve(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestResolve_Rejects(t *testing.T) {
	r := NewJWTResolver("test-secret", "socialgraph", time.Hour, everyoneExists(), nil)
	other := NewJWTResolver("other-secret", "socialgraph", time.Hour, everyoneExists(), nil)
	foreignIssuer := NewJWTResolver("test-secret", "someone-else", time.Hour, everyoneExists(), nil)
	expired := NewJWTResolver("test-secret", "socialgraph", -time.Minute, everyoneExists(), nil)

	wrongKey, _, err := other.Issue("u1")
	require.NoError(t, err)
	wrongIssuer, _, err := foreignIssuer.Issue("u1")
	require.NoError(t, err)
	stale, _, err := expired.Issue("u1")
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "socialgraph",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong key", wrongKey},
		{"wrong issuer", wrongIssuer},
		{"expired", stale},
		{"unsigned", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.token)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnauthenticated), "got %v", err)
		})
	}
}

func TestResolve_DeletedUser(t *testing.T) {
	users := &stubUsers{existsFn: func(context.Context, string) (bool, error) { return false, nil }}
	r := NewJWTResolver("test-secret", "socialgraph", time.Hour, users, nil)
	token, _, err := r.Issue("gone")
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), token)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnauthenticated))
}

func TestResolve_StoreFailurePropagates(t *testing.T) {
	users := &stubUsers{existsFn: func(context.Context, string) (bool, error) {
		return false, apperrors.NewStoreFailure(apperrors.StoreNotConnected, "read", errors.New("down"))
	}}
	r := NewJWTResolver("test-secret", "socialgraph", time.Hour, users, nil)
	token, _, err := r.Issue("u1")
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), token)
	assert.True(t, apperrors.IsStoreFailure(err, apperrors.StoreNotConnected))
}

func TestRevoke(t *testing.T) {
	revocations, mr := newTestRevocations(t)
	r := NewJWTResolver("test-secret", "socialgraph", time.Hour, everyoneExists(), revocations)
	ctx := context.Background()

	token, _, err := r.Issue("u1")
	require.NoError(t, err)
	require.NoError(t, r.Revoke(ctx, token))

	_, err = r.Resolve(ctx, token)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnauthenticated))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, mr.TTL(keys[0]) > 0)

	// Once the deny-list entry expires the token is expired as well
	mr.FastForward(time.Hour + time.Minute)
	assert.Empty(t, mr.Keys())
}

func TestResolve_RedisDownFailsOpen(t *testing.T) {
	revocations, mr := newTestRevocations(t)
	r := NewJWTResolver("test-secret", "socialgraph", time.Hour, everyoneExists(), revocations)
	token, _, err := r.Issue("u1")
	require.NoError(t, err)

	mr.Close()
	userID, err := r.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
}

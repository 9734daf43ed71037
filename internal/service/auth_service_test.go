package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/internal/domain"
)

func TestLoginAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	pair, err := env.auth.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)

	identity, err := env.auth.Authenticate(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, identity.UserID)
	assert.Equal(t, "alice", identity.Username)
	assert.NotEmpty(t, identity.TokenID)
	assert.False(t, identity.TokenExpiresAt.IsZero())

	_, err = env.auth.Authenticate(ctx, pair.Refresh)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = env.auth.Login(ctx, "alice@x.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	pair, err := env.auth.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)

	access, err := env.auth.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)

	identity, err := env.auth.Authenticate(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)

	_, err = env.auth.Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = env.auth.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestVerifyAcceptsBothTokenTypes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	pair, err := env.auth.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)

	assert.NoError(t, env.auth.Verify(ctx, pair.Access))
	assert.NoError(t, env.auth.Verify(ctx, pair.Refresh))
	assert.ErrorIs(t, env.auth.Verify(ctx, "nope"), domain.ErrTokenInvalid)
}

func TestLogoutRevokesPresentedTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	pair, err := env.auth.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	other, err := env.auth.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)

	identity, err := env.auth.Authenticate(ctx, pair.Access)
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, identity, pair.Refresh))

	_, err = env.auth.Authenticate(ctx, pair.Access)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	_, err = env.auth.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	assert.ErrorIs(t, env.auth.Verify(ctx, pair.Access), domain.ErrTokenInvalid)
	assert.ErrorIs(t, env.auth.Verify(ctx, pair.Refresh), domain.ErrTokenInvalid)

	// a pair the server never saw during logout stays valid until it expires
	_, err = env.auth.Authenticate(ctx, other.Access)
	assert.NoError(t, err)
}

func TestLogoutRejectsForeignRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")
	env.register(t, "bob")

	alicePair, err := env.auth.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	bobPair, err := env.auth.Login(ctx, "bob", "pw-bob")
	require.NoError(t, err)

	identity, err := env.auth.Authenticate(ctx, alicePair.Access)
	require.NoError(t, err)

	err = env.auth.Logout(ctx, identity, bobPair.Refresh)
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = env.auth.Logout(ctx, identity, "garbage")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.auth.Refresh(ctx, bobPair.Refresh)
	assert.NoError(t, err)

	assert.ErrorIs(t, env.auth.Logout(ctx, nil, ""), domain.ErrUnauthenticated)
}

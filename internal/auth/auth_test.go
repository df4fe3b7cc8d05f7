package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agency/internal/core"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionGateOpensOnce(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Ready())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.WaitReady(ctx), context.DeadlineExceeded)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.WaitReady(context.Background()))
		}()
	}

	s.Resolve(&core.Identity{UID: "u1", Email: "ana@example.com"})
	wg.Wait()
	assert.True(t, s.Ready())

	id, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", id.Recorder())

	s.SignOut()
	_, ok = s.Identity()
	assert.False(t, ok)
	assert.True(t, s.Ready(), "signing out does not close the gate again")

	s.Resolve(&core.Identity{UID: "u2", DisplayName: "Bia"})
	id, ok = s.Identity()
	require.True(t, ok)
	assert.Equal(t, "Bia", id.Recorder())
}

func TestSessionCopiesIdentity(t *testing.T) {
	in := &core.Identity{UID: "u1", DisplayName: "Ana"}
	s := Resolved(in)
	in.DisplayName = "changed"

	id, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, "Ana", id.DisplayName)
}

func TestNilSession(t *testing.T) {
	var s *Session
	_, ok := s.Identity()
	assert.False(t, ok)
	assert.True(t, s.Ready())
	assert.NoError(t, s.WaitReady(context.Background()))
}

func TestTokenVerifierRoundTrip(t *testing.T) {
	v := NewTokenVerifier("test-secret", "agency")
	token, err := v.Issue(core.Identity{UID: "u1", DisplayName: "Ana", Email: "ana@example.com"}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, core.Identity{UID: "u1", DisplayName: "Ana", Email: "ana@example.com"}, id)
}

func TestTokenVerifierRejects(t *testing.T) {
	v := NewTokenVerifier("test-secret", "agency")

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenVerifier("other", "agency").Issue(core.Identity{UID: "u1"}, time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := v.Issue(core.Identity{UID: "u1"}, -time.Minute)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := NewTokenVerifier("test-secret", "someone-else").Issue(core.Identity{UID: "u1"}, time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := v.Issue(core.Identity{Email: "x@example.com"}, time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.True(t, errors.Is(err, ErrMissingSub))
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "agency"},
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenVerifierRemembersVerifiedTokens(t *testing.T) {
	v := NewTokenVerifier("test-secret", "agency")
	token, err := v.Issue(core.Identity{UID: "u1", DisplayName: "Ana"}, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, 1, v.verified.Len())

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UID)
	assert.Equal(t, 1, v.verified.Len())

	_, err = v.Verify("not.a.token")
	assert.Error(t, err)
	assert.Equal(t, 1, v.verified.Len(), "failures are not cached")
}
